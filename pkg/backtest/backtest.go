// Package backtest is the public entry point: one call to run a backtest,
// one to search a parameter space. Everything it returns comes from the
// internal engine unchanged, so library users and the CLIs see the same
// reports.
package backtest

import (
	"context"

	"github.com/moznion/go-optional"

	"github.com/tidemark-labs/tidemark/internal/engine"
	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/optimizer"
	"github.com/tidemark-labs/tidemark/internal/strategy"
	"github.com/tidemark-labs/tidemark/internal/types"
)

// Re-exported types so callers only import this package.
type (
	MarketData       = types.MarketData
	Bar              = types.Bar
	Params           = types.Params
	ResultsReport    = types.ResultsReport
	Strategy         = strategy.Strategy
	StrategyContext  = strategy.Context
	Config           = engine.Config
	OnStepCallback   = engine.OnStepCallback
	ParamSpace       = optimizer.ParamSpace
	Domain           = optimizer.Domain
	OptimizeOptions  = optimizer.Options
	OptimizeResult   = optimizer.Result
	StrategyFactory  = optimizer.StrategyFactory
	WalkForwardStats = optimizer.WindowRecord
)

// Domain constructors, re-exported.
var (
	Uniform  = optimizer.Uniform
	IntRange = optimizer.IntRange
	Choice   = optimizer.Choice
)

// DefaultConfig mirrors engine.DefaultConfig.
func DefaultConfig() Config {
	return engine.DefaultConfig()
}

// NewStrategy adapts a plain step function into a Strategy.
func NewStrategy(name string, fn func(ctx *StrategyContext) (types.Action, error)) Strategy {
	return strategy.NewFunc(name, fn)
}

// RunBacktest simulates one strategy over the data and returns the frozen
// report: equity curve, trade log, final positions, and summary metrics.
func RunBacktest(data MarketData, strat Strategy, cfg Config, params Params) (*ResultsReport, error) {
	return RunBacktestWithProgress(data, strat, cfg, params, optional.None[OnStepCallback]())
}

// RunBacktestWithProgress is RunBacktest with a per-step callback, which the
// CLI uses to drive its progress bar.
func RunBacktestWithProgress(
	data MarketData,
	strat Strategy,
	cfg Config,
	params Params,
	onStep optional.Option[OnStepCallback],
) (*ResultsReport, error) {
	return engine.New(logger.NewNopLogger()).Run(data, strat, cfg, params, onStep)
}

// OptimizeStrategy searches the space for the parameters that maximize the
// chosen metric and reruns the best set for a final report.
func OptimizeStrategy(
	ctx context.Context,
	data MarketData,
	factory StrategyFactory,
	space ParamSpace,
	opts OptimizeOptions,
) (*OptimizeResult, error) {
	return optimizer.New(logger.NewNopLogger()).Optimize(ctx, data, factory, space, opts)
}

// WalkForward rolls optimize-then-test windows across the data.
func WalkForward(
	ctx context.Context,
	data MarketData,
	factory StrategyFactory,
	space ParamSpace,
	opts optimizer.WalkForwardOptions,
) ([]WalkForwardStats, error) {
	return optimizer.New(logger.NewNopLogger()).WalkForward(ctx, data, factory, space, opts)
}
