package optimizer

import (
	"context"
	"math"
	"math/rand"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/tidemark-labs/tidemark/internal/engine"
	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/metrics"
	"github.com/tidemark-labs/tidemark/internal/strategy"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// StrategyFactory builds a fresh strategy for one trial's parameter set, so
// no strategy state survives between trials.
type StrategyFactory func(params types.Params) (strategy.Strategy, error)

// Options configures one search.
type Options struct {
	// Metric is the objective, maximized. Must be a name metrics.Summarize
	// produces.
	Metric string
	// NTrials is the number of trials to attempt.
	NTrials int
	// Seed makes the search reproducible.
	Seed int64
	// Engine configures the per-trial backtests.
	Engine engine.Config
	// FixedParams are passed to every trial unchanged. Searched parameters
	// override fixed ones of the same name.
	FixedParams types.Params
}

// Trial records one completed or failed trial. Failed trials keep their
// sampled params and carry -Inf.
type Trial struct {
	Index  int          `yaml:"index" json:"index"`
	Params types.Params `yaml:"params" json:"params"`
	Value  float64      `yaml:"value" json:"value"`
	Failed bool         `yaml:"failed" json:"failed"`
}

// Result is the outcome of a search. FinalResults comes from one extra run
// with BestParams after the search ends.
type Result struct {
	BestParams   types.Params
	BestValue    float64
	FinalResults *types.ResultsReport
	Trials       []Trial
}

type Optimizer struct {
	log    *logger.Logger
	engine *engine.Engine
}

func New(log *logger.Logger) *Optimizer {
	if log == nil {
		log = logger.NewNopLogger()
	}

	// trial runs log through the optimizer, not individually
	return &Optimizer{log: log, engine: engine.New(logger.NewNopLogger())}
}

// Optimize runs a sequential surrogate-guided search over the space and
// returns the best parameters found plus a final backtest with them. A
// canceled context stops the search and returns the best result so far;
// cancellation before any trial completes is an error.
func (o *Optimizer) Optimize(
	ctx context.Context,
	data types.MarketData,
	factory StrategyFactory,
	space ParamSpace,
	opts Options,
) (*Result, error) {
	if err := space.Validate(); err != nil {
		return nil, err
	}
	if opts.NTrials <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "n_trials must be positive, got %d", opts.NTrials)
	}
	if _, err := metrics.Lookup(types.Summary{}, opts.Metric); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	sampler := newTPESampler(space, rng)

	result := &Result{BestValue: math.Inf(-1)}
	var history []observation

	for i := 0; i < opts.NTrials; i++ {
		if ctx.Err() != nil {
			o.log.Warn("search canceled", zap.Int("completed_trials", i))

			break
		}

		sampled := sampler.suggest(history)
		trialParams := opts.FixedParams.Merge(sampled)

		value, failed := o.runTrial(data, factory, trialParams, opts)
		history = append(history, observation{params: sampled, value: value})
		result.Trials = append(result.Trials, Trial{Index: i, Params: trialParams, Value: value, Failed: failed})

		// strict improvement keeps the earliest trial on ties
		if value > result.BestValue {
			result.BestValue = value
			result.BestParams = trialParams.Clone()
			o.log.Info("new best trial",
				zap.Int("trial", i),
				zap.String("metric", opts.Metric),
				zap.Float64("value", value),
			)
		}
	}

	if len(result.Trials) == 0 {
		return nil, errors.Wrap(errors.ErrCodeSearchCanceled, "search canceled before any trial completed", ctx.Err())
	}
	if math.IsInf(result.BestValue, -1) {
		return nil, errors.Newf(errors.ErrCodeTrialFailed, "all %d trials failed", len(result.Trials))
	}

	final, err := o.rerunBest(data, factory, result.BestParams, opts)
	if err != nil {
		return nil, err
	}
	result.FinalResults = final

	return result, nil
}

// runTrial executes one backtest and extracts the objective. Any failure
// maps to the -Inf sentinel so the search keeps going.
func (o *Optimizer) runTrial(data types.MarketData, factory StrategyFactory, params types.Params, opts Options) (float64, bool) {
	failed := math.Inf(-1)

	strat, err := factory(params)
	if err != nil {
		o.log.Debug("trial factory failed", zap.Error(err))

		return failed, true
	}

	report, err := o.engine.Run(data, strat, opts.Engine, params, noCallback())
	if err != nil {
		o.log.Debug("trial run failed", zap.Error(err))

		return failed, true
	}

	value, err := metrics.Lookup(report.Metrics, opts.Metric)
	if err != nil || math.IsNaN(value) {
		return failed, true
	}

	return value, false
}

func (o *Optimizer) rerunBest(data types.MarketData, factory StrategyFactory, params types.Params, opts Options) (*types.ResultsReport, error) {
	strat, err := factory(params)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTrialFailed, "failed to rebuild strategy with best params", err)
	}

	return o.engine.Run(data, strat, opts.Engine, params, noCallback())
}

func noCallback() optional.Option[engine.OnStepCallback] {
	return optional.None[engine.OnStepCallback]()
}
