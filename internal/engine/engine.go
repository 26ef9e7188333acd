// Package engine runs historical simulations bar by bar: it walks the union
// timestamp grid of the loaded market data, hands each strategy a prefix
// view of history, turns the returned actions into fills through the cost
// model, and books them in the ledger.
package engine

import (
	"math"
	"time"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/tidemark-labs/tidemark/internal/engine/costmodel"
	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/metrics"
	"github.com/tidemark-labs/tidemark/internal/strategy"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/internal/version"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// OnStepCallback reports per-step progress, driving the CLI progress bar.
type OnStepCallback func(step, total int, ts time.Time)

type Engine struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Engine{log: log}
}

// Run executes one backtest. The data is never mutated; params are cloned so
// strategies cannot leak state between runs. Errors before the first step
// are configuration or alignment failures; after that only a strategy error
// aborts the run.
func (e *Engine) Run(
	data types.MarketData,
	strat strategy.Strategy,
	cfg Config,
	params types.Params,
	onStep optional.Option[OnStepCallback],
) (*types.ResultsReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if versioned, ok := strat.(strategy.Versioned); ok {
		if err := version.CheckVersionCompatibility(version.Version, versioned.MinEngineVersion()); err != nil {
			return nil, errors.Wrap(errors.ErrCodeVersionMismatch, "strategy is not compatible with this engine", err)
		}
	}

	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeDataAlignment, "no market data loaded")
	}
	for _, symbol := range data.Symbols() {
		if len(data[symbol]) == 0 {
			return nil, errors.Newf(errors.ErrCodeDataAlignment, "symbol %s has no bars", symbol)
		}
	}

	model, err := costmodel.New(cfg.SlippageModel, cfg.SlippageBps, cfg.CommissionRate)
	if err != nil {
		return nil, err
	}

	grid := BuildRunGrid(data, cfg)
	if len(grid) == 0 {
		return nil, errors.New(errors.ErrCodeDataAlignment, "no overlapping timestamps across symbols in the configured period")
	}

	e.log.Debug("starting run",
		zap.String("strategy", strat.Name()),
		zap.Int("steps", len(grid)),
		zap.Int("symbols", len(data)),
	)

	ledger := NewLedger(cfg.InitialCapital)
	window := types.NewMarketWindow(data)
	params = params.Clone()

	rebalancer, hasRebalancer := strat.(strategy.Rebalancer)
	var cache types.Params

	var trades []types.Fill
	curve := make([]types.EquityPoint, 0, len(grid))

	for i, ts := range grid {
		window.Advance(ts)

		ctx := &strategy.Context{
			Window:    window,
			Positions: ledger.Snapshot(),
			Time:      ts,
			Params:    params,
			Cache:     cache,
		}

		if hasRebalancer && i%max(rebalancer.RebalanceInterval(), 1) == 0 {
			newCache, rebErr := rebalancer.OnRebalance(ctx)
			if rebErr != nil {
				return nil, errors.Wrapf(errors.ErrCodeStrategyFailed, rebErr, "strategy %s failed to rebalance at %s", strat.Name(), ts)
			}
			cache = newCache
			ctx.Cache = cache
		}

		action, stepErr := strat.Step(ctx)
		if stepErr != nil {
			return nil, errors.Wrapf(errors.ErrCodeStrategyFailed, stepErr, "strategy %s failed at %s", strat.Name(), ts)
		}

		for _, order := range e.ordersFor(action, ledger) {
			fill := e.execute(model, ledger, window, order.order, order.reason, ts)
			trades = append(trades, fill)
		}

		curve = append(curve, types.EquityPoint{Time: ts, Value: ledger.Equity(window.LastPrices())})

		if onStep.IsSome() {
			onStep.Unwrap()(i+1, len(grid), ts)
		}
	}

	report := &types.ResultsReport{
		EquityCurve:    curve,
		Trades:         trades,
		FinalPositions: ledger.Snapshot(),
		InitialCapital: cfg.InitialCapital,
		FinalCapital:   ledger.Cash(),
		FinalEquity:    curve[len(curve)-1].Value,
		Metrics:        metrics.Summarize(curve, trades, cfg.InitialCapital),
	}

	e.log.Debug("run complete",
		zap.String("strategy", strat.Name()),
		zap.Float64("final_equity", report.FinalEquity),
		zap.Int("trades", len(trades)),
	)

	return report, nil
}

type pendingOrder struct {
	order  types.Order
	reason string
}

// ordersFor expands an action into concrete orders. CloseAll synthesizes one
// flattening order per open symbol in sorted order, which keeps the trade
// log deterministic.
func (e *Engine) ordersFor(action types.Action, ledger *Ledger) []pendingOrder {
	switch {
	case action.IsNoAction():
		return nil
	case action.IsCloseAll():
		var pending []pendingOrder
		for _, symbol := range ledger.OpenSymbols() {
			qty := ledger.Quantity(symbol)
			side := types.SideSell
			if qty < 0 {
				side = types.SideBuy
			}
			pending = append(pending, pendingOrder{
				order:  types.Order{Symbol: symbol, Side: side, Quantity: math.Abs(qty)},
				reason: types.OrderReasonCloseAll,
			})
		}

		return pending
	default:
		orders := action.Orders()
		pending := make([]pendingOrder, 0, len(orders))
		for _, order := range orders {
			pending = append(pending, pendingOrder{order: order, reason: types.OrderReasonStrategy})
		}

		return pending
	}
}

// execute prices one order against the bar at the current timestamp. Orders
// that cannot fill become rejected fills in the log; they never abort a run.
func (e *Engine) execute(
	model *costmodel.CostModel,
	ledger *Ledger,
	window *types.MarketWindow,
	order types.Order,
	reason string,
	ts time.Time,
) types.Fill {
	if err := order.Validate(); err != nil {
		e.log.Warn("rejecting invalid order",
			zap.String("symbol", order.Symbol),
			zap.Error(err),
		)

		return costmodel.Reject(order, types.OrderReasonInvalidOrder, ts)
	}

	bar, ok := window.At(order.Symbol)
	if !ok {
		e.log.Warn("rejecting order with no bar at timestamp",
			zap.String("symbol", order.Symbol),
			zap.Time("ts", ts),
		)

		return costmodel.Reject(order, types.OrderReasonNoBar, ts)
	}

	fill := model.Fill(order, bar.Close, ts)
	fill.Reason = reason
	fill.PnL, fill.Closing = ledger.Apply(fill)

	return fill
}

// BuildRunGrid restricts the union timestamp grid to the configured period.
func BuildRunGrid(data types.MarketData, cfg Config) []time.Time {
	grid := types.BuildTimeGrid(data)
	if cfg.StartTime.IsNone() && cfg.EndTime.IsNone() {
		return grid
	}

	filtered := make([]time.Time, 0, len(grid))
	for _, ts := range grid {
		if cfg.StartTime.IsSome() && ts.Before(cfg.StartTime.Unwrap()) {
			continue
		}
		if cfg.EndTime.IsSome() && ts.After(cfg.EndTime.Unwrap()) {
			continue
		}
		filtered = append(filtered, ts)
	}

	return filtered
}
