package strategy

import (
	"math"

	"github.com/tidemark-labs/tidemark/internal/features"
	"github.com/tidemark-labs/tidemark/internal/types"
)

// MeanReversion trades the z-score of one symbol's close against its rolling
// mean: short above entry_z, long below -entry_z, flat inside exit_z. On each
// rebalance it scans the universe and picks the symbol whose closes currently
// revert fastest (shortest half-life), caching the choice between rebalances.
// Parameters:
//
//	lookback       int     z-score window, default 20
//	entry_z        float64 entry threshold, default 2.0
//	exit_z         float64 exit threshold, default 0.5
//	position_frac  float64 fraction of cash per entry, default 0.5
type MeanReversion struct {
	commissionRate float64
}

func NewMeanReversion(commissionRate float64) *MeanReversion {
	return &MeanReversion{commissionRate: commissionRate}
}

func (s *MeanReversion) Name() string {
	return "mean_reversion"
}

func (s *MeanReversion) RebalanceInterval() int {
	return 50
}

// OnRebalance picks the most mean-reverting symbol in the window. Symbols
// without enough history are skipped; when none qualify the cache stays
// empty and Step does nothing until the next rebalance.
func (s *MeanReversion) OnRebalance(ctx *Context) (types.Params, error) {
	lookback := ctx.Params.Int("lookback", 20)

	best := ""
	bestHalfLife := math.Inf(1)
	for _, symbol := range ctx.Window.Symbols() {
		closes := ctx.Window.Closes(symbol)
		if len(closes) < lookback {
			continue
		}
		hl, err := features.HalfLife(closes[len(closes)-lookback:])
		if err != nil {
			continue
		}
		if hl < bestHalfLife {
			bestHalfLife = hl
			best = symbol
		}
	}

	if best == "" {
		return types.Params{}, nil
	}
	return types.Params{"symbol": best}, nil
}

func (s *MeanReversion) Step(ctx *Context) (types.Action, error) {
	symbol := ctx.Cache.String("symbol", "")
	if symbol == "" {
		return types.NoAction(), nil
	}

	lookback := ctx.Params.Int("lookback", 20)
	closes := ctx.Window.Closes(symbol)
	if len(closes) < lookback {
		return types.NoAction(), nil
	}

	z, err := features.ZScore(closes, lookback)
	if err != nil {
		return types.NoAction(), err
	}

	entryZ := ctx.Params.Float("entry_z", 2.0)
	exitZ := ctx.Params.Float("exit_z", 0.5)
	held := ctx.Positions.Quantity(symbol)
	price := closes[len(closes)-1]

	switch {
	case held == 0 && z > entryZ:
		qty := s.entryQuantity(ctx, price)
		if qty <= 0 {
			return types.NoAction(), nil
		}
		return types.Submit(types.Order{Symbol: symbol, Side: types.SideSell, Quantity: qty}), nil
	case held == 0 && z < -entryZ:
		qty := s.entryQuantity(ctx, price)
		if qty <= 0 {
			return types.NoAction(), nil
		}
		return types.Submit(types.Order{Symbol: symbol, Side: types.SideBuy, Quantity: qty}), nil
	case held > 0 && z > -exitZ:
		return types.Submit(types.Order{Symbol: symbol, Side: types.SideSell, Quantity: held}), nil
	case held < 0 && z < exitZ:
		return types.Submit(types.Order{Symbol: symbol, Side: types.SideBuy, Quantity: -held}), nil
	default:
		return types.NoAction(), nil
	}
}

func (s *MeanReversion) entryQuantity(ctx *Context, price float64) float64 {
	frac := ctx.Params.Float("position_frac", 0.5)

	return CalculateOrderQuantityByPercentage(ctx.Positions.Cash, price, s.commissionRate, frac)
}
