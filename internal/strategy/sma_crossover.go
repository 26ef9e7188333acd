package strategy

import (
	"fmt"

	"github.com/tidemark-labs/tidemark/internal/features"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// SMACrossover buys a symbol when its short moving average crosses above the
// long one and flattens when it crosses below. Parameters:
//
//	short_period  int     short window, default 5
//	long_period   int     long window, default 20
//	position_frac float64 fraction of cash committed per entry, default 0.95
type SMACrossover struct {
	symbol         string
	commissionRate float64
}

func NewSMACrossover(symbol string, commissionRate float64) *SMACrossover {
	return &SMACrossover{symbol: symbol, commissionRate: commissionRate}
}

func (s *SMACrossover) Name() string {
	return fmt.Sprintf("sma_crossover_%s", s.symbol)
}

func (s *SMACrossover) Step(ctx *Context) (types.Action, error) {
	shortPeriod := ctx.Params.Int("short_period", 5)
	longPeriod := ctx.Params.Int("long_period", 20)
	if shortPeriod >= longPeriod {
		return types.NoAction(), errors.Newf(errors.ErrCodeInvalidParameter,
			"short_period %d must be below long_period %d", shortPeriod, longPeriod)
	}

	closes := ctx.Window.Closes(s.symbol)
	// One extra bar so the previous averages exist for cross detection.
	if len(closes) < longPeriod+1 {
		return types.NoAction(), nil
	}

	shortNow, err := features.SMA(closes, shortPeriod)
	if err != nil {
		return types.NoAction(), err
	}
	longNow, err := features.SMA(closes, longPeriod)
	if err != nil {
		return types.NoAction(), err
	}
	shortPrev, err := features.SMA(closes[:len(closes)-1], shortPeriod)
	if err != nil {
		return types.NoAction(), err
	}
	longPrev, err := features.SMA(closes[:len(closes)-1], longPeriod)
	if err != nil {
		return types.NoAction(), err
	}

	held := ctx.Positions.Quantity(s.symbol)
	crossedUp := shortPrev <= longPrev && shortNow > longNow
	crossedDown := shortPrev >= longPrev && shortNow < longNow

	switch {
	case crossedUp && held == 0:
		price := closes[len(closes)-1]
		frac := ctx.Params.Float("position_frac", 0.95)
		qty := CalculateOrderQuantityByPercentage(ctx.Positions.Cash, price, s.commissionRate, frac)
		if qty <= 0 {
			return types.NoAction(), nil
		}
		return types.Submit(types.Order{Symbol: s.symbol, Side: types.SideBuy, Quantity: qty}), nil
	case crossedDown && held > 0:
		return types.Submit(types.Order{Symbol: s.symbol, Side: types.SideSell, Quantity: held}), nil
	default:
		return types.NoAction(), nil
	}
}
