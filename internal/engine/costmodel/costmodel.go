// Package costmodel translates orders into fills by applying a slippage
// policy and a proportional commission at fill time.
package costmodel

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// CostModel applies slippage and commission to orders. One instance is
// built per run at configuration time, so model selection errors surface
// before the first step.
type CostModel struct {
	slippage       Slippage
	commissionRate float64
}

// New builds a cost model. The commission rate is proportional, e.g.
// 0.001 = 0.1% of fill value, and must be non-negative.
func New(model SlippageModel, slippageBps, commissionRate float64) (*CostModel, error) {
	if commissionRate < 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidCommission, "commission rate must be non-negative, got %f", commissionRate)
	}

	slippage, err := GetSlippageHandler(model, slippageBps)
	if err != nil {
		return nil, err
	}

	return &CostModel{
		slippage:       slippage,
		commissionRate: commissionRate,
	}, nil
}

// Fill executes an order against the reference price: buys pay the
// slippage-adjusted price above reference, sells receive below it.
// Commission is fill_price * quantity * rate, charged on both sides.
func (c *CostModel) Fill(order types.Order, referencePrice float64, ts time.Time) types.Fill {
	slippage := c.slippage.Adjust(referencePrice, order.Quantity)

	var fillPrice float64
	if order.Side == types.SideBuy {
		fillPrice = referencePrice + slippage
	} else {
		fillPrice = referencePrice - slippage
	}

	commission := decimal.NewFromFloat(fillPrice).
		Mul(decimal.NewFromFloat(order.Quantity)).
		Mul(decimal.NewFromFloat(c.commissionRate))

	commissionPaid, _ := commission.Abs().Float64()

	return types.Fill{
		Symbol:     order.Symbol,
		Side:       order.Side,
		Quantity:   order.Quantity,
		Price:      fillPrice,
		Commission: commissionPaid,
		Slippage:   slippage,
		Time:       ts,
		Status:     types.FillStatusFilled,
		Reason:     types.OrderReasonStrategy,
	}
}

// Reject records an order that could not execute, e.g. because its symbol
// has no bar at the current timestamp. Rejected fills stay in the trade
// log so failed orders are visible, not silently dropped.
func Reject(order types.Order, reason string, ts time.Time) types.Fill {
	return types.Fill{
		Symbol:   order.Symbol,
		Side:     order.Side,
		Quantity: order.Quantity,
		Time:     ts,
		Status:   types.FillStatusRejected,
		Reason:   reason,
	}
}
