package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type FillStatus string

const (
	FillStatusFilled   FillStatus = "FILLED"
	FillStatusRejected FillStatus = "REJECTED"
)

// Fill is the realized outcome of submitting one order to the cost model:
// a slippage-adjusted price plus commission, or a rejection. Fills are
// appended to the trade log and never mutated afterwards.
type Fill struct {
	Symbol string `yaml:"symbol" json:"symbol" csv:"symbol"`
	Side   Side   `yaml:"side" json:"side" csv:"side"`
	// Quantity is the requested order size; it is recorded even when the
	// fill is rejected.
	Quantity float64 `yaml:"quantity" json:"quantity" csv:"quantity"`
	// Price is the execution price after slippage. Zero for rejected fills.
	Price float64 `yaml:"price" json:"price" csv:"price"`
	// Commission is the fee charged at fill time, always non-negative.
	Commission float64 `yaml:"commission" json:"commission" csv:"commission"`
	// Slippage is the absolute price adjustment applied by the cost model.
	Slippage float64    `yaml:"slippage" json:"slippage" csv:"slippage"`
	Time     time.Time  `yaml:"time" json:"time" csv:"time"`
	Status   FillStatus `yaml:"status" json:"status" csv:"status"`
	// Reason records why the fill happened or was rejected, e.g.
	// "strategy", "close_all", "no_bar_at_timestamp".
	Reason string `yaml:"reason" json:"reason" csv:"reason"`
	// Closing is true when the fill reduced an existing exposure, in which
	// case PnL carries the realized profit or loss before commission.
	// Commission is reported separately in the Commission field.
	Closing bool    `yaml:"closing" json:"closing" csv:"closing"`
	PnL     float64 `yaml:"pnl" json:"pnl" csv:"pnl"`
}

// Rejected reports whether the order behind this fill never executed.
func (f Fill) Rejected() bool {
	return f.Status == FillStatusRejected
}

// Value returns the cash value of the fill (price times quantity),
// computed with decimal arithmetic to avoid drift on large quantities.
func (f Fill) Value() float64 {
	value := decimal.NewFromFloat(f.Price).Mul(decimal.NewFromFloat(f.Quantity))

	result, _ := value.Float64()

	return result
}
