package types

import (
	"sort"
	"time"
)

// PositionSnapshot is the read-only copy of the portfolio handed to a
// strategy each step: signed quantity per symbol (positive = long,
// negative = short) plus available cash.
type PositionSnapshot struct {
	Cash      float64            `yaml:"cash" json:"cash"`
	Positions map[string]float64 `yaml:"positions" json:"positions"`
}

// Quantity returns the signed position for a symbol, zero if flat.
func (s PositionSnapshot) Quantity(symbol string) float64 {
	return s.Positions[symbol]
}

// Symbols returns the symbols with a non-zero position in sorted order.
func (s PositionSnapshot) Symbols() []string {
	symbols := make([]string, 0, len(s.Positions))
	for symbol := range s.Positions {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	return symbols
}

// EquityPoint is one sample of total portfolio value, keyed by the bar
// timestamp that produced it.
type EquityPoint struct {
	Time  time.Time `yaml:"time" json:"time" csv:"time"`
	Value float64   `yaml:"value" json:"value" csv:"value"`
}
