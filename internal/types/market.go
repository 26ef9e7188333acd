package types

import (
	"sort"
	"time"
)

// Bar is one OHLCV observation for one symbol at one timestamp.
// Bars are immutable once produced by the data provider.
type Bar struct {
	Time   time.Time `yaml:"time" json:"time" csv:"time"`
	Open   float64   `yaml:"open" json:"open" csv:"open"`
	High   float64   `yaml:"high" json:"high" csv:"high"`
	Low    float64   `yaml:"low" json:"low" csv:"low"`
	Close  float64   `yaml:"close" json:"close" csv:"close"`
	Volume float64   `yaml:"volume" json:"volume" csv:"volume"`
}

// MarketData maps an exchange pair symbol (e.g. "BTC/USDT", or
// "BTC/USDT:USDT" for a perpetual) to its bar series in ascending time
// order. The structure is never mutated after load, which is what makes
// optimizer trials safely shareable without synchronization.
type MarketData map[string][]Bar

// Symbols returns the symbols present in the data set in sorted order.
func (m MarketData) Symbols() []string {
	symbols := make([]string, 0, len(m))
	for symbol := range m {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	return symbols
}
