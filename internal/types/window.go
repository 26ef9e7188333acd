package types

import (
	"sort"
	"time"
)

// MarketWindow is the read-only view of market data handed to a strategy
// at each step. It exposes, per symbol, the prefix of bars with timestamps
// less than or equal to the current simulation time. Strategies can never
// observe later bars: the prefix is enforced by construction, not by
// copying.
type MarketWindow struct {
	series  map[string][]Bar
	symbols []string
	cut     map[string]int
	now     time.Time
}

// NewMarketWindow creates a window over the full data set with nothing
// visible yet. The engine advances it step by step.
func NewMarketWindow(data MarketData) *MarketWindow {
	series := make(map[string][]Bar, len(data))
	cut := make(map[string]int, len(data))

	for symbol, bars := range data {
		series[symbol] = bars
		cut[symbol] = 0
	}

	return &MarketWindow{
		series:  series,
		symbols: data.Symbols(),
		cut:     cut,
		now:     time.Time{},
	}
}

// Advance moves the window to the given timestamp, making every bar with
// Time <= ts visible. Timestamps must be fed in strictly increasing order.
func (w *MarketWindow) Advance(ts time.Time) {
	for symbol, bars := range w.series {
		i := w.cut[symbol]
		for i < len(bars) && !bars[i].Time.After(ts) {
			i++
		}

		w.cut[symbol] = i
	}

	w.now = ts
}

// Time returns the current simulation timestamp.
func (w *MarketWindow) Time() time.Time {
	return w.now
}

// Symbols returns all symbols in the window in sorted order.
func (w *MarketWindow) Symbols() []string {
	return w.symbols
}

// Bars returns the visible bars for a symbol: every bar with timestamp at
// or before the current simulation time, oldest first. The returned slice
// must be treated as read-only.
func (w *MarketWindow) Bars(symbol string) []Bar {
	bars, ok := w.series[symbol]
	if !ok {
		return nil
	}

	return bars[:w.cut[symbol]]
}

// Closes returns the visible close prices for a symbol, oldest first.
// Convenience for feature functions that operate on a single series.
func (w *MarketWindow) Closes(symbol string) []float64 {
	bars := w.Bars(symbol)
	closes := make([]float64, len(bars))

	for i, bar := range bars {
		closes[i] = bar.Close
	}

	return closes
}

// Last returns the most recent visible bar for a symbol, which may be
// older than the current timestamp if the symbol has no bar at this step.
func (w *MarketWindow) Last(symbol string) (Bar, bool) {
	visible := w.Bars(symbol)
	if len(visible) == 0 {
		return Bar{}, false
	}

	return visible[len(visible)-1], true
}

// At returns the symbol's bar at exactly the current timestamp. The second
// return value is false when the symbol has no bar at this step, in which
// case orders for it are rejected rather than filled against stale prices.
func (w *MarketWindow) At(symbol string) (Bar, bool) {
	bar, ok := w.Last(symbol)
	if !ok || !bar.Time.Equal(w.now) {
		return Bar{}, false
	}

	return bar, true
}

// LastPrices returns the last known close per symbol, for every symbol
// that has at least one visible bar. Used for equity marking.
func (w *MarketWindow) LastPrices() map[string]float64 {
	prices := make(map[string]float64, len(w.symbols))

	for _, symbol := range w.symbols {
		if bar, ok := w.Last(symbol); ok {
			prices[symbol] = bar.Close
		}
	}

	return prices
}

// BuildTimeGrid returns the union of all symbols' timestamps in strictly
// increasing order, starting from the earliest timestamp at which every
// symbol has at least one bar.
func BuildTimeGrid(data MarketData) []time.Time {
	seen := make(map[time.Time]struct{})

	var start time.Time

	for _, bars := range data {
		if len(bars) == 0 {
			return nil
		}

		if bars[0].Time.After(start) {
			start = bars[0].Time
		}

		for _, bar := range bars {
			seen[bar.Time] = struct{}{}
		}
	}

	grid := make([]time.Time, 0, len(seen))

	for ts := range seen {
		if !ts.Before(start) {
			grid = append(grid, ts)
		}
	}

	sort.Slice(grid, func(i, j int) bool { return grid[i].Before(grid[j]) })

	return grid
}
