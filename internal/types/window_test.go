package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type WindowTestSuite struct {
	suite.Suite
}

func TestWindowSuite(t *testing.T) {
	suite.Run(t, new(WindowTestSuite))
}

func barsAt(t0 time.Time, closes ...float64) []Bar {
	bars := make([]Bar, len(closes))
	for i, c := range closes {
		ts := t0.Add(time.Duration(i) * time.Hour)
		bars[i] = Bar{Time: ts, Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 100}
	}

	return bars
}

func (suite *WindowTestSuite) testData() (MarketData, time.Time) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	return MarketData{
		"BTC/USDT": barsAt(t0, 100, 101, 99, 102, 103),
		"ETH/USDT": barsAt(t0.Add(time.Hour), 2000, 2010, 1990, 2020),
	}, t0
}

func (suite *WindowTestSuite) TestNoLookAhead() {
	data, t0 := suite.testData()
	window := NewMarketWindow(data)

	for step, ts := range BuildTimeGrid(data) {
		window.Advance(ts)

		for _, symbol := range window.Symbols() {
			for _, bar := range window.Bars(symbol) {
				suite.False(bar.Time.After(ts),
					"step %d: bar at %v visible at %v", step, bar.Time, ts)
			}
		}
	}

	suite.Equal(t0.Add(4*time.Hour), window.Time())
}

func (suite *WindowTestSuite) TestGridStartsWhenAllSymbolsHaveBars() {
	data, t0 := suite.testData()
	grid := BuildTimeGrid(data)

	// ETH's first bar is one hour after BTC's, so the grid must not start
	// before it.
	suite.Require().NotEmpty(grid)
	suite.Equal(t0.Add(time.Hour), grid[0])
	suite.Len(grid, 4)

	for i := 1; i < len(grid); i++ {
		suite.True(grid[i].After(grid[i-1]), "grid must be strictly increasing")
	}
}

func (suite *WindowTestSuite) TestGridEmptySeries() {
	data := MarketData{"BTC/USDT": nil}
	suite.Nil(BuildTimeGrid(data))
}

func (suite *WindowTestSuite) TestAt() {
	data, t0 := suite.testData()
	window := NewMarketWindow(data)

	window.Advance(t0)

	bar, ok := window.At("BTC/USDT")
	suite.True(ok)
	suite.Equal(100.0, bar.Close)

	// ETH has no bar at t0
	_, ok = window.At("ETH/USDT")
	suite.False(ok)

	// but after advancing, the last ETH bar is the current one
	window.Advance(t0.Add(time.Hour))
	bar, ok = window.At("ETH/USDT")
	suite.True(ok)
	suite.Equal(2000.0, bar.Close)
}

func (suite *WindowTestSuite) TestLastPrices() {
	data, t0 := suite.testData()
	window := NewMarketWindow(data)

	window.Advance(t0)
	prices := window.LastPrices()
	suite.Equal(map[string]float64{"BTC/USDT": 100}, prices)

	window.Advance(t0.Add(4 * time.Hour))
	prices = window.LastPrices()
	suite.Equal(103.0, prices["BTC/USDT"])
	suite.Equal(2020.0, prices["ETH/USDT"])
}

func (suite *WindowTestSuite) TestCloses() {
	data, t0 := suite.testData()
	window := NewMarketWindow(data)

	window.Advance(t0.Add(2 * time.Hour))
	suite.Equal([]float64{100, 101, 99}, window.Closes("BTC/USDT"))
	suite.Empty(window.Closes("SOL/USDT"))
}

func (suite *WindowTestSuite) TestSymbolsSorted() {
	data, _ := suite.testData()
	window := NewMarketWindow(data)
	suite.Equal([]string{"BTC/USDT", "ETH/USDT"}, window.Symbols())
}
