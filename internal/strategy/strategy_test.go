package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tidemark-labs/tidemark/internal/types"
)

type StrategyTestSuite struct {
	suite.Suite
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func windowOver(closes map[string][]float64) *types.MarketWindow {
	data := types.MarketData{}
	var last time.Time
	for symbol, series := range closes {
		bars := make([]types.Bar, len(series))
		for i, c := range series {
			bars[i] = types.Bar{
				Time:   testStart.Add(time.Duration(i) * time.Hour),
				Open:   c,
				High:   c,
				Low:    c,
				Close:  c,
				Volume: 1,
			}
			if bars[i].Time.After(last) {
				last = bars[i].Time
			}
		}
		data[symbol] = bars
	}

	window := types.NewMarketWindow(data)
	window.Advance(last)

	return window
}

func contextOver(closes map[string][]float64, cash float64, positions map[string]float64, params types.Params) *Context {
	window := windowOver(closes)
	if positions == nil {
		positions = map[string]float64{}
	}

	return &Context{
		Window:    window,
		Positions: types.PositionSnapshot{Cash: cash, Positions: positions},
		Time:      window.Time(),
		Params:    params,
		Cache:     types.Params{},
	}
}

func (suite *StrategyTestSuite) TestFuncAdapter() {
	called := false
	strat := NewFunc("probe", func(ctx *Context) (types.Action, error) {
		called = true

		return types.CloseAll(), nil
	})

	suite.Equal("probe", strat.Name())
	action, err := strat.Step(&Context{})
	suite.NoError(err)
	suite.True(action.IsCloseAll())
	suite.True(called)
}

func (suite *StrategyTestSuite) TestCalculateMaxQuantity() {
	tests := []struct {
		name           string
		balance        float64
		price          float64
		commissionRate float64
	}{
		{"no commission", 1000, 100, 0},
		{"with commission", 1000, 100, 0.001},
		{"expensive asset", 500, 60000, 0.001},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			qty := CalculateMaxQuantity(tc.balance, tc.price, tc.commissionRate)
			suite.Greater(qty, 0.0)
			totalCost := qty*tc.price + qty*tc.price*tc.commissionRate
			suite.LessOrEqual(totalCost, tc.balance+1e-9)
		})
	}
}

func (suite *StrategyTestSuite) TestCalculateMaxQuantityEdgeCases() {
	suite.Equal(0.0, CalculateMaxQuantity(0, 100, 0))
	suite.Equal(0.0, CalculateMaxQuantity(1000, 0, 0))
	suite.Equal(0.0, CalculateMaxQuantity(-5, 100, 0))
}

func (suite *StrategyTestSuite) TestRoundToDecimalPrecision() {
	suite.Equal(1.23, RoundToDecimalPrecision(1.239, 2))
	suite.Equal(10.0, RoundToDecimalPrecision(10.9999, 0))
}

func (suite *StrategyTestSuite) TestSMACrossoverBuysOnCrossUp() {
	// flat then a jump: the short average crosses above the long one
	closes := []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 120}
	params := types.Params{"short_period": 2, "long_period": 5}

	strat := NewSMACrossover("BTC/USDT", 0)
	ctx := contextOver(map[string][]float64{"BTC/USDT": closes}, 1000, nil, params)

	action, err := strat.Step(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(action.Orders(), 1)
	suite.Equal(types.SideBuy, action.Orders()[0].Side)
	suite.Greater(action.Orders()[0].Quantity, 0.0)
}

func (suite *StrategyTestSuite) TestSMACrossoverSellsOnCrossDown() {
	closes := []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 80}
	params := types.Params{"short_period": 2, "long_period": 5}

	strat := NewSMACrossover("BTC/USDT", 0)
	ctx := contextOver(map[string][]float64{"BTC/USDT": closes}, 500, map[string]float64{"BTC/USDT": 3}, params)

	action, err := strat.Step(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(action.Orders(), 1)
	suite.Equal(types.SideSell, action.Orders()[0].Side)
	suite.Equal(3.0, action.Orders()[0].Quantity)
}

func (suite *StrategyTestSuite) TestSMACrossoverWaitsForHistory() {
	closes := []float64{100, 101, 102}
	params := types.Params{"short_period": 2, "long_period": 5}

	strat := NewSMACrossover("BTC/USDT", 0)
	ctx := contextOver(map[string][]float64{"BTC/USDT": closes}, 1000, nil, params)

	action, err := strat.Step(ctx)
	suite.NoError(err)
	suite.True(action.IsNoAction())
}

func (suite *StrategyTestSuite) TestSMACrossoverRejectsBadPeriods() {
	closes := []float64{100, 101, 102, 103, 104, 105}
	params := types.Params{"short_period": 5, "long_period": 5}

	strat := NewSMACrossover("BTC/USDT", 0)
	ctx := contextOver(map[string][]float64{"BTC/USDT": closes}, 1000, nil, params)

	_, err := strat.Step(ctx)
	suite.Error(err)
}

func (suite *StrategyTestSuite) TestMeanReversionPicksRevertingSymbol() {
	// BTC oscillates around 100 (fast reversion), ETH trends up
	btc := []float64{100, 104, 97, 103, 98, 102, 99, 101, 100, 100}
	eth := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}

	strat := NewMeanReversion(0)
	ctx := contextOver(map[string][]float64{"BTC/USDT": btc, "ETH/USDT": eth}, 1000, nil,
		types.Params{"lookback": 10})

	cache, err := strat.OnRebalance(ctx)
	suite.Require().NoError(err)
	suite.Equal("BTC/USDT", cache.String("symbol", ""))
}

func (suite *StrategyTestSuite) TestMeanReversionEntersAgainstExtremes() {
	// last value spikes far above the rolling mean
	closes := []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 130}

	strat := NewMeanReversion(0)
	ctx := contextOver(map[string][]float64{"BTC/USDT": closes}, 1000, nil,
		types.Params{"lookback": 10, "entry_z": 2.0})
	ctx.Cache = types.Params{"symbol": "BTC/USDT"}

	action, err := strat.Step(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(action.Orders(), 1)
	suite.Equal(types.SideSell, action.Orders()[0].Side)
}

func (suite *StrategyTestSuite) TestMeanReversionExitsNearMean() {
	closes := []float64{100, 101, 99, 100, 101, 99, 100, 101, 99, 100}

	strat := NewMeanReversion(0)
	ctx := contextOver(map[string][]float64{"BTC/USDT": closes}, 1000,
		map[string]float64{"BTC/USDT": 2}, types.Params{"lookback": 10, "exit_z": 0.5})
	ctx.Cache = types.Params{"symbol": "BTC/USDT"}

	action, err := strat.Step(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(action.Orders(), 1)
	suite.Equal(types.SideSell, action.Orders()[0].Side)
	suite.Equal(2.0, action.Orders()[0].Quantity)
}

func (suite *StrategyTestSuite) TestGetBuiltinHandler() {
	strat, err := GetBuiltinHandler(BuiltinSMACrossover, "BTC/USDT", 0.001)
	suite.NoError(err)
	suite.Equal("sma_crossover_BTC/USDT", strat.Name())

	strat, err = GetBuiltinHandler(BuiltinMeanReversion, "", 0)
	suite.NoError(err)
	suite.Equal("mean_reversion", strat.Name())

	_, err = GetBuiltinHandler(BuiltinName("momentum"), "BTC/USDT", 0)
	suite.Error(err)
}

func (suite *StrategyTestSuite) TestMeanReversionIdleWithoutCache() {
	closes := []float64{100, 101, 102}

	strat := NewMeanReversion(0)
	ctx := contextOver(map[string][]float64{"BTC/USDT": closes}, 1000, nil, types.Params{})

	action, err := strat.Step(ctx)
	suite.NoError(err)
	suite.True(action.IsNoAction())
}
