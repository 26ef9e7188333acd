package costmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

type CostModelTestSuite struct {
	suite.Suite
}

func TestCostModelSuite(t *testing.T) {
	suite.Run(t, new(CostModelTestSuite))
}

func (suite *CostModelTestSuite) TestZeroSlippage() {
	slippage := NewZeroSlippage()

	tests := []struct {
		name     string
		price    float64
		quantity float64
	}{
		{"small order", 100, 1},
		{"large order", 50000, 100},
		{"zero quantity", 100, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(0.0, slippage.Adjust(tc.price, tc.quantity))
		})
	}
}

func (suite *CostModelTestSuite) TestLinearSlippage() {
	slippage := NewLinearSlippage(10) // 10 bps

	tests := []struct {
		name     string
		price    float64
		quantity float64
		expected float64
	}{
		// base = 100 * 10/10000 = 0.1, factor = min(|q|,10)/10
		{"size 1", 100, 1, 0.01},
		{"size 5", 100, 5, 0.05},
		{"size 10 caps the factor", 100, 10, 0.1},
		{"size 100 still capped", 100, 100, 0.1},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.expected, slippage.Adjust(tc.price, tc.quantity), 1e-12)
		})
	}
}

func (suite *CostModelTestSuite) TestSquareRootSlippage() {
	slippage := NewSquareRootSlippage(10)

	// base = 0.1, factor = sqrt(4) = 2
	suite.InDelta(0.2, slippage.Adjust(100, 4), 1e-12)
	// sqrt(100) = 10
	suite.InDelta(1.0, slippage.Adjust(100, 100), 1e-12)
}

func (suite *CostModelTestSuite) TestGetSlippageHandler() {
	tests := []struct {
		name      string
		model     SlippageModel
		expectErr bool
	}{
		{"zero", SlippageZero, false},
		{"linear", SlippageLinear, false},
		{"square root", SlippageSquareRoot, false},
		{"unknown model", SlippageModel("cubic"), true},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			handler, err := GetSlippageHandler(tc.model, 10)
			if tc.expectErr {
				suite.Error(err)
				suite.True(errors.HasCode(err, errors.ErrCodeUnknownSlippageModel))
				suite.Nil(handler)
			} else {
				suite.NoError(err)
				suite.NotNil(handler)
			}
		})
	}
}

func (suite *CostModelTestSuite) TestNewRejectsNegativeCommission() {
	model, err := New(SlippageZero, 0, -0.001)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidCommission))
	suite.Nil(model)
}

func (suite *CostModelTestSuite) TestNewRejectsUnknownModel() {
	model, err := New(SlippageModel("vwap"), 0, 0.001)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownSlippageModel))
	suite.Nil(model)
}

func (suite *CostModelTestSuite) TestFillBuyPaysUp() {
	model, err := New(SlippageLinear, 10, 0.001)
	suite.Require().NoError(err)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	order := types.Order{Symbol: "BTC/USDT", Side: types.SideBuy, Quantity: 10}

	fill := model.Fill(order, 100, ts)

	// base slippage 0.1 at full size factor
	suite.InDelta(100.1, fill.Price, 1e-12)
	suite.InDelta(0.1, fill.Slippage, 1e-12)
	suite.InDelta(100.1*10*0.001, fill.Commission, 1e-9)
	suite.Equal(types.FillStatusFilled, fill.Status)
	suite.Equal(ts, fill.Time)
}

func (suite *CostModelTestSuite) TestFillSellReceivesLess() {
	model, err := New(SlippageLinear, 10, 0)
	suite.Require().NoError(err)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	order := types.Order{Symbol: "BTC/USDT", Side: types.SideSell, Quantity: 10}

	fill := model.Fill(order, 100, ts)
	suite.InDelta(99.9, fill.Price, 1e-12)
	suite.Equal(0.0, fill.Commission)
}

func (suite *CostModelTestSuite) TestCommissionAlwaysNonNegative() {
	model, err := New(SlippageZero, 0, 0.001)
	suite.Require().NoError(err)

	ts := time.Now()

	for _, side := range []types.Side{types.SideBuy, types.SideSell} {
		fill := model.Fill(types.Order{Symbol: "BTC/USDT", Side: side, Quantity: 2}, 100, ts)
		suite.GreaterOrEqual(fill.Commission, 0.0)
		suite.InDelta(0.2, fill.Commission, 1e-9)
	}
}

func (suite *CostModelTestSuite) TestReject() {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	order := types.Order{Symbol: "SOL/USDT", Side: types.SideBuy, Quantity: 3}

	fill := Reject(order, types.OrderReasonNoBar, ts)
	suite.True(fill.Rejected())
	suite.Equal(0.0, fill.Price)
	suite.Equal(0.0, fill.Commission)
	suite.Equal(3.0, fill.Quantity)
	suite.Equal(types.OrderReasonNoBar, fill.Reason)
}
