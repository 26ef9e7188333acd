package types

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/tidemark-labs/tidemark/pkg/errors"
)

type OrderTestSuite struct {
	suite.Suite
}

func TestOrderSuite(t *testing.T) {
	suite.Run(t, new(OrderTestSuite))
}

func (suite *OrderTestSuite) TestValidateOrder() {
	tests := []struct {
		name      string
		order     Order
		expectErr bool
	}{
		{
			name:      "valid buy order",
			order:     Order{Symbol: "BTC/USDT", Side: SideBuy, Quantity: 1.5},
			expectErr: false,
		},
		{
			name:      "valid sell order",
			order:     Order{Symbol: "ETH/USDT", Side: SideSell, Quantity: 0.25},
			expectErr: false,
		},
		{
			name:      "missing symbol",
			order:     Order{Side: SideBuy, Quantity: 1},
			expectErr: true,
		},
		{
			name:      "zero quantity",
			order:     Order{Symbol: "BTC/USDT", Side: SideBuy, Quantity: 0},
			expectErr: true,
		},
		{
			name:      "negative quantity",
			order:     Order{Symbol: "BTC/USDT", Side: SideSell, Quantity: -3},
			expectErr: true,
		},
		{
			name:      "unknown side",
			order:     Order{Symbol: "BTC/USDT", Side: Side("HOLD"), Quantity: 1},
			expectErr: true,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			err := tc.order.Validate()
			if tc.expectErr {
				suite.Error(err)
				suite.True(errors.HasCode(err, errors.ErrCodeInvalidOrder))
			} else {
				suite.NoError(err)
			}
		})
	}
}

func (suite *OrderTestSuite) TestNoAction() {
	action := NoAction()
	suite.True(action.IsNoAction())
	suite.False(action.IsCloseAll())
	suite.Nil(action.Orders())
}

func (suite *OrderTestSuite) TestCloseAll() {
	action := CloseAll()
	suite.True(action.IsCloseAll())
	suite.False(action.IsNoAction())
	suite.Nil(action.Orders())
}

func (suite *OrderTestSuite) TestSubmit() {
	orders := []Order{
		{Symbol: "BTC/USDT", Side: SideBuy, Quantity: 1},
		{Symbol: "ETH/USDT", Side: SideSell, Quantity: 2},
	}

	action := Submit(orders...)
	suite.False(action.IsNoAction())
	suite.False(action.IsCloseAll())
	suite.Equal(orders, action.Orders())
}

func (suite *OrderTestSuite) TestSubmitEmptyIsNoAction() {
	action := Submit()
	suite.True(action.IsNoAction())
}
