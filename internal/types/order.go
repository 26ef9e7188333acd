package types

import (
	"github.com/go-playground/validator/v10"

	"github.com/tidemark-labs/tidemark/pkg/errors"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

const (
	OrderReasonStrategy     string = "strategy"
	OrderReasonCloseAll     string = "close_all"
	OrderReasonNoBar        string = "no_bar_at_timestamp"
	OrderReasonInvalidOrder string = "invalid_order"
)

// Order is a request to trade a positive quantity of a symbol at the
// current market price. Orders are ephemeral: created by the strategy,
// consumed within the same step, and never stored beyond the trade log.
type Order struct {
	Symbol   string  `yaml:"symbol" json:"symbol" validate:"required"`
	Side     Side    `yaml:"side" json:"side" validate:"required,oneof=BUY SELL"`
	Quantity float64 `yaml:"quantity" json:"quantity" validate:"required,gt=0"`
}

// Validate validates the Order struct.
func (o *Order) Validate() error {
	validate := validator.New()
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, "invalid order", err)
	}

	return nil
}

type actionKind int

const (
	actionNone actionKind = iota
	actionCloseAll
	actionOrders
)

// Action is the tagged result of one strategy step: do nothing, close
// every open position, or submit a list of orders. It replaces the
// stringly-typed "close_all" sentinel mixed with a list return type.
type Action struct {
	kind   actionKind
	orders []Order
}

// NoAction returns the action that leaves the portfolio untouched.
func NoAction() Action {
	return Action{kind: actionNone, orders: nil}
}

// CloseAll returns the action that zeroes every open position. The engine
// synthesizes the offsetting orders from the current position book.
func CloseAll() Action {
	return Action{kind: actionCloseAll, orders: nil}
}

// Submit returns the action carrying the given orders, executed in the
// order given with no reordering.
func Submit(orders ...Order) Action {
	if len(orders) == 0 {
		return NoAction()
	}

	return Action{kind: actionOrders, orders: orders}
}

// IsNoAction reports whether the action carries no work.
func (a Action) IsNoAction() bool {
	return a.kind == actionNone
}

// IsCloseAll reports whether the action requests flattening all positions.
func (a Action) IsCloseAll() bool {
	return a.kind == actionCloseAll
}

// Orders returns the submitted orders, nil unless the action carries any.
func (a Action) Orders() []Order {
	return a.orders
}
