// Package strategy defines the contract between the backtest engine and
// trading strategies, plus the builtin strategies shipped with the engine.
package strategy

import (
	"time"

	"github.com/tidemark-labs/tidemark/internal/types"
)

// Context carries everything a strategy may read on one step. The window is
// a prefix view ending at Time, the snapshot is a copy, and Cache holds
// whatever the strategy's last OnRebalance returned. Mutating Params or
// Cache does not affect the engine.
type Context struct {
	Window    *types.MarketWindow
	Positions types.PositionSnapshot
	Time      time.Time
	Params    types.Params
	Cache     types.Params
}

// Strategy is called once per grid timestamp. Returning an error aborts the
// run; returning a rejected-worthy order does not (the engine records a
// rejected fill and keeps stepping).
type Strategy interface {
	Name() string
	Step(ctx *Context) (types.Action, error)
}

// Rebalancer is an optional extension. The engine calls OnRebalance every
// Interval steps (and on the first step) and stores the returned cache,
// handing it back through Context.Cache on subsequent steps. Strategies use
// it for slow work such as pair selection.
type Rebalancer interface {
	RebalanceInterval() int
	OnRebalance(ctx *Context) (types.Params, error)
}

// Versioned strategies declare the minimum engine version they need. The
// engine refuses to run when its version is incompatible.
type Versioned interface {
	MinEngineVersion() string
}

// Func adapts a plain function into a Strategy.
type Func struct {
	name string
	fn   func(ctx *Context) (types.Action, error)
}

func NewFunc(name string, fn func(ctx *Context) (types.Action, error)) *Func {
	return &Func{name: name, fn: fn}
}

func (f *Func) Name() string {
	return f.name
}

func (f *Func) Step(ctx *Context) (types.Action, error) {
	return f.fn(ctx)
}
