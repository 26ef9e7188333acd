package costmodel

import (
	"math"

	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// SlippageModel names a slippage policy. Models are selected by name at
// configuration time; unknown names fail before the first simulation step.
type SlippageModel string

const (
	SlippageZero       SlippageModel = "zero"
	SlippageLinear     SlippageModel = "linear"
	SlippageSquareRoot SlippageModel = "square_root"
)

var AllSlippageModels = []any{
	SlippageZero,
	SlippageLinear,
	SlippageSquareRoot,
}

// Slippage computes the absolute adverse price adjustment for an order.
// The returned amount is non-negative; the cost model applies the sign
// (buys pay more, sells receive less).
type Slippage interface {
	// Adjust returns the price adjustment in quote currency for a fill of
	// the given size at the given reference price.
	Adjust(referencePrice, quantity float64) float64
}

// GetSlippageHandler returns the slippage implementation for a model name.
// Unknown model names are a configuration error, reported at run start
// rather than mid-run.
func GetSlippageHandler(model SlippageModel, bps float64) (Slippage, error) {
	switch model {
	case SlippageZero:
		return NewZeroSlippage(), nil
	case SlippageLinear:
		return NewLinearSlippage(bps), nil
	case SlippageSquareRoot:
		return NewSquareRootSlippage(bps), nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnknownSlippageModel, "unknown slippage model: %s", model)
	}
}

// ZeroSlippage fills at the reference price with no adjustment.
type ZeroSlippage struct{}

func NewZeroSlippage() *ZeroSlippage {
	return &ZeroSlippage{}
}

// Adjust implements Slippage.
func (z *ZeroSlippage) Adjust(referencePrice, quantity float64) float64 {
	return 0
}

// LinearSlippage scales a base adjustment of price * bps/10000 by order
// size, capped at 10x the base size. An approximation of adverse market
// impact, not a market simulation.
type LinearSlippage struct {
	bps float64
}

func NewLinearSlippage(bps float64) *LinearSlippage {
	return &LinearSlippage{bps: bps}
}

// Adjust implements Slippage.
func (l *LinearSlippage) Adjust(referencePrice, quantity float64) float64 {
	base := referencePrice * l.bps / 10000
	sizeFactor := math.Min(math.Abs(quantity), 10) / 10

	return base * sizeFactor
}

// SquareRootSlippage scales the base adjustment by sqrt(size), the
// classic square-root market impact law.
type SquareRootSlippage struct {
	bps float64
}

func NewSquareRootSlippage(bps float64) *SquareRootSlippage {
	return &SquareRootSlippage{bps: bps}
}

// Adjust implements Slippage.
func (s *SquareRootSlippage) Adjust(referencePrice, quantity float64) float64 {
	base := referencePrice * s.bps / 10000

	return base * math.Sqrt(math.Abs(quantity))
}
