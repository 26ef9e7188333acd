package strategy

import (
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// BuiltinName identifies a strategy shipped with the engine.
type BuiltinName string

const (
	BuiltinSMACrossover  BuiltinName = "sma_crossover"
	BuiltinMeanReversion BuiltinName = "mean_reversion"
)

var AllBuiltins = []any{
	BuiltinSMACrossover,
	BuiltinMeanReversion,
}

// GetBuiltinHandler returns the builtin strategy for a name. The symbol is
// only used by strategies that trade a single fixed symbol.
func GetBuiltinHandler(name BuiltinName, symbol string, commissionRate float64) (Strategy, error) {
	switch name {
	case BuiltinSMACrossover:
		return NewSMACrossover(symbol, commissionRate), nil
	case BuiltinMeanReversion:
		return NewMeanReversion(commissionRate), nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unknown strategy: %s", name)
	}
}
