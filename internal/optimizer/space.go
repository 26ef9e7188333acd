// Package optimizer searches a strategy's parameter space with sequential
// model-based optimization. Each trial is an independent backtest; the
// surrogate model decides where to look next based on the trials so far.
package optimizer

import (
	"math"
	"math/rand"
	"sort"

	"github.com/tidemark-labs/tidemark/pkg/errors"
)

type DomainKind string

const (
	KindUniform  DomainKind = "uniform"
	KindIntRange DomainKind = "int_range"
	KindChoice   DomainKind = "choice"
)

// Domain describes the values one parameter may take. Use the constructors;
// a zero Domain fails validation.
type Domain struct {
	Kind    DomainKind
	Low     float64
	High    float64
	Choices []any
}

// Uniform is a continuous range sampled uniformly in [low, high].
func Uniform(low, high float64) Domain {
	return Domain{Kind: KindUniform, Low: low, High: high}
}

// IntRange is an integer range sampled uniformly in [low, high].
func IntRange(low, high int) Domain {
	return Domain{Kind: KindIntRange, Low: float64(low), High: float64(high)}
}

// Choice is a finite set of values sampled uniformly.
func Choice(values ...any) Domain {
	return Domain{Kind: KindChoice, Choices: values}
}

func (d Domain) validate(name string) error {
	switch d.Kind {
	case KindUniform, KindIntRange:
		if d.Low >= d.High {
			return errors.Newf(errors.ErrCodeInvalidParamSpace,
				"parameter %s: low %v must be below high %v", name, d.Low, d.High)
		}
	case KindChoice:
		if len(d.Choices) == 0 {
			return errors.Newf(errors.ErrCodeInvalidParamSpace, "parameter %s: choice domain has no values", name)
		}
	default:
		return errors.Newf(errors.ErrCodeInvalidParamSpace, "parameter %s: unknown domain kind %q", name, d.Kind)
	}

	return nil
}

// Contains reports whether a concrete value lies in the domain. Used by
// tests and by FixedParams validation.
func (d Domain) Contains(value any) bool {
	switch d.Kind {
	case KindUniform:
		v, ok := asFloat(value)

		return ok && v >= d.Low && v <= d.High
	case KindIntRange:
		v, ok := value.(int)

		return ok && float64(v) >= d.Low && float64(v) <= d.High
	case KindChoice:
		for _, c := range d.Choices {
			if c == value {
				return true
			}
		}

		return false
	default:
		return false
	}
}

// Sample draws one value uniformly from the domain.
func (d Domain) Sample(rng *rand.Rand) any {
	return d.fromUnit(rng.Float64())
}

// toUnit maps a concrete value onto [0, 1] for the surrogate model.
func (d Domain) toUnit(value any) float64 {
	switch d.Kind {
	case KindUniform:
		v, _ := asFloat(value)

		return clampUnit((v - d.Low) / (d.High - d.Low))
	case KindIntRange:
		v, _ := asFloat(value)

		return clampUnit((v - d.Low) / (d.High - d.Low + 1))
	case KindChoice:
		for i, c := range d.Choices {
			if c == value {
				return (float64(i) + 0.5) / float64(len(d.Choices))
			}
		}

		return 0
	default:
		return 0
	}
}

// fromUnit maps a point in [0, 1) back to a concrete value.
func (d Domain) fromUnit(u float64) any {
	u = clampUnit(u)
	switch d.Kind {
	case KindUniform:
		return d.Low + u*(d.High-d.Low)
	case KindIntRange:
		v := d.Low + u*(d.High-d.Low+1)

		return int(math.Min(math.Floor(v), d.High))
	case KindChoice:
		i := int(u * float64(len(d.Choices)))
		if i >= len(d.Choices) {
			i = len(d.Choices) - 1
		}

		return d.Choices[i]
	default:
		return nil
	}
}

// ParamSpace names the searchable parameters and their domains.
type ParamSpace map[string]Domain

// Validate rejects malformed spaces before any trial runs.
func (s ParamSpace) Validate() error {
	if len(s) == 0 {
		return errors.New(errors.ErrCodeInvalidParamSpace, "parameter space is empty")
	}
	for _, name := range s.Names() {
		if err := s[name].validate(name); err != nil {
			return err
		}
	}

	return nil
}

// Names returns the parameter names in sorted order so every iteration over
// the space is deterministic.
func (s ParamSpace) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func clampUnit(u float64) float64 {
	if u < 0 {
		return 0
	}
	if u >= 1 {
		return math.Nextafter(1, 0)
	}

	return u
}
