package types

// Params is one immutable-per-run parameter set handed to a strategy.
// Values are scalars: float64, int, bool, or string. The optimizer passes
// each trial its own copy, so mutations never leak across trials.
type Params map[string]any

// Clone creates a deep copy of the parameter set.
func (p Params) Clone() Params {
	clone := make(Params, len(p))
	for k, v := range p {
		clone[k] = v
	}

	return clone
}

// Merge returns a new set with entries from other overriding entries in p.
func (p Params) Merge(other Params) Params {
	merged := p.Clone()
	for k, v := range other {
		merged[k] = v
	}

	return merged
}

// Float reads a numeric parameter, accepting both float64 and int values,
// and returns def when the key is absent or not numeric.
func (p Params) Float(name string, def float64) float64 {
	switch v := p[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return def
	}
}

// Int reads an integer parameter, truncating float64 values, and returns
// def when the key is absent or not numeric.
func (p Params) Int(name string, def int) int {
	switch v := p[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}

// String reads a string parameter, returning def when absent.
func (p Params) String(name, def string) string {
	if v, ok := p[name].(string); ok {
		return v
	}

	return def
}

// Bool reads a boolean parameter, returning def when absent.
func (p Params) Bool(name string, def bool) bool {
	if v, ok := p[name].(bool); ok {
		return v
	}

	return def
}
