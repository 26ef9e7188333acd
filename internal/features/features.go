// Package features provides pure series functions used by the builtin
// strategies. Every function reads only the values it is given, so callers
// decide the window and no function can peek past the end of its input.
package features

import (
	"math"

	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// SMA returns the simple moving average of the last period values.
func SMA(series []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "sma period must be positive, got %d", period)
	}
	if len(series) < period {
		return 0, errors.NewInsufficientDataErrorf(period, len(series), "", "sma requires %d values, have %d", period, len(series))
	}

	sum := 0.0
	for _, v := range series[len(series)-period:] {
		sum += v
	}
	return sum / float64(period), nil
}

// EMA returns the exponential moving average of the series with smoothing
// factor 2/(period+1), seeded at the first value.
func EMA(series []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "ema period must be positive, got %d", period)
	}
	if len(series) < period {
		return 0, errors.NewInsufficientDataErrorf(period, len(series), "", "ema requires %d values, have %d", period, len(series))
	}

	alpha := 2.0 / (float64(period) + 1.0)
	ema := series[0]
	for _, v := range series[1:] {
		ema = alpha*v + (1-alpha)*ema
	}
	return ema, nil
}

// RSI returns the relative strength index over the last period deltas,
// using simple rolling means of gains and losses. A series with no losses
// in the window yields 100.
func RSI(series []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "rsi period must be positive, got %d", period)
	}
	if len(series) < period+1 {
		return 0, errors.NewInsufficientDataErrorf(period+1, len(series), "", "rsi requires %d values, have %d", period+1, len(series))
	}

	var gain, loss float64
	tail := series[len(series)-period-1:]
	for i := 1; i < len(tail); i++ {
		delta := tail[i] - tail[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	if loss == 0 {
		return 100, nil
	}
	rs := gain / loss
	return 100 - 100/(1+rs), nil
}

// ZScore returns how many sample standard deviations the last value sits
// from the mean of the last period values. A flat window scores zero.
func ZScore(series []float64, period int) (float64, error) {
	if period < 2 {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "zscore period must be at least 2, got %d", period)
	}
	if len(series) < period {
		return 0, errors.NewInsufficientDataErrorf(period, len(series), "", "zscore requires %d values, have %d", period, len(series))
	}

	window := series[len(series)-period:]
	mean := meanOf(window)
	std := math.Sqrt(sampleVariance(window, mean))
	if std == 0 {
		return 0, nil
	}
	return (window[len(window)-1] - mean) / std, nil
}

// RollingBeta returns the beta of series a relative to series b over the
// last period values, cov(a, b) / var(b).
func RollingBeta(a, b []float64, period int) (float64, error) {
	if period < 2 {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "beta period must be at least 2, got %d", period)
	}
	if len(a) < period || len(b) < period {
		n := len(a)
		if len(b) < n {
			n = len(b)
		}
		return 0, errors.NewInsufficientDataErrorf(period, n, "", "beta requires %d values, have %d", period, n)
	}

	wa := a[len(a)-period:]
	wb := b[len(b)-period:]
	meanA := meanOf(wa)
	meanB := meanOf(wb)

	var cov, varB float64
	for i := range wa {
		cov += (wa[i] - meanA) * (wb[i] - meanB)
		varB += (wb[i] - meanB) * (wb[i] - meanB)
	}
	if varB == 0 {
		return 0, nil
	}
	return cov / varB, nil
}

// HalfLife estimates the mean-reversion half-life of a spread series by
// regressing first differences on lagged levels. A non-reverting spread
// (non-negative slope) returns +Inf.
func HalfLife(spread []float64) (float64, error) {
	if len(spread) < 3 {
		return 0, errors.NewInsufficientDataErrorf(3, len(spread), "", "half-life requires at least 3 values, have %d", len(spread))
	}

	lag := spread[:len(spread)-1]
	diff := make([]float64, len(lag))
	for i := range lag {
		diff[i] = spread[i+1] - spread[i]
	}

	meanLag := meanOf(lag)
	meanDiff := meanOf(diff)
	var num, den float64
	for i := range lag {
		num += (lag[i] - meanLag) * (diff[i] - meanDiff)
		den += (lag[i] - meanLag) * (lag[i] - meanLag)
	}
	if den == 0 {
		return math.Inf(1), nil
	}
	slope := num / den
	if slope >= 0 {
		return math.Inf(1), nil
	}
	return -math.Ln2 / slope, nil
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sampleVariance(values []float64, mean float64) float64 {
	var sum float64
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return sum / float64(len(values)-1)
}
