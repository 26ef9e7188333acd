// Package metrics computes summary statistics from an equity curve and a
// trade log. Summarize is a pure function of its inputs, which keeps reports
// reproducible run to run.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// Metric names as they appear in types.Summary and in optimizer configs.
const (
	MetricTotalReturn      = "total_return"
	MetricAnnualizedReturn = "annualized_return"
	MetricSharpeRatio      = "sharpe_ratio"
	MetricMaxDrawdown      = "max_drawdown"
	MetricWinRate          = "win_rate"
	MetricAvgTradePnL      = "avg_trade_pnl"
	MetricProfitFactor     = "profit_factor"
	MetricNumTrades        = "num_trades"
	MetricTotalCommission  = "total_commission"
)

// AllMetrics lists every name Summarize produces.
var AllMetrics = []string{
	MetricTotalReturn,
	MetricAnnualizedReturn,
	MetricSharpeRatio,
	MetricMaxDrawdown,
	MetricWinRate,
	MetricAvgTradePnL,
	MetricProfitFactor,
	MetricNumTrades,
	MetricTotalCommission,
}

const hoursPerYear = 24 * 365.25

// Summarize computes the full metric set. Degenerate inputs produce zeros
// rather than NaNs: an empty curve yields zero returns, a tradeless run
// yields zero trade statistics.
func Summarize(curve []types.EquityPoint, trades []types.Fill, initialCapital float64) types.Summary {
	summary := types.Summary{}

	summary[MetricTotalReturn] = totalReturn(curve, initialCapital)
	summary[MetricAnnualizedReturn] = annualizedReturn(curve, initialCapital)
	summary[MetricSharpeRatio] = sharpeRatio(curve)
	summary[MetricMaxDrawdown] = maxDrawdown(curve)

	wins, losses, grossProfit, grossLoss, pnlSum, closed := 0, 0, 0.0, 0.0, 0.0, 0
	commission := 0.0
	filled := 0
	for _, fill := range trades {
		if fill.Rejected() {
			continue
		}
		filled++
		commission += fill.Commission
		if !fill.Closing {
			continue
		}
		closed++
		pnlSum += fill.PnL
		if fill.PnL > 0 {
			wins++
			grossProfit += fill.PnL
		} else if fill.PnL < 0 {
			losses++
			grossLoss += -fill.PnL
		}
	}

	summary[MetricNumTrades] = float64(filled)
	summary[MetricTotalCommission] = commission
	if closed > 0 {
		summary[MetricWinRate] = float64(wins) / float64(closed)
		summary[MetricAvgTradePnL] = pnlSum / float64(closed)
	} else {
		summary[MetricWinRate] = 0
		summary[MetricAvgTradePnL] = 0
	}
	switch {
	case grossLoss > 0:
		summary[MetricProfitFactor] = grossProfit / grossLoss
	case grossProfit > 0:
		summary[MetricProfitFactor] = math.Inf(1)
	default:
		summary[MetricProfitFactor] = 0
	}

	return summary
}

// Lookup reads one metric by name, failing with a typed error on names
// Summarize never produces. Optimizer configs go through this so a typo in
// the objective fails fast instead of optimizing a constant zero.
func Lookup(summary types.Summary, name string) (float64, error) {
	known := false
	for _, metric := range AllMetrics {
		if metric == name {
			known = true

			break
		}
	}
	if !known {
		return 0, errors.Newf(errors.ErrCodeUnknownMetric, "unknown metric %q", name)
	}

	return summary[name], nil
}

func totalReturn(curve []types.EquityPoint, initialCapital float64) float64 {
	if len(curve) == 0 || initialCapital <= 0 {
		return 0
	}

	return (curve[len(curve)-1].Value - initialCapital) / initialCapital
}

// annualizedReturn compounds the total return over the elapsed span of the
// curve, measured in median-bar-gap years.
func annualizedReturn(curve []types.EquityPoint, initialCapital float64) float64 {
	if len(curve) < 2 || initialCapital <= 0 {
		return 0
	}

	growth := curve[len(curve)-1].Value / initialCapital
	if growth <= 0 {
		return -1
	}

	span := curve[len(curve)-1].Time.Sub(curve[0].Time)
	years := span.Hours() / hoursPerYear
	if years <= 0 {
		return 0
	}

	return math.Pow(growth, 1/years) - 1
}

// sharpeRatio annualizes per-bar returns using the median inter-bar gap, so
// hourly and daily data both scale correctly without a frequency knob.
func sharpeRatio(curve []types.EquityPoint) float64 {
	returns := barReturns(curve)
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}

	gap := medianGap(curve)
	if gap <= 0 {
		return 0
	}
	periodsPerYear := (hoursPerYear * float64(time.Hour)) / float64(gap)

	return mean / std * math.Sqrt(periodsPerYear)
}

// maxDrawdown returns the largest peak-to-trough decline as a positive
// fraction; a monotonically rising curve scores zero.
func maxDrawdown(curve []types.EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}

	peak := curve[0].Value
	worst := 0.0
	for _, point := range curve {
		if point.Value > peak {
			peak = point.Value
		}
		if peak > 0 {
			dd := (peak - point.Value) / peak
			if dd > worst {
				worst = dd
			}
		}
	}

	return worst
}

func barReturns(curve []types.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Value
		if prev == 0 {
			continue
		}
		returns = append(returns, (curve[i].Value-prev)/prev)
	}

	return returns
}

func medianGap(curve []types.EquityPoint) time.Duration {
	if len(curve) < 2 {
		return 0
	}

	gaps := make([]time.Duration, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		gaps = append(gaps, curve[i].Time.Sub(curve[i-1].Time))
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i] < gaps[j] })

	return gaps[len(gaps)/2]
}
