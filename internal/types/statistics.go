package types

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Summary maps metric name to value, e.g. "sharpe_ratio" -> 1.7.
type Summary map[string]float64

// ResultsReport is the frozen outcome of one backtest run: the equity
// curve sampled at every bar, the append-only trade log, the final
// portfolio, and the computed summary statistics.
type ResultsReport struct {
	EquityCurve    []EquityPoint    `yaml:"equity_curve" json:"equity_curve"`
	Trades         []Fill           `yaml:"trades" json:"trades"`
	FinalPositions PositionSnapshot `yaml:"final_positions" json:"final_positions"`
	InitialCapital float64          `yaml:"initial_capital" json:"initial_capital"`
	FinalCapital   float64          `yaml:"final_capital" json:"final_capital"`
	FinalEquity    float64          `yaml:"final_equity" json:"final_equity"`
	Metrics        Summary          `yaml:"metrics" json:"metrics"`
}

// Summary returns the metric name to value mapping for this run.
func (r *ResultsReport) Summary() Summary {
	return r.Metrics
}

// String renders a human-readable block of the headline statistics.
func (r *ResultsReport) String() string {
	var b strings.Builder

	fmt.Fprintln(&b, "=== Backtest Results ===")
	fmt.Fprintf(&b, "Initial Capital: $%.2f\n", r.InitialCapital)
	fmt.Fprintf(&b, "Final Equity:    $%.2f\n", r.FinalEquity)
	fmt.Fprintf(&b, "Total Return:    %.2f%%\n", r.Metrics["total_return"]*100)
	fmt.Fprintf(&b, "Sharpe Ratio:    %.2f\n", r.Metrics["sharpe_ratio"])
	fmt.Fprintf(&b, "Max Drawdown:    %.2f%%\n", r.Metrics["max_drawdown"]*100)
	fmt.Fprintf(&b, "Win Rate:        %.2f%%\n", r.Metrics["win_rate"]*100)
	fmt.Fprintf(&b, "Number of Trades: %d\n", len(r.Trades))
	fmt.Fprint(&b, "========================")

	return b.String()
}

// summaryFile is the YAML shape written next to the state database; the
// full equity curve and trade log live in the database, not the YAML.
type summaryFile struct {
	InitialCapital float64          `yaml:"initial_capital"`
	FinalCapital   float64          `yaml:"final_capital"`
	FinalEquity    float64          `yaml:"final_equity"`
	NumTrades      int              `yaml:"num_trades"`
	FinalPositions PositionSnapshot `yaml:"final_positions"`
	Metrics        Summary          `yaml:"metrics"`
}

// WriteSummary writes the run's headline statistics to a YAML file.
func WriteSummary(path string, report *ResultsReport) error {
	out := summaryFile{
		InitialCapital: report.InitialCapital,
		FinalCapital:   report.FinalCapital,
		FinalEquity:    report.FinalEquity,
		NumTrades:      len(report.Trades),
		FinalPositions: report.FinalPositions,
		Metrics:        report.Metrics,
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal summary to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary to file: %w", err)
	}

	return nil
}
