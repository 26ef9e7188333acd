package optimizer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tidemark-labs/tidemark/internal/metrics"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// WalkForwardOptions adds rolling-window sizes, in grid steps, to the search
// options applied inside each training window.
type WalkForwardOptions struct {
	Options

	TrainBars int
	TestBars  int
	StepBars  int
}

// WindowRecord is the outcome of one train/test window: the parameters found
// in-sample and how they held up out-of-sample.
type WindowRecord struct {
	TrainStart time.Time    `yaml:"train_start" json:"train_start"`
	TrainEnd   time.Time    `yaml:"train_end" json:"train_end"`
	TestStart  time.Time    `yaml:"test_start" json:"test_start"`
	TestEnd    time.Time    `yaml:"test_end" json:"test_end"`
	BestParams types.Params `yaml:"best_params" json:"best_params"`
	TrainValue float64      `yaml:"train_value" json:"train_value"`
	TestValue  float64      `yaml:"test_value" json:"test_value"`
	TestReturn float64      `yaml:"test_return" json:"test_return"`
}

// WalkForward rolls an optimize-then-test window across the data: optimize
// on TrainBars steps, evaluate the winner on the next TestBars steps, slide
// by StepBars, repeat. Windows that fail to optimize are skipped.
func (o *Optimizer) WalkForward(
	ctx context.Context,
	data types.MarketData,
	factory StrategyFactory,
	space ParamSpace,
	opts WalkForwardOptions,
) ([]WindowRecord, error) {
	if opts.TrainBars <= 0 || opts.TestBars <= 0 || opts.StepBars <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "walk-forward window sizes must be positive")
	}

	grid := types.BuildTimeGrid(data)
	if len(grid) < opts.TrainBars+opts.TestBars {
		return nil, errors.Newf(errors.ErrCodeDataAlignment,
			"walk-forward needs at least %d grid steps, have %d", opts.TrainBars+opts.TestBars, len(grid))
	}

	var records []WindowRecord
	for start := 0; start+opts.TrainBars+opts.TestBars <= len(grid); start += opts.StepBars {
		if ctx.Err() != nil {
			break
		}

		trainEnd := start + opts.TrainBars
		testEnd := trainEnd + opts.TestBars

		trainData := sliceData(data, grid[start], grid[trainEnd-1])
		testData := sliceData(data, grid[trainEnd], grid[testEnd-1])

		searched, err := o.Optimize(ctx, trainData, factory, space, opts.Options)
		if err != nil {
			o.log.Warn("walk-forward window failed to optimize",
				zap.Time("train_start", grid[start]),
				zap.Error(err),
			)

			continue
		}

		strat, err := factory(searched.BestParams)
		if err != nil {
			continue
		}
		testReport, err := o.engine.Run(testData, strat, opts.Engine, searched.BestParams, noCallback())
		if err != nil {
			o.log.Warn("walk-forward test run failed",
				zap.Time("test_start", grid[trainEnd]),
				zap.Error(err),
			)

			continue
		}

		testValue, err := metrics.Lookup(testReport.Metrics, opts.Metric)
		if err != nil {
			return nil, err
		}
		records = append(records, WindowRecord{
			TrainStart: grid[start],
			TrainEnd:   grid[trainEnd-1],
			TestStart:  grid[trainEnd],
			TestEnd:    grid[testEnd-1],
			BestParams: searched.BestParams,
			TrainValue: searched.BestValue,
			TestValue:  testValue,
			TestReturn: testReport.Metrics[metrics.MetricTotalReturn],
		})
	}

	return records, nil
}

// sliceData restricts every symbol's bars to [from, to] inclusive.
func sliceData(data types.MarketData, from, to time.Time) types.MarketData {
	sliced := make(types.MarketData, len(data))
	for symbol, bars := range data {
		var kept []types.Bar
		for _, bar := range bars {
			if bar.Time.Before(from) || bar.Time.After(to) {
				continue
			}
			kept = append(kept, bar)
		}
		if len(kept) > 0 {
			sliced[symbol] = kept
		}
	}

	return sliced
}
