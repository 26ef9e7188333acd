// Package datasource loads OHLCV market data into the in-memory form the
// engine consumes. Two loaders are provided: a plain CSV loader for the
// files cmd/fetch writes, and a DuckDB loader that can pull from CSV or
// Parquet files through SQL.
package datasource

import (
	"sort"

	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// Loader maps symbols to file paths and produces engine-ready market data.
type Loader interface {
	// Load reads every listed file. Bars come back sorted by time per
	// symbol; an empty or unreadable file is an error.
	Load(files map[string]string) (types.MarketData, error)
}

// sortBars orders bars by timestamp and rejects empty series, which would
// otherwise surface later as an alignment error with less context.
func sortBars(symbol string, bars []types.Bar) ([]types.Bar, error) {
	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeNoData, "no bars loaded for symbol %s", symbol)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	return bars, nil
}
