package datasource

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// CSVLoader reads bar files with a time,open,high,low,close,volume header,
// the layout cmd/fetch produces. Timestamps are RFC 3339.
type CSVLoader struct {
	log *logger.Logger
}

func NewCSVLoader(log *logger.Logger) *CSVLoader {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &CSVLoader{log: log}
}

func (l *CSVLoader) Load(files map[string]string) (types.MarketData, error) {
	data := make(types.MarketData, len(files))
	for symbol, path := range files {
		bars, err := l.loadFile(symbol, path)
		if err != nil {
			return nil, err
		}
		data[symbol] = bars
	}

	return data, nil
}

func (l *CSVLoader) loadFile(symbol, path string) ([]types.Bar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to open %s", path)
	}
	defer file.Close()

	l.log.Debug("loading csv", zap.String("symbol", symbol), zap.String("path", path))

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeParseFailed, err, "failed to read header of %s", path)
	}

	cols, err := columnIndex(header, path)
	if err != nil {
		return nil, err
	}

	var bars []types.Bar
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeParseFailed, err, "failed to read %s line %d", path, line)
		}

		bar, err := parseBar(record, cols, path, line)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}

	return sortBars(symbol, bars)
}

type barColumns struct {
	time, open, high, low, close, volume int
}

func columnIndex(header []string, path string) (barColumns, error) {
	cols := barColumns{time: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, name := range header {
		switch name {
		case "time":
			cols.time = i
		case "open":
			cols.open = i
		case "high":
			cols.high = i
		case "low":
			cols.low = i
		case "close":
			cols.close = i
		case "volume":
			cols.volume = i
		}
	}

	if cols.time < 0 || cols.open < 0 || cols.high < 0 || cols.low < 0 || cols.close < 0 || cols.volume < 0 {
		return cols, errors.Newf(errors.ErrCodeParseFailed,
			"%s is missing required columns (need time, open, high, low, close, volume)", path)
	}

	return cols, nil
}

func parseBar(record []string, cols barColumns, path string, line int) (types.Bar, error) {
	ts, err := time.Parse(time.RFC3339, record[cols.time])
	if err != nil {
		return types.Bar{}, errors.Wrapf(errors.ErrCodeParseFailed, err, "%s line %d: bad timestamp", path, line)
	}

	fields := [5]float64{}
	for i, idx := range []int{cols.open, cols.high, cols.low, cols.close, cols.volume} {
		v, err := strconv.ParseFloat(record[idx], 64)
		if err != nil {
			return types.Bar{}, errors.Wrapf(errors.ErrCodeParseFailed, err, "%s line %d: bad number %q", path, line, record[idx])
		}
		fields[i] = v
	}

	return types.Bar{
		Time:   ts,
		Open:   fields[0],
		High:   fields[1],
		Low:    fields[2],
		Close:  fields[3],
		Volume: fields[4],
	}, nil
}
