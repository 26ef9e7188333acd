package datasource

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

// DuckDBLoader reads CSV or Parquet bar files through DuckDB, letting the
// database handle parsing and type inference. One loader handles many files;
// close it when done.
type DuckDBLoader struct {
	db  *sql.DB
	log *logger.Logger
	sq  squirrel.StatementBuilderType
}

func NewDuckDBLoader(log *logger.Logger) (*DuckDBLoader, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &DuckDBLoader{
		db:  db,
		log: log,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

func (l *DuckDBLoader) Close() error {
	return l.db.Close()
}

func (l *DuckDBLoader) Load(files map[string]string) (types.MarketData, error) {
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

func (l *DuckDBLoader) loadFile(symbol, path string) ([]types.Bar, error) {
	l.log.Debug("loading file via duckdb", zap.String("symbol", symbol), zap.String("path", path))

	query, args, err := l.sq.
		Select("time", "open", "high", "low", "close", "volume").
		From(readerFor(path)).
		OrderBy("time").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read %s", path)
	}
	defer rows.Close()

	var bars []types.Bar
	for rows.Next() {
		var bar types.Bar
		var ts time.Time
		if err := rows.Scan(&ts, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeParseFailed, err, "failed to scan row from %s", path)
		}
		bar.Time = ts.UTC()
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed while reading %s", path)
	}

	return sortBars(symbol, bars)
}

// readerFor picks the DuckDB table function by file extension; everything
// that is not parquet goes through the CSV sniffer.
func readerFor(path string) string {
	escaped := strings.ReplaceAll(path, "'", "''")
	if strings.HasSuffix(path, ".parquet") {
		return fmt.Sprintf("read_parquet('%s')", escaped)
	}

	return fmt.Sprintf("read_csv_auto('%s')", escaped)
}
