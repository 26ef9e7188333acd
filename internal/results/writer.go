// Package results persists a completed run: a human-readable summary.yaml
// next to a DuckDB database holding the full trade log and equity curve for
// later SQL analysis.
package results

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/pkg/errors"
)

const (
	summaryFileName = "summary.yaml"
	stateFileName   = "state.db"
)

type Writer struct {
	log *logger.Logger
}

func NewWriter(log *logger.Logger) *Writer {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Writer{log: log}
}

// Write persists the report under folder/<runID>/ and returns the run
// directory. The run ID is fresh per call so repeated runs never overwrite
// each other; the report content itself stays deterministic.
func (w *Writer) Write(folder string, report *types.ResultsReport) (string, error) {
	runID := uuid.New().String()
	runDir := filepath.Join(folder, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", errors.Wrapf(errors.ErrCodeResultsWriteFailed, err, "failed to create run folder %s", runDir)
	}

	if err := types.WriteSummary(filepath.Join(runDir, summaryFileName), report); err != nil {
		return "", err
	}

	if err := w.writeState(filepath.Join(runDir, stateFileName), runID, report); err != nil {
		return "", err
	}

	w.log.Info("results written",
		zap.String("run_id", runID),
		zap.String("folder", runDir),
		zap.Int("trades", len(report.Trades)),
	)

	return runDir, nil
}

func (w *Writer) writeState(path, runID string, report *types.ResultsReport) error {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to open results database", err)
	}
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			run_id VARCHAR,
			symbol VARCHAR,
			side VARCHAR,
			quantity DOUBLE,
			price DOUBLE,
			commission DOUBLE,
			slippage DOUBLE,
			time TIMESTAMP,
			status VARCHAR,
			reason VARCHAR,
			closing BOOLEAN,
			pnl DOUBLE
		);
		CREATE TABLE IF NOT EXISTS equity (
			run_id VARCHAR,
			time TIMESTAMP,
			value DOUBLE
		);
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to create results tables", err)
	}

	sq := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	for _, fill := range report.Trades {
		query, args, err := sq.
			Insert("trades").
			Columns("run_id", "symbol", "side", "quantity", "price", "commission", "slippage", "time", "status", "reason", "closing", "pnl").
			Values(runID, fill.Symbol, string(fill.Side), fill.Quantity, fill.Price, fill.Commission, fill.Slippage, fill.Time, string(fill.Status), fill.Reason, fill.Closing, fill.PnL).
			ToSql()
		if err != nil {
			return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to build trade insert", err)
		}
		if _, err := db.Exec(query, args...); err != nil {
			return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to insert trade", err)
		}
	}

	for _, point := range report.EquityCurve {
		query, args, err := sq.
			Insert("equity").
			Columns("run_id", "time", "value").
			Values(runID, point.Time, point.Value).
			ToSql()
		if err != nil {
			return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to build equity insert", err)
		}
		if _, err := db.Exec(query, args...); err != nil {
			return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to insert equity point", err)
		}
	}

	return nil
}
