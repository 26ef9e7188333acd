package results

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/stretchr/testify/suite"

	"github.com/tidemark-labs/tidemark/internal/types"
)

type WriterTestSuite struct {
	suite.Suite

	writer *Writer
	folder string
}

func TestWriterSuite(t *testing.T) {
	suite.Run(t, new(WriterTestSuite))
}

func (suite *WriterTestSuite) SetupTest() {
	suite.writer = NewWriter(nil)
	suite.folder = suite.T().TempDir()
}

func sampleReport() *types.ResultsReport {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	return &types.ResultsReport{
		EquityCurve: []types.EquityPoint{
			{Time: t0, Value: 1000},
			{Time: t0.Add(time.Hour), Value: 1003},
		},
		Trades: []types.Fill{
			{Symbol: "BTC/USDT", Side: types.SideBuy, Quantity: 1, Price: 100, Time: t0, Status: types.FillStatusFilled, Reason: types.OrderReasonStrategy},
			{Symbol: "BTC/USDT", Side: types.SideSell, Quantity: 1, Price: 103, Time: t0.Add(time.Hour), Status: types.FillStatusFilled, Reason: types.OrderReasonStrategy, Closing: true, PnL: 3},
		},
		FinalPositions: types.PositionSnapshot{Cash: 1003, Positions: map[string]float64{}},
		InitialCapital: 1000,
		FinalCapital:   1003,
		FinalEquity:    1003,
		Metrics:        types.Summary{"total_return": 0.003},
	}
}

func (suite *WriterTestSuite) TestWrite() {
	runDir, err := suite.writer.Write(suite.folder, sampleReport())
	suite.Require().NoError(err)

	_, err = os.Stat(filepath.Join(runDir, summaryFileName))
	suite.NoError(err)

	db, err := sql.Open("duckdb", filepath.Join(runDir, stateFileName))
	suite.Require().NoError(err)
	defer db.Close()

	var trades int
	suite.Require().NoError(db.QueryRow("SELECT COUNT(*) FROM trades").Scan(&trades))
	suite.Equal(2, trades)

	var equity int
	suite.Require().NoError(db.QueryRow("SELECT COUNT(*) FROM equity").Scan(&equity))
	suite.Equal(2, equity)

	var pnl float64
	suite.Require().NoError(db.QueryRow("SELECT pnl FROM trades WHERE closing").Scan(&pnl))
	suite.InDelta(3.0, pnl, 1e-9)
}

func (suite *WriterTestSuite) TestDistinctRunFolders() {
	first, err := suite.writer.Write(suite.folder, sampleReport())
	suite.Require().NoError(err)
	second, err := suite.writer.Write(suite.folder, sampleReport())
	suite.Require().NoError(err)

	suite.NotEqual(first, second)
}
