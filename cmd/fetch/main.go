package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/tidemark-labs/tidemark/internal/version"
)

const klineBatchLimit = 1000

// fetchAction downloads OHLCV klines from Binance and writes them as the
// CSV layout the backtest and optimize commands read.
func fetchAction(ctx context.Context, cmd *cli.Command) error {
	symbol := strings.ReplaceAll(cmd.String("symbol"), "/", "")
	interval := cmd.String("interval")
	start := cmd.Timestamp("start")
	end := cmd.Timestamp("end")
	outPath := cmd.String("out")

	client := binance.NewClient("", "")

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	if err := writer.Write([]string{"time", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(fmt.Sprintf("Fetching %s %s", symbol, interval)),
		progressbar.OptionShowCount(),
	)

	total := 0
	cursor := start
	for cursor.Before(end) {
		klines, err := client.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			StartTime(cursor.UnixMilli()).
			EndTime(end.UnixMilli()).
			Limit(klineBatchLimit).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch klines for %s: %w", symbol, err)
		}
		if len(klines) == 0 {
			break
		}

		for _, k := range klines {
			ts := time.UnixMilli(k.OpenTime).UTC()
			record := []string{
				ts.Format(time.RFC3339),
				k.Open,
				k.High,
				k.Low,
				k.Close,
				k.Volume,
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}

		total += len(klines)
		bar.Add(len(klines))
		cursor = time.UnixMilli(klines[len(klines)-1].CloseTime + 1).UTC()
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("\nwrote %d bars to %s\n", total, outPath)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "fetch",
		Usage:   "Download OHLCV bars from Binance into a CSV file",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"s"},
				Usage:    "Trading pair, e.g. BTC/USDT or BTCUSDT",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Kline interval, e.g. 1m, 1h, 1d",
				Value:   "1h",
			},
			&cli.TimestampFlag{
				Name:     "start",
				Usage:    "Start date in `YYYY-MM-DD` format",
				Required: true,
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.TimestampFlag{
				Name:  "end",
				Usage: "End date in `YYYY-MM-DD` format. Defaults to now.",
				Value: time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output CSV path",
				Value:   "./data/bars.csv",
			},
		},
		Action: fetchAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
