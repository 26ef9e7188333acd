package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tidemark-labs/tidemark/internal/datasource"
	"github.com/tidemark-labs/tidemark/internal/engine"
	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/results"
	"github.com/tidemark-labs/tidemark/internal/strategy"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/internal/version"
)

// runConfig is the YAML file cmd/backtest consumes: engine settings, the
// strategy to run, and where the per-symbol bar files live.
type runConfig struct {
	Engine   engine.Config `yaml:"engine"`
	Strategy struct {
		Name   strategy.BuiltinName `yaml:"name"`
		Symbol string               `yaml:"symbol"`
		Params types.Params         `yaml:"params"`
	} `yaml:"strategy"`
	Data          map[string]string `yaml:"data"`
	ResultsFolder string            `yaml:"results_folder"`
}

func loadRunConfig(path string) (*runConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &runConfig{Engine: engine.DefaultConfig()}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.ResultsFolder == "" {
		cfg.ResultsFolder = "./results"
	}

	return cfg, nil
}

func loaderFor(useDuckDB bool, log *logger.Logger) (datasource.Loader, func(), error) {
	if useDuckDB {
		loader, err := datasource.NewDuckDBLoader(log)
		if err != nil {
			return nil, nil, err
		}

		return loader, func() { loader.Close() }, nil
	}

	return datasource.NewCSVLoader(log), func() {}, nil
}

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("schema") {
		cfg := engine.DefaultConfig()
		schema, err := cfg.GenerateSchemaJSON()
		if err != nil {
			return err
		}
		fmt.Println(schema)

		return nil
	}

	log, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := loadRunConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	loader, closeLoader, err := loaderFor(cmd.Bool("duckdb"), log)
	if err != nil {
		return err
	}
	defer closeLoader()

	data, err := loader.Load(cfg.Data)
	if err != nil {
		return err
	}

	strat, err := strategy.GetBuiltinHandler(cfg.Strategy.Name, cfg.Strategy.Symbol, cfg.Engine.CommissionRate)
	if err != nil {
		return err
	}

	log.Info("running backtest",
		zap.String("strategy", strat.Name()),
		zap.Int("symbols", len(data)),
	)

	var bar *progressbar.ProgressBar
	onStep := engine.OnStepCallback(func(step, total int, ts time.Time) {
		if bar == nil {
			bar = progressbar.Default(int64(total))
		}
		bar.Add(1)
	})

	report, err := engine.New(log).Run(data, strat, cfg.Engine, cfg.Strategy.Params, optional.Some(onStep))
	if err != nil {
		return err
	}

	runDir, err := results.NewWriter(log).Write(cfg.ResultsFolder, report)
	if err != nil {
		return err
	}

	fmt.Println(report.String())
	fmt.Printf("results written to %s\n", runDir)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "backtest",
		Usage:   "Run one historical simulation from a YAML config",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the run config YAML",
				Value:   "./config/backtest.yaml",
			},
			&cli.BoolFlag{
				Name:  "duckdb",
				Usage: "Load bar files through DuckDB instead of the CSV reader",
			},
			&cli.BoolFlag{
				Name:  "schema",
				Usage: "Print the engine config JSON schema and exit",
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
