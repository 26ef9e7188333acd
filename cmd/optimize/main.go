package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tidemark-labs/tidemark/internal/datasource"
	"github.com/tidemark-labs/tidemark/internal/engine"
	"github.com/tidemark-labs/tidemark/internal/logger"
	"github.com/tidemark-labs/tidemark/internal/optimizer"
	"github.com/tidemark-labs/tidemark/internal/results"
	"github.com/tidemark-labs/tidemark/internal/strategy"
	"github.com/tidemark-labs/tidemark/internal/types"
	"github.com/tidemark-labs/tidemark/internal/version"
)

// searchConfig is the YAML file cmd/optimize consumes. Domains use the
// lowercase field names of optimizer.Domain, e.g.
//
//	space:
//	  short_period: {kind: int_range, low: 2, high: 20}
//	  position_frac: {kind: uniform, low: 0.1, high: 1.0}
type searchConfig struct {
	Engine   engine.Config `yaml:"engine"`
	Strategy struct {
		Name   strategy.BuiltinName `yaml:"name"`
		Symbol string               `yaml:"symbol"`
	} `yaml:"strategy"`
	Data   map[string]string `yaml:"data"`
	Search struct {
		Metric      string               `yaml:"metric"`
		NTrials     int                  `yaml:"n_trials"`
		Seed        int64                `yaml:"seed"`
		Timeout     time.Duration        `yaml:"timeout"`
		Space       optimizer.ParamSpace `yaml:"space"`
		FixedParams types.Params         `yaml:"fixed_params"`
	} `yaml:"search"`
	ResultsFolder string `yaml:"results_folder"`
}

func loadSearchConfig(path string) (*searchConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &searchConfig{Engine: engine.DefaultConfig()}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.ResultsFolder == "" {
		cfg.ResultsFolder = "./results"
	}

	return cfg, nil
}

func optimizeAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := loadSearchConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	loader := datasource.NewCSVLoader(log)
	data, err := loader.Load(cfg.Data)
	if err != nil {
		return err
	}

	factory := func(params types.Params) (strategy.Strategy, error) {
		return strategy.GetBuiltinHandler(cfg.Strategy.Name, cfg.Strategy.Symbol, cfg.Engine.CommissionRate)
	}

	if cfg.Search.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Search.Timeout)
		defer cancel()
	}

	log.Info("starting parameter search",
		zap.String("strategy", string(cfg.Strategy.Name)),
		zap.String("metric", cfg.Search.Metric),
		zap.Int("n_trials", cfg.Search.NTrials),
	)

	result, err := optimizer.New(log).Optimize(ctx, data, factory, cfg.Search.Space, optimizer.Options{
		Metric:      cfg.Search.Metric,
		NTrials:     cfg.Search.NTrials,
		Seed:        cfg.Search.Seed,
		Engine:      cfg.Engine,
		FixedParams: cfg.Search.FixedParams,
	})
	if err != nil {
		return err
	}

	runDir, err := results.NewWriter(log).Write(cfg.ResultsFolder, result.FinalResults)
	if err != nil {
		return err
	}

	best, err := yaml.Marshal(result.BestParams)
	if err != nil {
		return err
	}

	fmt.Printf("best %s: %v\n", cfg.Search.Metric, result.BestValue)
	fmt.Printf("best params:\n%s", string(best))
	fmt.Println(result.FinalResults.String())
	fmt.Printf("results written to %s\n", runDir)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "optimize",
		Usage:   "Search a strategy's parameter space from a YAML config",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the search config YAML",
				Value:   "./config/optimize.yaml",
			},
		},
		Action: optimizeAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
