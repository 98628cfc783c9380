package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"token-holder-lab/internal/classify"
	"token-holder-lab/internal/config"
	"token-holder-lab/internal/pipeline"
	"token-holder-lab/internal/providers/holders"
	chstore "token-holder-lab/internal/storage/clickhouse"
	"token-holder-lab/internal/storage/memory"
	pgstore "token-holder-lab/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML analysis config")
	useFixtures := flag.Bool("use-fixtures", false, "Use the built-in demo holder set instead of the holders API")
	outputDir := flag.String("output-dir", "", "Output directory (overrides config)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (overrides config)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (overrides config)")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	params, cfg, err := buildParams(*configPath, *useFixtures, *outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var source pipeline.HolderSource
	if *useFixtures {
		source = pipeline.FixtureSource{}
	} else {
		if cfg == nil || cfg.HoldersAPIURL == "" {
			fmt.Fprintln(os.Stderr, "Error: holders_api_url is required when not using fixtures")
			fmt.Fprintln(os.Stderr, "Use --use-fixtures to run with demo data instead")
			os.Exit(1)
		}
		source = holders.NewClient(cfg.HoldersAPIURL, holders.WithAPIKey(cfg.HoldersAPIKey))
	}

	classifier := classify.New()
	if cfg != nil {
		types := make(map[string]struct{}, len(cfg.ExchangeTypes))
		for _, t := range cfg.ExchangeTypes {
			types[t] = struct{}{}
		}
		classifier = classify.New(
			classify.LockedAddressRule(),
			classify.BurnAddressRule(),
			classify.EntityTypeRule(types),
			classify.LabelHeuristicRule(classify.DefaultExchangeKeywords()),
			classify.LabelHeuristicRule(classify.DefaultExchangeBrands()),
		)
	}

	runner := pipeline.NewRunner(source, classifier, log)

	pgDSN := *postgresDSN
	chDSN := *clickhouseDSN
	if cfg != nil {
		if pgDSN == "" {
			pgDSN = cfg.PostgresDSN
		}
		if chDSN == "" {
			chDSN = cfg.ClickhouseDSN
		}
	}

	if pgDSN != "" {
		pool, err := pgstore.NewPool(ctx, pgDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to PostgreSQL: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()
		runner = runner.WithSnapshotStore(pgstore.NewHolderSnapshotStore(pool))
	} else {
		runner = runner.WithSnapshotStore(memory.NewHolderSnapshotStore())
	}

	if chDSN != "" {
		conn, err := chstore.NewConn(ctx, chDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to ClickHouse: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()
		runner = runner.WithTimeseriesStore(chstore.NewConcentrationTimeseriesStore(conn))
	} else {
		runner = runner.WithTimeseriesStore(memory.NewConcentrationTimeseriesStore())
	}

	result, err := runner.Run(ctx, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running analysis: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Analysis complete:")
	fmt.Printf("  snapshot: %s\n", result.SnapshotID)
	fmt.Printf("  holders ranked: %d, flagged: %d, HHI: %.2f\n",
		result.Report.HolderCount, result.Report.FlaggedCount, result.Report.HHI)
	for _, cut := range result.Report.TopN {
		fmt.Printf("  top-%d share: %.2f%%\n", cut.N, cut.CumulativeSharePct)
	}
	fmt.Printf("  reports in %s: %s, %s, %s\n",
		params.OutputDir, pipeline.HolderCSVFile, pipeline.FilteredCSVFile, pipeline.ReportMDFile)
}

// buildParams resolves run parameters from the config file, falling back to
// the fixture token when running without one.
func buildParams(configPath string, useFixtures bool, outputDir string) (pipeline.Params, *config.Config, error) {
	if configPath == "" {
		if !useFixtures {
			return pipeline.Params{}, nil, fmt.Errorf("--config is required when not using fixtures")
		}
		params := pipeline.Params{
			Token:          pipeline.FixtureToken,
			Chain:          pipeline.FixtureChain,
			Supply:         pipeline.FixtureSupplyContext(),
			TopNCuts:       config.DefaultTopNCuts,
			WhaleThreshold: config.DefaultWhaleThreshold,
			OutputDir:      outputDir,
		}
		if params.OutputDir == "" {
			params.OutputDir = "."
		}
		return params, nil, nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return pipeline.Params{}, nil, err
	}

	params := pipeline.Params{
		Token:          cfg.Token,
		Chain:          cfg.ChainID(),
		Supply:         cfg.SupplyContext(),
		TopNCuts:       cfg.TopNCuts,
		WhaleThreshold: cfg.WhaleThreshold,
		OutputDir:      cfg.OutputDir,
	}
	if outputDir != "" {
		params.OutputDir = outputDir
	}
	return params, cfg, nil
}
