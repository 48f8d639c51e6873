package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/report"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/retrieval"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/resilience"
)

func main() {
	flags := pflag.NewFlagSet("retriever", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "configs/development.yaml", "path to config file")
	docsDir := flags.String("docs", "", "document directory (overrides retrieval.docsDir)")
	indexFile := flags.String("index", "", "unary index file (overrides retrieval.indexFile)")
	queryFile := flags.StringP("queries", "q", "", "query list file (overrides retrieval.queryFile)")
	outputDir := flags.StringP("output", "o", "", "result directory (overrides retrieval.outputDir)")
	label := flags.String("label", "", "system label written on every result line")
	limit := flags.Int("limit", -1, "keep only the top N documents per query; 0 keeps all")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	applyFlag(&cfg.Retrieval.DocsDir, *docsDir)
	applyFlag(&cfg.Retrieval.IndexFile, *indexFile)
	applyFlag(&cfg.Retrieval.QueryFile, *queryFile)
	applyFlag(&cfg.Retrieval.OutputDir, *outputDir)
	applyFlag(&cfg.Retrieval.SystemLabel, *label)
	if *limit >= 0 {
		cfg.Retrieval.Limit = *limit
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if err := run(cfg); err != nil {
		slog.Error("retrieval run failed", "error", err)
		os.Exit(1)
	}
}

func applyFlag(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(nil)
	if cfg.Metrics.Enabled {
		shutdown := m.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(shutdownCtx)
		}()
	}

	rc := retrieval.New(cfg.Retrieval, retrieval.WithMetrics(m))
	if err := rc.Init(ctx, cfg.Retrieval.DocsDir, cfg.Retrieval.IndexFile); err != nil {
		return fmt.Errorf("initializing retrieval context: %w", err)
	}
	rk, err := rc.Ranker()
	if err != nil {
		return err
	}

	queries, err := parser.ParseFile(cfg.Retrieval.QueryFile)
	if err != nil {
		return fmt.Errorf("reading queries: %w", err)
	}
	slog.Info("queries loaded", "file", cfg.Retrieval.QueryFile, "count", len(queries))

	exec := executor.New(rk, cfg.Retrieval.Workers, m)
	results, err := exec.ExecuteAll(ctx, queries)
	if err != nil {
		return fmt.Errorf("scoring queries: %w", err)
	}

	sink, closeSinks, err := buildSinks(ctx, cfg, m)
	if err != nil {
		return err
	}
	defer closeSinks()

	if err := sink.Write(ctx, cfg.Retrieval.SystemLabel, results); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	slog.Info("retrieval run complete",
		"queries", len(results),
		"label", cfg.Retrieval.SystemLabel,
		"output_dir", cfg.Retrieval.OutputDir,
	)
	return nil
}

func buildSinks(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (report.Sink, func(), error) {
	var sinks []report.Sink
	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				slog.Warn("closing result sink", "error", err)
			}
		}
	}

	if cfg.Sinks.File {
		sinks = append(sinks, report.NewFileSink(cfg.Retrieval.OutputDir))
	}
	if cfg.Sinks.Postgres {
		client, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		closers = append(closers, client.Close)
		pg := report.NewPostgresSink(client)
		if err := pg.EnsureSchema(ctx); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("preparing results table: %w", err)
		}
		sinks = append(sinks, pg)
	}
	if cfg.Sinks.Kafka {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.ResultsTopic)
		closers = append(closers, producer.Close)
		sinks = append(sinks, report.NewKafkaSink(producer))
	}
	if len(sinks) == 0 {
		closeAll()
		return nil, nil, fmt.Errorf("no result sinks enabled")
	}
	return report.NewMultiSink(resilience.DefaultRetryConfig(), m, sinks...), closeAll, nil
}
