package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/metrics"
)

func main() {
	flags := pflag.NewFlagSet("indexer", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "configs/development.yaml", "path to config file")
	docsDir := flags.String("docs", "", "document directory (overrides retrieval.docsDir)")
	indexFile := flags.StringP("output", "o", "", "index file to write; a .zst suffix compresses (overrides retrieval.indexFile)")
	noIDMap := flags.Bool("no-id-map", false, "skip writing docId_Map.json")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *docsDir != "" {
		cfg.Retrieval.DocsDir = *docsDir
	}
	if *indexFile != "" {
		cfg.Retrieval.IndexFile = *indexFile
	}
	if *noIDMap {
		cfg.Retrieval.WriteIDMap = false
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting indexer",
		"docs_dir", cfg.Retrieval.DocsDir,
		"index_file", cfg.Retrieval.IndexFile,
		"workers", cfg.Retrieval.Workers,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := indexer.NewEngine(cfg.Retrieval, metrics.New(nil))
	summary, err := engine.Run(ctx, cfg.Retrieval.DocsDir, cfg.Retrieval.IndexFile)
	if err != nil {
		slog.Error("indexing failed", "error", err)
		os.Exit(1)
	}

	slog.Info("indexer finished",
		"documents", summary.Documents,
		"skipped", summary.Skipped,
		"terms", summary.Terms,
		"duration", summary.Took,
	)
}
