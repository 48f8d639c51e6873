// Package indexer turns a directory of text documents into a catalog and
// a serialized inverted index that the retrieval context can load.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/indexer/catalog"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/tracing"
)

type Engine struct {
	cfg     config.RetrievalConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Summary describes one completed indexing run.
type Summary struct {
	Documents int
	Skipped   int
	Terms     int
	Took      time.Duration
}

// NewEngine creates an indexing engine. m may be nil.
func NewEngine(cfg config.RetrievalConfig, m *metrics.Metrics) *Engine {
	return &Engine{
		cfg:     cfg,
		metrics: m,
		logger:  slog.Default().With("component", "indexer"),
	}
}

// Build catalogues docsDir and indexes every catalogued document. Documents
// are tokenized by up to cfg.Workers goroutines and added to the index in id
// order, so the output does not depend on scheduling.
func (e *Engine) Build(ctx context.Context, docsDir string) (*catalog.Catalog, *index.Builder, Summary, error) {
	start := time.Now()
	ctx, span := tracing.Start(ctx, "indexer.build")
	defer func() {
		span.End()
		span.Log(e.logger)
	}()

	var opts []catalog.Option
	if !e.cfg.WriteIDMap {
		opts = append(opts, catalog.WithoutIDMap())
	}
	cat, err := catalog.Build(docsDir, opts...)
	if err != nil {
		return nil, nil, Summary{}, fmt.Errorf("building catalog: %w", err)
	}

	span.SetAttr("documents", cat.Size())

	_, tokSpan := tracing.Start(ctx, "tokenize")
	docs := cat.Documents()
	tokens := make([][]string, len(docs))
	failed := make([]bool, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	if e.cfg.Workers > 0 {
		g.SetLimit(e.cfg.Workers)
	}
	for i, d := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(docsDir, d.Name)
			toks, err := readTokens(path)
			if err != nil {
				e.logger.Error("skipping unreadable document", "doc_id", d.ID, "path", path, "error", err)
				failed[i] = true
				return nil
			}
			tokens[i] = toks
			return nil
		})
	}
	err = g.Wait()
	tokSpan.End()
	if err != nil {
		return nil, nil, Summary{}, err
	}

	b := index.NewBuilder()
	skipped := 0
	for i, d := range docs {
		if failed[i] {
			skipped++
			continue
		}
		b.AddTokens(d.ID, tokens[i])
	}

	summary := Summary{
		Documents: b.DocCount(),
		Skipped:   skipped,
		Terms:     b.TermCount(),
		Took:      time.Since(start),
	}
	if e.metrics != nil {
		e.metrics.DocumentsCatalogued.Set(float64(cat.Size()))
		e.metrics.IndexTerms.Set(float64(summary.Terms))
	}
	e.logger.Info("documents indexed",
		"dir", docsDir,
		"documents", summary.Documents,
		"skipped", summary.Skipped,
		"terms", summary.Terms,
		"duration_ms", summary.Took.Milliseconds(),
	)
	return cat, b, summary, nil
}

// Run builds the index for docsDir and writes it to indexPath.
func (e *Engine) Run(ctx context.Context, docsDir, indexPath string) (Summary, error) {
	_, b, summary, err := e.Build(ctx, docsDir)
	if err != nil {
		return Summary{}, err
	}
	if err := index.WriteFile(indexPath, b.Snapshot()); err != nil {
		return Summary{}, fmt.Errorf("writing unary index: %w", err)
	}
	e.logger.Info("index written", "path", indexPath, "terms", summary.Terms)
	return summary, nil
}

func readTokens(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var all []string
	_, err = tokenizer.Scan(f, func(line []string) {
		all = append(all, line...)
	})
	return all, err
}
