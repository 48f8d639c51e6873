// Package executor scores batches of queries against a ranker.
package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Scorer is satisfied by *ranker.Ranker.
type Scorer interface {
	Score(q parser.Query) ranker.RankedResult
}

type Executor struct {
	scorer  Scorer
	workers int
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New returns an Executor running at most workers queries at once. m may be
// nil.
func New(scorer Scorer, workers int, m *metrics.Metrics) *Executor {
	if workers <= 0 {
		workers = 1
	}
	return &Executor{
		scorer:  scorer,
		workers: workers,
		metrics: m,
		logger:  slog.Default().With("component", "query-executor"),
	}
}

// Execute scores a single query and records metrics.
func (e *Executor) Execute(q parser.Query) ranker.RankedResult {
	start := time.Now()
	result := e.scorer.Score(q)
	if e.metrics != nil {
		e.metrics.ObserveQuery(len(result.Results), time.Since(start))
	}
	return result
}

// ExecuteAll scores queries concurrently. The scorer only reads published
// state, so queries share it without locking. Results keep the input order.
func (e *Executor) ExecuteAll(ctx context.Context, queries []parser.Query) ([]ranker.RankedResult, error) {
	results := make([]ranker.RankedResult, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, q := range queries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.Execute(q)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.logger.Info("queries executed", "queries", len(queries), "workers", e.workers)
	return results, nil
}
