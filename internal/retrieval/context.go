// Package retrieval owns the state one document collection needs to answer
// queries: its catalog, inverted index, derived statistics and ranker. A
// Context moves through Uninitialized, Loading and Ready exactly once per
// successful Init; everything it publishes is read-only, so any number of
// goroutines may score queries once Init has returned.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/indexer/catalog"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/stats"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/tracing"
)

type State int32

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// published is everything Init produces. It is never modified after it is
// stored.
type published struct {
	docsDir   string
	indexPath string
	catalog   *catalog.Catalog
	index     *index.Index
	stats     *stats.Statistics
	ranker    *ranker.Ranker
}

type Context struct {
	mu        sync.Mutex
	state     atomic.Int32
	loadingOf [2]string
	snap      atomic.Pointer[published]

	cfg     config.RetrievalConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Context)

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Context) { c.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns an uninitialized Context. cfg selects the IDF strategy,
// weighting, result limit and whether the id map snapshot is written.
func New(cfg config.RetrievalConfig, opts ...Option) *Context {
	c := &Context{
		cfg:    cfg,
		logger: slog.Default().With("component", "retrieval-context"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.setState(StateUninitialized)
	return c
}

func (c *Context) State() State {
	return State(c.state.Load())
}

func (c *Context) setState(s State) {
	c.state.Store(int32(s))
	if c.metrics != nil {
		c.metrics.ContextState.Set(float64(s))
	}
}

// Init catalogues docsDir and loads the index at indexPath. Calling Init again
// with the same inputs after it succeeded is a no-op; calling it with other
// inputs, or while another Init is loading, fails with ErrAlreadyInitialized.
// A failed Init leaves the Context uninitialized so it can be retried.
func (c *Context) Init(ctx context.Context, docsDir, indexPath string) error {
	c.mu.Lock()
	switch c.State() {
	case StateReady:
		snap := c.snap.Load()
		c.mu.Unlock()
		if snap.docsDir == docsDir && snap.indexPath == indexPath {
			c.logger.Debug("index already loaded, skipping", "index", indexPath)
			return nil
		}
		return fmt.Errorf("%w: loaded from %s and %s, asked for %s and %s",
			apperrors.ErrAlreadyInitialized, snap.docsDir, snap.indexPath, docsDir, indexPath)
	case StateLoading:
		inFlight := c.loadingOf
		c.mu.Unlock()
		return fmt.Errorf("%w: still loading %s and %s", apperrors.ErrAlreadyInitialized, inFlight[0], inFlight[1])
	}
	c.loadingOf = [2]string{docsDir, indexPath}
	c.setState(StateLoading)
	c.mu.Unlock()

	snap, err := c.load(ctx, docsDir, indexPath)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.setState(StateUninitialized)
		c.logger.Error("failed initializing retrieval context",
			"docs_dir", docsDir,
			"index", indexPath,
			"error", err,
		)
		return err
	}
	c.snap.Store(snap)
	c.setState(StateReady)
	return nil
}

func (c *Context) load(ctx context.Context, docsDir, indexPath string) (*published, error) {
	start := time.Now()
	ctx, span := tracing.Start(ctx, "retrieval.load")
	defer func() {
		span.End()
		span.Log(c.logger)
	}()
	idfStrategy, ok := stats.ParseIDF(c.cfg.IDF)
	if !ok {
		return nil, fmt.Errorf("%w: unknown idf strategy %q", apperrors.ErrInvalidInput, c.cfg.IDF)
	}
	weighting, ok := ranker.ParseWeighting(c.cfg.Weighting, c.cfg.K1, c.cfg.B)
	if !ok {
		return nil, fmt.Errorf("%w: unknown weighting %q", apperrors.ErrInvalidInput, c.cfg.Weighting)
	}

	catOpts := []catalog.Option{catalog.WithLogger(c.logger.With("stage", "catalog"))}
	if !c.cfg.WriteIDMap {
		catOpts = append(catOpts, catalog.WithoutIDMap())
	}
	_, catSpan := tracing.Start(ctx, "catalog")
	cat, err := catalog.Build(docsDir, catOpts...)
	catSpan.End()
	if err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}
	catSpan.SetAttr("documents", cat.Size())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, idxSpan := tracing.Start(ctx, "index")
	idx, err := index.LoadFile(indexPath)
	idxSpan.End()
	if err != nil {
		return nil, fmt.Errorf("reading unary index: %w", err)
	}
	idxSpan.SetAttr("terms", idx.TermCount())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, statsSpan := tracing.Start(ctx, "statistics")
	st := stats.New(idx, cat, stats.WithIDF(idfStrategy))
	statsSpan.End()
	rk := ranker.New(st, ranker.WithWeighting(weighting), ranker.WithLimit(c.cfg.Limit))

	if c.metrics != nil {
		c.metrics.DocumentsCatalogued.Set(float64(cat.Size()))
		c.metrics.IndexTerms.Set(float64(idx.TermCount()))
	}
	c.logger.Info("retrieval context ready",
		"documents", cat.Size(),
		"terms", idx.TermCount(),
		"idf", idfStrategy.Name(),
		"weighting", weighting.Name(),
		"took", time.Since(start).Round(time.Millisecond).String(),
	)
	return &published{
		docsDir:   docsDir,
		indexPath: indexPath,
		catalog:   cat,
		index:     idx,
		stats:     st,
		ranker:    rk,
	}, nil
}

func (c *Context) ready() (*published, error) {
	snap := c.snap.Load()
	if snap == nil || c.State() != StateReady {
		return nil, fmt.Errorf("%w: state is %s", apperrors.ErrNotReady, c.State())
	}
	return snap, nil
}

func (c *Context) Catalog() (*catalog.Catalog, error) {
	snap, err := c.ready()
	if err != nil {
		return nil, err
	}
	return snap.catalog, nil
}

func (c *Context) Index() (*index.Index, error) {
	snap, err := c.ready()
	if err != nil {
		return nil, err
	}
	return snap.index, nil
}

func (c *Context) Stats() (*stats.Statistics, error) {
	snap, err := c.ready()
	if err != nil {
		return nil, err
	}
	return snap.stats, nil
}

func (c *Context) Ranker() (*ranker.Ranker, error) {
	snap, err := c.ready()
	if err != nil {
		return nil, err
	}
	return snap.ranker, nil
}

// Score ranks q against the loaded collection.
func (c *Context) Score(q parser.Query) (ranker.RankedResult, error) {
	snap, err := c.ready()
	if err != nil {
		return ranker.RankedResult{}, err
	}
	return snap.ranker.Score(q), nil
}
