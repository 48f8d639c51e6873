package retrieval

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/indexer/catalog"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	root      string
	docsDir   string
	indexPath string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	docsDir := filepath.Join(root, "corpus")
	require.NoError(t, os.MkdirAll(docsDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "a.txt"), []byte("cat sat mat\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "b.txt"), []byte("the dog\nran far away\n"), 0644))

	indexPath := filepath.Join(root, "unary_index.json")
	require.NoError(t, os.WriteFile(indexPath, []byte(`[
		{"term": "cat", "invertedList": [{"docId": 1, "tf": 2}]}
	]`), 0644))
	return fixture{root: root, docsDir: docsDir, indexPath: indexPath}
}

func testConfig() config.RetrievalConfig {
	cfg := config.Default().Retrieval
	return cfg
}

func TestInitAndScoreScenario(t *testing.T) {
	fx := newFixture(t)
	rc := New(testConfig(), WithMetrics(metrics.New(nil)))
	assert.Equal(t, StateUninitialized, rc.State())

	require.NoError(t, rc.Init(context.Background(), fx.docsDir, fx.indexPath))
	assert.Equal(t, StateReady, rc.State())

	cat, err := rc.Catalog()
	require.NoError(t, err)
	assert.Equal(t, []catalog.Document{
		{ID: 1, Name: "a.txt", Length: 3},
		{ID: 2, Name: "b.txt", Length: 5},
	}, cat.Documents())

	entries, err := catalog.ReadIDMap(filepath.Join(fx.root, catalog.IDMapFileName))
	require.NoError(t, err)
	assert.Equal(t, cat.IDMap(), entries)

	result, err := rc.Score(parser.Query{ID: 7, Text: "cat cat dog"})
	require.NoError(t, err)
	assert.Equal(t, 7, result.QueryID)
	require.Len(t, result.Results, 1)
	assert.Equal(t, 1, result.Results[0].DocID)
	assert.InDelta(t, 4*math.Log(0.5), result.Results[0].Score, 1e-12)
}

func TestInitIsIdempotentForSameInputs(t *testing.T) {
	fx := newFixture(t)
	rc := New(testConfig())
	require.NoError(t, rc.Init(context.Background(), fx.docsDir, fx.indexPath))

	idx, err := rc.Index()
	require.NoError(t, err)
	before := idx.Entries()

	require.NoError(t, rc.Init(context.Background(), fx.docsDir, fx.indexPath))
	again, err := rc.Index()
	require.NoError(t, err)
	assert.Same(t, idx, again)
	assert.Equal(t, before, again.Entries())
}

func TestInitRejectsDifferentInputs(t *testing.T) {
	fx := newFixture(t)
	other := newFixture(t)
	rc := New(testConfig())
	require.NoError(t, rc.Init(context.Background(), fx.docsDir, fx.indexPath))

	err := rc.Init(context.Background(), other.docsDir, other.indexPath)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyInitialized))
	assert.Equal(t, StateReady, rc.State())
}

func TestInitFailuresNamePathAndAllowRetry(t *testing.T) {
	fx := newFixture(t)
	rc := New(testConfig())

	missingDocs := filepath.Join(fx.root, "nope")
	err := rc.Init(context.Background(), missingDocs, fx.indexPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrIOFailure))
	assert.Contains(t, err.Error(), missingDocs)
	assert.Equal(t, StateUninitialized, rc.State())

	missingIndex := filepath.Join(fx.root, "nope.json")
	err = rc.Init(context.Background(), fx.docsDir, missingIndex)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrIOFailure))
	assert.Contains(t, err.Error(), missingIndex)
	assert.Equal(t, StateUninitialized, rc.State())

	require.NoError(t, rc.Init(context.Background(), fx.docsDir, fx.indexPath))
	assert.Equal(t, StateReady, rc.State())
}

func TestAccessorsBeforeReady(t *testing.T) {
	rc := New(testConfig())

	_, err := rc.Catalog()
	assert.True(t, errors.Is(err, apperrors.ErrNotReady))
	_, err = rc.Index()
	assert.True(t, errors.Is(err, apperrors.ErrNotReady))
	_, err = rc.Stats()
	assert.True(t, errors.Is(err, apperrors.ErrNotReady))
	_, err = rc.Ranker()
	assert.True(t, errors.Is(err, apperrors.ErrNotReady))
	_, err = rc.Score(parser.Query{ID: 1, Text: "cat"})
	assert.True(t, errors.Is(err, apperrors.ErrNotReady))
}

func TestInitRejectsUnknownStrategy(t *testing.T) {
	fx := newFixture(t)
	cfg := testConfig()
	cfg.IDF = "bogus"
	err := New(cfg).Init(context.Background(), fx.docsDir, fx.indexPath)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestInitCancelled(t *testing.T) {
	fx := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rc := New(testConfig())
	assert.ErrorIs(t, rc.Init(ctx, fx.docsDir, fx.indexPath), context.Canceled)
	assert.Equal(t, StateUninitialized, rc.State())
}

func TestConcurrentScoringAfterInit(t *testing.T) {
	fx := newFixture(t)
	rc := New(testConfig())
	require.NoError(t, rc.Init(context.Background(), fx.docsDir, fx.indexPath))

	want, err := rc.Score(parser.Query{ID: 1, Text: "cat dog"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := rc.Score(parser.Query{ID: 1, Text: "cat dog"})
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "ready", StateReady.String())
}
