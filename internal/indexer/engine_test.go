package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/indexer/catalog"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpus(t *testing.T) (root, docs string) {
	t.Helper()
	root = t.TempDir()
	docs = filepath.Join(root, "corpus")
	require.NoError(t, os.MkdirAll(docs, 0755))
	files := map[string]string{
		"a.txt":     "cat sat mat\ncat\n",
		"b.txt":     "the dog\nran far away\n",
		"c.txt":     "",
		"notes.md":  "cat cat cat",
		"d.txt.bak": "dog",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(docs, name), []byte(body), 0644))
	}
	return root, docs
}

func TestRunWritesLoadableIndex(t *testing.T) {
	root, docs := writeCorpus(t)
	cfg := config.Default().Retrieval
	cfg.Workers = 2
	e := NewEngine(cfg, metrics.New(nil))

	for _, name := range []string{"unary_index.json", "unary_index.json.zst"} {
		t.Run(name, func(t *testing.T) {
			out := filepath.Join(root, "out", name)
			summary, err := e.Run(context.Background(), docs, out)
			require.NoError(t, err)
			assert.Equal(t, 3, summary.Documents)
			assert.Equal(t, 0, summary.Skipped)
			assert.Equal(t, 8, summary.Terms)

			idx, err := index.LoadFile(out)
			require.NoError(t, err)
			assert.Equal(t, 2, idx.TermFrequency("cat", 1))
			assert.Equal(t, 1, idx.TermFrequency("dog", 2))
			assert.Equal(t, 1, idx.DocumentFrequency("cat"))
			assert.False(t, idx.Contains("notes.md"))
		})
	}

	entries, err := catalog.ReadIDMap(filepath.Join(root, catalog.IDMapFileName))
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestBuildMatchesCatalogLengths(t *testing.T) {
	_, docs := writeCorpus(t)
	cfg := config.Default().Retrieval
	cfg.WriteIDMap = false

	cat, b, _, err := NewEngine(cfg, nil).Build(context.Background(), docs)
	require.NoError(t, err)
	idx, err := b.Build()
	require.NoError(t, err)

	for _, d := range cat.Documents() {
		total := 0
		for _, term := range idx.Terms() {
			total += idx.TermFrequency(term, d.ID)
		}
		assert.Equal(t, d.Length, total, d.Name)
	}
}

func TestBuildMissingDirectory(t *testing.T) {
	cfg := config.Default().Retrieval
	_, _, _, err := NewEngine(cfg, nil).Build(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrIOFailure)
}

func TestBuildCancelled(t *testing.T) {
	_, docs := writeCorpus(t)
	cfg := config.Default().Retrieval
	cfg.WriteIDMap = false
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, _, err := NewEngine(cfg, nil).Build(ctx, docs)
	assert.ErrorIs(t, err, context.Canceled)
}
