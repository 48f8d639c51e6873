package benchmark

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/indexer/catalog"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/stats"
)

var vocabulary = func() []string {
	words := make([]string, 5000)
	for i := range words {
		words[i] = fmt.Sprintf("term%04d", i)
	}
	return words
}()

// syntheticText draws words with a skewed distribution so low ids behave
// like stop words and high ids are rare.
func syntheticText(r *rand.Rand, n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			if i%12 == 0 {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(' ')
			}
		}
		w := int(float64(len(vocabulary)) * r.Float64() * r.Float64())
		sb.WriteString(vocabulary[w])
	}
	return sb.String()
}

type collection struct {
	catalog *catalog.Catalog
	index   *index.Index
	stats   *stats.Statistics
	texts   []string
}

func buildCollection(tb testing.TB, numDocs, docLen int) collection {
	tb.Helper()
	r := rand.New(rand.NewPCG(42, uint64(numDocs)))
	b := index.NewBuilder()
	docs := make([]catalog.Document, numDocs)
	texts := make([]string, numDocs)
	for i := range docs {
		n := docLen/2 + r.IntN(docLen)
		texts[i] = syntheticText(r, n)
		docs[i] = catalog.Document{ID: i + 1, Name: fmt.Sprintf("doc%05d.txt", i+1), Length: n}
		b.AddDocument(i+1, texts[i])
	}
	cat, err := catalog.New(docs)
	if err != nil {
		tb.Fatalf("catalog: %v", err)
	}
	idx, err := b.Build()
	if err != nil {
		tb.Fatalf("index: %v", err)
	}
	return collection{catalog: cat, index: idx, stats: stats.New(idx, cat), texts: texts}
}
