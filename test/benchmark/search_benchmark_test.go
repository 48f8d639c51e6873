package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/ranker"
)

func queryOf(terms ...string) parser.Query {
	return parser.Query{ID: 1, Text: strings.Join(terms, " ")}
}

// BenchmarkQueryParse measures splitting query list lines.
func BenchmarkQueryParse(b *testing.B) {
	lines := []struct {
		name string
		line string
	}{
		{"short", "1 hurricane damage"},
		{"long", "42 term0001 term0002 term0003 term0004 term0005 term0006 term0007 term0008"},
		{"spaced", "7   portable    operating   systems  "},
	}
	for _, l := range lines {
		b.Run(l.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := parser.Parse(l.line); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkScore compares the weightings over a fixed collection.
func BenchmarkScore(b *testing.B) {
	c := buildCollection(b, 2000, 200)
	q := queryOf("term0003", "term0120", "term2500")
	weightings := []ranker.Weighting{
		ranker.ProductWeighting{},
		ranker.BM25Weighting{K1: ranker.DefaultK1, B: ranker.DefaultB},
	}
	for _, w := range weightings {
		rk := ranker.New(c.stats, ranker.WithWeighting(w))
		b.Run(w.Name(), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = rk.Score(q)
			}
		})
	}
}

// BenchmarkScoreMultiTerm grows the number of query terms.
func BenchmarkScoreMultiTerm(b *testing.B) {
	c := buildCollection(b, 2000, 200)
	rk := ranker.New(c.stats)
	for _, n := range []int{1, 3, 5, 10} {
		terms := make([]string, n)
		for i := range terms {
			terms[i] = vocabulary[i*37]
		}
		q := queryOf(terms...)
		b.Run(fmt.Sprintf("terms_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = rk.Score(q)
			}
		})
	}
}

// BenchmarkTopK compares a full sort with heap selection.
func BenchmarkTopK(b *testing.B) {
	c := buildCollection(b, 5000, 200)
	q := queryOf("term0001", "term0002", "term0010")
	for _, limit := range []int{0, 10, 100} {
		rk := ranker.New(c.stats, ranker.WithLimit(limit))
		b.Run(fmt.Sprintf("limit_%d", limit), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = rk.Score(q)
			}
		})
	}
}

// BenchmarkExecuteAll measures batch scoring with a worker pool.
func BenchmarkExecuteAll(b *testing.B) {
	c := buildCollection(b, 2000, 200)
	rk := ranker.New(c.stats)
	queries := make([]parser.Query, 50)
	for i := range queries {
		queries[i] = parser.Query{ID: i + 1, Text: vocabulary[i] + " " + vocabulary[i*7] + " " + vocabulary[i*31]}
	}
	for _, workers := range []int{1, 4, 8} {
		exec := executor.New(rk, workers, nil)
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := exec.ExecuteAll(context.Background(), queries); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
