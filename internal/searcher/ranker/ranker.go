// Package ranker scores catalogued documents against a query and orders them.
package ranker

import (
	"log/slog"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/stats"
)

type ScoredDoc struct {
	DocID int     `json:"doc_id"`
	Score float64 `json:"score"`
}

// RankedResult is the ordered outcome of one query: score descending, ties by
// document id ascending.
type RankedResult struct {
	QueryID int         `json:"query_id"`
	Results []ScoredDoc `json:"results"`
}

// Ranker is read-only after New and safe for concurrent Score calls.
type Ranker struct {
	stats     *stats.Statistics
	weighting Weighting
	limit     int
	logger    *slog.Logger
}

type Option func(*Ranker)

func WithWeighting(w Weighting) Option {
	return func(r *Ranker) {
		if w != nil {
			r.weighting = w
		}
	}
}

// WithLimit keeps only the best n documents per query; 0 keeps all.
func WithLimit(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.limit = n
		}
	}
}

func New(st *stats.Statistics, opts ...Option) *Ranker {
	r := &Ranker{
		stats:     st,
		weighting: ProductWeighting{},
		logger:    slog.Default().With("component", "ranker"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Ranker) Weighting() Weighting {
	return r.weighting
}

// QueryTerms returns the distinct terms of q in first-seen order with their
// in-query frequency and weight.
func (r *Ranker) QueryTerms(q parser.Query) []TermStats {
	counts := tokenizer.Count(q.Terms())
	terms := make([]TermStats, 0, len(counts))
	for _, tc := range counts {
		terms = append(terms, TermStats{
			Term:           tc.Term,
			QueryFrequency: tc.Count,
			IDF:            r.stats.IDF(tc.Term),
		})
	}
	return terms
}

// Score ranks every document that appears in the postings of at least one
// query term. An empty query, or one made only of unknown terms, yields an
// empty result.
func (r *Ranker) Score(q parser.Query) RankedResult {
	terms := r.QueryTerms(q)
	idx := r.stats.Index()
	avgLength, _ := r.stats.AverageDocumentLength()

	scores := make(map[int]float64)
	for _, t := range terms {
		for _, posting := range idx.Postings(t.Term) {
			length, _ := r.stats.DocumentLength(posting.DocID)
			scores[posting.DocID] += r.weighting.Weight(t, DocStats{
				DocID:         posting.DocID,
				TermFrequency: posting.TermFrequency,
				Length:        length,
				AvgLength:     avgLength,
			})
		}
	}

	var ranked []ScoredDoc
	if r.limit > 0 && len(scores) > r.limit {
		ranked = topK(scores, r.limit)
	} else {
		ranked = make([]ScoredDoc, 0, len(scores))
		for docID, score := range scores {
			ranked = append(ranked, ScoredDoc{DocID: docID, Score: score})
		}
		sort.Slice(ranked, func(i, j int) bool {
			return better(ranked[i], ranked[j])
		})
	}
	r.logger.Debug("query scored",
		"query_id", q.ID,
		"terms", len(terms),
		"candidates", len(scores),
		"returned", len(ranked),
	)
	return RankedResult{QueryID: q.ID, Results: ranked}
}

// better reports whether a ranks ahead of b.
func better(a, b ScoredDoc) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.DocID < b.DocID
}
