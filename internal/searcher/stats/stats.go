// Package stats derives collection-wide statistics from a loaded index and
// catalog: collection size, document lengths, term weights and each
// document's term-frequency list. Everything is computed once in New and is
// read-only afterwards.
package stats

import (
	"log/slog"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/indexer/catalog"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/indexer/index"
)

// TermFrequency is one term of a document and its count there.
type TermFrequency struct {
	Term      string `json:"term"`
	Frequency int    `json:"tf"`
}

// Statistics is a read-only view over an index and its catalog.
type Statistics struct {
	idx       *index.Index
	cat       *catalog.Catalog
	idf       IDFStrategy
	docTerms  map[int][]TermFrequency
	avgLength float64
	avgErr    error
}

// Option configures New.
type Option func(*Statistics)

// WithIDF replaces the default InvertedIDF strategy.
func WithIDF(s IDFStrategy) Option {
	return func(st *Statistics) {
		if s != nil {
			st.idf = s
		}
	}
}

// New inverts idx into per-document term lists and caches the average
// document length of cat.
func New(idx *index.Index, cat *catalog.Catalog, opts ...Option) *Statistics {
	s := &Statistics{
		idx: idx,
		cat: cat,
		idf: InvertedIDF{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.docTerms = invert(idx)
	s.avgLength, s.avgErr = cat.AverageLength()

	logger := slog.Default().With("component", "collection-stats")
	for docID := range s.docTerms {
		if !cat.Contains(docID) {
			logger.Warn("posting references uncatalogued document", "doc_id", docID)
		}
	}
	logger.Info("collection statistics computed",
		"documents", cat.Size(),
		"terms", idx.TermCount(),
		"documents_with_terms", len(s.docTerms),
		"idf", s.idf.Name(),
	)
	return s
}

func invert(idx *index.Index) map[int][]TermFrequency {
	docTerms := make(map[int][]TermFrequency)
	for _, term := range idx.Terms() {
		for _, p := range idx.Postings(term) {
			docTerms[p.DocID] = append(docTerms[p.DocID], TermFrequency{
				Term:      term,
				Frequency: p.TermFrequency,
			})
		}
	}
	for _, list := range docTerms {
		SortTermFrequencies(list)
	}
	return docTerms
}

// SortTermFrequencies orders list by frequency ascending, then term ascending.
func SortTermFrequencies(list []TermFrequency) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Frequency != list[j].Frequency {
			return list[i].Frequency < list[j].Frequency
		}
		return list[i].Term < list[j].Term
	})
}

// PerDocumentTermFrequencies returns the terms of docID ordered by
// SortTermFrequencies, or an empty list for a document with no postings.
func (s *Statistics) PerDocumentTermFrequencies(docID int) []TermFrequency {
	list := s.docTerms[docID]
	out := make([]TermFrequency, len(list))
	copy(out, list)
	return out
}

// CollectionSize is the number of catalogued documents.
func (s *Statistics) CollectionSize() int {
	return s.cat.Size()
}

// AverageDocumentLength fails with ErrEmptyCollection for an empty catalog.
func (s *Statistics) AverageDocumentLength() (float64, error) {
	return s.avgLength, s.avgErr
}

func (s *Statistics) DocumentLength(docID int) (int, error) {
	return s.cat.Length(docID)
}

// IDF weights term with the configured strategy; terms without postings get
// DefaultIDF.
func (s *Statistics) IDF(term string) float64 {
	return s.idf.IDF(s.idx.DocumentFrequency(term), s.CollectionSize())
}

func (s *Statistics) IDFStrategy() IDFStrategy {
	return s.idf
}

func (s *Statistics) Index() *index.Index {
	return s.idx
}

func (s *Statistics) Catalog() *catalog.Catalog {
	return s.cat
}
