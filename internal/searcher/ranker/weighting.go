package ranker

import "strings"

const (
	DefaultK1 = 1.2
	DefaultB  = 0.75
)

// TermStats describes one distinct query term.
type TermStats struct {
	Term           string
	QueryFrequency int
	IDF            float64
}

// DocStats describes one candidate document for one query term.
type DocStats struct {
	DocID         int
	TermFrequency int
	Length        int
	AvgLength     float64
}

// Weighting combines term and document statistics into one term's
// contribution to a document score. Contributions are summed per document.
type Weighting interface {
	Name() string
	Weight(t TermStats, d DocStats) float64
}

// ProductWeighting scores qtf * tf * idf.
type ProductWeighting struct{}

func (ProductWeighting) Name() string { return "product" }

func (ProductWeighting) Weight(t TermStats, d DocStats) float64 {
	return float64(t.QueryFrequency) * float64(d.TermFrequency) * t.IDF
}

// BM25Weighting scores qtf * idf * tf(k1+1) / (tf + k1(1-b+b*len/avglen)).
type BM25Weighting struct {
	K1 float64
	B  float64
}

func (BM25Weighting) Name() string { return "bm25" }

func (w BM25Weighting) Weight(t TermStats, d DocStats) float64 {
	return float64(t.QueryFrequency) * t.IDF * computeTFNorm(
		float64(d.TermFrequency),
		float64(d.Length),
		d.AvgLength,
		w.K1,
		w.B,
	)
}

func computeTFNorm(termFreq, docLength, avgDocLength, k1, b float64) float64 {
	if avgDocLength == 0 {
		return 0
	}
	lengthRatio := docLength / avgDocLength
	denominator := termFreq + k1*(1-b+b*lengthRatio)
	if denominator == 0 {
		return 0
	}
	return (termFreq * (k1 + 1)) / denominator
}

// ParseWeighting maps a configuration name to a Weighting. k1 and b apply to
// bm25 only.
func ParseWeighting(name string, k1, b float64) (Weighting, bool) {
	switch strings.ToLower(name) {
	case "", "product":
		return ProductWeighting{}, true
	case "bm25":
		return BM25Weighting{K1: k1, B: b}, true
	}
	return nil, false
}
