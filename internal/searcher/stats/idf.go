package stats

import "math"

// DefaultIDF is returned for terms that have no postings.
const DefaultIDF = 1.5

// IDFStrategy weights a term by its document frequency df within a
// collection of n documents.
type IDFStrategy interface {
	Name() string
	IDF(df, n int) float64
}

// InvertedIDF computes ln(df/n), which is non-positive for every indexed term.
type InvertedIDF struct{}

func (InvertedIDF) Name() string { return "inverted" }

func (InvertedIDF) IDF(df, n int) float64 {
	if df <= 0 || n <= 0 {
		return DefaultIDF
	}
	return math.Log(float64(df) / float64(n))
}

// ClassicIDF computes ln(n/df).
type ClassicIDF struct{}

func (ClassicIDF) Name() string { return "classic" }

func (ClassicIDF) IDF(df, n int) float64 {
	if df <= 0 || n <= 0 {
		return DefaultIDF
	}
	return math.Log(float64(n) / float64(df))
}

// OkapiIDF computes ln((n-df)/(df+0.5) + 1), the BM25 term weight.
type OkapiIDF struct{}

func (OkapiIDF) Name() string { return "okapi" }

func (OkapiIDF) IDF(df, n int) float64 {
	if df <= 0 || n <= 0 {
		return DefaultIDF
	}
	numerator := float64(n) - float64(df)
	denominator := float64(df) + 0.5
	return math.Log(numerator/denominator + 1)
}

// ParseIDF maps a configuration name to its strategy.
func ParseIDF(name string) (IDFStrategy, bool) {
	switch name {
	case "", "inverted":
		return InvertedIDF{}, true
	case "classic":
		return ClassicIDF{}, true
	case "okapi":
		return OkapiIDF{}, true
	}
	return nil, false
}
