package benchmark

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/indexer/tokenizer"
)

func BenchmarkTokenize(b *testing.B) {
	r := rand.New(rand.NewPCG(1, 2))
	for _, n := range []int{10, 100, 1000} {
		text := syntheticText(r, n)
		b.Run(fmt.Sprintf("tokens_%d", n), func(b *testing.B) {
			b.SetBytes(int64(len(text)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = tokenizer.Tokenize(text)
			}
		})
	}
}

func BenchmarkCount(b *testing.B) {
	r := rand.New(rand.NewPCG(3, 4))
	tokens := tokenizer.Tokenize(syntheticText(r, 1000))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tokenizer.Count(tokens)
	}
}

func BenchmarkScan(b *testing.B) {
	r := rand.New(rand.NewPCG(5, 6))
	text := syntheticText(r, 5000)

	b.SetBytes(int64(len(text)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tokenizer.Scan(strings.NewReader(text), nil); err != nil {
			b.Fatal(err)
		}
	}
}
