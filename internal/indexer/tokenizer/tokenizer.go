// Package tokenizer splits text into terms for the retrieval engine. Terms
// are whitespace-delimited and compared exactly: no case folding, stemming or
// stop-word removal is applied.
package tokenizer

import (
	"bufio"
	"io"
	"strings"
)

// Tokenize returns the whitespace-delimited tokens of text in order.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// TermCount is one distinct term and how many times it occurred.
type TermCount struct {
	Term  string
	Count int
}

// Count groups tokens into distinct terms, keeping first-seen order.
func Count(tokens []string) []TermCount {
	pos := make(map[string]int, len(tokens))
	counts := make([]TermCount, 0, len(tokens))
	for _, tok := range tokens {
		if i, ok := pos[tok]; ok {
			counts[i].Count++
			continue
		}
		pos[tok] = len(counts)
		counts = append(counts, TermCount{Term: tok, Count: 1})
	}
	return counts
}

// Scan reads r line by line and calls fn with each non-empty line's tokens.
// Lines may be any length. It returns the total token count.
func Scan(r io.Reader, fn func(tokens []string)) (int, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	total := 0
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			tokens := strings.Fields(line)
			total += len(tokens)
			if fn != nil && len(tokens) > 0 {
				fn(tokens)
			}
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}
