// Package parser turns query-list lines into Query values.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/errors"
)

// Query is one free-text query. Text is kept raw; Terms splits it on
// whitespace.
type Query struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

func (q Query) Terms() []string {
	return tokenizer.Tokenize(q.Text)
}

// Parse reads "<id> <free text>" from line. The text is re-joined with
// single spaces.
func Parse(line string) (Query, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Query{}, fmt.Errorf("%w: empty query line", apperrors.ErrInvalidInput)
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return Query{}, fmt.Errorf("%w: query id %q is not an integer", apperrors.ErrInvalidInput, fields[0])
	}
	return Query{
		ID:   id,
		Text: strings.Join(fields[1:], " "),
	}, nil
}

// ParseAll reads one query per line from r. Blank lines are skipped.
func ParseAll(r io.Reader) ([]Query, error) {
	sc := bufio.NewScanner(r)
	queries := make([]Query, 0)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		q, err := Parse(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		queries = append(queries, q)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading queries: %w", err)
	}
	return queries, nil
}

// ParseFile reads the query list at path.
func ParseFile(path string) ([]Query, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.IOFailure("opening query file", path, err)
	}
	defer f.Close()
	queries, err := ParseAll(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return queries, nil
}
