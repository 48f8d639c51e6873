// Package report renders ranked results as trec-style run lines and writes
// them to one or more sinks.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/ranker"
)

// Line is one ranked document of one query.
type Line struct {
	QueryID     int     `json:"query_id"`
	DocID       int     `json:"doc_id"`
	Rank        int     `json:"rank"`
	Score       float64 `json:"score"`
	SystemLabel string  `json:"system"`
}

// String renders "<queryId> Q0 <docId> <rank> <score> <systemLabel>".
func (l Line) String() string {
	return fmt.Sprintf("%d Q0 %d %d %s %s",
		l.QueryID, l.DocID, l.Rank, strconv.FormatFloat(l.Score, 'f', -1, 64), l.SystemLabel)
}

// Lines numbers the results of r from rank 1.
func Lines(r ranker.RankedResult, label string) []Line {
	lines := make([]Line, 0, len(r.Results))
	for i, doc := range r.Results {
		lines = append(lines, Line{
			QueryID:     r.QueryID,
			DocID:       doc.DocID,
			Rank:        i + 1,
			Score:       doc.Score,
			SystemLabel: label,
		})
	}
	return lines
}

// Format renders r as newline-terminated run lines.
func Format(r ranker.RankedResult, label string) string {
	var sb strings.Builder
	for _, l := range Lines(r, label) {
		sb.WriteString(l.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Write renders r to w.
func Write(w io.Writer, r ranker.RankedResult, label string) error {
	_, err := io.WriteString(w, Format(r, label))
	return err
}

// FileName is the per-query output file name "<label>_<queryId>.txt".
func FileName(label string, queryID int) string {
	return fmt.Sprintf("%s_%d.txt", label, queryID)
}
