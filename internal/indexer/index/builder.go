package index

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/indexer/tokenizer"
)

// Builder accumulates postings document by document. It is not safe for
// concurrent use; Build publishes an immutable Index.
type Builder struct {
	postings map[string]PostingList
	docCount int
}

func NewBuilder() *Builder {
	return &Builder{
		postings: make(map[string]PostingList),
	}
}

// AddTokens records the tokens of document docID. Calling it twice for the
// same document is not supported.
func (b *Builder) AddTokens(docID int, tokens []string) {
	for _, tc := range tokenizer.Count(tokens) {
		b.postings[tc.Term] = append(b.postings[tc.Term], Posting{
			DocID:         docID,
			TermFrequency: tc.Count,
		})
	}
	b.docCount++
}

// AddDocument tokenizes text and records it for docID.
func (b *Builder) AddDocument(docID int, text string) {
	b.AddTokens(docID, tokenizer.Tokenize(text))
}

func (b *Builder) DocCount() int {
	return b.docCount
}

func (b *Builder) TermCount() int {
	return len(b.postings)
}

// Snapshot returns the accumulated entries sorted by term, with postings
// sorted by document id.
func (b *Builder) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, len(b.postings))
	for term, list := range b.postings {
		postings := make(PostingList, len(list))
		copy(postings, list)
		sort.Slice(postings, func(i, j int) bool {
			return postings[i].DocID < postings[j].DocID
		})
		entries = append(entries, TermEntry{
			Term:         term,
			InvertedList: postings,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

// Build returns an immutable Index over everything added so far.
func (b *Builder) Build() (*Index, error) {
	return FromEntries(b.Snapshot())
}
