// Package index holds the read-only inverted index: each distinct term maps
// to the documents it occurs in and how often. An Index is built once, either
// by loading a serialized snapshot or from a Builder, and never mutated.
package index

import (
	"fmt"
	"sort"

	apperrors "github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/errors"
)

type termData struct {
	postings PostingList
	byDoc    map[int]int
}

// Index is an immutable inverted index. It is safe for concurrent readers.
type Index struct {
	terms   []string
	entries map[string]*termData
	docs    map[int]struct{}
}

func newIndex() *Index {
	return &Index{
		entries: make(map[string]*termData),
		docs:    make(map[int]struct{}),
	}
}

// FromEntries builds an Index from term entries. Repeated postings for the same
// (term, document) are merged by summing their frequencies, so each document
// appears at most once per posting list.
func FromEntries(entries []TermEntry) (*Index, error) {
	idx := newIndex()
	for _, e := range entries {
		if err := idx.add(e); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

func (idx *Index) add(e TermEntry) error {
	td, ok := idx.entries[e.Term]
	if !ok {
		td = &termData{byDoc: make(map[int]int, len(e.InvertedList))}
		idx.entries[e.Term] = td
		idx.terms = append(idx.terms, e.Term)
	}
	for _, p := range e.InvertedList {
		if p.DocID <= 0 {
			return fmt.Errorf("term %q: %w: document id %d must be positive", e.Term, apperrors.ErrInvalidInput, p.DocID)
		}
		if p.TermFrequency < 0 {
			return fmt.Errorf("term %q: %w: negative frequency for document %d", e.Term, apperrors.ErrInvalidInput, p.DocID)
		}
		if i, seen := td.byDoc[p.DocID]; seen {
			td.postings[i].TermFrequency += p.TermFrequency
			continue
		}
		td.byDoc[p.DocID] = len(td.postings)
		td.postings = append(td.postings, p)
		idx.docs[p.DocID] = struct{}{}
	}
	return nil
}

// Postings returns the posting list for term in stored order, or an empty
// list for an unknown term. The returned slice must not be modified.
func (idx *Index) Postings(term string) PostingList {
	td, ok := idx.entries[term]
	if !ok {
		return PostingList{}
	}
	return td.postings
}

// DocumentFrequency is the number of distinct documents containing term.
func (idx *Index) DocumentFrequency(term string) int {
	td, ok := idx.entries[term]
	if !ok {
		return 0
	}
	return len(td.postings)
}

// TermFrequency is how often term occurs in document docID, 0 when it does not.
func (idx *Index) TermFrequency(term string, docID int) int {
	td, ok := idx.entries[term]
	if !ok {
		return 0
	}
	i, ok := td.byDoc[docID]
	if !ok {
		return 0
	}
	return td.postings[i].TermFrequency
}

// Contains reports whether term has any postings entry.
func (idx *Index) Contains(term string) bool {
	_, ok := idx.entries[term]
	return ok
}

// Terms returns every term in load order.
func (idx *Index) Terms() []string {
	out := make([]string, len(idx.terms))
	copy(out, idx.terms)
	return out
}

func (idx *Index) TermCount() int {
	return len(idx.terms)
}

// DocumentIDs returns the ids referenced by any posting, ascending.
func (idx *Index) DocumentIDs() []int {
	ids := make([]int, 0, len(idx.docs))
	for id := range idx.docs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Entries returns the index as term entries in load order, suitable for
// Write.
func (idx *Index) Entries() []TermEntry {
	out := make([]TermEntry, 0, len(idx.terms))
	for _, term := range idx.terms {
		postings := idx.entries[term].postings
		list := make(PostingList, len(postings))
		copy(list, postings)
		out = append(out, TermEntry{Term: term, InvertedList: list})
	}
	return out
}
