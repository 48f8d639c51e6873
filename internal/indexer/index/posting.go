package index

// Posting records how often a term occurs in one document.
type Posting struct {
	DocID         int `json:"docId"`
	TermFrequency int `json:"tf"`
}

type PostingList []Posting

// TermEntry is one element of the serialized index: a term and its postings.
type TermEntry struct {
	Term         string      `json:"term"`
	InvertedList PostingList `json:"invertedList"`
}
