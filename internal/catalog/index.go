package catalog

import (
	"github.com/tzhuang/anobii-goodreads-sync/internal/normalize"
)

// Index is the fast-lookup set of ISBNs already present in the target
// catalog. Membership is O(1); target catalogs can reach tens of thousands
// of entries.
type Index struct {
	isbns map[string]struct{}
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{isbns: make(map[string]struct{})}
}

// Add inserts a non-empty ISBN into the index.
func (ix *Index) Add(isbn string) {
	if isbn != "" {
		ix.isbns[isbn] = struct{}{}
	}
}

// Contains reports whether the ISBN is present.
func (ix *Index) Contains(isbn string) bool {
	_, ok := ix.isbns[isbn]
	return ok
}

// Len returns the number of distinct ISBNs in the index.
func (ix *Index) Len() int {
	return len(ix.isbns)
}

// LoadIndex builds the index from a Goodreads export. Both the ISBN and
// ISBN13 columns are read; formula quoting is stripped before insertion.
func LoadIndex(path string) (*Index, error) {
	entries, err := ReadMapped(path)
	if err != nil {
		return nil, err
	}

	ix := NewIndex()
	for _, entry := range entries {
		for _, column := range []string{"ISBN", "ISBN13"} {
			ix.Add(normalize.StripQuoting(entry[column]))
		}
	}
	return ix, nil
}
