package catalog

import (
	"github.com/tzhuang/anobii-goodreads-sync/internal/normalize"
)

// Converted-CSV and Goodreads-export ISBN column positions.
const (
	convertedISBN10Col = 3
	convertedISBN13Col = 4
	exportISBN10Col    = 5
	exportISBN13Col    = 6
)

// FilterConverted keeps converted rows whose ISBNs are absent from the
// index. The header row always survives.
func FilterConverted(rows [][]string, ix *Index) [][]string {
	return filterRows(rows, ix, convertedISBN10Col, convertedISBN13Col, false)
}

// FilterExport keeps Goodreads export rows whose ISBNs are absent from the
// index, i.e. books only present on Goodreads. Export ISBN columns carry
// formula quoting, which is stripped before lookup.
func FilterExport(rows [][]string, ix *Index) [][]string {
	return filterRows(rows, ix, exportISBN10Col, exportISBN13Col, true)
}

func filterRows(rows [][]string, ix *Index, col10, col13 int, quoted bool) [][]string {
	var out [][]string
	for i, row := range rows {
		if i == 0 {
			out = append(out, row)
			continue
		}
		isbn10, isbn13 := "", ""
		if col10 < len(row) {
			isbn10 = row[col10]
		}
		if col13 < len(row) {
			isbn13 = row[col13]
		}
		if quoted {
			isbn10 = normalize.StripQuoting(isbn10)
			isbn13 = normalize.StripQuoting(isbn13)
		}
		if ix.Contains(isbn10) || ix.Contains(isbn13) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// IndexFromConverted builds an index from a converted CSV's ISBN columns,
// used by the reverse filter.
func IndexFromConverted(rows [][]string) *Index {
	ix := NewIndex()
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if convertedISBN10Col < len(row) {
			ix.Add(row[convertedISBN10Col])
		}
		if convertedISBN13Col < len(row) {
			ix.Add(row[convertedISBN13Col])
		}
	}
	return ix
}
