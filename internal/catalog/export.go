// Package catalog handles the tabular catalog surfaces: the canonical
// Goodreads-format export, the Identity Index built from it, and the
// converted-CSV reading used by the create pipeline.
package catalog

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/tzhuang/anobii-goodreads-sync/internal/models"
)

// ExportHeaders is the fixed column order of the canonical export.
var ExportHeaders = []string{
	"Title", "Author", "Additional Authors", "ISBN", "ISBN13", "My Rating",
	"Publisher", "Binding", "Number of Pages", "Year Published", "Date Read",
	"Date Added", "Bookshelves", "My Review", "Private Notes",
}

// RecordRow serializes a record into the canonical column order.
// Bookshelves stays a comma-joined column even though exactly one shelf is
// ever produced, matching the Goodreads import format.
func RecordRow(rec models.CatalogRecord) []string {
	return []string{
		rec.Title,
		rec.Author,
		rec.AdditionalAuthors,
		rec.ISBN10,
		rec.ISBN13,
		rec.Rating,
		rec.Publisher,
		rec.Binding,
		rec.NumberOfPages,
		rec.YearPublished,
		rec.DateRead,
		rec.DateAdded,
		string(rec.Shelf),
		rec.Review,
		rec.PrivateNotes,
	}
}

// WriteExport writes records to path in the canonical export format.
func WriteExport(path string, records []models.CatalogRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ExportHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(RecordRow(rec)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadRows reads a CSV file as raw rows, header included. Rows may have a
// varying number of fields.
func ReadRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

// WriteRows writes raw rows to a CSV file.
func WriteRows(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return w.Error()
}

// ReadMapped reads a CSV file into one map per row keyed by header name,
// mirroring a dict-reader. Every header gets a key even when the row is
// short, so column presence can be tested per file.
func ReadMapped(path string) ([]map[string]string, error) {
	rows, err := ReadRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		entry := make(map[string]string, len(header))
		for i, name := range header {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			entry[name] = value
		}
		out = append(out, entry)
	}
	return out, nil
}
