package catalog

import (
	"strconv"
	"strings"

	"github.com/tzhuang/anobii-goodreads-sync/internal/models"
)

// ReadConverted parses a converted export back into create candidates for
// the reconciliation pipeline.
func ReadConverted(path string) ([]models.CreateCandidate, error) {
	entries, err := ReadMapped(path)
	if err != nil {
		return nil, err
	}

	out := make([]models.CreateCandidate, 0, len(entries))
	for _, entry := range entries {
		c := models.CreateCandidate{
			Title:         entry["Title"],
			Author:        entry["Author"],
			ISBN10:        entry["ISBN"],
			ISBN13:        entry["ISBN13"],
			Publisher:     entry["Publisher"],
			NumberOfPages: entry["Number of Pages"],
		}
		c.PubYear, c.PubMonth, c.PubDay = splitPublicationDate(entry["Year Published"])
		out = append(out, c)
	}
	return out, nil
}

// splitPublicationDate splits a hyphenated date string into its components.
// The year must be exactly 4 digits; month and day must be exactly 2 digits
// and numerically in range, otherwise they are dropped.
func splitPublicationDate(date string) (year, month, day string) {
	if date == "" {
		return "", "", ""
	}
	parts := strings.Split(date, "-")

	if len(parts) > 0 && len(parts[0]) == 4 {
		year = parts[0]
	}
	if len(parts) > 1 && len(parts[1]) == 2 {
		if m, err := strconv.Atoi(parts[1]); err == nil && m >= 1 && m <= 12 {
			month = strconv.Itoa(m)
		}
	}
	if len(parts) > 2 && len(parts[2]) == 2 {
		if d, err := strconv.Atoi(parts[2]); err == nil && d >= 1 && d <= 31 {
			day = strconv.Itoa(d)
		}
	}
	return year, month, day
}
