package models

// Shelf is one of the six canonical reading-status categories a book can occupy.
type Shelf string

const (
	ShelfToRead           Shelf = "to-read"
	ShelfCurrentlyReading Shelf = "currently-reading"
	ShelfUnfinished       Shelf = "unfinished"
	ShelfRead             Shelf = "read"
	ShelfReference        Shelf = "reference"
	ShelfAbandoned        Shelf = "abandoned"
)

// CatalogRecord is the canonical unit flowing through the conversion and
// reconciliation pipeline. A record with shelf "to-read" never carries a
// read or added date.
type CatalogRecord struct {
	Title             string `json:"title"`
	Author            string `json:"author"`
	AdditionalAuthors string `json:"additional_authors,omitempty"`

	// At most one of the two may be absent; when both are present they
	// describe the same edition (trusted from the source, not re-validated).
	ISBN10 string `json:"isbn10,omitempty"`
	ISBN13 string `json:"isbn13,omitempty"`

	Rating        string `json:"rating,omitempty"`
	Publisher     string `json:"publisher,omitempty"`
	Binding       string `json:"binding,omitempty"`
	NumberOfPages string `json:"number_of_pages,omitempty"`
	YearPublished string `json:"year_published,omitempty"`

	// DateRead is set only when Shelf is "read"; DateAdded is set for
	// currently-reading, unfinished, reference and abandoned.
	DateRead  string `json:"date_read,omitempty"`
	DateAdded string `json:"date_added,omitempty"`

	Shelf Shelf `json:"shelf"`

	Review       string `json:"review,omitempty"`
	PrivateNotes string `json:"private_notes,omitempty"`
}

// CreateCandidate is a converted-CSV row reduced to the fields the Goodreads
// book-creation form accepts.
type CreateCandidate struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	ISBN10        string `json:"isbn10"`
	ISBN13        string `json:"isbn13"`
	Publisher     string `json:"publisher,omitempty"`
	NumberOfPages string `json:"number_of_pages,omitempty"`
	PubYear       string `json:"pub_year,omitempty"`
	PubMonth      string `json:"pub_month,omitempty"`
	PubDay        string `json:"pub_day,omitempty"`
}

// ProgressEntry is one record from the crawler's reading-progress stream.
// Date components are zero-padded strings and may be empty.
type ProgressEntry struct {
	Title  string `json:"title"`
	ISBN13 string `json:"isbn13"`

	StartYear  string `json:"startaa"`
	StartMonth string `json:"startmm"`
	StartDay   string `json:"startgg"`
	EndYear    string `json:"endaa"`
	EndMonth   string `json:"endmm"`
	EndDay     string `json:"endgg"`
}

// String returns a short operator-facing description of the entry.
func (e ProgressEntry) String() string {
	return e.Title + " (" + e.ISBN13 + "): " +
		joinDate(e.StartYear, e.StartMonth, e.StartDay) + "~" +
		joinDate(e.EndYear, e.EndMonth, e.EndDay)
}

func joinDate(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += "-"
		}
		out += p
	}
	return out
}
