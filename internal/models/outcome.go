package models

// OutcomeKind classifies the result of processing a single record.
type OutcomeKind string

const (
	OutcomeSkipped   OutcomeKind = "skipped"
	OutcomePresent   OutcomeKind = "present"
	OutcomeCreated   OutcomeKind = "created"
	OutcomeDuplicate OutcomeKind = "duplicate"
	OutcomeUpdated   OutcomeKind = "updated"
	OutcomeError     OutcomeKind = "error"
	// OutcomeListed marks a record that a list-only run would have acted
	// on. It counts as processed but changes nothing.
	OutcomeListed OutcomeKind = "listed"
)

// RecordOutcome is the structured result for one record, returned to the
// caller instead of being printed inside the pipeline.
type RecordOutcome struct {
	Kind   OutcomeKind `json:"kind"`
	Title  string      `json:"title,omitempty"`
	Author string      `json:"author,omitempty"`
	ISBN10 string      `json:"isbn10,omitempty"`
	ISBN13 string      `json:"isbn13,omitempty"`
	Reason string      `json:"reason,omitempty"`
	URL    string      `json:"url,omitempty"`
}

// Summary aggregates the outcomes of one run.
type Summary struct {
	Processed  int             `json:"processed"`
	Created    int             `json:"created"`
	Updated    int             `json:"updated"`
	Duplicates int             `json:"duplicates"`
	Skipped    int             `json:"skipped"`
	Errored    int             `json:"errored"`
	// Remaining counts records left unprocessed after a batch-fatal stop.
	Remaining int             `json:"remaining"`
	Outcomes  []RecordOutcome `json:"outcomes,omitempty"`
}

// Add records an outcome and bumps the matching counter.
func (s *Summary) Add(o RecordOutcome) {
	s.Processed++
	switch o.Kind {
	case OutcomeCreated:
		s.Created++
	case OutcomeUpdated:
		s.Updated++
	case OutcomeDuplicate, OutcomePresent:
		s.Duplicates++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeError:
		s.Errored++
	}
	s.Outcomes = append(s.Outcomes, o)
}
