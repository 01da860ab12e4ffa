// Package reconcile decides what to do with each converted record before
// any network traffic happens: pure classification against the identity
// index and the idempotency cache.
package reconcile

import (
	"github.com/tzhuang/anobii-goodreads-sync/internal/cache"
	"github.com/tzhuang/anobii-goodreads-sync/internal/catalog"
	"github.com/tzhuang/anobii-goodreads-sync/internal/models"
)

// Action is the reconciler's verdict for one record.
type Action int

const (
	// ActionSkip means the record is not sent anywhere; Reason says why.
	ActionSkip Action = iota
	// ActionPresent means the destination catalog already has the book.
	ActionPresent
	// ActionCreate means the book is missing and should be created.
	ActionCreate
)

// Skip reasons shared with the outcome report.
const (
	ReasonProcessed  = "already processed"
	ReasonIncomplete = "incomplete data"
)

// Decision pairs an action with a human-readable skip reason.
type Decision struct {
	Action Action
	Reason string
}

// FlagLookup resolves a cached idempotency flag for an ISBN-13. It is
// satisfied by (*cache.Store).Get.
type FlagLookup func(isbn13 string) (string, bool)

// Classify decides the fate of one creation candidate. The checks run in
// order: cache flag, data completeness, index membership; a record that
// survives all three is created. The cache lookup may be nil when no cache
// is attached.
func Classify(candidate models.CreateCandidate, index *catalog.Index, cached FlagLookup, retryErrored bool) Decision {
	if cached != nil {
		if flag, ok := cached(candidate.ISBN13); ok && Processed(flag, retryErrored) {
			return Decision{Action: ActionSkip, Reason: ReasonProcessed}
		}
	}

	if len(candidate.ISBN10) != 10 || len(candidate.ISBN13) != 13 ||
		candidate.Title == "" || candidate.Author == "" {
		return Decision{Action: ActionSkip, Reason: ReasonIncomplete}
	}

	if index.Contains(candidate.ISBN10) || index.Contains(candidate.ISBN13) {
		return Decision{Action: ActionPresent}
	}

	return Decision{Action: ActionCreate}
}

// Processed reports whether a cached flag is terminal for this run. Every
// flag is: error flags stay sticky across reruns so failures are never
// silently retried. retryErrored is the explicit operator override that
// sends errored records through again.
func Processed(flag string, retryErrored bool) bool {
	if retryErrored {
		return flag == cache.FlagSuccess
	}
	return true
}
