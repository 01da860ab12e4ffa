package goodreads

import (
	"errors"
	"fmt"
)

var (
	// ErrLookup means the book could not be resolved to a page remotely.
	ErrLookup = errors.New("book not found on goodreads")
	// ErrScrape means an expected piece of page structure was absent.
	ErrScrape = errors.New("expected page structure missing")
	// ErrTransport wraps network failures and non-2xx responses.
	ErrTransport = errors.New("transport failure")
	// ErrUnexpectedResponse means a creation response had none of the known
	// shapes. It is batch-fatal: continuing risks repeated damage.
	ErrUnexpectedResponse = errors.New("unexpected response to book creation")
)

// GuardError is returned when a proposed date change would regress or
// ambiguously change the recorded reading dates. The before/after values are
// kept for operator review.
type GuardError struct {
	Field    string // "start" or "end"
	Previous string
	Proposed string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("guard rejected %s date change %s -> %s", e.Field, e.Previous, e.Proposed)
}

// IsGuardRejected reports whether err is a guard rejection.
func IsGuardRejected(err error) bool {
	var ge *GuardError
	return errors.As(err, &ge)
}
