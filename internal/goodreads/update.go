package goodreads

import (
	"context"
	"fmt"

	"github.com/tzhuang/anobii-goodreads-sync/internal/isbn"
	"github.com/tzhuang/anobii-goodreads-sync/internal/models"
)

// UpdateReadingDates corrects the recorded reading dates of one book from a
// crawler entry. The book is located by ISBN-13 then ISBN-10 search; its
// review-edit form is scraped, diffed against the entry's start/end date
// triples under the monotonic guard, and re-submitted. Success is defined
// purely by transport-level status.
func (c *Client) UpdateReadingDates(ctx context.Context, entry models.ProgressEntry, guardEnd bool) error {
	log := c.log.WithFields(map[string]interface{}{
		"title":  entry.Title,
		"isbn13": entry.ISBN13,
	})

	bookPage, err := c.findBook(ctx, entry.ISBN13)
	if err != nil {
		return err
	}

	editURL, err := findEditLink(bookPage)
	if err != nil {
		return err
	}

	formPage, err := c.fetchEditForm(ctx, editURL)
	if err != nil {
		return err
	}
	form, err := scrapeReviewForm(formPage)
	if err != nil {
		return err
	}

	// Never trigger unrelated notifications from a date correction.
	form.fields["review[cog_explicit]"] = "0"
	for _, key := range []string{"add_to_blog", "add_update"} {
		if _, ok := form.fields[key]; ok {
			form.fields[key] = "0"
		}
	}

	if n := form.datePickerCount(); n != 10 {
		log.Warn().Int("date_picker_fields", n).Msg("Unexpected date picker count, refusing to submit")
		return fmt.Errorf("%w: %d date picker fields, want 10", ErrScrape, n)
	}

	if err := applyReadingDates(form.fields, entry, guardEnd, log); err != nil {
		return err
	}

	if _, err := c.submit(ctx, form.action, form.values()); err != nil {
		return err
	}

	log.Info().Msg("Reading dates updated")
	return nil
}

// findBook resolves a book page by trying ISBN-13 then ISBN-10 search,
// stopping at the first search that redirects to a book page.
func (c *Client) findBook(ctx context.Context, isbn13 string) (*page, error) {
	queries := []string{isbn13}
	if isbn10, err := isbn.Convert(isbn13); err == nil {
		queries = append(queries, isbn10)
	}

	for _, q := range queries {
		if q == "" {
			continue
		}
		p, err := c.search(ctx, q)
		if err != nil {
			return nil, err
		}
		if p.isBookPage() {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrLookup, isbn13)
}
