package goodreads

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/tzhuang/anobii-goodreads-sync/internal/models"
)

// duplicateMessage is the service's "already taken" response text.
const duplicateMessage = "is taken by an existing book"

// CreateResult reports how a creation attempt resolved.
type CreateResult struct {
	// Duplicate is true when the book already existed remotely, found
	// either by the pre-flight search or by the service's duplicate reply.
	Duplicate bool
	// URL is the created book's page, when the service returned one.
	URL string
	// Submitted is true when the add-book form was actually posted, as
	// opposed to stopping at the pre-flight search. Callers use it to pick
	// the shorter delay.
	Submitted bool
}

// CreateBook creates a missing book. A pre-flight search by ISBN-13 guards
// against a stale Identity Index: if it resolves straight to a book page the
// book is reported as a duplicate and nothing is submitted. An unrecognized
// response shape after submission returns ErrUnexpectedResponse, which the
// caller must treat as batch-fatal.
func (c *Client) CreateBook(ctx context.Context, candidate models.CreateCandidate) (CreateResult, error) {
	log := c.log.WithFields(map[string]interface{}{
		"title":  candidate.Title,
		"isbn13": candidate.ISBN13,
	})

	found, err := c.search(ctx, candidate.ISBN13)
	if err != nil {
		return CreateResult{}, err
	}
	if found.isBookPage() {
		log.Warn().Str("url", found.url.String()).Msg("Duplicate found by search")
		return CreateResult{Duplicate: true, URL: found.url.String()}, nil
	}

	formPage, err := c.fetchCreateForm(ctx)
	if err != nil {
		return CreateResult{}, err
	}
	token, err := scrapeAuthenticityToken(formPage)
	if err != nil {
		return CreateResult{}, err
	}

	payload := url.Values{}
	payload.Set("utf8", "✓")
	payload.Set("authenticity_token", token)
	payload.Set("book[title]", candidate.Title)
	payload.Set("book[sort_by_title]", candidate.Title)
	payload.Set("author[name]", candidate.Author)
	payload.Set("book[isbn]", candidate.ISBN10)
	payload.Set("book[isbn13]", candidate.ISBN13)

	setIfPresent(payload, "book[publisher]", candidate.Publisher)
	setIfPresent(payload, "book[num_pages]", candidate.NumberOfPages)
	setIfPresent(payload, "book[publication_year]", candidate.PubYear)
	setIfPresent(payload, "book[publication_month]", candidate.PubMonth)
	setIfPresent(payload, "book[publication_day]", candidate.PubDay)

	result, err := c.submit(ctx, c.baseURL+newBookPath, payload)
	if err != nil {
		return CreateResult{Submitted: true}, err
	}

	if link := result.doc.Find("a.bookTitle").First(); link.Length() > 0 {
		href := link.AttrOr("href", "")
		bookURL := href
		if ref, err := url.Parse(href); err == nil {
			bookURL = result.url.ResolveReference(ref).String()
		}
		log.Info().Str("url", bookURL).Msg("Book created")
		return CreateResult{URL: bookURL, Submitted: true}, nil
	}

	if strings.Contains(result.doc.Text(), duplicateMessage) {
		log.Warn().Msg("Duplicate reported by service")
		return CreateResult{Duplicate: true, Submitted: true}, nil
	}

	return CreateResult{Submitted: true}, fmt.Errorf("%w for %q", ErrUnexpectedResponse, candidate.Title)
}

func setIfPresent(payload url.Values, key, value string) {
	if value != "" {
		payload.Set(key, value)
	}
}
