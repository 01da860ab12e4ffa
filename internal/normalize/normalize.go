// Package normalize turns heterogeneous, multi-language aNobii export rows
// into canonical catalog records.
package normalize

import (
	"strings"

	"github.com/tzhuang/anobii-goodreads-sync/internal/isbn"
	"github.com/tzhuang/anobii-goodreads-sync/internal/logger"
	"github.com/tzhuang/anobii-goodreads-sync/internal/models"
)

// Options configures a Converter.
type Options struct {
	// KeepFullFields keeps descriptive fields in the output; when false only
	// the ISBN pair survives.
	KeepFullFields bool
	// Profile selects the localized header names and status phrases.
	Profile LanguageProfile
}

// Converter normalizes raw aNobii rows. It is a pure transformation: no
// input, however malformed, makes it fail; fields degrade to empty instead.
type Converter struct {
	opts Options
	log  *logger.Logger
}

// NewConverter creates a Converter with the given options.
func NewConverter(opts Options) *Converter {
	return &Converter{
		opts: opts,
		log:  logger.Get().WithComponent("normalizer"),
	}
}

// Convert normalizes one raw row (header name -> value) into a CatalogRecord.
func (c *Converter) Convert(entry map[string]string) models.CatalogRecord {
	h := c.opts.Profile.Headers

	var rec models.CatalogRecord
	rec.Title = entry[h[HeaderTitle]]

	if authors := entry[h[HeaderAuthor]]; authors != "" {
		parts := strings.Split(authors, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		rec.Author = parts[0]
		if len(parts) > 1 {
			rec.AdditionalAuthors = strings.Join(parts[1:], ", ")
		}
	}

	rec.ISBN10, rec.ISBN13 = pairISBN(StripQuoting(entry[h[HeaderISBN]]))

	rec.Publisher = entry[h[HeaderPublisher]]
	rec.Binding = entry[h[HeaderFormat]]
	rec.NumberOfPages = entry[h[HeaderNumberOfPages]]

	if pubDate := StripQuoting(entry[h[HeaderPubDate]]); pubDate != "" {
		rec.YearPublished = strings.ReplaceAll(pubDate, "-", "/")
	}

	rec.PrivateNotes = convertLinebreaks(entry[h[HeaderPrivateNote]])

	// Wishlist exports carry a Priority column and no reading status.
	if _, wishlist := entry[h[HeaderPriority]]; wishlist {
		rec.Shelf = models.ShelfToRead
		return rec
	}

	rec.Rating = entry[h[HeaderStars]]
	rec.Review = convertComment(entry[h[HeaderCommentTitle]], entry[h[HeaderCommentContent]])

	status := entry[h[HeaderStatus]]
	tags := entry[h[HeaderTags]]
	shelf, date, ok := c.convertStatus(status, tags)
	if !ok {
		c.log.Warn().Str("title", rec.Title).Str("status", status).Msg("cannot parse status, defaulting to to-read")
	}
	rec.Shelf = shelf

	switch shelf {
	case models.ShelfRead:
		rec.DateRead = date
	case models.ShelfCurrentlyReading, models.ShelfUnfinished, models.ShelfReference, models.ShelfAbandoned:
		rec.DateAdded = date
	}

	if !c.opts.KeepFullFields {
		rec.Title = ""
		rec.Author = ""
		rec.AdditionalAuthors = ""
		rec.Publisher = ""
		rec.Binding = ""
		rec.NumberOfPages = ""
		rec.YearPublished = ""
	}

	return rec
}

// convertStatus resolves the shelf and its date from the localized status
// text and the tag tokens. Tag-derived shelves win over the free-text status
// whenever any tag equals a known phrase, even when the two disagree; this
// mirrors the source data's behavior.
func (c *Converter) convertStatus(status, tags string) (models.Shelf, string, bool) {
	if status == "" {
		return models.ShelfToRead, "", true
	}

	date := ParseStatusDate(status)

	tagItems := splitTags(tags)
	if c.anyTagKnown(tagItems) {
		if shelf, ok := c.detectFromTags(tagItems); ok {
			return shelf, date, true
		}
	} else if shelf, ok := c.detectFromText(status); ok {
		return shelf, date, true
	}

	return models.ShelfToRead, "", false
}

// detectFromText matches the ordered phrase rules by substring containment.
func (c *Converter) detectFromText(text string) (models.Shelf, bool) {
	for _, rule := range c.opts.Profile.Rules {
		if strings.Contains(text, rule.Phrase) {
			return rule.Shelf, true
		}
	}
	return "", false
}

// detectFromTags matches the ordered phrase rules by exact tag equality.
func (c *Converter) detectFromTags(tagItems []string) (models.Shelf, bool) {
	for _, rule := range c.opts.Profile.Rules {
		for _, tag := range tagItems {
			if tag == rule.Phrase {
				return rule.Shelf, true
			}
		}
	}
	return "", false
}

func (c *Converter) anyTagKnown(tagItems []string) bool {
	_, ok := c.detectFromTags(tagItems)
	return ok
}

func splitTags(tags string) []string {
	if tags == "" {
		return nil
	}
	parts := strings.Split(tags, "/")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// pairISBN derives both sides of the ISBN pair from a single raw value.
// Conversion failures leave the missing side empty rather than failing the
// whole record.
func pairISBN(raw string) (isbn10, isbn13 string) {
	switch len(raw) {
	case 10:
		isbn10 = raw
		if converted, err := isbn.Convert(raw); err == nil {
			isbn13 = converted
		}
	case 13:
		isbn13 = raw
		if converted, err := isbn.Convert(raw); err == nil {
			isbn10 = converted
		}
	default:
		if raw != "" {
			isbn13 = raw
		}
	}
	return isbn10, isbn13
}

// StripQuoting removes the formula-quoting wrapper (`="..."`) aNobii and
// Goodreads use to keep spreadsheets from mangling ISBNs.
func StripQuoting(s string) string {
	return strings.Trim(s, `="`)
}

// convertLinebreaks converts raw text line breaks to HTML <br> tags.
func convertLinebreaks(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "<br>")
}

// convertComment builds the review field from an optional comment title and
// its content.
func convertComment(title, content string) string {
	if content == "" {
		return ""
	}
	content = convertLinebreaks(content)
	if title != "" {
		return "<p><b>" + strings.TrimSpace(title) + "</b></p>" + content
	}
	return content
}
