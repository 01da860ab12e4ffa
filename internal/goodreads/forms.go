package goodreads

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const datePickerMarker = "readingSessionDatePicker"

// formState is the transient scraped snapshot of an edit form: its
// submission URL and the current value of every named control. It lives for
// one update attempt and is never cached.
type formState struct {
	action string
	fields map[string]string
}

// scrapeAuthenticityToken extracts the submission token from the add-book
// form.
func scrapeAuthenticityToken(p *page) (string, error) {
	token, ok := p.doc.Find("form#bookForm input[name=authenticity_token]").Attr("value")
	if !ok || token == "" {
		return "", fmt.Errorf("%w: authenticity token not found", ErrScrape)
	}
	return token, nil
}

// findEditLink locates the review-edit link on a book page: an action link
// whose target path begins with the review-edit prefix. The relative href is
// resolved against the page URL.
func findEditLink(p *page) (string, error) {
	var editURL string
	p.doc.Find("a.actionLinkLite").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok || !strings.HasPrefix(href, reviewEditPrefix) {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		editURL = p.url.ResolveReference(ref).String()
		return false
	})
	if editURL == "" {
		return "", fmt.Errorf("%w: review edit link not found", ErrScrape)
	}
	return editURL, nil
}

// scrapeReviewForm extracts the review form's action URL and the current
// value of every named control. Checkboxes contribute only when checked.
// Of the selects only the date pickers are harvested: resubmitting any
// other select without a selected-attributed option would post a blank
// where the browser would post its effective current value, wiping a
// remote field this tool has no business touching.
func scrapeReviewForm(p *page) (*formState, error) {
	form := p.doc.Find("form[name=reviewForm]")
	if form.Length() == 0 {
		return nil, fmt.Errorf("%w: review form not found", ErrScrape)
	}

	action, ok := form.Attr("action")
	if !ok {
		return nil, fmt.Errorf("%w: review form has no action", ErrScrape)
	}
	ref, err := url.Parse(action)
	if err != nil {
		return nil, fmt.Errorf("%w: bad form action %q", ErrScrape, action)
	}

	state := &formState{
		action: p.url.ResolveReference(ref).String(),
		fields: make(map[string]string),
	}

	form.Find("input[name]").Each(func(_ int, sel *goquery.Selection) {
		name, _ := sel.Attr("name")
		if typ, _ := sel.Attr("type"); typ == "checkbox" {
			if _, checked := sel.Attr("checked"); !checked {
				return
			}
		}
		state.fields[name] = sel.AttrOr("value", "")
	})

	form.Find("textarea[name]").Each(func(_ int, sel *goquery.Selection) {
		name, _ := sel.Attr("name")
		state.fields[name] = sel.Text()
	})

	form.Find("select[name]").Each(func(_ int, sel *goquery.Selection) {
		name, _ := sel.Attr("name")
		if !strings.Contains(name, datePickerMarker) {
			return
		}
		opt := sel.Find("option.setDate[selected]")
		value := ""
		if opt.Length() > 0 {
			value = opt.First().AttrOr("value", opt.First().Text())
		}
		state.fields[name] = value
	})

	return state, nil
}

// datePickerCount counts the scraped date-picker fields. A completely
// scraped form carries exactly ten of them.
func (f *formState) datePickerCount() int {
	count := 0
	for name := range f.fields {
		if strings.Contains(name, datePickerMarker) {
			count++
		}
	}
	return count
}

// values converts the field map into a submittable payload.
func (f *formState) values() url.Values {
	out := make(url.Values, len(f.fields))
	for name, value := range f.fields {
		out.Set(name, value)
	}
	return out
}
