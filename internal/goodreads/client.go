// Package goodreads is the remote catalog client. Goodreads exposes no
// stable API for these operations, so everything goes through its HTML
// surface: search, form scraping and form submission. The capability set is
// deliberately narrow (search, fetchCreateForm, fetchEditForm, submit) so
// markup changes stay contained here.
package goodreads

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/tzhuang/anobii-goodreads-sync/internal/logger"
)

const (
	searchPath  = "/search"
	newBookPath = "/book/new"

	bookShowPrefix   = "/book/show/"
	reviewEditPrefix = "/review/edit"
)

// Client talks to the Goodreads HTML surface with a pre-authenticated
// cookie bundle attached to every request. It never performs login.
type Client struct {
	baseURL string
	cookies map[string]string
	client  *http.Client
	log     *logger.Logger
}

// NewClient creates a client for the given base URL and cookie bundle.
func NewClient(baseURL string, cookies map[string]string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		cookies: cookies,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logger.Get().WithComponent("goodreads_client"),
	}
}

// LoadCookies reads the pre-obtained session cookies from a JSON file of
// name -> value pairs.
func LoadCookies(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}
	var cookies map[string]string
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("failed to parse cookie file: %w", err)
	}
	return cookies, nil
}

// page is a fetched document together with the URL it finally resolved to,
// after redirects.
type page struct {
	url *url.URL
	doc *goquery.Document
}

// get fetches a URL and parses the response body.
func (c *Client) get(ctx context.Context, rawURL string, query url.Values) (*page, error) {
	if query != nil {
		rawURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.attachCookies(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrTransport, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &page{url: resp.Request.URL, doc: doc}, nil
}

// search runs a free-text search. The service either redirects straight to
// a book page or returns a results page; the caller inspects the final URL.
func (c *Client) search(ctx context.Context, query string) (*page, error) {
	return c.get(ctx, c.baseURL+searchPath, url.Values{"q": []string{query}})
}

// fetchCreateForm fetches the "add book" form page.
func (c *Client) fetchCreateForm(ctx context.Context) (*page, error) {
	return c.get(ctx, c.baseURL+newBookPath, nil)
}

// fetchEditForm fetches a review-edit form page by absolute URL.
func (c *Client) fetchEditForm(ctx context.Context, editURL string) (*page, error) {
	return c.get(ctx, editURL, nil)
}

// submit posts a form payload and parses the response.
func (c *Client) submit(ctx context.Context, actionURL string, payload url.Values) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, actionURL,
		strings.NewReader(payload.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.attachCookies(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrTransport, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &page{url: resp.Request.URL, doc: doc}, nil
}

func (c *Client) attachCookies(req *http.Request) {
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
}

// isBookPage reports whether the page resolved to a book page, i.e. the
// search redirected to /book/show/.
func (p *page) isBookPage() bool {
	return strings.HasPrefix(p.url.Path, bookShowPrefix)
}
