package scrape

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"outreach-stack/internal/models"
	"outreach-stack/shared/config"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// FetchError reports a failed website fetch: network error, timeout, or a
// non-2xx response.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher retrieves and trims website text for target companies.
type Fetcher struct {
	client    *http.Client
	maxLength int
}

func NewFetcher(cfg *config.ScraperConfig) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		maxLength: cfg.MaxContentLength,
	}
}

// Fetch downloads the page at url and returns its visible text, truncated to
// the configured maximum length. A single attempt is made; any failure is
// returned as a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*models.ScrapedContent, error) {
	url = NormalizeURL(url)
	if url == "" {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("empty URL")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("parse HTML: %w", err)}
	}

	text := extractText(doc)
	truncated := false
	// Truncate by characters, not bytes, so multi-byte text is never cut
	// mid-rune and the limit means the same thing for every script.
	if runes := []rune(text); len(runes) > f.maxLength {
		text = string(runes[:f.maxLength])
		truncated = true
	}

	log.Printf("Fetched %s (%d chars, truncated=%v)", url, utf8.RuneCountInString(text), truncated)

	return &models.ScrapedContent{
		SourceURL: url,
		Text:      text,
		Truncated: truncated,
	}, nil
}

// NormalizeURL prepends https:// when the scheme is missing. Values without a
// dot are returned empty since they cannot be a fetchable host.
func NormalizeURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	if !strings.Contains(url, ".") {
		return ""
	}
	return "https://" + url
}

func extractText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, footer").Remove()

	sel := doc.Find("body")
	if sel.Length() == 0 {
		sel = doc.Selection
	}

	// Collapse runs of whitespace so truncation boundaries are stable.
	return strings.Join(strings.Fields(sel.Text()), " ")
}
