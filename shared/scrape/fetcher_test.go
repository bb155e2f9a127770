package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"outreach-stack/shared/config"
)

func testFetcher(maxLength int) *Fetcher {
	return NewFetcher(&config.ScraperConfig{TimeoutSeconds: 5, MaxContentLength: maxLength})
}

func TestFetchExtractsVisibleText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Acme</title><style>p{color:red}</style></head>
<body>
<nav>Home About</nav>
<script>alert("hi")</script>
<p>Acme   builds
widgets.</p>
<footer>Copyright</footer>
</body></html>`))
	}))
	defer server.Close()

	content, err := testFetcher(3000).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if content.Text != "Acme builds widgets." {
		t.Errorf("extracted text = %q, want %q", content.Text, "Acme builds widgets.")
	}
	if content.Truncated {
		t.Error("short page flagged as truncated")
	}
	if content.SourceURL != server.URL {
		t.Errorf("source URL = %s, want %s", content.SourceURL, server.URL)
	}
}

func TestFetchSendsBrowserUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<body><p>ok</p></body>"))
	}))
	defer server.Close()

	if _, err := testFetcher(3000).Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.Contains(gotUA, "Mozilla") {
		t.Errorf("User-Agent = %q, want a browser string", gotUA)
	}
}

func TestFetchTruncatesDeterministically(t *testing.T) {
	page := "<body><p>" + strings.Repeat("word ", 100) + "</p></body>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	fetcher := testFetcher(50)
	first, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !first.Truncated {
		t.Error("long page not flagged as truncated")
	}
	if len(first.Text) != 50 {
		t.Errorf("truncated text is %d chars, want 50", len(first.Text))
	}

	second, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed on repeat: %v", err)
	}
	if first.Text != second.Text {
		t.Error("truncation is not deterministic across fetches")
	}
}

func TestFetchTruncatesOnRuneBoundary(t *testing.T) {
	page := "<body><p>" + strings.Repeat("宁", 100) + "</p></body>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	content, err := testFetcher(50).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !content.Truncated {
		t.Error("long page not flagged as truncated")
	}
	if !utf8.ValidString(content.Text) {
		t.Errorf("truncated text is not valid UTF-8: %q", content.Text)
	}
	if got := utf8.RuneCountInString(content.Text); got != 50 {
		t.Errorf("truncated text is %d characters, want 50", got)
	}
}

func TestFetchNon2xxStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testFetcher(3000).Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error type = %T, want *FetchError", err)
	}
	if !strings.Contains(fetchErr.Error(), "404") {
		t.Errorf("error = %v, want the status code mentioned", fetchErr)
	}
}

func TestFetchUnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := testFetcher(3000).Fetch(context.Background(), url)
	if err == nil {
		t.Fatal("expected an error for a closed server")
	}
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("error type = %T, want *FetchError", err)
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"AlreadyHTTPS", "https://acme.example", "https://acme.example"},
		{"AlreadyHTTP", "http://acme.example", "http://acme.example"},
		{"BareDomain", "acme.example", "https://acme.example"},
		{"WithWhitespace", "  acme.example  ", "https://acme.example"},
		{"Empty", "", ""},
		{"NoDot", "not-a-domain", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeURL(tt.input); got != tt.expected {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
