// Package source turns a web page into analysis input by extracting its
// readable article text.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

// MaxBodySize caps how much of a page is read.
const MaxBodySize = 10 * 1024 * 1024

var (
	// ErrTooLarge means the page exceeded MaxBodySize.
	ErrTooLarge = errors.New("page exceeds size limit")

	// ErrNoText means no readable text was found.
	ErrNoText = errors.New("no readable text in page")
)

// Article is the extracted content of a page.
type Article struct {
	URL   string
	Title string
	Text  string
}

// Input returns the text to analyze: the title, a blank line, the body.
func (a Article) Input() string {
	if a.Title == "" {
		return a.Text
	}
	return a.Title + "\n\n" + a.Text
}

// IsURL reports whether s looks like an http(s) link rather than text.
func IsURL(s string) bool {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, " \n\t") {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetcher downloads pages.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher. A nil client uses one with a 30 second
// timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{client: client}
}

// Fetch downloads rawURL and extracts its article.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Article, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Article{}, fmt.Errorf("parse url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Article{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; cihui)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return Article{}, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Article{}, fmt.Errorf("fetch %s: status %d", u, resp.StatusCode)
	}
	if resp.ContentLength > MaxBodySize {
		return Article{}, ErrTooLarge
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return Article{}, fmt.Errorf("read body: %w", err)
	}
	if len(body) > MaxBodySize {
		return Article{}, ErrTooLarge
	}

	return Extract(body, u)
}

// Extract pulls the article out of an HTML document.
func Extract(html []byte, u *url.URL) (Article, error) {
	article, err := readability.FromReader(bytes.NewReader(html), u)
	if err != nil {
		return Article{}, fmt.Errorf("extract article: %w", err)
	}
	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return Article{}, ErrNoText
	}
	return Article{URL: u.String(), Title: strings.TrimSpace(article.Title), Text: text}, nil
}
