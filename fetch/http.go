// Package fetch implements the Fetcher (§4.4): HTTP GET a url, strip
// navigation chrome from the HTML, and convert the remaining content to
// markdown, generalizing theRebelliousNerd-codenerd's
// internal/shards/researcher/scraper.go DOM-walking helpers
// (extractTextContent, extractTitle) from keyword-matching knowledge
// extraction into a general-purpose HTML-to-markdown converter.
package fetch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	deepresearch "github.com/dresearch/deepresearch-core"
)

const (
	fetchDeadline  = 30 * time.Second
	maxBodyBytes   = 2 << 20 // 2MB
	userAgent      = "Mozilla/5.0 (compatible; deepresearch-bot/1.0; +https://github.com/dresearch/deepresearch-core)"
)

// Client implements deepresearch.Fetcher over net/http.
type Client struct {
	httpClient *http.Client
}

// New constructs a fetch Client that follows redirects by default, per
// §4.4.
func New() *Client {
	return &Client{httpClient: &http.Client{Timeout: fetchDeadline}}
}

// Fetch implements deepresearch.Fetcher. Any failure — network error,
// non-2xx status, non-HTML content type, empty content, parse error —
// returns (nil, nil): failures are data points, not exceptions (§4.4).
func (c *Client) Fetch(ctx context.Context, rawURL string) (*deepresearch.FetchedPage, error) {
	reqCtx, cancel := context.WithTimeout(ctx, fetchDeadline)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "application/xhtml") {
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil || len(body) == 0 {
		return nil, nil
	}

	markdown, title, err := HTMLToMarkdown(string(body))
	if err != nil || strings.TrimSpace(markdown) == "" {
		return nil, nil
	}

	return &deepresearch.FetchedPage{URL: rawURL, Title: title, Markdown: markdown}, nil
}
