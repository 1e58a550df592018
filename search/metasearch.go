// Package search implements the Search Client (§4.3) against a SearXNG-
// style metasearch backend, generalizing smhanov-laconic/search's
// retry-with-backoff HTTP client shape (tavily.go, brave.go) into a
// single GET-based, multi-engine provider.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	deepresearch "github.com/dresearch/deepresearch-core"
)

const searchTimeout = 45 * time.Second

// Client issues queries to a configurable metasearch backend (§6:
// "HTTP GET to a configurable base URL with parameters q, format=json,
// optional engines, optional categories").
type Client struct {
	BaseURL    string
	Engines    []string
	Categories []string
	client     *http.Client
}

// New constructs a metasearch Client. baseURL is required; engines and
// categories may be nil.
func New(baseURL string, engines, categories []string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Engines:    engines,
		Categories: categories,
		client:     &http.Client{Timeout: searchTimeout},
	}
}

// Search implements deepresearch.Searcher.
func (c *Client) Search(ctx context.Context, query string, opts deepresearch.SearchOptions) ([]deepresearch.SearchHit, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 5
	}

	reqCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	if len(c.Engines) > 0 {
		q.Set("engines", strings.Join(c.Engines, ","))
	}
	if len(c.Categories) > 0 {
		q.Set("categories", strings.Join(c.Categories, ","))
	}

	endpoint := strings.TrimRight(c.BaseURL, "/") + "?" + q.Encode()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, deepresearch.TransientNetworkError{Op: "search", Err: err}
	}

	delay := 1 * time.Second
	var resp *http.Response
	for {
		resp, err = c.client.Do(req)
		if err != nil {
			return nil, deepresearch.TransientNetworkError{Op: "search", Err: err}
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			break
		}
		resp.Body.Close()
		select {
		case <-reqCtx.Done():
			return nil, deepresearch.TimeoutError{Op: "search"}
		case <-time.After(delay):
		}
		if delay < 30*time.Second {
			delay *= 2
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, deepresearch.TransientNetworkError{Op: "search", Err: fmt.Errorf("metasearch http %s", resp.Status)}
	}

	var parsed struct {
		Results []struct {
			URL     string `json:"url"`
			Title   string `json:"title"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, deepresearch.TransientNetworkError{Op: "search", Err: err}
	}

	seen := make(map[string]bool, len(parsed.Results))
	hits := make([]deepresearch.SearchHit, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		hits = append(hits, deepresearch.SearchHit{URL: r.URL, Title: r.Title, Description: r.Content})
		if len(hits) >= limit {
			break
		}
	}
	return hits, nil
}
