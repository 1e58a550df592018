package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	deepresearch "github.com/dresearch/deepresearch-core"
)

func TestSearchDedupsAndCapsToLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("expected format=json, got %q", r.URL.Query().Get("format"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[
			{"url":"https://a.test","title":"A","content":"a"},
			{"url":"https://a.test","title":"A dup","content":"a dup"},
			{"url":"https://b.test","title":"B","content":"b"},
			{"url":"https://c.test","title":"C","content":"c"}
		]}`))
	}))
	defer srv.Close()

	client := New(srv.URL, nil, nil)
	hits, err := client.Search(context.Background(), "query", deepresearch.SearchOptions{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected limit=2 to cap results, got %d: %+v", len(hits), hits)
	}
	if hits[0].URL != "https://a.test" || hits[1].URL != "https://b.test" {
		t.Fatalf("expected dedup to drop the repeated a.test hit, got %+v", hits)
	}
}

func TestSearchPropagatesEnginesAndCategories(t *testing.T) {
	var gotEngines, gotCategories string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEngines = r.URL.Query().Get("engines")
		gotCategories = r.URL.Query().Get("categories")
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	client := New(srv.URL, []string{"google", "bing"}, []string{"general"})
	if _, err := client.Search(context.Background(), "q", deepresearch.SearchOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotEngines != "google,bing" {
		t.Fatalf("expected engines=google,bing, got %q", gotEngines)
	}
	if gotCategories != "general" {
		t.Fatalf("expected categories=general, got %q", gotCategories)
	}
}

func TestSearchNonOKStatusIsTransientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, nil, nil)
	_, err := client.Search(context.Background(), "q", deepresearch.SearchOptions{})
	var netErr deepresearch.TransientNetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected a TransientNetworkError, got %T: %v", err, err)
	}
}
