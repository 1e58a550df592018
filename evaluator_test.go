package deepresearch

import (
	"context"
	"errors"
	"testing"
)

func TestEvaluateSourcesFallsBackOnGatewayFailure(t *testing.T) {
	gw := newFakeGateway().failOn(evaluatorSystemPrompt, errors.New("model unavailable"))
	budget := NewBudget(0)
	pages := []FetchedPage{
		{URL: "https://a.test", Title: "A"},
		{URL: "https://b.test", Title: "B"},
	}

	evals := EvaluateSources(context.Background(), gw, budget, "q", pages, "")
	if len(evals) != 2 {
		t.Fatalf("expected fallback to evaluate every page, got %d", len(evals))
	}
	for _, e := range evals {
		if !e.Use || e.Score != 0.5 {
			t.Fatalf("expected fallback score 0.5 and use=true, got %+v", e)
		}
	}
}

func TestBuildSourceMetadataDropsUnusedAndStaysIndexAligned(t *testing.T) {
	pages := []FetchedPage{
		{URL: "https://a.test"},
		{URL: "https://b.test"},
		{URL: "https://c.test"},
	}
	evals := []SourceEvaluation{
		{Index: 0, Score: 0.9, Use: true, Domain: "a.test"},
		{Index: 1, Score: 0.1, Use: false, Domain: "b.test"},
		{Index: 2, Score: 0.6, Use: true, Domain: "c.test"},
	}

	survivors, meta := BuildSourceMetadata(evals, pages)
	if len(survivors) != 2 || len(meta) != 2 {
		t.Fatalf("expected 2 survivors, got pages=%d meta=%d", len(survivors), len(meta))
	}
	if survivors[0].URL != "https://a.test" || survivors[1].URL != "https://c.test" {
		t.Fatalf("unexpected survivor order: %+v", survivors)
	}
	if meta[0].ReliabilityScore != 0.9 || meta[1].ReliabilityScore != 0.6 {
		t.Fatalf("unexpected meta scores: %+v", meta)
	}
}

func TestEvaluateSourcesEmptyInput(t *testing.T) {
	gw := newFakeGateway()
	budget := NewBudget(0)
	if evals := EvaluateSources(context.Background(), gw, budget, "q", nil, ""); evals != nil {
		t.Fatalf("expected nil for empty input, got %+v", evals)
	}
	if gw.calls != 0 {
		t.Fatalf("expected no gateway call for empty input, got %d calls", gw.calls)
	}
}
