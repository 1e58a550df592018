package deepresearch

import (
	"context"
	"errors"
	"testing"
)

func TestSelectForExtractionSortsAndFiltersByThreshold(t *testing.T) {
	pages := []FetchedPage{
		{URL: "https://low.test"},
		{URL: "https://high.test"},
		{URL: "https://mid.test"},
	}
	meta := []SourceMetadata{
		{URL: "https://low.test", ReliabilityScore: 0.2},
		{URL: "https://high.test", ReliabilityScore: 0.9},
		{URL: "https://mid.test", ReliabilityScore: 0.5},
	}

	outPages, outMeta := SelectForExtraction(pages, meta, 0.4)
	if len(outPages) != 2 {
		t.Fatalf("expected 2 pages above threshold 0.4, got %d", len(outPages))
	}
	if outPages[0].URL != "https://high.test" || outPages[1].URL != "https://mid.test" {
		t.Fatalf("expected descending reliability order, got %+v", outPages)
	}
	if outMeta[0].URL != outPages[0].URL || outMeta[1].URL != outPages[1].URL {
		t.Fatalf("meta must stay index-aligned with pages: meta=%+v pages=%+v", outMeta, outPages)
	}
}

func TestExtractSkippedWhenNoPagesSurvive(t *testing.T) {
	gw := newFakeGateway()
	budget := NewBudget(0)
	learnings, directions, err := Extract(context.Background(), gw, budget, "goal", nil, nil, 3, 2)
	if err != nil || learnings != nil || directions != nil {
		t.Fatalf("expected a no-op skip, got learnings=%v directions=%v err=%v", learnings, directions, err)
	}
	if gw.calls != 0 {
		t.Fatalf("expected no gateway call when there are no surviving pages")
	}
}

func TestExtractWrapsGatewayFailureAsModelError(t *testing.T) {
	gw := newFakeGateway().failOn(extractorSystemPrompt, errors.New("malformed json"))
	budget := NewBudget(0)
	pages := []FetchedPage{{URL: "https://a.test"}}
	meta := []SourceMetadata{{URL: "https://a.test"}}

	_, _, err := Extract(context.Background(), gw, budget, "goal", pages, meta, 3, 2)
	if err == nil {
		t.Fatalf("expected an error")
	}
	var modelErr ModelError
	if !errors.As(err, &modelErr) {
		t.Fatalf("expected a ModelError, got %T: %v", err, err)
	}
}

func TestExtractDefaultsMissingFollowUpPriority(t *testing.T) {
	gw := newFakeGateway().script(extractorSystemPrompt, ExtractionResult{
		Learnings: []ExtractedLearning{{Content: "x", Confidence: 0.5}},
		FollowUps: []FollowUpQuestion{{Question: "why?", Priority: 0}},
	})
	budget := NewBudget(0)
	pages := []FetchedPage{{URL: "https://a.test"}}
	meta := []SourceMetadata{{URL: "https://a.test"}}

	_, directions, err := Extract(context.Background(), gw, budget, "goal", pages, meta, 3, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(directions) != 1 || directions[0].Priority != 3 {
		t.Fatalf("expected default priority 3, got %+v", directions)
	}
	if directions[0].ParentGoal != "goal" {
		t.Fatalf("expected ParentGoal to carry the research goal, got %q", directions[0].ParentGoal)
	}
}
