package deepresearch

import "testing"

func TestMergeLearningsMaxReliabilityWins(t *testing.T) {
	a := []WeightedLearning{{Content: "  MQTT is lightweight.  ", Reliability: 0.4}}
	b := []WeightedLearning{{Content: "MQTT is lightweight.", Reliability: 0.9}}

	merged := mergeLearnings(a, b)
	if len(merged) != 1 {
		t.Fatalf("expected one merged learning, got %d", len(merged))
	}
	if merged[0].Reliability != 0.9 {
		t.Fatalf("expected max reliability 0.9 to win, got %v", merged[0].Reliability)
	}
}

func TestMergeLearningsIsOrderInsensitive(t *testing.T) {
	a := []WeightedLearning{{Content: "x", Reliability: 0.9}}
	b := []WeightedLearning{{Content: "x", Reliability: 0.4}}

	forward := mergeLearnings(a, b)
	backward := mergeLearnings(b, a)
	if forward[0].Reliability != backward[0].Reliability {
		t.Fatalf("merge should be order-insensitive: forward=%v backward=%v", forward, backward)
	}
}

func TestMergeLearningsIsIdempotent(t *testing.T) {
	a := []WeightedLearning{{Content: "x", Reliability: 0.7}, {Content: "y", Reliability: 0.2}}
	once := mergeLearnings(a)
	twice := mergeLearnings(once, once)
	if len(twice) != len(once) {
		t.Fatalf("merging a result with itself should not grow it: once=%d twice=%d", len(once), len(twice))
	}
}

func TestMergeSourceMetaMaxScoreWins(t *testing.T) {
	a := []SourceMetadata{{URL: "https://x.test", ReliabilityScore: 0.2}}
	b := []SourceMetadata{{URL: "https://x.test", ReliabilityScore: 0.8}}

	merged := mergeSourceMeta(a, b)
	if len(merged) != 1 || merged[0].ReliabilityScore != 0.8 {
		t.Fatalf("expected max score 0.8 to win, got %+v", merged)
	}
}

func TestMergeVisitedURLsDeduplicates(t *testing.T) {
	a := []string{"https://x.test", "https://y.test"}
	b := []string{"https://y.test", "https://z.test"}

	merged := mergeVisitedURLs(a, b)
	if len(merged) != 3 {
		t.Fatalf("expected 3 distinct urls, got %d: %v", len(merged), merged)
	}
}

func TestSortDirectionsByPriorityDescStableOnTies(t *testing.T) {
	in := []ResearchDirection{
		{Question: "a", Priority: 1},
		{Question: "b", Priority: 5},
		{Question: "c", Priority: 5},
		{Question: "d", Priority: 3},
	}
	out := sortDirectionsByPriorityDesc(in)
	if out[0].Question != "b" || out[1].Question != "c" || out[2].Question != "d" || out[3].Question != "a" {
		t.Fatalf("unexpected order: %+v", out)
	}
	// original slice must be untouched
	if in[0].Question != "a" {
		t.Fatalf("sortDirectionsByPriorityDesc must not mutate its input")
	}
}
