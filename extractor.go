package deepresearch

import (
	"context"
	"sort"
	"time"
)

// ExtractedLearning is one entry of the §4.7 learnings array.
type ExtractedLearning struct {
	Content           string   `json:"content" jsonschema:"required"`
	Confidence        float64  `json:"confidence" jsonschema:"required"`
	SupportingDomains []string `json:"supportingDomains,omitempty"`
}

// FollowUpQuestion is one entry of the §4.7 follow-up questions array.
// Priority is an unrestricted number per §9's open question; only
// descending order is relied on downstream.
type FollowUpQuestion struct {
	Question      string `json:"question" jsonschema:"required"`
	Priority      int    `json:"priority" jsonschema:"required"`
	Justification string `json:"justification,omitempty"`
}

// SourceQualitySummary is the §4.7 analysis block.
type SourceQualitySummary struct {
	MostReliableDomains []string `json:"mostReliableDomains,omitempty"`
	ContentGaps         []string `json:"contentGaps,omitempty"`
	Analysis            string   `json:"analysis,omitempty"`
}

// ExtractionResult is the full parsed §4.7 output.
type ExtractionResult struct {
	Learnings     []ExtractedLearning  `json:"learnings" jsonschema:"required"`
	FollowUps     []FollowUpQuestion   `json:"followUps" jsonschema:"required"`
	SourceQuality SourceQualitySummary `json:"sourceQuality"`
}

func extractionSchema() Schema {
	return Schema{
		Kind: KindObject,
		Fields: []Field{
			{Name: "learnings", Kind: KindArray, Required: true},
			{Name: "followUps", Kind: KindArray, Required: true},
		},
	}
}

const extractorDeadline = 60 * time.Second

// SelectForExtraction sorts the evaluator's survivors by reliability
// descending and filters by the SerpQuery's reliability threshold (§4.7).
// pages and meta must already be index-aligned, e.g. the output of
// BuildSourceMetadata.
func SelectForExtraction(pages []FetchedPage, meta []SourceMetadata, threshold float64) ([]FetchedPage, []SourceMetadata) {
	type pair struct {
		page FetchedPage
		meta SourceMetadata
	}
	pairs := make([]pair, 0, len(pages))
	for i, p := range pages {
		if i >= len(meta) {
			break
		}
		pairs = append(pairs, pair{page: p, meta: meta[i]})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].meta.ReliabilityScore > pairs[j].meta.ReliabilityScore
	})

	outPages := make([]FetchedPage, 0, len(pairs))
	outMeta := make([]SourceMetadata, 0, len(pairs))
	for _, pr := range pairs {
		if pr.meta.ReliabilityScore < threshold {
			continue
		}
		outPages = append(outPages, pr.page)
		outMeta = append(outMeta, pr.meta)
	}
	return outPages, outMeta
}

// Extract runs the §4.7 learning-extraction call for one SerpQuery's
// surviving pages. If pages is empty the extractor is skipped and Extract
// returns zero values with no error (§4.7: "If zero pages survive, the
// extractor is skipped and the node returns empty"). On timeout the
// caller should treat the node as producing nothing but must not abort
// siblings (§4.7, §7) — Extract signals that by returning a TimeoutError.
func Extract(ctx context.Context, gw Gateway, budget *Budget, researchGoal string, pages []FetchedPage, meta []SourceMetadata, numLearnings, numFollowUps int) ([]WeightedLearning, []ResearchDirection, error) {
	if len(pages) == 0 {
		return nil, nil, nil
	}

	deadlineCtx, cancel := context.WithTimeout(ctx, extractorDeadline)
	defer cancel()

	var result ExtractionResult
	usage, err := gw.GenerateStructured(deadlineCtx, extractionSchema(), extractorSystemPrompt, buildExtractorUserPrompt(researchGoal, pages, meta, numLearnings, numFollowUps), &result)
	budget.Record(usage)
	if err != nil {
		if deadlineCtx.Err() != nil {
			return nil, nil, TimeoutError{Op: "extract"}
		}
		return nil, nil, ModelError{Op: "extract", Err: err}
	}

	learnings := make([]WeightedLearning, 0, len(result.Learnings))
	for _, l := range result.Learnings {
		learnings = append(learnings, WeightedLearning{Content: l.Content, Reliability: clamp01(l.Confidence)})
	}

	directions := make([]ResearchDirection, 0, len(result.FollowUps))
	for _, f := range result.FollowUps {
		priority := f.Priority
		if priority == 0 {
			priority = 3
		}
		directions = append(directions, ResearchDirection{Question: f.Question, Priority: priority, ParentGoal: researchGoal})
	}

	return learnings, directions, nil
}
