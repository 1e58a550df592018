package deepresearch

import "context"

// SourceEvaluationEntry is one element of the §4.6 batched output,
// index-aligned with the FetchedPage slice the evaluator was given.
type SourceEvaluationEntry struct {
	Index            int     `json:"index" jsonschema:"required"`
	Score            float64 `json:"score" jsonschema:"required,description=0 to 1 reliability score"`
	Reasoning        string  `json:"reasoning" jsonschema:"required"`
	Use              bool    `json:"use" jsonschema:"required"`
	PreferenceReason string  `json:"preferenceReason,omitempty"`
}

func evaluatorBatchSchema() Schema {
	entry := Schema{
		Kind: KindObject,
		Fields: []Field{
			{Name: "index", Kind: KindNumber, Required: true},
			{Name: "score", Kind: KindNumber, Required: true},
			{Name: "reasoning", Kind: KindString, Required: true},
			{Name: "use", Kind: KindBoolean, Required: true},
		},
	}
	return Schema{Kind: KindArray, Items: &entry}
}

// EvaluateSources runs the single batched §4.6 call over all fetched
// pages for one SerpQuery. On any gateway failure it falls back to
// score=0.5, use=true, reasoning="Evaluation failed" for every input —
// the whole point of this evaluator is that the research loop degrades
// rather than halts.
func EvaluateSources(ctx context.Context, gw Gateway, budget *Budget, query string, pages []FetchedPage, prefs string) []SourceEvaluation {
	if len(pages) == 0 {
		return nil
	}

	var entries []SourceEvaluationEntry
	usage, err := gw.GenerateStructured(ctx, evaluatorBatchSchema(), evaluatorSystemPrompt, buildEvaluatorUserPrompt(query, pages, prefs), &entries)
	budget.Record(usage)
	if err != nil {
		return fallbackEvaluations(pages)
	}

	byIndex := make(map[int]SourceEvaluationEntry, len(entries))
	for _, e := range entries {
		byIndex[e.Index] = e
	}

	out := make([]SourceEvaluation, len(pages))
	for i, p := range pages {
		e, ok := byIndex[i]
		if !ok {
			e = SourceEvaluationEntry{Index: i, Score: 0.5, Reasoning: "Evaluation failed", Use: true}
		}
		out[i] = SourceEvaluation{
			Index:            i,
			Score:            clamp01(e.Score),
			Reasoning:        e.Reasoning,
			Use:              e.Use,
			PreferenceReason: e.PreferenceReason,
			Domain:           domainOf(p.URL),
		}
	}
	return out
}

// BuildSourceMetadata drops pages whose evaluation has Use=false and
// turns the rest into SourceMetadata records, still index-aligned with a
// parallel slice of the surviving FetchedPages (§4.6: "pages with
// use=false are dropped; the rest retain score").
func BuildSourceMetadata(evals []SourceEvaluation, pages []FetchedPage) ([]FetchedPage, []SourceMetadata) {
	survivingPages := make([]FetchedPage, 0, len(pages))
	meta := make([]SourceMetadata, 0, len(pages))
	for i, e := range evals {
		if !e.Use || i >= len(pages) {
			continue
		}
		p := pages[i]
		survivingPages = append(survivingPages, p)
		meta = append(meta, SourceMetadata{
			URL:                  p.URL,
			Title:                p.Title,
			Domain:               e.Domain,
			ReliabilityScore:     e.Score,
			ReliabilityReasoning: e.Reasoning,
		})
	}
	return survivingPages, meta
}

func fallbackEvaluations(pages []FetchedPage) []SourceEvaluation {
	out := make([]SourceEvaluation, len(pages))
	for i, p := range pages {
		out[i] = SourceEvaluation{
			Index:     i,
			Score:     0.5,
			Reasoning: "Evaluation failed",
			Use:       true,
			Domain:    domainOf(p.URL),
		}
	}
	return out
}
