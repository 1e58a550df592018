package deepresearch

import "context"

// PreFilterDecision is the parsed output of one §4.5 gate call.
type PreFilterDecision struct {
	ShouldScrape bool   `json:"shouldScrape" jsonschema:"required,description=Whether this result is worth fetching"`
	Reasoning    string `json:"reasoning" jsonschema:"required,description=Why"`
}

func preFilterSchema() Schema {
	return Schema{
		Kind: KindObject,
		Fields: []Field{
			{Name: "shouldScrape", Kind: KindBoolean, Required: true},
			{Name: "reasoning", Kind: KindString, Required: true},
		},
	}
}

// PreFilter runs one §4.5 gate call for a single SearchHit. Hits with an
// empty url are dropped without a model call. usage is recorded against
// budget immediately after the gateway call returns, per §4.2.
func PreFilter(ctx context.Context, gw Gateway, budget *Budget, query string, hit SearchHit, prefs string) (bool, error) {
	if hit.URL == "" {
		return false, nil
	}
	var decision PreFilterDecision
	usage, err := gw.GenerateStructured(ctx, preFilterSchema(), preFilterSystemPrompt, buildPreFilterUserPrompt(query, hit, prefs), &decision)
	budget.Record(usage)
	if err != nil {
		return false, err
	}
	return decision.ShouldScrape, nil
}

// PreFilterAll runs PreFilter for every hit concurrently through gov,
// returning the hits that survived. A per-hit failure is treated as a
// drop, not an abort — the caller should log it (§7: ModelError outside
// the evaluator just drops that unit of work).
func PreFilterAll(ctx context.Context, gov *Governor, gw Gateway, budget *Budget, query string, hits []SearchHit, prefs string, onErr func(hit SearchHit, err error)) []SearchHit {
	type outcome struct {
		hit  SearchHit
		keep bool
	}
	results := make([]outcome, len(hits))
	done := make(chan int, len(hits))

	for i, hit := range hits {
		i, hit := i, hit
		go func() {
			err := gov.Run(ctx, func() error {
				keep, err := PreFilter(ctx, gw, budget, query, hit, prefs)
				results[i] = outcome{hit: hit, keep: keep}
				return err
			})
			if err != nil && onErr != nil {
				onErr(hit, err)
			}
			done <- i
		}()
	}
	for range hits {
		<-done
	}

	kept := make([]SearchHit, 0, len(hits))
	for _, o := range results {
		if o.keep {
			kept = append(kept, o.hit)
		}
	}
	return kept
}
