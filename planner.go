package deepresearch

import (
	"context"
	"math"
)

// plannedSerpQuery is the raw per-query shape the planner's schema asks
// for; Plan clamps ReliabilityThreshold and resolves RelatedDirection
// before handing SerpQueries to the caller.
type plannedSerpQuery struct {
	Query                string  `json:"query" jsonschema:"required"`
	ResearchGoal         string  `json:"researchGoal" jsonschema:"required"`
	ReliabilityThreshold float64 `json:"reliabilityThreshold" jsonschema:"required"`
	IsVerificationQuery  bool    `json:"isVerificationQuery,omitempty"`
}

type plannerOutput struct {
	Queries []plannedSerpQuery `json:"queries" jsonschema:"required"`
}

func plannerSchema() Schema {
	query := Schema{
		Kind: KindObject,
		Fields: []Field{
			{Name: "query", Kind: KindString, Required: true},
			{Name: "researchGoal", Kind: KindString, Required: true},
			{Name: "reliabilityThreshold", Kind: KindNumber, Required: true},
		},
	}
	return Schema{
		Kind: KindObject,
		Fields: []Field{
			{Name: "queries", Kind: KindArray, Required: true, Items: &query},
		},
	}
}

// Plan runs §4.8 step 1 for one node: it asks the gateway for up to
// breadth SerpQueries, seeded with prior learnings and prioritized
// directions. A planner failure is a ModelError; the caller treats it the
// same as an empty query list (§4.8 edge case: "Empty SerpQuery list:
// return seeded accumulators unchanged").
func Plan(ctx context.Context, gw Gateway, budget *Budget, topic string, breadth int, seeded []WeightedLearning, directions []ResearchDirection, prefs string) ([]SerpQuery, error) {
	var out plannerOutput
	usage, err := gw.GenerateStructured(ctx, plannerSchema(), plannerSystemPrompt, buildPlannerUserPrompt(topic, breadth, seeded, directions, prefs), &out)
	budget.Record(usage)
	if err != nil {
		return nil, ModelError{Op: "plan", Err: err}
	}

	byGoal := make(map[string]*ResearchDirection, len(directions))
	for i := range directions {
		d := directions[i]
		byGoal[d.Question] = &d
	}

	queries := make([]SerpQuery, 0, len(out.Queries))
	for _, q := range out.Queries {
		if q.Query == "" {
			continue
		}
		sq := SerpQuery{
			Query:                q.Query,
			ResearchGoal:         q.ResearchGoal,
			ReliabilityThreshold: q.ReliabilityThreshold,
			IsVerificationQuery:  q.IsVerificationQuery,
			RelatedDirection:     byGoal[q.ResearchGoal],
		}
		sq.clampThreshold()
		queries = append(queries, sq)
	}
	if len(queries) > breadth {
		queries = queries[:breadth]
	}
	return queries, nil
}

// halvedBreadth implements §4.8 step 4's b' = ceil(b/2).
func halvedBreadth(b int) int {
	h := int(math.Ceil(float64(b) / 2))
	if h < 1 {
		h = 1
	}
	return h
}

// followUpCount implements §4.7's M = ceil(breadth/2) default.
func followUpCount(breadth int) int {
	return halvedBreadth(breadth)
}
