package deepresearch

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// defaultNumLearnings is N in §4.7: "up to N learnings ... 3 unless
// overridden".
const defaultNumLearnings = 3

// Engine bundles the collaborators a node of the research tree needs:
// the gateway, the search and fetch clients, and the governor every
// model/search/fetch call is run through. One Engine is constructed once
// per process and reused across invocations; per-invocation state
// (Budget) is passed in separately because it is the one thing that must
// not be shared across concurrent invocations.
type Engine struct {
	Gateway      Gateway
	Search       Searcher
	Fetch        Fetcher
	Governor     *Governor
	Logger       *zap.Logger
	NumLearnings int // 0 means defaultNumLearnings

	// Debug gates verbose tracing of every planner/evaluator/extractor
	// prompt and the structured response it produced. Off by default;
	// expensive to leave on in production since it logs full source
	// bodies.
	Debug bool
}

func (e *Engine) numLearnings() int {
	if e.NumLearnings > 0 {
		return e.NumLearnings
	}
	return defaultNumLearnings
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return zap.NewNop()
}

// Run is the top-level entry point (§4.8's "research(topic, B, D, ...)")
// for one invocation. It constructs a fresh Budget from req.TokenBudget
// and drives the recursive pipeline to completion, returning both the
// merged result and the Budget so the caller can pass the same instance
// into WriteReport (§4.2: the report's tokens are recorded against the
// same BudgetState, even though the report itself is never gated by it).
func (e *Engine) Run(ctx context.Context, req TopicRequest) (ResearchResult, *Budget) {
	budget := NewBudget(req.TokenBudget)
	seed := ResearchResult{Budget: budget.Snapshot()}
	result := e.research(ctx, req.Topic, req.Breadth, req.Depth, seed, nil, req.SourcePreferences, budget)
	return result, budget
}

// research implements §4.8's per-node algorithm: plan, fan out the
// pipeline over every SerpQuery, and merge the seeded accumulators with
// each query's own result. Each SerpQuery recurses into its own child
// call seeded only with the follow-up directions its own extractor call
// produced (§8 scenario 3) — the tree branches multiplicatively per
// query, not once per node.
func (e *Engine) research(ctx context.Context, topic string, breadth, depth int, seeded ResearchResult, directions []ResearchDirection, prefs string, budget *Budget) ResearchResult {
	log := e.logger().With(zap.String("topic", topic), zap.Int("breadth", breadth), zap.Int("depth", depth))

	if e.Debug {
		log.Debug("planner prompt",
			zap.String("system", plannerSystemPrompt),
			zap.String("user", buildPlannerUserPrompt(topic, breadth, seeded.Learnings, directions, prefs)))
	}
	queries, err := Plan(ctx, e.Gateway, budget, topic, breadth, seeded.Learnings, directions, prefs)
	if e.Debug {
		log.Debug("planner response", zap.Any("queries", queries), zap.Error(err))
	}
	if err != nil {
		log.Warn("plan failed, returning seeded accumulators unchanged", zap.Error(err))
		seeded.Budget = budget.Snapshot()
		return seeded
	}
	if len(queries) == 0 {
		seeded.Budget = budget.Snapshot()
		return seeded
	}

	// §8 scenario 3: each SerpQuery recurses into its own child call,
	// seeded only with that query's own follow-up directions — not a
	// single combined call over every sibling's directions pooled
	// together. outcomes[i] ends up holding the fully-merged result of
	// query i's own pipeline output plus its entire subtree.
	outcomes := make([]ResearchResult, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q SerpQuery) {
			defer wg.Done()
			o := e.runQuery(ctx, q, breadth, prefs, budget, log)
			nodeResult := ResearchResult{
				Learnings:   o.learnings,
				SourceMeta:  o.sourceMeta,
				VisitedURLs: o.visited,
			}

			// §4.2: the orchestrator consults reached before recursing
			// deeper. Even when this query produced no follow-up
			// directions, the planner is free to re-plan from this
			// query's own learnings alone (§4.8 step 4).
			if depth <= 1 || budget.Reached() {
				outcomes[i] = nodeResult
				return
			}

			childDirections := sortDirectionsByPriorityDesc(o.directions)
			childTopic := synthesizeChildTopic(q.ResearchGoal, childDirections)
			outcomes[i] = e.research(ctx, childTopic, halvedBreadth(breadth), depth-1, nodeResult, childDirections, prefs, budget)
		}(i, q)
	}
	wg.Wait()

	learningGroups := make([][]WeightedLearning, 0, len(outcomes)+1)
	metaGroups := make([][]SourceMetadata, 0, len(outcomes)+1)
	visitedGroups := make([][]string, 0, len(outcomes)+1)
	learningGroups = append(learningGroups, seeded.Learnings)
	metaGroups = append(metaGroups, seeded.SourceMeta)
	visitedGroups = append(visitedGroups, seeded.VisitedURLs)

	for _, o := range outcomes {
		learningGroups = append(learningGroups, o.Learnings)
		metaGroups = append(metaGroups, o.SourceMeta)
		visitedGroups = append(visitedGroups, o.VisitedURLs)
	}

	return ResearchResult{
		Learnings:   mergeLearnings(learningGroups...),
		SourceMeta:  mergeSourceMeta(metaGroups...),
		VisitedURLs: mergeVisitedURLs(visitedGroups...),
		Budget:      budget.Snapshot(),
	}
}

// runQuery runs §4.8 step 2's strict pipeline order — search, pre-filter,
// fetch, evaluate, extract — for a single SerpQuery. A failure at any
// stage ends the pipeline for this query but never aborts its siblings
// (§4.8, §7). Search, pre-filter and extraction failures are logged; the
// query then contributes only what earlier stages produced (the visited
// urls, and the source metadata once evaluation has run).
func (e *Engine) runQuery(ctx context.Context, q SerpQuery, breadth int, prefs string, budget *Budget, log *zap.Logger) struct {
	learnings  []WeightedLearning
	sourceMeta []SourceMetadata
	visited    []string
	directions []ResearchDirection
} {
	type result = struct {
		learnings  []WeightedLearning
		sourceMeta []SourceMetadata
		visited    []string
		directions []ResearchDirection
	}

	qlog := log.With(zap.String("query", q.Query), zap.String("researchGoal", q.ResearchGoal))

	limit := 5
	if q.IsVerificationQuery {
		limit = 8
	}

	var hits []SearchHit
	err := e.Governor.Run(ctx, func() error {
		var searchErr error
		hits, searchErr = e.Search.Search(ctx, q.Query, SearchOptions{Limit: limit})
		return searchErr
	})
	if err != nil {
		qlog.Warn("search failed", zap.Error(err))
		return result{}
	}
	if len(hits) == 0 {
		return result{}
	}

	kept := PreFilterAll(ctx, e.Governor, e.Gateway, budget, q.Query, hits, prefs, func(hit SearchHit, err error) {
		qlog.Warn("pre-filter failed", zap.String("url", hit.URL), zap.Error(err))
	})
	if len(kept) == 0 {
		return result{}
	}

	pages := e.batchFetch(ctx, kept)
	visited := make([]string, 0, len(pages))
	for _, p := range pages {
		visited = append(visited, p.URL)
	}
	if len(pages) == 0 {
		return result{visited: visited}
	}

	if e.Debug {
		qlog.Debug("evaluator prompt",
			zap.String("system", evaluatorSystemPrompt),
			zap.String("user", buildEvaluatorUserPrompt(q.Query, pages, prefs)))
	}
	evals := EvaluateSources(ctx, e.Gateway, budget, q.Query, pages, prefs)
	if e.Debug {
		qlog.Debug("evaluator response", zap.Any("evaluations", evals))
	}
	survivingPages, meta := BuildSourceMetadata(evals, pages)
	if len(survivingPages) == 0 {
		return result{visited: visited, sourceMeta: meta}
	}

	extractPages, extractMeta := SelectForExtraction(survivingPages, meta, q.ReliabilityThreshold)
	if len(extractPages) == 0 {
		return result{visited: visited, sourceMeta: meta}
	}

	numFollowUps := followUpCount(breadth)
	if e.Debug {
		qlog.Debug("extractor prompt",
			zap.String("system", extractorSystemPrompt),
			zap.String("user", buildExtractorUserPrompt(q.ResearchGoal, extractPages, extractMeta, e.numLearnings(), numFollowUps)))
	}
	learnings, directions, err := Extract(ctx, e.Gateway, budget, q.ResearchGoal, extractPages, extractMeta, e.numLearnings(), numFollowUps)
	if e.Debug {
		qlog.Debug("extractor response", zap.Any("learnings", learnings), zap.Any("directions", directions), zap.Error(err))
	}
	if err != nil {
		qlog.Warn("extraction failed", zap.Error(err))
		return result{visited: visited, sourceMeta: meta}
	}

	return result{learnings: learnings, sourceMeta: meta, visited: visited, directions: directions}
}

// batchFetch implements §4.4's batchFetch: fetch every url concurrently
// through the governor, dropping failures.
func (e *Engine) batchFetch(ctx context.Context, hits []SearchHit) []FetchedPage {
	type outcome struct {
		page *FetchedPage
	}
	outcomes := make([]outcome, len(hits))
	done := make(chan int, len(hits))

	for i, hit := range hits {
		i, hit := i, hit
		go func() {
			_ = e.Governor.Run(ctx, func() error {
				page, err := e.Fetch.Fetch(ctx, hit.URL)
				if err != nil {
					return err
				}
				outcomes[i] = outcome{page: page}
				return nil
			})
			done <- i
		}()
	}
	for range hits {
		<-done
	}

	pages := make([]FetchedPage, 0, len(hits))
	for _, o := range outcomes {
		if o.page != nil {
			pages = append(pages, *o.page)
		}
	}
	return pages
}

// synthesizeChildTopic builds the §4.8 step 4 child topic string: "Previous
// research goal: {goal}\nFollow-up research directions:\n{follow-ups}",
// scoped to a single SerpQuery's own goal and its own follow-ups (§8
// scenario 3) rather than pooled across every sibling query of the node.
func synthesizeChildTopic(goal string, directions []ResearchDirection) string {
	b := fmt.Sprintf("Previous research goal: %s\nFollow-up research directions:\n", goal)
	for _, d := range directions {
		b += fmt.Sprintf("- (priority %d) %s\n", d.Priority, d.Question)
	}
	return b
}
