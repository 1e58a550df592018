package deepresearch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// fakeGateway scripts GenerateStructured responses by system prompt,
// mirroring smhanov-laconic/agent_test.go's scriptedLLM (dispatch by
// which system prompt was used, a queue of canned responses per prompt)
// generalized from raw text replies to JSON-marshaled structured ones.
// The orchestrator calls a Gateway from multiple goroutines (PreFilterAll,
// research's per-query goroutines), so this fake needs its own lock.
type gwCall struct {
	system string
	user   string
}

type fakeGateway struct {
	mu        sync.Mutex
	responses map[string][]any
	errs      map[string]error
	usage     Usage
	calls     int
	history   []gwCall
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{responses: make(map[string][]any), errs: make(map[string]error), usage: Usage{InputTokens: 10, OutputTokens: 10}}
}

func (g *fakeGateway) script(systemPrompt string, responses ...any) *fakeGateway {
	g.responses[systemPrompt] = append(g.responses[systemPrompt], responses...)
	return g
}

func (g *fakeGateway) failOn(systemPrompt string, err error) *fakeGateway {
	g.errs[systemPrompt] = err
	return g
}

func (g *fakeGateway) GenerateStructured(_ context.Context, _ Schema, systemPrompt, userPrompt string, out any) (Usage, error) {
	g.mu.Lock()
	g.calls++
	g.history = append(g.history, gwCall{system: systemPrompt, user: userPrompt})
	if err, ok := g.errs[systemPrompt]; ok {
		g.mu.Unlock()
		return Usage{}, err
	}
	queue := g.responses[systemPrompt]
	if len(queue) == 0 {
		g.mu.Unlock()
		return Usage{}, errors.New("fakeGateway: no scripted response for prompt")
	}
	g.responses[systemPrompt] = queue[1:]
	usage := g.usage
	g.mu.Unlock()

	data, err := json.Marshal(queue[0])
	if err != nil {
		return Usage{}, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return Usage{}, err
	}
	return usage, nil
}

// userPromptsFor returns the user prompt of every recorded call against
// systemPrompt, in call order, for assertions about what each call saw.
func (g *fakeGateway) userPromptsFor(systemPrompt string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, c := range g.history {
		if c.system == systemPrompt {
			out = append(out, c.user)
		}
	}
	return out
}

// fakeSearcher returns a fixed set of hits per query, mirroring
// agent_test.go's fakeSearch.
type fakeSearcher struct {
	byQuery map[string][]SearchHit
}

func (f fakeSearcher) Search(_ context.Context, query string, _ SearchOptions) ([]SearchHit, error) {
	return f.byQuery[query], nil
}

// fakeFetcher returns a fixed page per url, or nil (a failed fetch) when
// the url is absent.
type fakeFetcher struct {
	byURL map[string]*FetchedPage
}

func (f fakeFetcher) Fetch(_ context.Context, url string) (*FetchedPage, error) {
	return f.byURL[url], nil
}
