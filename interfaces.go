package deepresearch

import "context"

// Usage reports the token cost of one Gateway call (§4.1).
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns the usage the Budget Accountant charges against the cap.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Gateway exposes structured-output generation over a chat model (§4.1).
// schema constrains the returned object's shape; out must be a pointer the
// implementation unmarshals the validated model output into.
type Gateway interface {
	GenerateStructured(ctx context.Context, schema Schema, systemPrompt, userPrompt string, out any) (Usage, error)
}

// Searcher issues a query to a metasearch backend (§4.3).
type Searcher interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]SearchHit, error)
}

// SearchOptions bounds a single Searcher.Search call.
type SearchOptions struct {
	Limit int
}

// Fetcher retrieves a URL and returns cleaned markdown, or nil on any
// failure (§4.4).
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchedPage, error)
}
