package gateway

import (
	"context"

	deepresearch "github.com/dresearch/deepresearch-core"
)

// XAI implements ChatProvider over xAI's OpenAI-compatible chat
// completions endpoint. It reuses OpenAI's request shaping since the wire
// format is identical; only the base URL and credential namespace differ
// (§6: each provider arm owns its own credential lookup).
type XAI struct {
	inner *OpenAI
}

// NewXAI constructs an xAI chat provider.
func NewXAI(apiKey, model string) *XAI {
	return &XAI{inner: NewOpenAI(apiKey, model, "https://api.x.ai/v1")}
}

func (p *XAI) Chat(ctx context.Context, messages []Message) (string, deepresearch.Usage, error) {
	return p.inner.Chat(ctx, messages)
}
