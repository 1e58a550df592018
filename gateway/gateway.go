// Package gateway implements the Model Gateway (§4.1): a provider-agnostic
// structured-output generator dispatched from a "provider:modelId" string,
// generalizing Keyring-Network's internal/llm.NewProvider dispatcher.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	deepresearch "github.com/dresearch/deepresearch-core"
)

// Message is one turn of a chat completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatProvider is implemented by each concrete provider arm (anthropic,
// openai, google, xai). It returns raw model text and token usage.
type ChatProvider interface {
	Chat(ctx context.Context, messages []Message) (text string, usage deepresearch.Usage, err error)
}

// Gateway implements deepresearch.Gateway over a resolved ChatProvider.
// It extracts usable text from the raw response (stripping <think> blocks
// and falling back to a trailing JSON blob when the model wraps its
// answer in prose), then validates the parsed JSON against the supplied
// schema before unmarshaling into out.
type Gateway struct {
	provider ChatProvider
}

// New constructs a Gateway over the given provider.
func New(provider ChatProvider) *Gateway {
	return &Gateway{provider: provider}
}

// GenerateStructured implements deepresearch.Gateway.
func (g *Gateway) GenerateStructured(ctx context.Context, schema deepresearch.Schema, systemPrompt, userPrompt string, out any) (deepresearch.Usage, error) {
	if g.provider == nil {
		return deepresearch.Usage{}, deepresearch.ConfigError{Reason: "no chat provider configured"}
	}
	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}
	text, usage, err := g.provider.Chat(ctx, messages)
	if err != nil {
		return usage, deepresearch.ModelError{Op: "generate", Err: err}
	}

	raw, err := ExtractJSON(text)
	if err != nil {
		return usage, deepresearch.ModelError{Op: "extract json", Err: err}
	}
	if err := deepresearch.ValidateSchema(raw, schema); err != nil {
		return usage, deepresearch.ModelError{Op: "validate schema", Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return usage, deepresearch.ModelError{Op: "unmarshal", Err: err}
	}
	return usage, nil
}

var (
	thinkBlockRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)
	codeFenceRegex  = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
)

// StripThinkBlocks removes <think>...</think> reasoning blocks some models
// (qwen3 and similar) emit ahead of their actual output, generalizing
// smhanov-laconic/prompts.go's StripThinkBlocks.
func StripThinkBlocks(s string) string {
	return strings.TrimSpace(thinkBlockRegex.ReplaceAllString(s, ""))
}

// ExtractJSON pulls a JSON object or array out of raw model text: it
// strips <think> blocks, then prefers a fenced ```json block if present,
// then falls back to the substring between the first '{' or '[' and the
// matching last '}' or ']'.
func ExtractJSON(text string) (json.RawMessage, error) {
	cleaned := StripThinkBlocks(text)
	if cleaned == "" {
		return nil, fmt.Errorf("empty model response")
	}
	if m := codeFenceRegex.FindStringSubmatch(cleaned); len(m) == 2 {
		cleaned = strings.TrimSpace(m[1])
	}
	start := strings.IndexAny(cleaned, "{[")
	if start < 0 {
		return nil, fmt.Errorf("no JSON object or array found in response")
	}
	open := cleaned[start]
	close := byte('}')
	if open == '[' {
		close = ']'
	}
	end := strings.LastIndexByte(cleaned, close)
	if end < start {
		return nil, fmt.Errorf("unterminated JSON in response")
	}
	return json.RawMessage(cleaned[start : end+1]), nil
}
