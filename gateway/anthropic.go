package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	deepresearch "github.com/dresearch/deepresearch-core"
)

// Anthropic implements ChatProvider over the Messages API.
type Anthropic struct {
	apiKey string
	model  string
	client *http.Client
}

// NewAnthropic constructs an Anthropic chat provider.
func NewAnthropic(apiKey, model string) *Anthropic {
	return &Anthropic{apiKey: apiKey, model: model, client: &http.Client{Timeout: 60 * time.Second}}
}

func (p *Anthropic) Chat(ctx context.Context, messages []Message) (string, deepresearch.Usage, error) {
	system, turns := splitSystem(messages)
	payload := map[string]any{
		"model":      p.model,
		"max_tokens": 8192,
		"system":     system,
		"messages":   turns,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", deepresearch.Usage{}, err
	}
	resp, err := doWithRetry(p.client, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.anthropic.com/v1/messages", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-api-key", p.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", deepresearch.Usage{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", deepresearch.Usage{}, fmt.Errorf("anthropic request failed: %s", resp.Status)
	}

	var parsed struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", deepresearch.Usage{}, err
	}
	for _, block := range parsed.Content {
		if block.Type == "text" && block.Text != "" {
			usage := deepresearch.Usage{InputTokens: parsed.Usage.InputTokens, OutputTokens: parsed.Usage.OutputTokens}
			return block.Text, usage, nil
		}
	}
	return "", deepresearch.Usage{}, errors.New("anthropic response had no text content")
}

func splitSystem(messages []Message) (string, []Message) {
	var system string
	turns := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			system = m.Content
			continue
		}
		turns = append(turns, m)
	}
	return system, turns
}
