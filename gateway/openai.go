package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	deepresearch "github.com/dresearch/deepresearch-core"
)

// OpenAI implements ChatProvider over the OpenAI-compatible chat
// completions endpoint, following the plain net/http request/response
// shaping in Keyring-Network/internal/llm/openai.go (Authorization:
// Bearer, JSON body, typed decode, status-code guard).
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAI constructs an OpenAI chat provider. An empty baseURL defaults
// to https://api.openai.com/v1.
func NewOpenAI(apiKey, model, baseURL string) *OpenAI {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAI{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *OpenAI) Chat(ctx context.Context, messages []Message) (string, deepresearch.Usage, error) {
	payload := map[string]any{
		"model":    p.model,
		"messages": messages,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", deepresearch.Usage{}, err
	}
	resp, err := doWithRetry(p.client, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", deepresearch.Usage{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", deepresearch.Usage{}, fmt.Errorf("openai request failed: %s", resp.Status)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", deepresearch.Usage{}, err
	}
	if len(parsed.Choices) == 0 {
		return "", deepresearch.Usage{}, errors.New("openai response had no choices")
	}
	usage := deepresearch.Usage{InputTokens: parsed.Usage.PromptTokens, OutputTokens: parsed.Usage.CompletionTokens}
	return parsed.Choices[0].Message.Content, usage, nil
}
