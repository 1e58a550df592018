package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	deepresearch "github.com/dresearch/deepresearch-core"
)

// Google implements ChatProvider over the Gemini generateContent API.
type Google struct {
	apiKey string
	model  string
	client *http.Client
}

// NewGoogle constructs a Google chat provider.
func NewGoogle(apiKey, model string) *Google {
	return &Google{apiKey: apiKey, model: model, client: &http.Client{Timeout: 60 * time.Second}}
}

func (p *Google) Chat(ctx context.Context, messages []Message) (string, deepresearch.Usage, error) {
	system, turns := splitSystem(messages)

	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role"`
		Parts []part `json:"parts"`
	}

	contents := make([]content, 0, len(turns))
	for _, m := range turns {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: m.Content}}})
	}

	payload := map[string]any{
		"contents": contents,
	}
	if system != "" {
		payload["systemInstruction"] = content{Parts: []part{{Text: system}}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", deepresearch.Usage{}, err
	}

	endpoint := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s",
		url.PathEscape(p.model), url.QueryEscape(p.apiKey))
	resp, err := doWithRetry(p.client, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", deepresearch.Usage{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", deepresearch.Usage{}, fmt.Errorf("google request failed: %s", resp.Status)
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []part `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		UsageMetadata struct {
			PromptTokenCount     int `json:"promptTokenCount"`
			CandidatesTokenCount int `json:"candidatesTokenCount"`
		} `json:"usageMetadata"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", deepresearch.Usage{}, err
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", deepresearch.Usage{}, errors.New("google response had no candidates")
	}
	usage := deepresearch.Usage{
		InputTokens:  parsed.UsageMetadata.PromptTokenCount,
		OutputTokens: parsed.UsageMetadata.CandidatesTokenCount,
	}
	return parsed.Candidates[0].Content.Parts[0].Text, usage, nil
}
