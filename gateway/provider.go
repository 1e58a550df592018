package gateway

import (
	"fmt"
	"strings"

	deepresearch "github.com/dresearch/deepresearch-core"
)

// Credentials holds the per-provider API keys recognized at the gateway
// layer (§6). Absence of the credential for the chosen provider yields a
// ConfigError before any network call.
type Credentials struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string
	XAIAPIKey       string
}

// Resolve parses a "provider:modelId" identifier and constructs the
// matching ChatProvider, generalizing Keyring-Network's
// internal/llm.NewProvider switch to the closed {anthropic, openai,
// google, xai} tagged variant named in §6 and §9 "Provider polymorphism".
func Resolve(providerModelID string, creds Credentials) (ChatProvider, error) {
	provider, model, ok := strings.Cut(providerModelID, ":")
	if !ok || provider == "" || model == "" {
		return nil, deepresearch.ConfigError{Reason: fmt.Sprintf("malformed model id %q, want provider:modelId", providerModelID)}
	}

	switch provider {
	case "anthropic":
		if creds.AnthropicAPIKey == "" {
			return nil, deepresearch.ConfigError{Reason: "missing credential for provider anthropic"}
		}
		return NewAnthropic(creds.AnthropicAPIKey, model), nil
	case "openai":
		if creds.OpenAIAPIKey == "" {
			return nil, deepresearch.ConfigError{Reason: "missing credential for provider openai"}
		}
		return NewOpenAI(creds.OpenAIAPIKey, model, ""), nil
	case "google":
		if creds.GoogleAPIKey == "" {
			return nil, deepresearch.ConfigError{Reason: "missing credential for provider google"}
		}
		return NewGoogle(creds.GoogleAPIKey, model), nil
	case "xai":
		if creds.XAIAPIKey == "" {
			return nil, deepresearch.ConfigError{Reason: "missing credential for provider xai"}
		}
		return NewXAI(creds.XAIAPIKey, model), nil
	default:
		return nil, deepresearch.ConfigError{Reason: fmt.Sprintf("unsupported provider %q", provider)}
	}
}
