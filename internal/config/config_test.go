package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Concurrency != 2 {
		t.Fatalf("expected default concurrency 2, got %d", cfg.Concurrency)
	}
	if cfg.MetasearchBaseURL != "http://localhost:8888/search" {
		t.Fatalf("unexpected default base url: %q", cfg.MetasearchBaseURL)
	}
	if cfg.DefaultModel != "anthropic:claude-sonnet-4-5" {
		t.Fatalf("unexpected default model: %q", cfg.DefaultModel)
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("CONCURRENCY", "8")
	t.Setenv("METASEARCH_ENGINES", "google, bing ,, duckduckgo")
	t.Setenv("DEFAULT_MODEL", "openai:gpt-5")

	cfg := Load()
	if cfg.Concurrency != 8 {
		t.Fatalf("expected overridden concurrency 8, got %d", cfg.Concurrency)
	}
	if len(cfg.MetasearchEngines) != 3 || cfg.MetasearchEngines[0] != "google" || cfg.MetasearchEngines[2] != "duckduckgo" {
		t.Fatalf("expected trimmed, empty-filtered engine list, got %+v", cfg.MetasearchEngines)
	}
	if cfg.DefaultModel != "openai:gpt-5" {
		t.Fatalf("unexpected model override: %q", cfg.DefaultModel)
	}
}

func TestLoadIgnoresMalformedInt(t *testing.T) {
	t.Setenv("CONCURRENCY", "not-a-number")
	cfg := Load()
	if cfg.Concurrency != 2 {
		t.Fatalf("expected fallback to default on malformed int, got %d", cfg.Concurrency)
	}
}
