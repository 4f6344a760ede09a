package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRoutingConfigValid(t *testing.T) {
	cfg := DefaultRoutingConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if len(cfg.Categories) != 11 {
		t.Fatalf("expected 11 categories, got %d", len(cfg.Categories))
	}
	if cfg.MinConfidence != 0.4 {
		t.Fatalf("expected min confidence 0.4, got %.2f", cfg.MinConfidence)
	}
	if _, ok := cfg.Modes[ModeJunior]; !ok {
		t.Fatalf("junior mode missing")
	}
	if _, ok := cfg.Modes[ModeSenior]; !ok {
		t.Fatalf("senior mode missing")
	}
}

func TestLoadRoutingConfigFromFile(t *testing.T) {
	content := `
categories:
  research:
    - text: "what is"
      weight: 0.8
    - text: "lookup"
  debugging:
    - text: "error"
      weight: 0.9
min_confidence: 0.5
default_temperature: 0.6
modes:
  junior:
    provider: anthropic
    model: claude-3-5-haiku-20241022
  senior:
    provider: anthropic
    model: claude-sonnet-4-20250514
    ultra_thinking: true
    smart_routing: true
`
	path := filepath.Join(t.TempDir(), "routing.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadRoutingConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MinConfidence != 0.5 {
		t.Fatalf("expected min confidence 0.5, got %.2f", cfg.MinConfidence)
	}
	if cfg.DefaultTemperature != 0.6 {
		t.Fatalf("expected default temperature 0.6, got %.2f", cfg.DefaultTemperature)
	}

	// Unweighted keywords default to 1/len(list).
	research := cfg.Categories["research"]
	if research[1].Weight != 0.5 {
		t.Fatalf("expected defaulted weight 0.5, got %.2f", research[1].Weight)
	}
	if research[0].Weight != 0.8 {
		t.Fatalf("explicit weight overwritten: %.2f", research[0].Weight)
	}

	// Retry defaults apply when omitted.
	if cfg.Retry.MaxRetries != 2 || cfg.Retry.BaseBackoffMs != 200 {
		t.Fatalf("retry defaults not applied: %+v", cfg.Retry)
	}
}

func TestLoadRoutingConfigMissingFile(t *testing.T) {
	if _, err := LoadRoutingConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  RoutingConfig
	}{
		{"empty keyword list", RoutingConfig{Categories: map[string][]Keyword{"research": {}}}},
		{"empty keyword text", RoutingConfig{Categories: map[string][]Keyword{"research": {{Text: ""}}}}},
		{"weight above one", RoutingConfig{Categories: map[string][]Keyword{"research": {{Text: "x", Weight: 1.5}}}}},
		{"negative confidence", RoutingConfig{MinConfidence: -0.1}},
		{"mode without model", RoutingConfig{Modes: map[string]ModeConfig{"junior": {Provider: "anthropic"}}}},
	}

	for _, tc := range cases {
		if err := tc.cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestTemperatureLookup(t *testing.T) {
	cfg := DefaultRoutingConfig()
	if got := cfg.Temperature("code_review"); got != 0.3 {
		t.Fatalf("code_review temperature: got %.2f want 0.3", got)
	}
	if got := cfg.Temperature("creative_writing"); got != 0.85 {
		t.Fatalf("creative_writing temperature: got %.2f want 0.85", got)
	}
	if got := cfg.Temperature("general_chat"); got != 0.7 {
		t.Fatalf("unlisted category should use default: got %.2f", got)
	}
}

func TestModeResolution(t *testing.T) {
	cfg := DefaultRoutingConfig()

	junior, err := cfg.Mode(ModeJunior)
	if err != nil {
		t.Fatalf("junior: %v", err)
	}
	if junior.SmartRouting || junior.UltraThinking {
		t.Fatalf("junior must not enable smart routing or ultra thinking: %+v", junior)
	}

	senior, err := cfg.Mode(ModeSenior)
	if err != nil {
		t.Fatalf("senior: %v", err)
	}
	if !senior.SmartRouting || !senior.UltraThinking {
		t.Fatalf("senior must enable smart routing and ultra thinking: %+v", senior)
	}

	if _, err := cfg.Mode("principal"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestRegistryAvailability(t *testing.T) {
	registry := NewRegistry(map[string]bool{"anthropic": true, "openai": false})

	if !registry.Available("anthropic") {
		t.Fatalf("anthropic should be available")
	}
	if registry.Available("openai") || registry.Available("perplexity") {
		t.Fatalf("unconfigured providers must be unavailable")
	}

	registry.MarkUnavailable("anthropic")
	if registry.Available("anthropic") {
		t.Fatalf("expected anthropic marked unavailable")
	}

	var nilRegistry *Registry
	if nilRegistry.Available("anthropic") {
		t.Fatalf("nil registry must report unavailable")
	}
}
