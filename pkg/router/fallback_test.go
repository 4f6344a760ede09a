package router

import (
	"testing"

	"github.com/X10NLUN1X/xionimus/pkg/catalog"
	"github.com/X10NLUN1X/xionimus/pkg/config"
)

func newTestResolver(t *testing.T, available map[string]bool) *Resolver {
	t.Helper()
	return NewResolver(config.DefaultRoutingConfig(), catalog.Default(), config.NewRegistry(available))
}

func TestNextSkipsUnavailableProvider(t *testing.T) {
	resolver := newTestResolver(t, map[string]bool{
		"openai":     true,
		"anthropic":  false,
		"perplexity": true,
	})

	// openai failed; anthropic is first in its chain but has no
	// credentials, so perplexity is the next candidate.
	target, ok := resolver.Next("openai", CategoryGeneralChat, nil)
	if !ok {
		t.Fatalf("expected a fallback candidate")
	}
	if target.Provider != "perplexity" {
		t.Fatalf("expected perplexity, got %s", target.Provider)
	}
	if target.Model != "sonar-pro" {
		t.Fatalf("expected the balanced-tier model, got %s", target.Model)
	}
}

func TestNextNeverRepeatsProviders(t *testing.T) {
	resolver := newTestResolver(t, map[string]bool{
		"openai":     true,
		"anthropic":  true,
		"perplexity": true,
	})

	var tried []string
	failed := "openai"
	for i := 0; i < 10; i++ {
		target, ok := resolver.Next(failed, CategoryGeneralChat, tried)
		if !ok {
			break
		}
		if target.Provider == failed {
			t.Fatalf("resolver returned the failed provider")
		}
		for _, p := range tried {
			if p == target.Provider {
				t.Fatalf("provider %s attempted twice", target.Provider)
			}
		}
		tried = append(tried, target.Provider)
	}

	// openai's chain has exactly two alternates.
	if len(tried) != 2 {
		t.Fatalf("expected 2 fallback hops, got %d: %v", len(tried), tried)
	}
}

func TestNextExhaustsChain(t *testing.T) {
	resolver := newTestResolver(t, map[string]bool{
		"openai":     true,
		"anthropic":  true,
		"perplexity": true,
	})

	if _, ok := resolver.Next("openai", CategoryGeneralChat, []string{"anthropic", "perplexity"}); ok {
		t.Fatalf("expected exhausted chain")
	}
}

func TestNextNoProvidersAvailable(t *testing.T) {
	resolver := newTestResolver(t, map[string]bool{})

	if _, ok := resolver.Next("anthropic", CategoryDebugging, nil); ok {
		t.Fatalf("expected no candidates when nothing is configured")
	}
}

func TestResearchFallbackChain(t *testing.T) {
	resolver := newTestResolver(t, map[string]bool{
		"perplexity": true,
		"anthropic":  true,
		"openai":     true,
	})

	// Research falls back to a specific high-capability model, never to
	// a generic alternate that cannot do live synthesis.
	target, ok := resolver.Next("perplexity", CategoryResearch, nil)
	if !ok {
		t.Fatalf("expected a research fallback")
	}
	if target.Provider != "anthropic" || target.Model != "claude-opus-4-20250514" {
		t.Fatalf("expected anthropic/claude-opus-4-20250514, got %s/%s", target.Provider, target.Model)
	}

	if _, ok := resolver.Next("perplexity", CategoryResearch, []string{"anthropic"}); ok {
		t.Fatalf("research chain should be spent after anthropic")
	}
}

func TestChainOrdersPrimaryFirst(t *testing.T) {
	resolver := newTestResolver(t, map[string]bool{
		"anthropic":  true,
		"openai":     true,
		"perplexity": true,
	})

	targets := resolver.Chain(Decision{
		Provider: "anthropic",
		Model:    "claude-sonnet-4-20250514",
		Category: CategoryGeneralChat,
	})
	if len(targets) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(targets))
	}
	if targets[0].Provider != "anthropic" || targets[0].Model != "claude-sonnet-4-20250514" {
		t.Fatalf("primary target not first: %+v", targets[0])
	}
	if targets[1].Provider != "openai" || targets[2].Provider != "perplexity" {
		t.Fatalf("unexpected hop order: %+v", targets)
	}
}

func TestChainDropsUnavailablePrimary(t *testing.T) {
	resolver := newTestResolver(t, map[string]bool{
		"anthropic":  true,
		"openai":     false,
		"perplexity": true,
	})

	targets := resolver.Chain(Decision{
		Provider: "openai",
		Model:    "gpt-5.2-codex",
		Category: CategoryGeneralChat,
	})
	if len(targets) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(targets), targets)
	}
	if targets[0].Provider != "anthropic" || targets[1].Provider != "perplexity" {
		t.Fatalf("unexpected chain: %+v", targets)
	}
}
