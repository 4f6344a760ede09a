// Package catalog provides the static provider/model capability registry.
//
// Entries are fixed configuration loaded once at process start and never
// mutated afterwards, so concurrent lookups need no locking. Provider
// availability is a runtime fact owned by the config registry, not baked
// into catalog entries.
package catalog

import "fmt"

// Role classifies a model's capability tier.
type Role string

const (
	// RoleFast - cheap and fast, the fixed-cost junior tier.
	RoleFast Role = "fast"
	// RoleBalanced - good quality/cost ratio, the senior default tier.
	RoleBalanced Role = "balanced"
	// RoleFlagship - maximum quality, for the highest-stakes categories.
	RoleFlagship Role = "flagship"
	// RoleDeepResearch - live web synthesis tier, research only.
	RoleDeepResearch Role = "deep_research"
)

// Entry describes one provider model.
type Entry struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`

	// Cost in USD per million tokens.
	InputPerMillion  float64 `json:"input_per_million"`
	OutputPerMillion float64 `json:"output_per_million"`

	SupportsExtendedThinking bool `json:"supports_extended_thinking"`
	SupportsStreaming        bool `json:"supports_streaming"`

	Role Role `json:"role"`
}

// Catalog is the provider/model registry.
type Catalog struct {
	entries []Entry
	byKey   map[string]*Entry
}

// New builds a catalog from the given entries.
func New(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, len(entries)),
		byKey:   make(map[string]*Entry, len(entries)),
	}
	copy(c.entries, entries)
	for i := range c.entries {
		e := &c.entries[i]
		if e.Provider == "" || e.Model == "" {
			return nil, fmt.Errorf("catalog entry %d missing provider or model", i)
		}
		key := entryKey(e.Provider, e.Model)
		if _, dup := c.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate catalog entry %s", key)
		}
		c.byKey[key] = e
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New([]Entry{
		{Provider: "anthropic", Model: "claude-3-5-haiku-20241022", InputPerMillion: 0.80, OutputPerMillion: 4.00, SupportsStreaming: true, Role: RoleFast},
		{Provider: "anthropic", Model: "claude-sonnet-4-20250514", InputPerMillion: 3.00, OutputPerMillion: 15.00, SupportsExtendedThinking: true, SupportsStreaming: true, Role: RoleBalanced},
		{Provider: "anthropic", Model: "claude-opus-4-20250514", InputPerMillion: 15.00, OutputPerMillion: 75.00, SupportsExtendedThinking: true, SupportsStreaming: true, Role: RoleFlagship},

		{Provider: "openai", Model: "gpt-5.2-instant", InputPerMillion: 0.50, OutputPerMillion: 2.00, SupportsStreaming: true, Role: RoleFast},
		{Provider: "openai", Model: "gpt-5.2-codex", InputPerMillion: 2.50, OutputPerMillion: 10.00, SupportsStreaming: true, Role: RoleBalanced},
		{Provider: "openai", Model: "gpt-5.2-thinking", InputPerMillion: 5.00, OutputPerMillion: 20.00, SupportsExtendedThinking: true, SupportsStreaming: true, Role: RoleBalanced},
		{Provider: "openai", Model: "gpt-5.2-pro", InputPerMillion: 15.00, OutputPerMillion: 60.00, SupportsExtendedThinking: true, SupportsStreaming: true, Role: RoleFlagship},

		{Provider: "perplexity", Model: "sonar", InputPerMillion: 1.00, OutputPerMillion: 1.00, SupportsStreaming: true, Role: RoleFast},
		{Provider: "perplexity", Model: "sonar-pro", InputPerMillion: 3.00, OutputPerMillion: 15.00, SupportsStreaming: true, Role: RoleBalanced},
		{Provider: "perplexity", Model: "sonar-deep-research", InputPerMillion: 2.00, OutputPerMillion: 8.00, Role: RoleDeepResearch},

		{Provider: "google", Model: "gemini-2.0-flash", InputPerMillion: 0.10, OutputPerMillion: 0.40, SupportsStreaming: true, Role: RoleFast},
		{Provider: "google", Model: "gemini-2.0-pro", InputPerMillion: 1.25, OutputPerMillion: 10.00, SupportsExtendedThinking: true, SupportsStreaming: true, Role: RoleFlagship},
	})
	if err != nil {
		panic(err) // built-in entries are validated at development time
	}
	return c
}

// Get looks up an entry by provider and model.
func (c *Catalog) Get(provider, model string) (Entry, bool) {
	e, ok := c.byKey[entryKey(provider, model)]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// ByRole returns the first entry of the given role for a provider.
func (c *Catalog) ByRole(provider string, role Role) (Entry, bool) {
	for _, e := range c.entries {
		if e.Provider == provider && e.Role == role {
			return e, true
		}
	}
	return Entry{}, false
}

// MostCapable returns the provider's flagship model.
func (c *Catalog) MostCapable(provider string) (Entry, bool) {
	return c.ByRole(provider, RoleFlagship)
}

// DeepResearch returns the provider's deep-research model, if any.
func (c *Catalog) DeepResearch(provider string) (Entry, bool) {
	return c.ByRole(provider, RoleDeepResearch)
}

// Models returns all models for a provider, in registration order.
func (c *Catalog) Models(provider string) []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.Provider == provider {
			out = append(out, e)
		}
	}
	return out
}

// All returns every entry in registration order.
func (c *Catalog) All() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Cost estimates the USD cost of a call from token counts.
func (e Entry) Cost(promptTokens, completionTokens int) float64 {
	in := float64(promptTokens) / 1_000_000 * e.InputPerMillion
	out := float64(completionTokens) / 1_000_000 * e.OutputPerMillion
	return in + out
}

func entryKey(provider, model string) string {
	return provider + "/" + model
}
