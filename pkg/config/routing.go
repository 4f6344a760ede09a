package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RoutingConfig holds classification and routing configuration.
type RoutingConfig struct {
	// Categories maps category name -> weighted keyword list.
	Categories map[string][]Keyword `yaml:"categories"`

	// MinConfidence is the floor below which a request routes to
	// general chat.
	MinConfidence float64 `yaml:"min_confidence,omitempty"`

	// Temperatures maps category name -> sampling temperature.
	// Categories not listed use DefaultTemperature.
	Temperatures       map[string]float64 `yaml:"temperatures,omitempty"`
	DefaultTemperature float64            `yaml:"default_temperature,omitempty"`

	// ThinkingBudgetTokens is the extended-thinking budget applied when
	// ultra-thinking engages.
	ThinkingBudgetTokens int `yaml:"thinking_budget_tokens,omitempty"`

	Fallback FallbackConfig        `yaml:"fallback,omitempty"`
	Retry    RetryConfig           `yaml:"retry,omitempty"`
	Modes    map[string]ModeConfig `yaml:"modes,omitempty"`
}

// Keyword is a classification trigger with a tunable weight.
// A zero weight means "use 1/len(category list)", which makes an
// unweighted list score as matched-count over list-size.
type Keyword struct {
	Text   string  `yaml:"text"`
	Weight float64 `yaml:"weight,omitempty"`
}

// RouteTarget specifies a provider and model combination.
type RouteTarget struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// FallbackConfig defines provider fallback chains.
type FallbackConfig struct {
	// Chains maps a failed provider -> ordered alternates.
	Chains map[string][]string `yaml:"chains,omitempty"`

	// ResearchChain overrides the generic chains for research requests,
	// which depend on a specific deep-research model.
	ResearchChain []RouteTarget `yaml:"research_chain,omitempty"`
}

// RetryConfig defines retry and backoff behavior for provider calls.
type RetryConfig struct {
	MaxRetries    int `yaml:"max_retries,omitempty"`
	BaseBackoffMs int `yaml:"base_backoff_ms,omitempty"`
	MaxBackoffMs  int `yaml:"max_backoff_ms,omitempty"`
}

// ModeConfig holds a developer mode's defaults.
type ModeConfig struct {
	Provider      string `yaml:"provider"`
	Model         string `yaml:"model"`
	UltraThinking bool   `yaml:"ultra_thinking"`
	SmartRouting  bool   `yaml:"smart_routing"`
}

// LoadRoutingConfig reads routing configuration from a YAML file.
func LoadRoutingConfig(path string) (*RoutingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg RoutingConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyRoutingDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the routing configuration for errors.
func (c *RoutingConfig) Validate() error {
	for name, keywords := range c.Categories {
		if len(keywords) == 0 {
			return fmt.Errorf("category %s has no keywords", name)
		}
		for _, kw := range keywords {
			if kw.Text == "" {
				return fmt.Errorf("category %s has an empty keyword", name)
			}
			if kw.Weight < 0 || kw.Weight > 1 {
				return fmt.Errorf("category %s keyword %q weight %.2f out of range", name, kw.Text, kw.Weight)
			}
		}
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min_confidence %.2f out of range", c.MinConfidence)
	}
	for mode, mc := range c.Modes {
		if mc.Provider == "" || mc.Model == "" {
			return fmt.Errorf("mode %s must set provider and model", mode)
		}
	}
	return nil
}

// DefaultRoutingConfig returns the built-in routing configuration.
func DefaultRoutingConfig() *RoutingConfig {
	cfg := &RoutingConfig{
		Categories: map[string][]Keyword{
			"research": {
				{Text: "research", Weight: 0.9},
				{Text: "what is", Weight: 0.8},
				{Text: "tell me about", Weight: 0.8},
				{Text: "explain", Weight: 0.6},
				{Text: "search", Weight: 0.6},
				{Text: "find", Weight: 0.5},
				{Text: "latest", Weight: 0.4},
				{Text: "trends", Weight: 0.4},
			},
			"debugging": {
				{Text: "debug", Weight: 0.9},
				{Text: "error", Weight: 0.9},
				{Text: "exception", Weight: 0.9},
				{Text: "stack trace", Weight: 0.9},
				{Text: "crash", Weight: 0.8},
				{Text: "broken", Weight: 0.7},
				{Text: "bug", Weight: 0.7},
				{Text: "fix", Weight: 0.7},
				{Text: "fails", Weight: 0.6},
			},
			"code_review": {
				{Text: "code review", Weight: 0.9},
				{Text: "review", Weight: 0.8},
				{Text: "check my code", Weight: 0.8},
				{Text: "refactor", Weight: 0.6},
				{Text: "feedback", Weight: 0.5},
				{Text: "improve", Weight: 0.5},
				{Text: "clean up", Weight: 0.5},
			},
			"testing": {
				{Text: "unit test", Weight: 0.9},
				{Text: "write tests", Weight: 0.9},
				{Text: "pytest", Weight: 0.9},
				{Text: "test case", Weight: 0.8},
				{Text: "coverage", Weight: 0.7},
				{Text: "test", Weight: 0.7},
			},
			"documentation": {
				{Text: "docstring", Weight: 0.9},
				{Text: "readme", Weight: 0.9},
				{Text: "documentation", Weight: 0.8},
				{Text: "api docs", Weight: 0.8},
				{Text: "document", Weight: 0.7},
				{Text: "comments", Weight: 0.5},
			},
			"security_audit": {
				{Text: "vulnerability", Weight: 0.9},
				{Text: "sql injection", Weight: 0.9},
				{Text: "xss", Weight: 0.9},
				{Text: "csrf", Weight: 0.9},
				{Text: "security", Weight: 0.8},
				{Text: "penetration", Weight: 0.8},
				{Text: "exploit", Weight: 0.7},
				{Text: "audit", Weight: 0.7},
			},
			"performance": {
				{Text: "performance", Weight: 0.8},
				{Text: "optimize", Weight: 0.8},
				{Text: "speed up", Weight: 0.8},
				{Text: "bottleneck", Weight: 0.8},
				{Text: "latency", Weight: 0.7},
				{Text: "profiling", Weight: 0.7},
				{Text: "slow", Weight: 0.6},
			},
			"github_ops": {
				{Text: "github", Weight: 0.9},
				{Text: "pull request", Weight: 0.9},
				{Text: "repository", Weight: 0.7},
				{Text: "commit", Weight: 0.6},
				{Text: "clone", Weight: 0.6},
				{Text: "branch", Weight: 0.5},
				{Text: "merge", Weight: 0.5},
				{Text: "push", Weight: 0.5},
			},
			"creative_writing": {
				{Text: "write a story", Weight: 0.9},
				{Text: "poem", Weight: 0.9},
				{Text: "blog post", Weight: 0.8},
				{Text: "fiction", Weight: 0.8},
				{Text: "story", Weight: 0.7},
				{Text: "essay", Weight: 0.7},
				{Text: "creative", Weight: 0.7},
			},
			"reasoning_analysis": {
				{Text: "pros and cons", Weight: 0.9},
				{Text: "reasoning", Weight: 0.8},
				{Text: "think through", Weight: 0.8},
				{Text: "step by step", Weight: 0.8},
				{Text: "analyze", Weight: 0.7},
				{Text: "evaluate", Weight: 0.6},
				{Text: "compare", Weight: 0.6},
				{Text: "logic", Weight: 0.6},
			},
			"general_chat": {
				{Text: "hello", Weight: 0.15},
				{Text: "how are you", Weight: 0.15},
				{Text: "thanks", Weight: 0.15},
				{Text: "good morning", Weight: 0.15},
				{Text: "what's up", Weight: 0.15},
			},
		},
		MinConfidence: 0.4,
		Temperatures: map[string]float64{
			"code_review":        0.3,
			"reasoning_analysis": 0.3,
			"creative_writing":   0.85,
		},
		DefaultTemperature:   0.7,
		ThinkingBudgetTokens: 16384,
		Fallback: FallbackConfig{
			Chains: map[string][]string{
				"openai":     {"anthropic", "perplexity"},
				"anthropic":  {"openai", "perplexity"},
				"perplexity": {"openai", "anthropic"},
			},
			ResearchChain: []RouteTarget{
				{Provider: "perplexity", Model: "sonar-deep-research"},
				{Provider: "anthropic", Model: "claude-opus-4-20250514"},
			},
		},
		Modes: map[string]ModeConfig{
			"junior": {
				Provider:      "anthropic",
				Model:         "claude-3-5-haiku-20241022",
				UltraThinking: false,
				SmartRouting:  false,
			},
			"senior": {
				Provider:      "anthropic",
				Model:         "claude-sonnet-4-20250514",
				UltraThinking: true,
				SmartRouting:  true,
			},
		},
	}

	applyRoutingDefaults(cfg)
	return cfg
}

func applyRoutingDefaults(cfg *RoutingConfig) {
	if cfg == nil {
		return
	}
	if cfg.MinConfidence == 0 {
		cfg.MinConfidence = 0.4
	}
	if cfg.DefaultTemperature == 0 {
		cfg.DefaultTemperature = 0.7
	}
	if cfg.ThinkingBudgetTokens == 0 {
		cfg.ThinkingBudgetTokens = 16384
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = 2
	}
	if cfg.Retry.BaseBackoffMs == 0 {
		cfg.Retry.BaseBackoffMs = 200
	}
	if cfg.Retry.MaxBackoffMs == 0 {
		cfg.Retry.MaxBackoffMs = 2000
	}
	if cfg.Retry.MaxBackoffMs < cfg.Retry.BaseBackoffMs {
		cfg.Retry.MaxBackoffMs = cfg.Retry.BaseBackoffMs
	}

	// Unweighted keywords score as matched-count over list-size.
	for name, keywords := range cfg.Categories {
		for i := range keywords {
			if keywords[i].Weight == 0 {
				keywords[i].Weight = 1.0 / float64(len(keywords))
			}
		}
		cfg.Categories[name] = keywords
	}
}

// Temperature returns the sampling temperature for a category.
func (c *RoutingConfig) Temperature(category string) float64 {
	if t, ok := c.Temperatures[category]; ok {
		return t
	}
	return c.DefaultTemperature
}
