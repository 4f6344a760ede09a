package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	AnthropicAPIKey  string
	OpenAIAPIKey     string
	PerplexityAPIKey string
	GoogleAPIKey     string
	RoutingConfig    *RoutingConfig
	ConfigDir        string
}

// FileConfig represents the structure of ~/.xionimus/config.yaml
type FileConfig struct {
	APIKeys APIKeysConfig `yaml:"api_keys"`
}

// APIKeysConfig holds API key configuration from file.
type APIKeysConfig struct {
	Anthropic  string `yaml:"anthropic"`
	OpenAI     string `yaml:"openai"`
	Perplexity string `yaml:"perplexity"`
	Google     string `yaml:"google"`
}

// Load reads configuration from config files and environment variables.
// Environment variables take precedence over file configuration.
func Load() (*Config, error) {
	return load("")
}

// LoadWithRoutingFile loads config with a specific routing file.
func LoadWithRoutingFile(routingPath string) (*Config, error) {
	if routingPath == "" {
		return nil, fmt.Errorf("routing file path is required")
	}
	return load(routingPath)
}

func load(routingPath string) (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	fileConfig := loadFileConfig(filepath.Join(configDir, "config.yaml"))

	cfg := &Config{
		AnthropicAPIKey:  getEnvOrDefault("ANTHROPIC_API_KEY", fileConfig.APIKeys.Anthropic),
		OpenAIAPIKey:     getEnvOrDefault("OPENAI_API_KEY", fileConfig.APIKeys.OpenAI),
		PerplexityAPIKey: getEnvOrDefault("PERPLEXITY_API_KEY", fileConfig.APIKeys.Perplexity),
		GoogleAPIKey:     getEnvOrDefault("GOOGLE_API_KEY", fileConfig.APIKeys.Google),
		ConfigDir:        configDir,
	}

	if routingPath == "" {
		routingPath = filepath.Join(configDir, "routing.yaml")
		if _, err := os.Stat(routingPath); err != nil {
			cfg.RoutingConfig = DefaultRoutingConfig()
			return cfg, nil
		}
	}

	routing, err := LoadRoutingConfig(routingPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load routing config from %s: %w", routingPath, err)
	}
	cfg.RoutingConfig = routing

	return cfg, nil
}

// HasProvider returns true if the API key for the given provider is configured.
func (c *Config) HasProvider(name string) bool {
	switch name {
	case "anthropic":
		return c.AnthropicAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	case "perplexity":
		return c.PerplexityAPIKey != ""
	case "google":
		return c.GoogleAPIKey != ""
	default:
		return false
	}
}

// Registry reports provider availability at lookup time. It is an
// explicit value injected into the router and resolver so that tests
// never have to mutate process environment.
type Registry struct {
	available map[string]bool
}

// NewRegistry builds a registry from explicit availability facts.
func NewRegistry(available map[string]bool) *Registry {
	m := make(map[string]bool, len(available))
	for name, ok := range available {
		m[name] = ok
	}
	return &Registry{available: m}
}

// Registry derives provider availability from configured credentials.
func (c *Config) Registry() *Registry {
	return NewRegistry(map[string]bool{
		"anthropic":  c.HasProvider("anthropic"),
		"openai":     c.HasProvider("openai"),
		"perplexity": c.HasProvider("perplexity"),
		"google":     c.HasProvider("google"),
	})
}

// Available reports whether the provider has usable credentials.
func (r *Registry) Available(provider string) bool {
	if r == nil {
		return false
	}
	return r.available[provider]
}

// Providers returns the names of all registered providers.
func (r *Registry) Providers() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.available))
	for name := range r.available {
		names = append(names, name)
	}
	return names
}

// MarkUnavailable records a runtime provider failure so later lookups
// skip the provider within the same request scope.
func (r *Registry) MarkUnavailable(provider string) {
	if r == nil {
		return
	}
	r.available[provider] = false
}

// loadFileConfig reads the config file, returning empty config if not found.
func loadFileConfig(path string) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, cfg) // Ignore parse errors, use defaults
	return cfg
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".xionimus")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
