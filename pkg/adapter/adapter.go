// Package adapter wraps the LLM provider APIs behind a single
// interface. The routing core decides which adapter and model to use;
// adapters only own the wire call.
package adapter

import "context"

// Request carries the generation parameters selected by the router.
type Request struct {
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int

	// ThinkingBudgetTokens enables extended thinking when the model
	// supports it. Nil means disabled.
	ThinkingBudgetTokens *int
}

// Response is a normalized provider response.
type Response struct {
	Content  string `json:"content"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Usage    *Usage `json:"usage,omitempty"`
}

// Adapter is the interface implemented by each LLM provider.
type Adapter interface {
	// Generate sends a prompt to the model and returns the response.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name returns the adapter's identifier.
	Name() string

	// Models returns the list of supported models.
	Models() []string
}

const defaultMaxTokens = 4096

func maxTokensOrDefault(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return defaultMaxTokens
}
