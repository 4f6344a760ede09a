package adapter

// Usage captures normalized token usage.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Normalize fills TotalTokens when a provider omits it.
func (u Usage) Normalize() Usage {
	if u.TotalTokens == 0 && (u.PromptTokens > 0 || u.CompletionTokens > 0) {
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
	}
	return u
}

// Add returns the sum of two usages.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
		TotalTokens:      u.TotalTokens + other.TotalTokens,
	}
}

// CallReport captures metadata for one attempted provider call,
// successful or not, for fallback-chain observability.
type CallReport struct {
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Usage        Usage   `json:"usage"`
	CostUSD      float64 `json:"cost_usd"`
	Retries      int     `json:"retries"`
	FallbackUsed bool    `json:"fallback_used"`
	Error        string  `json:"error,omitempty"`
}
