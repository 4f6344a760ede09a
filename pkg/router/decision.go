package router

// Override is an explicit manual provider/model selection. Manual
// selection always takes precedence over any automatic decision.
type Override struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Decision is the router's output, produced fresh per request.
type Decision struct {
	Provider             string   `json:"provider"`
	Model                string   `json:"model"`
	Temperature          float64  `json:"temperature"`
	ThinkingBudgetTokens *int     `json:"thinking_budget_tokens,omitempty"`
	Category             Category `json:"category"`
	Confidence           float64  `json:"confidence"`
	Reasons              []string `json:"reasons,omitempty"`
}

// Request is the inbound boundary contract consumed by the router.
type Request struct {
	Message          string `json:"message"`
	DeveloperMode    string `json:"developer_mode"`
	CategoryOverride string `json:"category_override,omitempty"`
	ProviderOverride string `json:"provider_override,omitempty"`
	ModelOverride    string `json:"model_override,omitempty"`
}
