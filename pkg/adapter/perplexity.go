package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const perplexityBaseURL = "https://api.perplexity.ai"

// PerplexityAdapter implements the Adapter interface for Sonar models.
// Perplexity uses an OpenAI-compatible API format; there is no official
// Go SDK, so the call goes over plain HTTP.
type PerplexityAdapter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// perplexityRequest represents the OpenAI-compatible request format.
type perplexityRequest struct {
	Model       string              `json:"model"`
	Messages    []perplexityMessage `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature,omitempty"`
}

// perplexityMessage represents a chat message.
type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// perplexityResponse represents the OpenAI-compatible response format.
type perplexityResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// NewPerplexityAdapter creates a new Perplexity adapter.
func NewPerplexityAdapter(apiKey string) (*PerplexityAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("perplexity API key is required")
	}

	return &PerplexityAdapter{
		apiKey:     apiKey,
		baseURL:    perplexityBaseURL,
		httpClient: &http.Client{},
	}, nil
}

// Name returns the adapter identifier.
func (a *PerplexityAdapter) Name() string {
	return "perplexity"
}

// Models returns the list of supported Sonar models.
func (a *PerplexityAdapter) Models() []string {
	return []string{
		"sonar",
		"sonar-pro",
		"sonar-deep-research",
	}
}

// Generate sends a prompt to Perplexity and returns the response.
func (a *PerplexityAdapter) Generate(ctx context.Context, req Request) (*Response, error) {
	reqBody := perplexityRequest{
		Model: req.Model,
		Messages: []perplexityMessage{
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens:   maxTokensOrDefault(req),
		Temperature: req.Temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, &AdapterError{Temporary: true, Err: fmt.Errorf("perplexity API request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &AdapterError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("perplexity API returned status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var pplxResp perplexityResponse
	if err := json.Unmarshal(body, &pplxResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if pplxResp.Error != nil {
		return nil, fmt.Errorf("perplexity API error: %s (type: %s)", pplxResp.Error.Message, pplxResp.Error.Type)
	}

	if len(pplxResp.Choices) == 0 {
		return nil, fmt.Errorf("perplexity returned no choices")
	}

	return &Response{
		Content:  pplxResp.Choices[0].Message.Content,
		Provider: a.Name(),
		Model:    req.Model,
		Usage: &Usage{
			PromptTokens:     pplxResp.Usage.PromptTokens,
			CompletionTokens: pplxResp.Usage.CompletionTokens,
			TotalTokens:      pplxResp.Usage.TotalTokens,
		},
	}, nil
}
