package adapter

import (
	"context"
	"fmt"
	"sync"
)

// MockAdapter returns deterministic responses for local runs and tests.
// Failures can be scripted per prompt or globally to exercise retry and
// fallback paths.
type MockAdapter struct {
	mu sync.Mutex

	name            string
	responses       map[string]string
	defaultResponse string

	// Err fails every call when set.
	Err error
	// FailFirst fails the first N calls before succeeding.
	FailFirst int
	// Usage is attached to every successful response.
	Usage *Usage

	calls int
}

// NewMockAdapter creates a mock adapter with a default response.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		name:            "mock",
		responses:       make(map[string]string),
		defaultResponse: "mock response:",
	}
}

// NewMockAdapterWithResponses creates a mock adapter with predefined responses.
func NewMockAdapterWithResponses(responses map[string]string, defaultResponse string) *MockAdapter {
	if defaultResponse == "" {
		defaultResponse = "mock response:"
	}
	return &MockAdapter{name: "mock", responses: responses, defaultResponse: defaultResponse}
}

// WithName renames the mock so it can stand in for a real provider.
func (a *MockAdapter) WithName(name string) *MockAdapter {
	a.name = name
	return a
}

// Name returns the adapter identifier.
func (a *MockAdapter) Name() string {
	return a.name
}

// Models returns the list of supported mock models.
func (a *MockAdapter) Models() []string {
	return []string{"mock-1"}
}

// Calls returns the number of Generate invocations.
func (a *MockAdapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// Generate returns a deterministic response for the prompt.
func (a *MockAdapter) Generate(_ context.Context, req Request) (*Response, error) {
	a.mu.Lock()
	a.calls++
	call := a.calls
	a.mu.Unlock()

	if a.Err != nil {
		return nil, a.Err
	}
	if call <= a.FailFirst {
		return nil, &AdapterError{Status: 503, Err: fmt.Errorf("mock transient failure %d", call)}
	}

	model := req.Model
	if model == "" {
		model = "mock-1"
	}
	content, ok := a.responses[req.Prompt]
	if !ok {
		content = fmt.Sprintf("%s\n%s", a.defaultResponse, req.Prompt)
	}
	return &Response{
		Content:  content,
		Provider: a.name,
		Model:    model,
		Usage:    a.Usage,
	}, nil
}
