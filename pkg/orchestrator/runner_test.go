package orchestrator

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/X10NLUN1X/xionimus/pkg/adapter"
	"github.com/X10NLUN1X/xionimus/pkg/catalog"
	"github.com/X10NLUN1X/xionimus/pkg/config"
)

func fastRetryConfig() *config.RoutingConfig {
	cfg := config.DefaultRoutingConfig()
	cfg.Retry.MaxRetries = 2
	cfg.Retry.BaseBackoffMs = 1
	cfg.Retry.MaxBackoffMs = 4
	return cfg
}

func allProviders() *config.Registry {
	return config.NewRegistry(map[string]bool{
		"anthropic":  true,
		"openai":     true,
		"perplexity": true,
	})
}

func TestExecutePlanAccumulatesContext(t *testing.T) {
	anthropic := adapter.NewMockAdapter().WithName("anthropic")
	openai := adapter.NewMockAdapter().WithName("openai")

	o := New(fastRetryConfig(), catalog.Default(), allProviders(), map[string]adapter.Adapter{
		"anthropic": anthropic,
		"openai":    openai,
	})

	plan := NewPlan([]Role{RoleArchitect, RoleEngineer})
	result := o.ExecutePlan(context.Background(), "Build a login service", plan)

	if result.Status != RunCompleted {
		t.Fatalf("expected completed run, got %s (%s)", result.Status, result.Reason)
	}
	if result.RunID == "" {
		t.Fatalf("expected a run id")
	}
	if len(result.Results) != 2 {
		t.Fatalf("expected 2 role results, got %d", len(result.Results))
	}
	if result.Results[0].Role != RoleArchitect || result.Results[1].Role != RoleEngineer {
		t.Fatalf("roles out of order: %+v", result.Results)
	}
	for _, rr := range result.Results {
		if rr.Status != StatusCompleted {
			t.Fatalf("role %s not completed: %+v", rr.Role, rr)
		}
	}

	// The mock echoes its prompt, so the engineer's output proves the
	// architect's output was in its context.
	engineerOut := result.Results[1].Output
	if !strings.Contains(engineerOut, "### architect") {
		t.Fatalf("engineer did not see architect output:\n%s", engineerOut)
	}
	if !strings.Contains(engineerOut, "Build a login service") {
		t.Fatalf("engineer did not see the request:\n%s", engineerOut)
	}
}

func TestExecutePlanPartialFailure(t *testing.T) {
	hardFailure := &adapter.AdapterError{Status: 401}
	anthropic := adapter.NewMockAdapter().WithName("anthropic")
	openai := adapter.NewMockAdapter().WithName("openai")
	openai.Err = hardFailure

	o := New(fastRetryConfig(), catalog.Default(), config.NewRegistry(map[string]bool{
		"openai": true,
	}), map[string]adapter.Adapter{
		"anthropic": anthropic,
		"openai":    openai,
	})

	plan := NewPlan([]Role{RoleArchitect, RoleUIUX, RoleDocumenter})
	// architect is anthropic-bound but anthropic is unavailable in the
	// registry, so its chain is empty of anthropic; openai hops fail
	// with a non-retryable error.
	result := o.ExecutePlan(context.Background(), "Design a dashboard", plan)

	if result.Status != RunAborted {
		t.Fatalf("expected aborted run, got %s", result.Status)
	}
	if len(result.Results) != 3 {
		t.Fatalf("expected 3 role results, got %d", len(result.Results))
	}
	if result.Results[0].Status != StatusFailed {
		t.Fatalf("expected first role failed, got %s", result.Results[0].Status)
	}
	for _, rr := range result.Results[1:] {
		if rr.Status != StatusSkipped {
			t.Fatalf("expected role %s skipped, got %s", rr.Role, rr.Status)
		}
	}
	if result.Reason == "" {
		t.Fatalf("aborted run must carry a reason")
	}
}

func TestExecutePlanFailureKeepsCompletedResults(t *testing.T) {
	anthropic := adapter.NewMockAdapter().WithName("anthropic")
	openai := adapter.NewMockAdapter().WithName("openai")
	openai.Err = &adapter.AdapterError{Status: 400}

	// No fallback chains: the failing role cannot escape to anthropic.
	cfg := fastRetryConfig()
	cfg.Fallback.Chains = map[string][]string{}

	o := New(cfg, catalog.Default(), allProviders(), map[string]adapter.Adapter{
		"anthropic": anthropic,
		"openai":    openai,
	})

	result := o.ExecutePlan(context.Background(), "Ship it", NewPlan([]Role{RoleArchitect, RoleUIUX}))
	if result.Status != RunAborted {
		t.Fatalf("expected aborted run, got %s", result.Status)
	}
	if result.Results[0].Status != StatusCompleted {
		t.Fatalf("completed architect result must be preserved: %+v", result.Results[0])
	}
	if result.Results[1].Status != StatusFailed {
		t.Fatalf("expected ui_ux failed, got %s", result.Results[1].Status)
	}
}

func TestExecutePlanFallsBackAcrossProviders(t *testing.T) {
	anthropic := adapter.NewMockAdapter().WithName("anthropic")
	anthropic.Err = &adapter.AdapterError{Status: 401}
	openai := adapter.NewMockAdapter().WithName("openai")

	o := New(fastRetryConfig(), catalog.Default(), allProviders(), map[string]adapter.Adapter{
		"anthropic": anthropic,
		"openai":    openai,
	})

	result := o.ExecutePlan(context.Background(), "Plan something", NewPlan([]Role{RoleArchitect}))

	if result.Status != RunCompleted {
		t.Fatalf("expected completed run via fallback, got %s (%s)", result.Status, result.Reason)
	}
	rr := result.Results[0]
	if rr.Status != StatusCompleted {
		t.Fatalf("expected completed role, got %+v", rr)
	}
	if rr.Provider != "openai" {
		t.Fatalf("expected openai fallback, got %s", rr.Provider)
	}

	// Two call reports: the failed primary and the fallback success.
	if len(rr.Calls) != 2 {
		t.Fatalf("expected 2 call reports, got %d", len(rr.Calls))
	}
	if rr.Calls[0].Error == "" || rr.Calls[0].FallbackUsed {
		t.Fatalf("first report should be the failed primary: %+v", rr.Calls[0])
	}
	if rr.Calls[1].Error != "" || !rr.Calls[1].FallbackUsed {
		t.Fatalf("second report should be the fallback success: %+v", rr.Calls[1])
	}
}

func TestExecutePlanRetriesTransientFailures(t *testing.T) {
	anthropic := adapter.NewMockAdapter().WithName("anthropic")
	anthropic.FailFirst = 2

	o := New(fastRetryConfig(), catalog.Default(), allProviders(), map[string]adapter.Adapter{
		"anthropic": anthropic,
	})

	result := o.ExecutePlan(context.Background(), "Plan something", NewPlan([]Role{RoleArchitect}))

	if result.Status != RunCompleted {
		t.Fatalf("expected completed run after retries, got %s (%s)", result.Status, result.Reason)
	}
	rr := result.Results[0]
	if rr.Provider != "anthropic" {
		t.Fatalf("retries should stay on the same provider, got %s", rr.Provider)
	}
	if anthropic.Calls() != 3 {
		t.Fatalf("expected 3 attempts, got %d", anthropic.Calls())
	}
	if len(rr.Calls) != 1 || rr.Calls[0].Retries != 2 {
		t.Fatalf("expected one report with 2 retries: %+v", rr.Calls)
	}
}

func TestExecutePlanCancellationSkipsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	anthropic := adapter.NewMockAdapter().WithName("anthropic")
	o := New(fastRetryConfig(), catalog.Default(), allProviders(), map[string]adapter.Adapter{
		"anthropic": anthropic,
	})

	result := o.ExecutePlan(ctx, "Plan something", NewPlan([]Role{RoleArchitect, RoleEngineer}))

	if result.Status != RunAborted {
		t.Fatalf("expected aborted run, got %s", result.Status)
	}
	for _, rr := range result.Results {
		if rr.Status != StatusSkipped {
			t.Fatalf("expected role %s skipped, got %s", rr.Role, rr.Status)
		}
	}
	if anthropic.Calls() != 0 {
		t.Fatalf("no provider calls expected after cancellation, got %d", anthropic.Calls())
	}
}

func TestExecutePlanBrokenTemplateAborts(t *testing.T) {
	anthropic := adapter.NewMockAdapter().WithName("anthropic")
	o := New(fastRetryConfig(), catalog.Default(), allProviders(), map[string]adapter.Adapter{
		"anthropic": anthropic,
	})

	broken := Spec{
		Role:     Role("custom"),
		Provider: "anthropic",
		Model:    "claude-sonnet-4-20250514",
		Prompt:   "{{.Request",
	}
	result := o.ExecutePlan(context.Background(), "anything", Plan{Roles: []Spec{broken}})

	if result.Status != RunAborted {
		t.Fatalf("expected aborted run, got %s", result.Status)
	}
	if result.Results[0].Status != StatusFailed {
		t.Fatalf("expected failed role, got %s", result.Results[0].Status)
	}
	if anthropic.Calls() != 0 {
		t.Fatalf("broken template must not reach the provider")
	}
}

func TestExecutePlanCostAccounting(t *testing.T) {
	anthropic := adapter.NewMockAdapter().WithName("anthropic")
	anthropic.Usage = &adapter.Usage{PromptTokens: 1000, CompletionTokens: 500}

	o := New(fastRetryConfig(), catalog.Default(), allProviders(), map[string]adapter.Adapter{
		"anthropic": anthropic,
	})

	result := o.ExecutePlan(context.Background(), "Plan something", NewPlan([]Role{RoleEngineer}))

	if result.Status != RunCompleted {
		t.Fatalf("expected completed run, got %s (%s)", result.Status, result.Reason)
	}
	if result.Cost.Currency != "USD" {
		t.Fatalf("expected USD, got %s", result.Cost.Currency)
	}
	if result.Cost.TotalUsage.TotalTokens != 1500 {
		t.Fatalf("expected 1500 total tokens, got %d", result.Cost.TotalUsage.TotalTokens)
	}

	// claude-sonnet-4: $3/M input, $15/M output.
	want := 0.003 + 0.0075
	if math.Abs(result.Cost.TotalUSD-want) > 1e-9 {
		t.Fatalf("cost: got %f want %f", result.Cost.TotalUSD, want)
	}
}

func TestComputeBackoffCapped(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 200 * time.Millisecond},
		{1, 400 * time.Millisecond},
		{2, 800 * time.Millisecond},
		{3, 1600 * time.Millisecond},
		{4, 2000 * time.Millisecond},
		{10, 2000 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := computeBackoff(200, 2000, tc.attempt); got != tc.want {
			t.Errorf("attempt %d: got %v want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestSleepWithContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sleepWithContext(ctx, time.Second); err == nil {
		t.Fatalf("expected context error")
	}
	if err := sleepWithContext(context.Background(), 0); err != nil {
		t.Fatalf("zero sleep should return immediately: %v", err)
	}
}
