package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/X10NLUN1X/xionimus/pkg/adapter"
	"github.com/X10NLUN1X/xionimus/pkg/catalog"
	"github.com/X10NLUN1X/xionimus/pkg/config"
	"github.com/X10NLUN1X/xionimus/pkg/router"
)

// Status values for a role invocation.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Run-level outcomes.
const (
	RunCompleted = "completed"
	RunAborted   = "aborted"
)

// RoleResult captures one role invocation.
type RoleResult struct {
	Role     Role                 `json:"role"`
	Provider string               `json:"provider"`
	Model    string               `json:"model"`
	Output   string               `json:"result,omitempty"`
	Status   Status               `json:"status"`
	Error    string               `json:"error,omitempty"`
	Duration time.Duration        `json:"duration"`
	Calls    []adapter.CallReport `json:"calls,omitempty"`
}

// RunResult is the aggregate orchestration output: the ordered per-role
// results plus run metadata. On abort, completed results are preserved
// and the remaining roles are marked skipped.
type RunResult struct {
	RunID   string       `json:"run_id"`
	Status  string       `json:"status"`
	Reason  string       `json:"reason,omitempty"`
	Results []RoleResult `json:"results"`
	Cost    CostReport   `json:"cost"`
}

// Orchestrator executes role plans sequentially by priority.
type Orchestrator struct {
	adapters  map[string]adapter.Adapter
	resolver  *router.Resolver
	extractor *router.Extractor
	catalog   *catalog.Catalog
	retry     config.RetryConfig
}

// New creates an orchestrator. The adapters map is keyed by provider
// name; the registry governs which providers fallback chains may visit.
func New(cfg *config.RoutingConfig, cat *catalog.Catalog, registry *config.Registry, adapters map[string]adapter.Adapter) *Orchestrator {
	if cfg == nil {
		cfg = config.DefaultRoutingConfig()
	}
	if cat == nil {
		cat = catalog.Default()
	}
	return &Orchestrator{
		adapters:  adapters,
		resolver:  router.NewResolver(cfg, cat, registry),
		extractor: router.NewExtractor(cfg),
		catalog:   cat,
		retry:     cfg.Retry,
	}
}

// Execute plans and runs the role sequence for a request.
func (o *Orchestrator) Execute(ctx context.Context, request string) *RunResult {
	signals := o.extractor.Extract(request)
	plan := BuildPlan(request, signals)
	return o.ExecutePlan(ctx, request, plan)
}

// ExecutePlan runs an explicit plan. Roles execute strictly
// sequentially in plan order; each completed role's output joins the
// context visible to later roles, never the other way around.
func (o *Orchestrator) ExecutePlan(ctx context.Context, request string, plan Plan) *RunResult {
	runID := uuid.New().String()
	tracker := newCostTracker(o.catalog)
	result := &RunResult{RunID: runID, Status: RunCompleted}

	log.Info().
		Str("run_id", runID).
		Int("roles", len(plan.Roles)).
		Msg("orchestration started")

	var contextParts []string
	aborted := false

	for _, spec := range plan.Roles {
		if aborted {
			result.Results = append(result.Results, RoleResult{
				Role: spec.Role, Provider: spec.Provider, Model: spec.Model, Status: StatusSkipped,
			})
			continue
		}

		// Cancellation takes effect between role executions; a role
		// already dispatched runs to completion or provider timeout.
		if err := ctx.Err(); err != nil {
			aborted = true
			result.Status = RunAborted
			result.Reason = fmt.Sprintf("canceled before role %s: %v", spec.Role, err)
			result.Results = append(result.Results, RoleResult{
				Role: spec.Role, Provider: spec.Provider, Model: spec.Model, Status: StatusSkipped,
			})
			continue
		}

		prompt, err := renderPrompt(spec.Prompt, request, contextParts)
		if err != nil {
			// Broken role template is a configuration defect, not a
			// provider failure; abort the rest of the plan.
			aborted = true
			result.Status = RunAborted
			result.Reason = fmt.Sprintf("role %s prompt template: %v", spec.Role, err)
			result.Results = append(result.Results, RoleResult{
				Role: spec.Role, Provider: spec.Provider, Model: spec.Model,
				Status: StatusFailed, Error: err.Error(),
			})
			continue
		}

		start := time.Now()
		resp, reports, callErr := o.callWithFallback(ctx, spec, prompt)
		tracker.record(reports)

		roleResult := RoleResult{
			Role:     spec.Role,
			Provider: spec.Provider,
			Model:    spec.Model,
			Duration: time.Since(start),
			Calls:    reports,
		}

		if callErr != nil {
			roleResult.Status = StatusFailed
			roleResult.Error = callErr.Error()
			result.Results = append(result.Results, roleResult)
			aborted = true
			result.Status = RunAborted
			result.Reason = fmt.Sprintf("role %s: %v", spec.Role, callErr)
			log.Warn().
				Str("run_id", runID).
				Str("role", string(spec.Role)).
				Err(callErr).
				Msg("role failed, aborting remaining plan")
			continue
		}

		roleResult.Status = StatusCompleted
		roleResult.Provider = resp.Provider
		roleResult.Model = resp.Model
		roleResult.Output = resp.Content
		result.Results = append(result.Results, roleResult)

		contextParts = append(contextParts, fmt.Sprintf("### %s\n%s", spec.Role, resp.Content))

		log.Info().
			Str("run_id", runID).
			Str("role", string(spec.Role)).
			Str("provider", resp.Provider).
			Dur("duration", roleResult.Duration).
			Msg("role completed")
	}

	result.Cost = tracker.report()
	return result
}

// callWithFallback walks the role's provider chain, retrying transient
// failures on each hop before advancing.
func (o *Orchestrator) callWithFallback(ctx context.Context, spec Spec, prompt string) (*adapter.Response, []adapter.CallReport, error) {
	targets := o.resolver.Chain(router.Decision{Provider: spec.Provider, Model: spec.Model})
	if len(targets) == 0 {
		return nil, nil, fmt.Errorf("role %s: %w", spec.Role, router.ErrProvidersExhausted)
	}

	var reports []adapter.CallReport
	var lastErr error

	for idx, target := range targets {
		adapterImpl, ok := o.adapters[target.Provider]
		if !ok {
			lastErr = fmt.Errorf("provider %s: %w", target.Provider, router.ErrProviderUnavailable)
			continue
		}

		req := adapter.Request{
			Model:       target.Model,
			Prompt:      prompt,
			Temperature: spec.Temperature,
		}

		for attempt := 0; attempt <= o.retry.MaxRetries; attempt++ {
			resp, err := adapterImpl.Generate(ctx, req)
			if err == nil {
				usage := adapter.Usage{}
				if resp.Usage != nil {
					usage = resp.Usage.Normalize()
				}
				reports = append(reports, adapter.CallReport{
					Provider:     target.Provider,
					Model:        target.Model,
					Usage:        usage,
					CostUSD:      o.costOf(target.Provider, target.Model, usage),
					Retries:      attempt,
					FallbackUsed: idx > 0,
				})
				return resp, reports, nil
			}

			lastErr = err
			if !adapter.IsTransient(err) || attempt == o.retry.MaxRetries {
				reports = append(reports, adapter.CallReport{
					Provider:     target.Provider,
					Model:        target.Model,
					Retries:      attempt,
					FallbackUsed: idx > 0,
					Error:        err.Error(),
				})
				break
			}

			backoff := computeBackoff(o.retry.BaseBackoffMs, o.retry.MaxBackoffMs, attempt)
			if err := sleepWithContext(ctx, backoff); err != nil {
				return nil, reports, err
			}
		}
	}

	if lastErr == nil {
		lastErr = router.ErrProvidersExhausted
	}
	return nil, reports, fmt.Errorf("role %s: %w (last: %v)", spec.Role, router.ErrProvidersExhausted, lastErr)
}

func (o *Orchestrator) costOf(provider, model string, usage adapter.Usage) float64 {
	entry, ok := o.catalog.Get(provider, model)
	if !ok {
		return 0
	}
	return entry.Cost(usage.PromptTokens, usage.CompletionTokens)
}

func renderPrompt(promptTemplate, request string, contextParts []string) (string, error) {
	tmpl, err := template.New("prompt").Parse(promptTemplate)
	if err != nil {
		return "", err
	}

	data := map[string]any{
		"Request": request,
		"Context": strings.Join(contextParts, "\n\n"),
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func computeBackoff(baseMs, maxMs, attempt int) time.Duration {
	backoff := time.Duration(baseMs) * time.Millisecond
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff >= time.Duration(maxMs)*time.Millisecond {
			return time.Duration(maxMs) * time.Millisecond
		}
	}
	if backoff > time.Duration(maxMs)*time.Millisecond {
		return time.Duration(maxMs) * time.Millisecond
	}
	return backoff
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
