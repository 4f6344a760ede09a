package router

import (
	"errors"

	"github.com/X10NLUN1X/xionimus/pkg/catalog"
	"github.com/X10NLUN1X/xionimus/pkg/config"
)

// ErrProvidersExhausted is returned when every candidate provider in a
// fallback chain has been tried or is unavailable. It is fatal for the
// current request and must be surfaced to the caller.
var ErrProvidersExhausted = errors.New("all providers exhausted")

// ErrProviderUnavailable marks a provider that lacks credentials or is
// administratively disabled. The fallback chain advances without
// attempting a call.
var ErrProviderUnavailable = errors.New("provider unavailable")

// Resolver walks fixed provider precedence chains after failures. It is
// consulted only on provider-level failure (missing credentials,
// timeout, 5xx), never on misclassification.
type Resolver struct {
	cfg      *config.RoutingConfig
	catalog  *catalog.Catalog
	registry *config.Registry
}

// NewResolver creates a resolver over the given chains, catalog, and
// availability registry.
func NewResolver(cfg *config.RoutingConfig, cat *catalog.Catalog, registry *config.Registry) *Resolver {
	if cfg == nil {
		cfg = config.DefaultRoutingConfig()
	}
	if cat == nil {
		cat = catalog.Default()
	}
	return &Resolver{cfg: cfg, catalog: cat, registry: registry}
}

// Next returns the next candidate after failedProvider for the given
// category, skipping providers already tried or currently unavailable.
// A candidate appears at most once per request; when the chain is spent
// the second return is false.
func (r *Resolver) Next(failedProvider string, category Category, tried []string) (config.RouteTarget, bool) {
	seen := make(map[string]bool, len(tried)+1)
	seen[failedProvider] = true
	for _, p := range tried {
		seen[p] = true
	}

	for _, target := range r.chainAfter(failedProvider, category) {
		if seen[target.Provider] {
			continue
		}
		seen[target.Provider] = true
		if !r.registry.Available(target.Provider) {
			continue
		}
		return target, true
	}
	return config.RouteTarget{}, false
}

// Chain returns the full ordered candidate list for a decision: the
// primary target first, then each fallback hop, availability-filtered.
// Unavailable primaries are dropped so the caller never attempts them.
func (r *Resolver) Chain(decision Decision) []config.RouteTarget {
	targets := []config.RouteTarget{{Provider: decision.Provider, Model: decision.Model}}
	for _, hop := range r.chainAfter(decision.Provider, decision.Category) {
		if hop.Provider == decision.Provider {
			continue
		}
		targets = append(targets, hop)
	}

	var out []config.RouteTarget
	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		if seen[t.Provider] || !r.registry.Available(t.Provider) {
			continue
		}
		seen[t.Provider] = true
		out = append(out, t)
	}
	return out
}

// chainAfter lists the raw fallback hops for a provider and category,
// before availability filtering.
func (r *Resolver) chainAfter(provider string, category Category) []config.RouteTarget {
	// Research quality depends on a specific model capability, so its
	// chain is fixed targets rather than the generic provider order.
	if category == CategoryResearch && len(r.cfg.Fallback.ResearchChain) > 0 {
		return r.cfg.Fallback.ResearchChain
	}

	names := r.cfg.Fallback.Chains[provider]
	targets := make([]config.RouteTarget, 0, len(names))
	for _, name := range names {
		targets = append(targets, config.RouteTarget{
			Provider: name,
			Model:    r.hopModel(name),
		})
	}
	return targets
}

// hopModel selects a model on the fallback provider, preferring the
// balanced tier.
func (r *Resolver) hopModel(provider string) string {
	for _, role := range []catalog.Role{catalog.RoleBalanced, catalog.RoleFast, catalog.RoleFlagship} {
		if entry, ok := r.catalog.ByRole(provider, role); ok {
			return entry.Model
		}
	}
	models := r.catalog.Models(provider)
	if len(models) > 0 {
		return models[0].Model
	}
	return ""
}
