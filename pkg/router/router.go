// Package router implements request classification and provider/model
// selection. Classification and routing are pure CPU work and never
// fail: weak signals degrade to general chat on the mode default.
package router

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/X10NLUN1X/xionimus/pkg/catalog"
	"github.com/X10NLUN1X/xionimus/pkg/config"
)

// Router produces routing decisions from classification results,
// consulting the model catalog and the developer mode policy.
type Router struct {
	cfg        *config.RoutingConfig
	catalog    *catalog.Catalog
	extractor  *Extractor
	classifier *Classifier
}

// NewRouter creates a router over the given config and catalog.
func NewRouter(cfg *config.RoutingConfig, cat *catalog.Catalog) *Router {
	if cfg == nil {
		cfg = config.DefaultRoutingConfig()
	}
	if cat == nil {
		cat = catalog.Default()
	}
	return &Router{
		cfg:        cfg,
		catalog:    cat,
		extractor:  NewExtractor(cfg),
		classifier: NewClassifier(cfg),
	}
}

// Classify extracts signals from a message and classifies it.
func (r *Router) Classify(message string) Result {
	return r.classifier.Classify(r.extractor.Extract(message))
}

// Decide handles a full inbound request: classification (unless the
// category is overridden), mode resolution, and routing.
func (r *Router) Decide(req Request) (Decision, error) {
	mode, err := r.cfg.Mode(req.DeveloperMode)
	if err != nil {
		return Decision{}, err
	}

	var result Result
	if req.CategoryOverride != "" {
		category, err := ParseCategory(req.CategoryOverride)
		if err != nil {
			return Decision{}, err
		}
		result = Result{
			Category:   category,
			Confidence: 1.0,
			Reasons:    []string{"category overridden by caller"},
		}
	} else {
		result = r.Classify(req.Message)
	}

	var override *Override
	if req.ProviderOverride != "" && req.ModelOverride != "" {
		override = &Override{Provider: req.ProviderOverride, Model: req.ModelOverride}
	}

	decision := r.Route(result.Category, result.Confidence, mode, override)
	decision.Reasons = append(result.Reasons, decision.Reasons...)
	return decision, nil
}

// Route produces a concrete (provider, model, temperature, thinking
// budget) tuple for a classified request. It never fails; catalog
// inconsistencies fall back to the mode default.
func (r *Router) Route(category Category, confidence float64, mode config.DeveloperMode, override *Override) Decision {
	decision := Decision{
		Category:    category,
		Confidence:  confidence,
		Temperature: r.cfg.DefaultTemperature,
	}

	if override != nil {
		decision.Provider = override.Provider
		decision.Model = override.Model
		decision.Reasons = append(decision.Reasons, "manual provider/model override")
		r.applyThinking(&decision, mode)
		return decision
	}

	decision.Provider = mode.Provider
	decision.Model = mode.Model

	if !mode.SmartRouting {
		// Junior is a fixed-cost, fixed-quality tier: the default
		// model for every category, never ultra-thinking.
		return decision
	}

	switch category {
	case CategoryResearch:
		target := r.researchTarget()
		decision.Provider = target.Provider
		decision.Model = target.Model
		decision.Reasons = append(decision.Reasons, "escalated to deep-research tier")
	case CategoryDebugging, CategorySecurityAudit:
		if entry, ok := r.catalog.MostCapable(mode.Provider); ok {
			decision.Model = entry.Model
			decision.Reasons = append(decision.Reasons, fmt.Sprintf("escalated to %s flagship", mode.Provider))
		} else {
			log.Warn().
				Str("provider", mode.Provider).
				Str("category", string(category)).
				Msg("no flagship model in catalog, keeping mode default")
		}
	case CategoryCodeReview, CategoryReasoningAnalysis, CategoryCreativeWriting:
		decision.Temperature = r.cfg.Temperature(string(category))
	}

	if _, ok := r.catalog.Get(decision.Provider, decision.Model); !ok {
		// Configuration inconsistency, not a request error.
		log.Warn().
			Str("provider", decision.Provider).
			Str("model", decision.Model).
			Msg("routed pair missing from catalog, falling back to mode default")
		decision.Provider = mode.Provider
		decision.Model = mode.Model
		decision.Reasons = append(decision.Reasons, "catalog miss, reverted to mode default")
	}

	r.applyThinking(&decision, mode)
	return decision
}

// applyThinking attaches the extended-thinking budget when the selected
// model supports it and the mode enables it.
func (r *Router) applyThinking(decision *Decision, mode config.DeveloperMode) {
	if !mode.UltraThinking {
		return
	}
	entry, ok := r.catalog.Get(decision.Provider, decision.Model)
	if !ok || !entry.SupportsExtendedThinking {
		return
	}
	budget := r.cfg.ThinkingBudgetTokens
	decision.ThinkingBudgetTokens = &budget
}

// researchTarget picks the deep-research model, preferring the
// configured research chain head.
func (r *Router) researchTarget() config.RouteTarget {
	if len(r.cfg.Fallback.ResearchChain) > 0 {
		return r.cfg.Fallback.ResearchChain[0]
	}
	for _, provider := range []string{"perplexity", "openai", "anthropic"} {
		if entry, ok := r.catalog.DeepResearch(provider); ok {
			return config.RouteTarget{Provider: entry.Provider, Model: entry.Model}
		}
	}
	return config.RouteTarget{Provider: "perplexity", Model: "sonar-deep-research"}
}

// Catalog exposes the router's model catalog.
func (r *Router) Catalog() *catalog.Catalog {
	return r.catalog
}

// Config exposes the router's routing configuration.
func (r *Router) Config() *config.RoutingConfig {
	return r.cfg
}
