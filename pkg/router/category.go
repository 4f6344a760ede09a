package router

import "fmt"

// Category is a task category a request can be classified into.
type Category string

const (
	CategoryGeneralChat       Category = "general_chat"
	CategoryCodeReview        Category = "code_review"
	CategoryTesting           Category = "testing"
	CategoryDocumentation     Category = "documentation"
	CategoryDebugging         Category = "debugging"
	CategorySecurityAudit     Category = "security_audit"
	CategoryPerformance       Category = "performance"
	CategoryResearch          Category = "research"
	CategoryGitHubOps         Category = "github_ops"
	CategoryCreativeWriting   Category = "creative_writing"
	CategoryReasoningAnalysis Category = "reasoning_analysis"
)

// AllCategories lists every category in a fixed order. Iteration over
// this slice keeps classification deterministic; never range over a
// category-keyed map when order matters.
var AllCategories = []Category{
	CategoryGeneralChat,
	CategoryCodeReview,
	CategoryTesting,
	CategoryDocumentation,
	CategoryDebugging,
	CategorySecurityAudit,
	CategoryPerformance,
	CategoryResearch,
	CategoryGitHubOps,
	CategoryCreativeWriting,
	CategoryReasoningAnalysis,
}

// priorityRank orders categories by the cost of misrouting them.
// Missing a debugging signal is costlier than misrouting a casual
// chat, so debugging wins score ties.
var priorityRank = map[Category]int{
	CategoryDebugging:         11,
	CategorySecurityAudit:     10,
	CategoryCodeReview:        9,
	CategoryTesting:           8,
	CategoryDocumentation:     7,
	CategoryPerformance:       6,
	CategoryResearch:          5,
	CategoryGitHubOps:         4,
	CategoryCreativeWriting:   3,
	CategoryReasoningAnalysis: 2,
	CategoryGeneralChat:       1,
}

// codeDependent marks categories that only make sense when the request
// actually contains code.
var codeDependent = map[Category]bool{
	CategoryCodeReview:    true,
	CategoryTesting:       true,
	CategoryDocumentation: true,
	CategorySecurityAudit: true,
	CategoryPerformance:   true,
}

// Rank returns the tiebreak priority of the category. Higher wins.
func (c Category) Rank() int {
	return priorityRank[c]
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := priorityRank[c]
	return ok
}

// ParseCategory validates a category name from config or a CLI flag.
func ParseCategory(name string) (Category, error) {
	category := Category(name)
	if !category.Valid() {
		return "", fmt.Errorf("unknown category %q", name)
	}
	return category, nil
}
