package orchestrator

import (
	"sort"
	"strings"

	"github.com/X10NLUN1X/xionimus/pkg/router"
)

// roleKeywords maps each role to the request wording that activates it.
// The same lexical signals that drive chat classification drive role
// selection, just mapped to roles instead of categories.
var roleKeywords = map[Role][]string{
	RoleArchitect:  {"architecture", "architect", "system design", "design the system", "structure", "plan the"},
	RoleEngineer:   {"implement", "build", "create", "develop", "feature", "write a function", "code up", "add a"},
	RoleUIUX:       {"ui", "ux", "frontend", "interface", "layout", "css", "user experience", "page", "component"},
	RoleTester:     {"test", "coverage", "verify", "validate"},
	RoleDebugger:   {"debug", "fix", "error", "bug", "broken", "crash", "not working"},
	RoleDocumenter: {"document", "docs", "readme", "explain", "comment"},
}

// Plan is an ordered role execution sequence.
type Plan struct {
	Roles []Spec
}

// BuildPlan selects the role subset relevant to a request and orders it
// by priority, with declaration order as tie-break. A request with an
// error pattern always activates the debugger; an engineering request
// pulls in the supporting crew around the engineer.
func BuildPlan(message string, signals router.SignalSet) Plan {
	lowered := strings.ToLower(message)

	selected := make(map[Role]bool)
	for role, keywords := range roleKeywords {
		for _, kw := range keywords {
			if containsWord(lowered, kw) {
				selected[role] = true
				break
			}
		}
	}

	if signals.HasErrorPattern {
		selected[RoleDebugger] = true
	}

	// Expansion rules: a bug hunt deserves verification, and a feature
	// build needs planning, testing, and docs around the implementation.
	if selected[RoleDebugger] {
		selected[RoleTester] = true
	}
	if selected[RoleEngineer] {
		selected[RoleArchitect] = true
		selected[RoleTester] = true
		selected[RoleDocumenter] = true
	}

	if len(selected) == 0 {
		selected[RoleArchitect] = true
		selected[RoleEngineer] = true
		selected[RoleTester] = true
	}

	return NewPlan(rolesOf(selected))
}

// NewPlan builds an ordered plan from an explicit role subset.
func NewPlan(roles []Role) Plan {
	var specs []Spec
	seen := make(map[Role]bool, len(roles))
	for _, role := range roles {
		if seen[role] {
			continue
		}
		seen[role] = true
		if spec, ok := SpecFor(role); ok {
			specs = append(specs, spec)
		}
	}

	sort.SliceStable(specs, func(i, j int) bool {
		if specs[i].Priority == specs[j].Priority {
			return declarationIndex(specs[i].Role) < declarationIndex(specs[j].Role)
		}
		return specs[i].Priority > specs[j].Priority
	})

	return Plan{Roles: specs}
}

// containsWord matches a keyword at word boundaries. Role keywords
// include short tokens like "ui" that would otherwise fire inside
// unrelated words ("build", "guide").
func containsWord(text, keyword string) bool {
	for from := 0; ; {
		idx := strings.Index(text[from:], keyword)
		if idx < 0 {
			return false
		}
		idx += from
		end := idx + len(keyword)
		startOK := idx == 0 || !isWordChar(text[idx-1])
		endOK := end == len(text) || !isWordChar(text[end])
		if startOK && endOK {
			return true
		}
		from = idx + 1
	}
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}

func rolesOf(selected map[Role]bool) []Role {
	var out []Role
	for _, role := range AllRoles() {
		if selected[role] {
			out = append(out, role)
		}
	}
	return out
}
