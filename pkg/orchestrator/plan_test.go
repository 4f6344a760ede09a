package orchestrator

import (
	"testing"

	"github.com/X10NLUN1X/xionimus/pkg/config"
	"github.com/X10NLUN1X/xionimus/pkg/router"
)

func buildPlan(message string) Plan {
	cfg := config.DefaultRoutingConfig()
	return BuildPlan(message, router.NewExtractor(cfg).Extract(message))
}

func roleOrder(plan Plan) []Role {
	out := make([]Role, len(plan.Roles))
	for i, spec := range plan.Roles {
		out[i] = spec.Role
	}
	return out
}

func assertOrder(t *testing.T, got, want []Role) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("role count: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %v want %v", i, got, want)
		}
	}
}

func TestBuildPlanFeatureRequest(t *testing.T) {
	plan := buildPlan("Build a REST endpoint for user signup")
	assertOrder(t, roleOrder(plan), []Role{RoleArchitect, RoleEngineer, RoleTester, RoleDocumenter})
}

func TestBuildPlanUIRequest(t *testing.T) {
	plan := buildPlan("Implement the settings page with a clean layout")
	assertOrder(t, roleOrder(plan), []Role{
		RoleArchitect, RoleEngineer, RoleUIUX, RoleTester, RoleDocumenter,
	})
}

func TestBuildPlanErrorPatternForcesDebugger(t *testing.T) {
	plan := buildPlan("Something is off:\npanic: runtime error: index out of range")
	selected := roleOrder(plan)

	hasDebugger := false
	hasTester := false
	for _, role := range selected {
		if role == RoleDebugger {
			hasDebugger = true
		}
		if role == RoleTester {
			hasTester = true
		}
	}
	if !hasDebugger {
		t.Fatalf("stack trace must activate the debugger: %v", selected)
	}
	if !hasTester {
		t.Fatalf("debugger must pull in the tester: %v", selected)
	}
	if selected[0] != RoleDebugger {
		t.Fatalf("debugger should run first: %v", selected)
	}
}

func TestBuildPlanEmptySelectionDefaults(t *testing.T) {
	plan := buildPlan("Hello there, what a nice day")
	assertOrder(t, roleOrder(plan), []Role{RoleArchitect, RoleEngineer, RoleTester})
}

func TestPlanOrderingPriorityThenDeclaration(t *testing.T) {
	// Architect and debugger share priority 10; engineer and ui_ux
	// share 8. Declaration order keeps the earlier role first.
	plan := NewPlan([]Role{
		RoleDocumenter, RoleUIUX, RoleDebugger, RoleTester, RoleEngineer, RoleArchitect,
	})
	assertOrder(t, roleOrder(plan), []Role{
		RoleArchitect, RoleDebugger, RoleEngineer, RoleUIUX, RoleTester, RoleDocumenter,
	})
}

func TestNewPlanDeduplicatesAndSkipsUnknown(t *testing.T) {
	plan := NewPlan([]Role{RoleTester, RoleTester, Role("psychic"), RoleArchitect})
	assertOrder(t, roleOrder(plan), []Role{RoleArchitect, RoleTester})
}

func TestEveryRoleHasABinding(t *testing.T) {
	for _, role := range AllRoles() {
		spec, ok := SpecFor(role)
		if !ok {
			t.Fatalf("role %s has no binding", role)
		}
		if spec.Provider == "" || spec.Model == "" || spec.Prompt == "" {
			t.Fatalf("role %s binding incomplete: %+v", role, spec)
		}
		if spec.Priority < 1 || spec.Priority > 10 {
			t.Fatalf("role %s priority out of range: %d", role, spec.Priority)
		}
	}
}
