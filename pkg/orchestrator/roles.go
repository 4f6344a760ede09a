// Package orchestrator decomposes multi-step engineering requests into
// an ordered sequence of specialized role invocations and executes them
// sequentially, threading each role's output into the next role's
// context.
package orchestrator

// Role is a fixed specialization used in multi-agent decomposition.
type Role string

// Agent roles.
const (
	RoleArchitect  Role = "architect"
	RoleEngineer   Role = "engineer"
	RoleUIUX       Role = "ui_ux"
	RoleTester     Role = "tester"
	RoleDebugger   Role = "debugger"
	RoleDocumenter Role = "documenter"
)

// Spec binds a role to its provider, model, temperature, and priority.
// Bindings are fixed: the role already encodes the capability tier it
// needs, so developer-mode escalation never applies here.
type Spec struct {
	Role        Role
	Provider    string
	Model       string
	Temperature float64

	// Priority orders execution, 1-10, higher runs first. Equal
	// priorities fall back to declaration order.
	Priority int

	// Prompt is a text/template with .Request and .Context fields.
	Prompt string
}

// roleSpecs declares every role. Declaration order is the tie-break for
// equal priorities, so Engineer stays ahead of UI/UX.
var roleSpecs = []Spec{
	{
		Role:        RoleArchitect,
		Provider:    "anthropic",
		Model:       "claude-opus-4-20250514",
		Temperature: 0.4,
		Priority:    10,
		Prompt: `You are a senior software architect. Produce a concise technical plan:
components, data flow, and interfaces. Do not write implementation code.

Request:
{{.Request}}
{{if .Context}}
Prior work from other agents:
{{.Context}}
{{end}}`,
	},
	{
		Role:        RoleEngineer,
		Provider:    "anthropic",
		Model:       "claude-sonnet-4-20250514",
		Temperature: 0.2,
		Priority:    8,
		Prompt: `You are a senior software engineer. Implement the request with clean,
production-quality code. Follow the architecture plan if one is given.

Request:
{{.Request}}
{{if .Context}}
Prior work from other agents:
{{.Context}}
{{end}}`,
	},
	{
		Role:        RoleUIUX,
		Provider:    "openai",
		Model:       "gpt-5.2-codex",
		Temperature: 0.6,
		Priority:    8,
		Prompt: `You are a UI/UX specialist. Design the user-facing surface for the
request: layout, components, and interaction flow, with markup where useful.

Request:
{{.Request}}
{{if .Context}}
Prior work from other agents:
{{.Context}}
{{end}}`,
	},
	{
		Role:        RoleTester,
		Provider:    "openai",
		Model:       "gpt-5.2-codex",
		Temperature: 0.2,
		Priority:    7,
		Prompt: `You are a test engineer. Write thorough tests for the work below,
covering edge cases and failure paths.

Request:
{{.Request}}
{{if .Context}}
Prior work from other agents:
{{.Context}}
{{end}}`,
	},
	{
		Role:        RoleDebugger,
		Provider:    "anthropic",
		Model:       "claude-opus-4-20250514",
		Temperature: 0.1,
		Priority:    10,
		Prompt: `You are a debugging specialist. Find the root cause of the problem
and provide a corrected version with an explanation of the failure.

Request:
{{.Request}}
{{if .Context}}
Prior work from other agents:
{{.Context}}
{{end}}`,
	},
	{
		Role:        RoleDocumenter,
		Provider:    "openai",
		Model:       "gpt-5.2-instant",
		Temperature: 0.5,
		Priority:    6,
		Prompt: `You are a technical writer. Document the work below: purpose, usage,
and noteworthy decisions, in clear markdown.

Request:
{{.Request}}
{{if .Context}}
Prior work from other agents:
{{.Context}}
{{end}}`,
	},
}

// SpecFor returns the binding for a role.
func SpecFor(role Role) (Spec, bool) {
	for _, spec := range roleSpecs {
		if spec.Role == role {
			return spec, true
		}
	}
	return Spec{}, false
}

// AllRoles lists every role in declaration order.
func AllRoles() []Role {
	out := make([]Role, len(roleSpecs))
	for i, spec := range roleSpecs {
		out[i] = spec.Role
	}
	return out
}

func declarationIndex(role Role) int {
	for i, spec := range roleSpecs {
		if spec.Role == role {
			return i
		}
	}
	return len(roleSpecs)
}
