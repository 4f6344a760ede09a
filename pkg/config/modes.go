package config

import "fmt"

// Mode names. Exactly two developer modes exist.
const (
	ModeJunior = "junior"
	ModeSenior = "senior"
)

// DeveloperMode is a session-level quality/cost tier governing the
// default model and escalation behavior.
type DeveloperMode struct {
	Name          string
	Provider      string
	Model         string
	UltraThinking bool
	SmartRouting  bool
}

// Mode resolves a developer mode by name from the routing config.
func (c *RoutingConfig) Mode(name string) (DeveloperMode, error) {
	mc, ok := c.Modes[name]
	if !ok {
		return DeveloperMode{}, fmt.Errorf("unknown developer mode %q", name)
	}
	return DeveloperMode{
		Name:          name,
		Provider:      mc.Provider,
		Model:         mc.Model,
		UltraThinking: mc.UltraThinking,
		SmartRouting:  mc.SmartRouting,
	}, nil
}
