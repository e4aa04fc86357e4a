package engine

import "fmt"

// Phase is the stage of a turn cycle.
type Phase uint8

const (
	PhaseEconomy        Phase = iota // Budgets recover, units may be deployed
	PhaseInTurn                      // Players edit paths
	PhaseExecutingSteps              // Paths are executed step by step
)

func (p Phase) String() string {
	switch p {
	case PhaseEconomy:
		return "economy"
	case PhaseInTurn:
		return "in-turn"
	case PhaseExecutingSteps:
		return "executing-steps"
	default:
		return fmt.Sprintf("Phase(%d)", p)
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{PhaseEconomy, PhaseInTurn, PhaseExecutingSteps} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// TurnState is the authoritative turn counter. Only the Scheduler mutates it.
type TurnState struct {
	Round int   `json:"round"`
	Turn  int   `json:"turn"` // 1-based within the round; 0 during economy
	Step  int   `json:"step"` // Steps completed in the current execution
	Phase Phase `json:"phase"`
}

func (t TurnState) String() string {
	return fmt.Sprintf("round %d turn %d step %d (%s)", t.Round, t.Turn, t.Step, t.Phase)
}
