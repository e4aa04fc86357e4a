package engine

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/hexturn/internal/units"
	"github.com/talgya/hexturn/internal/world"
)

// NotificationKind names the point in the turn cycle a notification marks.
type NotificationKind uint8

const (
	NotifyBeginRound NotificationKind = iota
	NotifyBeginTurn
	NotifyBeginExecute
	NotifyStepComplete
)

func (k NotificationKind) String() string {
	switch k {
	case NotifyBeginRound:
		return "begin_round"
	case NotifyBeginTurn:
		return "begin_turn"
	case NotifyBeginExecute:
		return "begin_execute"
	case NotifyStepComplete:
		return "step_complete"
	default:
		return fmt.Sprintf("NotificationKind(%d)", k)
	}
}

// MarshalText encodes the kind by name.
func (k NotificationKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *NotificationKind) UnmarshalText(text []byte) error {
	for candidate := NotifyBeginRound; candidate <= NotifyStepComplete; candidate++ {
		if candidate.String() == string(text) {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown notification kind %q", text)
}

// UnitState is the replicated view of one unit.
type UnitState struct {
	ID            world.UnitID       `json:"id"`
	Type          string             `json:"type"`
	Team          uint8              `json:"team"`
	Coord         world.Coordinate   `json:"coord"`
	Facing        world.Direction    `json:"facing"`
	Budget        int                `json:"budget"`
	MaxBudget     int                `json:"max_budget"`
	Path          []world.Coordinate `json:"path"`
	ExceedsBudget bool               `json:"exceeds_budget"`
	Moving        bool               `json:"moving"`
	Captured      bool               `json:"captured"`
	IdleSteps     int                `json:"idle_steps"`
}

func (a UnitState) equal(b UnitState) bool {
	return a.ID == b.ID &&
		a.Type == b.Type &&
		a.Team == b.Team &&
		a.Coord == b.Coord &&
		a.Facing == b.Facing &&
		a.Budget == b.Budget &&
		a.MaxBudget == b.MaxBudget &&
		slices.Equal(a.Path, b.Path) &&
		a.ExceedsBudget == b.ExceedsBudget &&
		a.Moving == b.Moving &&
		a.Captured == b.Captured &&
		a.IdleSteps == b.IdleSteps
}

// Snapshot is a read-only copy of the replicated state.
type Snapshot struct {
	Match    uuid.UUID   `json:"match"`
	Tick     uint64      `json:"tick"`
	State    TurnState   `json:"state"`
	Deadline time.Time   `json:"deadline,omitzero"`
	Players  []Player    `json:"players"`
	Units    []UnitState `json:"units"`
}

// Unit returns the state of one unit.
func (s *Snapshot) Unit(id world.UnitID) (UnitState, bool) {
	for _, u := range s.Units {
		if u.ID == id {
			return u, true
		}
	}
	return UnitState{}, false
}

// Diff lists what changed between two snapshots.
type Diff struct {
	StateChanged bool           `json:"state_changed"`
	Changed      []UnitState    `json:"changed,omitempty"`
	Removed      []world.UnitID `json:"removed,omitempty"`
}

// Empty reports whether nothing changed.
func (d Diff) Empty() bool {
	return !d.StateChanged && len(d.Changed) == 0 && len(d.Removed) == 0
}

// Notification is emitted at each turn-cycle boundary for the transport layer.
type Notification struct {
	Kind     NotificationKind `json:"kind"`
	State    TurnState        `json:"state"`
	Snapshot *Snapshot        `json:"snapshot"`
	Diff     Diff             `json:"diff"`
}

func (s *Simulation) snapshot() *Snapshot {
	all := s.units.All()
	snap := &Snapshot{
		Match:    s.ID,
		Tick:     s.tick,
		State:    s.sched.State(),
		Deadline: s.sched.Deadline(),
		Players:  s.sched.Players(),
		Units:    make([]UnitState, 0, len(all)),
	}
	for _, u := range all {
		snap.Units = append(snap.Units, s.unitState(u))
	}
	return snap
}

func (s *Simulation) unitState(u *units.Unit) UnitState {
	cells := u.Path.Cells()
	path := make([]world.Coordinate, len(cells))
	for i, c := range cells {
		path[i] = c.Coord
	}
	return UnitState{
		ID:            u.ID,
		Type:          u.Type,
		Team:          u.Team,
		Coord:         u.Location().Coord,
		Facing:        u.Facing,
		Budget:        u.Budget,
		MaxBudget:     u.MaxBudget,
		Path:          path,
		ExceedsBudget: u.Path.Len() > 1 && u.Path.ExceedsBudget(s.grid, u, u.Budget),
		Moving:        u.IsMoving(),
		Captured:      u.IsDying,
		IdleSteps:     u.IdleSteps,
	}
}

// diffSnapshots compares two snapshots whose units are ordered by ID.
func diffSnapshots(prev, next *Snapshot) Diff {
	if prev == nil {
		return Diff{StateChanged: true, Changed: next.Units}
	}
	d := Diff{StateChanged: prev.State != next.State}

	i, j := 0, 0
	for i < len(prev.Units) || j < len(next.Units) {
		switch {
		case j == len(next.Units) || (i < len(prev.Units) && prev.Units[i].ID < next.Units[j].ID):
			d.Removed = append(d.Removed, prev.Units[i].ID)
			i++
		case i == len(prev.Units) || next.Units[j].ID < prev.Units[i].ID:
			d.Changed = append(d.Changed, next.Units[j])
			j++
		default:
			if !prev.Units[i].equal(next.Units[j]) {
				d.Changed = append(d.Changed, next.Units[j])
			}
			i++
			j++
		}
	}
	return d
}
