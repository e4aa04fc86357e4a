package engine

import (
	"fmt"
	"math"

	"github.com/talgya/hexturn/internal/world"
)

// UnitRecord is the persisted form of a unit.
type UnitRecord struct {
	X      int     `json:"x" db:"x"`
	Z      int     `json:"z" db:"z"`
	Facing float32 `json:"facing" db:"facing"` // Degrees clockwise from north
	Team   uint8   `json:"team" db:"team"`
	Type   string  `json:"type" db:"unit_type"`
}

// Coord returns the coordinate the unit stands on.
func (r UnitRecord) Coord() world.Coordinate {
	return world.Coordinate{X: r.X, Z: r.Z}
}

// FacingAngle converts a direction to degrees clockwise from north.
func FacingAngle(d world.Direction) float32 {
	return 30 + 60*float32(d)
}

// DirectionFromAngle returns the direction nearest to an angle in degrees.
func DirectionFromAngle(angle float32) world.Direction {
	a := math.Mod(float64(angle)-30, 360)
	if a < 0 {
		a += 360
	}
	return world.Direction(int(math.Round(a/60)) % world.DirectionCount)
}

// UnitRecords exports every live unit of the latest snapshot in ID order.
// It is safe to call from any goroutine.
func (s *Simulation) UnitRecords() []UnitRecord {
	snap := s.Snapshot()
	out := make([]UnitRecord, 0, len(snap.Units))
	for _, u := range snap.Units {
		if u.Captured {
			continue
		}
		out = append(out, UnitRecord{
			X:      u.Coord.X,
			Z:      u.Coord.Z,
			Facing: FacingAngle(u.Facing),
			Team:   u.Team,
			Type:   u.Type,
		})
	}
	return out
}

// RestoreUnits spawns the recorded units. It stops at the first record that
// cannot be placed.
func (s *Simulation) RestoreUnits(records []UnitRecord) error {
	for i, r := range records {
		u, err := s.Spawn(r.Type, r.Coord(), r.Team)
		if err != nil {
			return fmt.Errorf("unit record %d: %w", i, err)
		}
		u.Facing = DirectionFromAngle(r.Facing)
	}
	s.refresh()
	return nil
}

// RestoreState resumes the turn counters of a saved match. Restored matches
// always resume in the economy phase of the saved round.
func (s *Simulation) RestoreState(round int) {
	if s.sched.started || round <= 1 {
		return
	}
	s.sched.state.Round = round - 1
}
