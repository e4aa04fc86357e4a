package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/hexturn/internal/units"
	"github.com/talgya/hexturn/internal/world"
)

// UnitAt returns the unit occupying c, or nil.
func (s *Simulation) UnitAt(c *world.Cell) *units.Unit {
	return s.units.At(c)
}

// Kill marks victim as captured. It stays on the board until the step
// completes.
func (s *Simulation) Kill(victim, by *units.Unit) {
	if victim.IsDying {
		return
	}
	victim.IsDying = true
	by.HasCaptured = true
	s.event("capture", fmt.Sprintf("%s %d captured %s %d", by.Type, by.ID, victim.Type, victim.ID))
}

// Block stops u for the rest of the turn. A hop in flight returns to its
// origin.
func (s *Simulation) Block(u *units.Unit) {
	u.Budget = 0
	u.HasQueuedMove = false
	u.Path.Start(u.Location())
	if u.IsMoving() {
		s.moves.Reverse(u)
	}
}

// Bounce reverses u's hop and forfeits its remaining budget. A unit without
// a hop in flight, or whose hop already bounced, is unaffected.
func (s *Simulation) Bounce(u *units.Unit) {
	if !u.IsMoving() || !s.moves.Bounce(u) {
		return
	}
	u.Budget = 0
	u.HasBeenBounced = true
	slog.Debug("unit bounced", "unit", u.ID, "cell", u.Location().Coord)
}

// Push moves a stationary unit one cell in direction d. A unit is pushed at
// most once per step: repeating the same push reports success without moving
// it again, and any other push fails.
func (s *Simulation) Push(u *units.Unit, d world.Direction) bool {
	if prev, ok := s.displaced[u.ID]; ok {
		return prev == d
	}
	if u.IsMoving() || u.IsDying {
		return false
	}
	from := u.Location()
	to := s.grid.Neighbor(from, d)
	if !s.canDisplace(u, from, to) {
		return false
	}
	s.pf.MoveVisibility(from, u.VisionRange, to, u.VisionRange)
	if err := s.units.Relocate(u, to); err != nil {
		s.pf.MoveVisibility(to, u.VisionRange, from, u.VisionRange)
		return false
	}
	s.displaced[u.ID] = d
	u.Path.Start(to)
	slog.Debug("unit pushed", "unit", u.ID, "from", from.Coord, "to", to.Coord)
	return true
}

// Swap sends a stationary unit toward the mover's origin; both take their
// new cells when the step completes. Repeating a swap already under way
// reports success.
func (s *Simulation) Swap(mover, other *units.Unit) bool {
	origin := mover.Location()
	if s.moves.Displaced(other, origin) {
		return true
	}
	if other.IsMoving() || other.IsDying || !mover.IsMoving() {
		return false
	}
	from := other.Location()
	if _, ok := s.grid.DirectionTo(from, origin); !ok {
		return false
	}
	if s.grid.EdgeType(from, origin) == world.EdgeCliff || !origin.Explorable {
		return false
	}
	s.moves.Begin(other, origin, 0, true)
	other.Path.Start(from)
	slog.Debug("units swapping", "mover", mover.ID, "other", other.ID)
	return true
}

func (s *Simulation) canDisplace(u *units.Unit, from, to *world.Cell) bool {
	if to == nil || !to.Explorable || to.IsOccupied() {
		return false
	}
	if s.grid.EdgeType(from, to) == world.EdgeCliff {
		return false
	}
	if u.Config.TerrainCost(to.TerrainType) < 0 {
		return false
	}
	return !s.moves.Targets(to)
}
