package engine

import (
	"github.com/talgya/hexturn/internal/rules"
	"github.com/talgya/hexturn/internal/units"
)

// unitExtent is the radius of a unit as a fraction of the cell's inner
// radius. Units standing on adjacent cells never touch.
const unitExtent = 0.5

type pairKey struct {
	lo, hi uint32
}

func makePairKey(a, b *units.Unit) pairKey {
	if a.ID > b.ID {
		a, b = b, a
	}
	return pairKey{uint32(a.ID), uint32(b.ID)}
}

// detectContacts finds pairs of units whose extents overlap, or that are
// crossing the same edge in opposite directions, and lets each moving
// participant apply its own rule.
func (s *Simulation) detectContacts() {
	if !s.sched.Stepping() {
		return
	}
	all := s.units.All()
	reach := 2 * unitExtent * s.grid.Metrics.InnerRadius()

	for i, a := range all {
		for _, b := range all[i+1:] {
			if !a.IsMoving() && !b.IsMoving() {
				continue
			}
			if a.IsDying || b.IsDying {
				continue
			}
			if !crossing(a, b) && s.moves.Position(a).PlanarDistance(s.moves.Position(b)) >= reach {
				continue
			}
			s.resolveContact(a, b)
		}
	}
}

// crossing reports whether a and b are hopping into each other's cells.
func crossing(a, b *units.Unit) bool {
	return a.IsMoving() && b.IsMoving() &&
		a.EnRoute == b.Location().Index && b.EnRoute == a.Location().Index
}

// resolveContact evaluates one contact from both sides. Who was moving is
// decided before either rule runs, so the outcome does not depend on order.
// A pair makes contact at most once per step.
func (s *Simulation) resolveContact(a, b *units.Unit) {
	key := makePairKey(a, b)
	if s.contacts[key] {
		return
	}
	s.contacts[key] = true

	aMoving, bMoving := a.IsMoving(), b.IsMoving()
	if aMoving {
		rules.Resolve(s, s.tables[a.Type], a, b)
	}
	if bMoving {
		rules.Resolve(s, s.tables[b.Type], b, a)
	}
}
