// Package rules classifies unit contacts and resolves them with the rule
// bound to each unit type.
package rules

import (
	"github.com/talgya/hexturn/internal/units"
	"github.com/talgya/hexturn/internal/world"
)

// ContactKind classifies a contact from the moving unit's point of view.
type ContactKind uint8

const (
	ContactIdle         ContactKind = iota // The other unit is stationary
	ContactActiveBorder                    // Both moving, different destinations
	ContactActiveCenter                    // Both moving into the same cell

	contactKindCount
)

func (k ContactKind) String() string {
	switch k {
	case ContactIdle:
		return "idle"
	case ContactActiveBorder:
		return "active-border"
	case ContactActiveCenter:
		return "active-center"
	default:
		return "unknown"
	}
}

// Active reports whether both participants were moving.
func (k ContactKind) Active() bool {
	return k != ContactIdle
}

// Relation is how two units stand toward each other.
type Relation uint8

const (
	RelationAlly Relation = iota
	RelationEnemy
)

func (r Relation) String() string {
	if r == RelationAlly {
		return "ally"
	}
	return "enemy"
}

// RelationOf returns the relation of other to self.
func RelationOf(self, other *units.Unit) Relation {
	if self.IsAlly(other) {
		return RelationAlly
	}
	return RelationEnemy
}

// Classify returns the contact kind seen by self, which must be moving.
func Classify(self, other *units.Unit) ContactKind {
	if !other.IsMoving() {
		return ContactIdle
	}
	if self.EnRoute == other.EnRoute {
		return ContactActiveCenter
	}
	return ContactActiveBorder
}

// Board is the set of effects a rule may apply. Within a step every effect is
// idempotent: applying it again to the same unit changes nothing, so both
// participants of a contact can evaluate it independently.
type Board interface {
	Grid() *world.Grid
	UnitAt(c *world.Cell) *units.Unit

	// Kill marks victim as captured by the given unit.
	Kill(victim, by *units.Unit)
	// Block zeroes the unit's budget, clears its path and stops its hop.
	Block(u *units.Unit)
	// Bounce zeroes the unit's budget and reverses its hop, once per hop.
	Bounce(u *units.Unit)
	// Push displaces a stationary unit one cell, once per step; false when it
	// cannot move.
	Push(u *units.Unit, d world.Direction) bool
	// Swap sends a stationary unit to the mover's origin; false when it cannot.
	Swap(mover, other *units.Unit) bool
}
