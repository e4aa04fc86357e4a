// Package units provides the unit data model, static unit configuration and
// the registry that keeps units and cell occupancy consistent.
package units

import (
	"github.com/talgya/hexturn/internal/pathing"
	"github.com/talgya/hexturn/internal/world"
)

// Unit is a piece on the board. It stands on a cell by index; the cell points
// back at it through Cell.Occupant. Neither owns the other.
type Unit struct {
	ID     world.UnitID    `json:"id"`
	Type   string          `json:"type"`
	Team   uint8           `json:"team"`
	Cell   int             `json:"cell"`
	Facing world.Direction `json:"facing"`

	Budget      int `json:"budget"`
	MaxBudget   int `json:"max_budget"`
	VisionRange int `json:"vision_range"`

	Path pathing.Path `json:"-"`

	// EnRoute is the cell being entered while a hop is in flight, else world.NoCell.
	EnRoute int `json:"en_route"`

	// Per-turn flags.
	HasQueuedMove  bool `json:"has_queued_move"`
	HasCaptured    bool `json:"has_captured"`
	HasBeenBounced bool `json:"has_been_bounced"`
	IsDying        bool `json:"is_dying"`

	// IdleSteps counts consecutive steps without movement.
	IdleSteps int `json:"idle_steps"`

	Config *Config `json:"-"`

	registry *Registry
}

// Grid returns the grid the unit stands on.
func (u *Unit) Grid() *world.Grid {
	return u.registry.grid
}

// Location returns the cell the unit occupies.
func (u *Unit) Location() *world.Cell {
	return u.registry.grid.Cell(u.Cell)
}

// Destination returns the cell being entered, or nil when not en route.
func (u *Unit) Destination() *world.Cell {
	return u.registry.grid.Cell(u.EnRoute)
}

// IsMoving reports whether a hop is in flight.
func (u *Unit) IsMoving() bool {
	return u.EnRoute != world.NoCell
}

// IsAlly reports whether other fights on the same team.
func (u *Unit) IsAlly(other *Unit) bool {
	return u.Team == other.Team
}

// CanCapture reports whether u may capture other by type.
func (u *Unit) CanCapture(other *Unit) bool {
	if other == nil || u.IsAlly(other) {
		return false
	}
	return u.Config.CanCapture(other.Type)
}

// MoveCost prices the step from one cell to its neighbor. Cliffs and
// impassable terrain return -1.
func (u *Unit) MoveCost(from, to *world.Cell, d world.Direction) int {
	edge := u.registry.grid.EdgeType(from, to)
	if edge == world.EdgeCliff {
		return -1
	}
	extra := u.Config.TerrainCost(to.TerrainType)
	if extra < 0 {
		return -1
	}
	if edge == world.EdgeSlope {
		return u.Config.Costs.Slope + extra
	}
	return u.Config.Costs.Flat + extra
}

// IsValidDestination reports whether u may route through c. Unexplored cells
// and cells held by allies are refused; enemy-held cells are left to the
// collision rules.
func (u *Unit) IsValidDestination(c *world.Cell) bool {
	if !c.Explorable || !c.Explored {
		return false
	}
	if c.Occupant == 0 || c.Occupant == u.ID {
		return true
	}
	other := u.registry.Get(c.Occupant)
	if other == nil {
		return true
	}
	return !u.IsAlly(other) || u.Config.PassAllies
}

// Speed returns the per-turn movement budget.
func (u *Unit) Speed() int {
	return u.MaxBudget
}

// NextStepCost returns the cost of moving to the next cell of the path, or
// false when the path has no valid next step.
func (u *Unit) NextStepCost() (int, bool) {
	next := u.Path.Next()
	if next == nil {
		return 0, false
	}
	from := u.Location()
	d, ok := u.registry.grid.DirectionTo(from, next)
	if !ok {
		return 0, false
	}
	cost := u.MoveCost(from, next, d)
	if cost < 0 {
		return 0, false
	}
	return cost, true
}

// ResetTurn restores the movement budget and clears per-turn flags.
func (u *Unit) ResetTurn() {
	u.Budget = u.MaxBudget
	u.HasQueuedMove = false
	u.HasCaptured = false
	u.HasBeenBounced = false
}
