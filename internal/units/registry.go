package units

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/talgya/hexturn/internal/world"
)

// ErrCellOccupied is returned when a cell already holds another unit.
var ErrCellOccupied = errors.New("cell occupied")

// ErrNoCell is returned when a unit is placed on a missing cell.
var ErrNoCell = errors.New("no such cell")

// Registry owns every live unit of a game and is the only writer of
// Cell.Occupant.
type Registry struct {
	grid   *world.Grid
	units  map[world.UnitID]*Unit
	nextID world.UnitID
}

// NewRegistry creates an empty registry for units on g.
func NewRegistry(g *world.Grid) *Registry {
	return &Registry{
		grid:   g,
		units:  make(map[world.UnitID]*Unit),
		nextID: 1,
	}
}

// SetNextID sets the next unit ID to be issued (used when restoring a save).
func (r *Registry) SetNextID(id world.UnitID) {
	r.nextID = id
}

// Spawn creates a unit of the given type on cell for team.
func (r *Registry) Spawn(cfg *Config, cell *world.Cell, team uint8) (*Unit, error) {
	if cell == nil {
		return nil, ErrNoCell
	}
	if cell.IsOccupied() {
		return nil, fmt.Errorf("spawn %s at %v: %w", cfg.Name, cell.Coord, ErrCellOccupied)
	}

	id := r.nextID
	r.nextID++

	u := &Unit{
		ID:          id,
		Type:        cfg.Name,
		Team:        team,
		Cell:        cell.Index,
		Budget:      cfg.Movement,
		MaxBudget:   cfg.Movement,
		VisionRange: cfg.Vision,
		EnRoute:     world.NoCell,
		Config:      cfg,
		registry:    r,
	}
	u.Path.Start(cell)
	cell.Occupant = id
	r.units[id] = u

	slog.Debug("unit spawned", "id", id, "type", cfg.Name, "team", team, "coord", cell.Coord)
	return u, nil
}

// Despawn removes a unit and frees its cell.
func (r *Registry) Despawn(id world.UnitID) {
	u, ok := r.units[id]
	if !ok {
		return
	}
	if c := r.grid.Cell(u.Cell); c != nil && c.Occupant == id {
		c.Occupant = 0
	}
	u.Path.Clear()
	u.EnRoute = world.NoCell
	delete(r.units, id)
	slog.Debug("unit despawned", "id", id, "type", u.Type)
}

// Relocate moves u onto cell, updating both cell back-references.
func (r *Registry) Relocate(u *Unit, cell *world.Cell) error {
	if cell == nil {
		return ErrNoCell
	}
	if cell.Occupant != 0 && cell.Occupant != u.ID {
		return fmt.Errorf("move %d to %v held by %d: %w", u.ID, cell.Coord, cell.Occupant, ErrCellOccupied)
	}
	r.Vacate(u)
	cell.Occupant = u.ID
	u.Cell = cell.Index
	return nil
}

// Vacate clears u from its cell without placing it elsewhere. The unit keeps
// its cell index until it is occupied again.
func (r *Registry) Vacate(u *Unit) {
	if c := r.grid.Cell(u.Cell); c != nil && c.Occupant == u.ID {
		c.Occupant = 0
	}
}

// Get returns a unit by ID, or nil.
func (r *Registry) Get(id world.UnitID) *Unit {
	return r.units[id]
}

// At returns the unit occupying c, or nil.
func (r *Registry) At(c *world.Cell) *Unit {
	if c == nil || c.Occupant == 0 {
		return nil
	}
	return r.units[c.Occupant]
}

// All returns every unit in ascending ID order.
func (r *Registry) All() []*Unit {
	out := make([]*Unit, 0, len(r.units))
	for _, u := range r.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of live units.
func (r *Registry) Count() int {
	return len(r.units)
}

// Grid returns the grid units are placed on.
func (r *Registry) Grid() *world.Grid {
	return r.grid
}
