package pathing

import "github.com/talgya/hexturn/internal/world"

// VisibleCells returns the cells within sightRange of from. Range grows with
// the observer's elevation and shrinks with the target's, and only cells
// reachable along a straight hex line are included.
func (p *Pathfinder) VisibleCells(from *world.Cell, sightRange int) []*world.Cell {
	if from == nil || sightRange < 0 {
		return nil
	}
	var visible []*world.Cell

	p.begin(from)
	sightRange += from.Elevation
	origin := from.Coord

	for {
		current, ok := p.queue.DequeueMin()
		if !ok {
			break
		}
		current.SearchPhase++
		visible = append(visible, current)

		for _, d := range world.Directions {
			n := p.grid.Neighbor(current, d)
			if n == nil || n.SearchPhase > p.phase || !n.Explorable {
				continue
			}
			distance := current.Distance + 1
			if distance+n.Elevation > sightRange || distance > world.Distance(origin, n.Coord) {
				continue
			}
			p.relax(current, n, distance, 0)
		}
	}
	return visible
}

// IncreaseVisibility adds one observer to every cell in range of from and
// returns the cells that became visible.
func (p *Pathfinder) IncreaseVisibility(from *world.Cell, sightRange int) []*world.Cell {
	var revealed []*world.Cell
	for _, c := range p.VisibleCells(from, sightRange) {
		if c.IncreaseVisibility() {
			revealed = append(revealed, c)
		}
	}
	return revealed
}

// DecreaseVisibility removes one observer from every cell in range of from
// and returns the cells that are no longer seen by anyone.
func (p *Pathfinder) DecreaseVisibility(from *world.Cell, sightRange int) []*world.Cell {
	var hidden []*world.Cell
	for _, c := range p.VisibleCells(from, sightRange) {
		if c.DecreaseVisibility() {
			hidden = append(hidden, c)
		}
	}
	return hidden
}

// MoveVisibility transfers an observer: the old range loses one observer,
// then the new range gains one, so overlapping observers stay consistent.
func (p *Pathfinder) MoveVisibility(oldCell *world.Cell, oldRange int, newCell *world.Cell, newRange int) {
	if oldCell != nil {
		p.DecreaseVisibility(oldCell, oldRange)
	}
	if newCell != nil {
		p.IncreaseVisibility(newCell, newRange)
	}
}
