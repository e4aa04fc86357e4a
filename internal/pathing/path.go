package pathing

import (
	"fmt"

	"github.com/talgya/hexturn/internal/world"
)

// Path is an editable route. The head is the mover's current cell and the
// tail its destination. While edited a path may cost more than the mover can
// spend; Commit brings it back within budget.
type Path struct {
	cells []*world.Cell
}

// Cells returns the cells of the path from head to tail.
func (p *Path) Cells() []*world.Cell {
	return p.cells
}

// Len returns the number of cells including the head.
func (p *Path) Len() int {
	return len(p.cells)
}

// Head returns the first cell, or nil for an empty path.
func (p *Path) Head() *world.Cell {
	if len(p.cells) == 0 {
		return nil
	}
	return p.cells[0]
}

// Tail returns the last cell, or nil for an empty path.
func (p *Path) Tail() *world.Cell {
	if len(p.cells) == 0 {
		return nil
	}
	return p.cells[len(p.cells)-1]
}

// Next returns the cell after the head, or nil when there is nowhere to go.
func (p *Path) Next() *world.Cell {
	if len(p.cells) < 2 {
		return nil
	}
	return p.cells[1]
}

// Start resets the path to just its head.
func (p *Path) Start(head *world.Cell) {
	p.cells = append(p.cells[:0], head)
}

// Set replaces the whole path.
func (p *Path) Set(cells []*world.Cell) {
	p.cells = append(p.cells[:0], cells...)
}

// Clear empties the path without releasing its storage.
func (p *Path) Clear() {
	p.cells = p.cells[:0]
}

// TrimHead drops the first n cells. Trimming more cells than the path holds
// is a programming error.
func (p *Path) TrimHead(n int) {
	if n < 0 || n > len(p.cells) {
		panic(fmt.Sprintf("pathing: trim %d cells from a path of %d", n, len(p.cells)))
	}
	p.cells = append(p.cells[:0], p.cells[n:]...)
}

// Index returns the position of c in the path, or -1.
func (p *Path) Index(c *world.Cell) int {
	for i, pc := range p.cells {
		if pc == c {
			return i
		}
	}
	return -1
}

// Cost sums the move cost of every edge. ok is false when an edge is not a
// valid step for m.
func (p *Path) Cost(g *world.Grid, m Mover) (cost int, ok bool) {
	for i := 1; i < len(p.cells); i++ {
		c, valid := stepCost(g, m, p.cells[i-1], p.cells[i])
		if !valid {
			return cost, false
		}
		cost += c
	}
	return cost, true
}

// ExceedsBudget reports whether the path cannot be paid for with budget.
// Display code shows such paths in an error state.
func (p *Path) ExceedsBudget(g *world.Grid, m Mover, budget int) bool {
	cost, ok := p.Cost(g, m)
	return !ok || cost > budget
}

// Commit trims the path to its longest prefix that m can afford with budget
// and whose steps are all valid. Returns true when cells were removed.
func (p *Path) Commit(g *world.Grid, m Mover, budget int) bool {
	spent := 0
	keep := len(p.cells)
	for i := 1; i < len(p.cells); i++ {
		c, valid := stepCost(g, m, p.cells[i-1], p.cells[i])
		if !valid || spent+c > budget {
			keep = i
			break
		}
		spent += c
	}
	if keep == len(p.cells) {
		return false
	}
	p.cells = p.cells[:keep]
	return true
}

// Extend appends target as the next cell of a manually drawn route.
// Reaching back to a cell already on the path truncates it there. A target
// that is not a valid neighbor of the tail, or that would push the path over
// budget, makes the whole path a fresh search result from the head instead;
// that search may come back empty, leaving only the head. Returns whether the
// path now ends at target.
func (p *Path) Extend(pf *Pathfinder, m Mover, target *world.Cell, budget int) bool {
	head := p.Head()
	if head == nil || target == nil {
		return false
	}
	if i := p.Index(target); i >= 0 {
		p.cells = p.cells[:i+1]
		return true
	}

	g := pf.Grid()
	if _, valid := stepCost(g, m, p.Tail(), target); valid {
		p.cells = append(p.cells, target)
		if cost, _ := p.Cost(g, m); cost <= budget {
			return true
		}
	}

	route := pf.FindPath(head, target, m)
	if route == nil {
		p.Start(head)
		return false
	}
	p.Set(route)
	return true
}

func stepCost(g *world.Grid, m Mover, from, to *world.Cell) (int, bool) {
	d, adjacent := g.DirectionTo(from, to)
	if !adjacent || !m.IsValidDestination(to) {
		return 0, false
	}
	c := m.MoveCost(from, to, d)
	if c < 0 {
		return 0, false
	}
	return c, true
}
