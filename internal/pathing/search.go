package pathing

import (
	"github.com/talgya/hexturn/internal/world"
)

// Mover is anything that can be routed across the grid.
type Mover interface {
	// MoveCost returns the cost of stepping from one cell to its neighbor in
	// direction d, or a negative value when the step is impossible.
	MoveCost(from, to *world.Cell, d world.Direction) int
	// IsValidDestination reports whether the mover may enter c at all.
	IsValidDestination(c *world.Cell) bool
	// Speed is the movement budget per turn. Zero disables turn quantization.
	Speed() int
}

// Pathfinder runs searches over one grid. Its phase counter replaces a
// per-search reset of every cell's transient state.
type Pathfinder struct {
	grid  *world.Grid
	queue *CellQueue
	phase int

	// Heuristic orders the frontier by distance plus remaining hex distance.
	// Off by default: searches are uniform cost and the heuristic is only recorded.
	Heuristic bool
	// QuantizeTurns delays a step that would straddle a turn boundary to the
	// start of the next turn, keeping multi-turn estimates stable.
	QuantizeTurns bool
}

// NewPathfinder creates a pathfinder for g.
func NewPathfinder(g *world.Grid) *Pathfinder {
	return &Pathfinder{
		grid:          g,
		queue:         NewCellQueue(g),
		QuantizeTurns: true,
	}
}

// Grid returns the grid searched by p.
func (p *Pathfinder) Grid() *world.Grid {
	return p.grid
}

// Phase returns the current search phase.
func (p *Pathfinder) Phase() int {
	return p.phase
}

// FindPath returns the cheapest route from one cell to another, both ends
// included. A nil result means the destination is currently unreachable.
func (p *Pathfinder) FindPath(from, to *world.Cell, m Mover) []*world.Cell {
	if from == nil || to == nil {
		return nil
	}
	if !p.search(from, to, m) {
		return nil
	}
	return p.reconstruct(from, to)
}

// Reachable returns every cell m can reach from start while spending at most
// budget, in settle order. Turn quantization does not apply.
func (p *Pathfinder) Reachable(from *world.Cell, m Mover, budget int) []*world.Cell {
	if from == nil {
		return nil
	}
	var out []*world.Cell
	p.begin(from)
	for {
		current, ok := p.queue.DequeueMin()
		if !ok {
			break
		}
		current.SearchPhase++
		out = append(out, current)
		for _, d := range world.Directions {
			n := p.grid.Neighbor(current, d)
			if n == nil || n.SearchPhase > p.phase || !m.IsValidDestination(n) {
				continue
			}
			cost := m.MoveCost(current, n, d)
			if cost < 0 {
				continue
			}
			distance := current.Distance + cost
			if distance > budget {
				continue
			}
			p.relax(current, n, distance, 0)
		}
	}
	return out
}

// Distance returns the cost of the last search to reach c, and whether c
// was reached by that search.
func (p *Pathfinder) Distance(c *world.Cell) (int, bool) {
	if c == nil || c.SearchPhase < p.phase {
		return 0, false
	}
	return c.Distance, true
}

func (p *Pathfinder) begin(from *world.Cell) {
	p.phase += 2
	p.queue.Clear()

	from.SearchPhase = p.phase
	from.Distance = 0
	from.SearchHeuristic = 0
	from.SearchPriority = 0
	from.PathFrom = world.NoCell
	p.queue.Enqueue(from)
}

func (p *Pathfinder) search(from, to *world.Cell, m Mover) bool {
	p.begin(from)
	speed := m.Speed()

	for {
		current, ok := p.queue.DequeueMin()
		if !ok {
			return false
		}
		current.SearchPhase++

		if current == to {
			return true
		}

		currentTurn := 0
		if speed > 0 {
			currentTurn = (current.Distance - 1) / speed
		}

		for _, d := range world.Directions {
			n := p.grid.Neighbor(current, d)
			if n == nil || n.SearchPhase > p.phase {
				continue
			}
			if !m.IsValidDestination(n) {
				continue
			}
			cost := m.MoveCost(current, n, d)
			if cost < 0 {
				continue
			}

			distance := current.Distance + cost
			if p.QuantizeTurns && speed > 0 {
				turn := (distance - 1) / speed
				if turn > currentTurn {
					distance = turn*speed + cost
				}
			}
			p.relax(current, n, distance, world.Distance(n.Coord, to.Coord))
		}
	}
}

// relax records a route to n through current, enqueueing n the first time it
// is seen this phase and re-prioritizing it when the route is cheaper.
func (p *Pathfinder) relax(current, n *world.Cell, distance, heuristic int) {
	if n.SearchPhase < p.phase {
		n.SearchPhase = p.phase
		n.Distance = distance
		n.PathFrom = current.Index
		n.SearchHeuristic = heuristic
		n.SearchPriority = p.priority(n)
		p.queue.Enqueue(n)
		return
	}
	if distance < n.Distance {
		old := n.SearchPriority
		n.Distance = distance
		n.PathFrom = current.Index
		n.SearchPriority = p.priority(n)
		p.queue.ChangePriority(n, old)
	}
}

func (p *Pathfinder) priority(c *world.Cell) int {
	if p.Heuristic {
		return c.Distance + c.SearchHeuristic
	}
	return c.Distance
}

func (p *Pathfinder) reconstruct(from, to *world.Cell) []*world.Cell {
	var path []*world.Cell
	for c := to; ; c = p.grid.Cell(c.PathFrom) {
		path = append(path, c)
		if c == from {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
