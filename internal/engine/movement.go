package engine

import (
	"sort"

	"github.com/talgya/hexturn/internal/pathing"
	"github.com/talgya/hexturn/internal/units"
	"github.com/talgya/hexturn/internal/world"
)

// reverseSpeedFactor makes a bounced unit return faster than it set out.
const reverseSpeedFactor = 2

type hopState uint8

const (
	hopForward   hopState = iota // Travelling toward the destination
	hopArrived                   // Reached the destination, waiting for the step barrier
	hopReversing                 // Bounced, travelling back
	hopReturned                  // Back on the origin cell
)

type hop struct {
	unit     *units.Unit
	from, to *world.Cell
	start    world.Point
	control  world.Point
	end      world.Point
	t        float64
	cost     int
	state    hopState
	swapped  bool // Vision already moved to the destination
	forced   bool // Displaced by another unit rather than following a path
	bounced  bool
}

// Arrival is a hop that reached its destination during the current step.
type Arrival struct {
	Unit   *units.Unit
	From   *world.Cell
	To     *world.Cell
	Cost   int
	Forced bool
}

// MovementExecutor interpolates every hop of the current step.
type MovementExecutor struct {
	grid *world.Grid
	pf   *pathing.Pathfinder
	hops map[world.UnitID]*hop
	// Cell each unit left on its last completed hop, for cornering.
	prev map[world.UnitID]int
}

// NewMovementExecutor creates an executor for units on the pathfinder's grid.
func NewMovementExecutor(pf *pathing.Pathfinder) *MovementExecutor {
	return &MovementExecutor{
		grid: pf.Grid(),
		pf:   pf,
		hops: make(map[world.UnitID]*hop),
		prev: make(map[world.UnitID]int),
	}
}

// Begin starts a hop of u toward the neighboring cell to. The unit stays on
// its origin cell until the step completes.
func (m *MovementExecutor) Begin(u *units.Unit, to *world.Cell, cost int, forced bool) {
	from := u.Location()
	h := &hop{
		unit:   u,
		from:   from,
		to:     to,
		start:  m.grid.Position(from),
		end:    m.grid.Position(to),
		cost:   cost,
		forced: forced,
	}
	h.control = h.start.Lerp(h.end, 0.5)
	if p, ok := m.prev[u.ID]; ok && p != to.Index {
		if prevCell := m.grid.Cell(p); prevCell != nil {
			// Pull the curve along the previous heading.
			heading := h.start.Sub(m.grid.Position(prevCell))
			h.control = h.control.Add(heading.Scale(0.25))
		}
	}
	m.hops[u.ID] = h
	u.EnRoute = to.Index
}

// Advance moves every hop forward by dt seconds of travel. Vision moves to
// the destination when a hop passes its midpoint, and back when a reversing
// hop passes it again.
func (m *MovementExecutor) Advance(dt float64) {
	for _, h := range m.ordered() {
		speed := h.unit.Config.TravelSpeed
		switch h.state {
		case hopForward:
			h.t += speed * dt
			if !h.swapped && h.t >= 0.5 {
				m.swapVision(h, true)
			}
			if h.t >= 1 {
				h.t = 1
				h.state = hopArrived
			}
		case hopReversing:
			h.t -= speed * reverseSpeedFactor * dt
			if h.swapped && h.t < 0.5 {
				m.swapVision(h, false)
			}
			if h.t <= 0 {
				h.t = 0
				h.state = hopReturned
				h.unit.EnRoute = world.NoCell
			}
		}
	}
}

func (m *MovementExecutor) swapVision(h *hop, forward bool) {
	r := h.unit.VisionRange
	if forward {
		m.pf.MoveVisibility(h.from, r, h.to, r)
	} else {
		m.pf.MoveVisibility(h.to, r, h.from, r)
	}
	h.swapped = forward
}

// Reverse sends a hop back to its origin. Returns false when u has no hop to
// reverse.
func (m *MovementExecutor) Reverse(u *units.Unit) bool {
	h, ok := m.hops[u.ID]
	if !ok || (h.state != hopForward && h.state != hopArrived) {
		return false
	}
	h.state = hopReversing
	return true
}

// Bounce reverses u's hop unless this hop has already bounced.
func (m *MovementExecutor) Bounce(u *units.Unit) bool {
	h, ok := m.hops[u.ID]
	if !ok || h.bounced || !m.Reverse(u) {
		return false
	}
	h.bounced = true
	return true
}

// Displaced reports whether u is on a forced hop into to.
func (m *MovementExecutor) Displaced(u *units.Unit, to *world.Cell) bool {
	h, ok := m.hops[u.ID]
	return ok && h.forced && h.to == to && h.state != hopReversing && h.state != hopReturned
}

// MaxRate returns the fastest a live hop can move, in hop fractions per
// second. Forward hops may reverse mid-tick, so every hop counts at its
// reversing speed.
func (m *MovementExecutor) MaxRate() float64 {
	var rate float64
	for _, h := range m.hops {
		if h.state == hopForward || h.state == hopReversing {
			rate = max(rate, h.unit.Config.TravelSpeed*reverseSpeedFactor)
		}
	}
	return rate
}

// Cancel drops the hop of u at once, restoring its vision to the origin.
func (m *MovementExecutor) Cancel(u *units.Unit) {
	h, ok := m.hops[u.ID]
	if !ok {
		return
	}
	if h.swapped {
		m.swapVision(h, false)
	}
	delete(m.hops, u.ID)
	u.EnRoute = world.NoCell
}

// Pending reports whether any hop is still travelling.
func (m *MovementExecutor) Pending() bool {
	return m.EnRouteCount() > 0
}

// EnRouteCount returns the number of hops still travelling.
func (m *MovementExecutor) EnRouteCount() int {
	n := 0
	for _, h := range m.hops {
		if h.state == hopForward || h.state == hopReversing {
			n++
		}
	}
	return n
}

// Targets reports whether a live hop is heading into c.
func (m *MovementExecutor) Targets(c *world.Cell) bool {
	for _, h := range m.hops {
		if h.to == c && h.state != hopReturned && h.state != hopReversing {
			return true
		}
	}
	return false
}

// Position returns the interpolated world position of u.
func (m *MovementExecutor) Position(u *units.Unit) world.Point {
	if h, ok := m.hops[u.ID]; ok {
		return world.QuadraticBezier(h.start, h.control, h.end, h.t)
	}
	return m.grid.Position(u.Location())
}

// Progress returns the interpolation parameter of u's hop, if any.
func (m *MovementExecutor) Progress(u *units.Unit) (float64, bool) {
	h, ok := m.hops[u.ID]
	if !ok {
		return 0, false
	}
	return h.t, true
}

// Arrivals returns the hops that reached their destination, by unit ID.
func (m *MovementExecutor) Arrivals() []Arrival {
	var out []Arrival
	for _, h := range m.ordered() {
		if h.state == hopArrived {
			out = append(out, Arrival{Unit: h.unit, From: h.from, To: h.to, Cost: h.cost, Forced: h.forced})
		}
	}
	return out
}

// Revert undoes an arrived hop that could not take its destination.
func (m *MovementExecutor) Revert(u *units.Unit) {
	m.Cancel(u)
}

// Reset forgets every hop at the end of a step. Completed hops are
// remembered for cornering on the next one.
func (m *MovementExecutor) Reset(moved map[world.UnitID]*world.Cell) {
	for id := range m.prev {
		if _, ok := moved[id]; !ok {
			delete(m.prev, id)
		}
	}
	for id, from := range moved {
		m.prev[id] = from.Index
	}
	clear(m.hops)
}

// Forget drops all state kept for u.
func (m *MovementExecutor) Forget(u *units.Unit) {
	m.Cancel(u)
	delete(m.prev, u.ID)
}

func (m *MovementExecutor) ordered() []*hop {
	out := make([]*hop, 0, len(m.hops))
	for _, h := range m.hops {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].unit.ID < out[j].unit.ID })
	return out
}
