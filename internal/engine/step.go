package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/hexturn/internal/rules"
	"github.com/talgya/hexturn/internal/world"
)

// The methods below implement turnDriver.

func (s *Simulation) beginRound(state TurnState) {
	for _, u := range s.units.All() {
		u.ResetTurn()
	}
	s.event("round", fmt.Sprintf("round %d begins", state.Round))
	s.publish(NotifyBeginRound, state)
}

func (s *Simulation) beginTurn(state TurnState) {
	for _, u := range s.units.All() {
		u.ResetTurn()
		if u.Path.Head() != u.Location() {
			u.Path.Start(u.Location())
		}
	}
	s.publish(NotifyBeginTurn, state)
}

// beginExecute commits every path: each is trimmed to what its unit can
// afford with the budget it holds now.
func (s *Simulation) beginExecute(state TurnState) {
	queued := 0
	for _, u := range s.units.All() {
		if u.Path.Head() != u.Location() {
			u.Path.Start(u.Location())
		}
		if u.Path.Commit(s.grid, u, u.Budget) {
			slog.Debug("path trimmed to budget", "unit", u.ID, "budget", u.Budget, "len", u.Path.Len())
		}
		u.HasQueuedMove = u.Path.Len() > 1
		if u.HasQueuedMove {
			queued++
		}
	}
	slog.Debug("execution committed", "state", state, "queued", queued)
	s.publish(NotifyBeginExecute, state)
}

// beginStep starts a hop for every unit that has a next cell it can afford.
func (s *Simulation) beginStep(state TurnState) {
	clear(s.contacts)
	clear(s.displaced)
	started := 0
	for _, u := range s.units.All() {
		if u.IsDying || u.IsMoving() || u.Budget <= 0 {
			continue
		}
		next := u.Path.Next()
		if next == nil {
			continue
		}
		cost, ok := u.NextStepCost()
		if !ok || cost > u.Budget {
			continue
		}
		s.moves.Begin(u, next, cost, false)
		started++
	}
	slog.Debug("step started", "step", state.Step+1, "hops", started)
}

func (s *Simulation) stepPending() bool {
	return s.moves.Pending()
}

// completeStep runs once every hop of the step has arrived or returned:
// captured units leave the board, arrivals take their cells, post-step hooks
// fire and their victims leave too.
func (s *Simulation) completeStep(state TurnState) {
	s.reap()
	moved := s.commitArrivals()

	all := s.units.All()
	for _, u := range all {
		if _, ok := moved[u.ID]; ok {
			u.IdleSteps = 0
		} else {
			u.IdleSteps++
		}
	}
	for _, u := range all {
		if u.IsDying {
			continue
		}
		if victim := rules.AfterStep(s, s.tables[u.Type], u); victim != nil {
			s.event("capture", fmt.Sprintf("%s %d shot %s %d", u.Type, u.ID, victim.Type, victim.ID))
		}
	}
	s.reap()

	s.moves.Reset(moved)
	s.publish(NotifyStepComplete, state)
}

func (s *Simulation) endExecute(state TurnState) {
	for _, u := range s.units.All() {
		u.Path.Start(u.Location())
		u.HasQueuedMove = false
	}
}

// commitArrivals moves every arrived unit onto its destination. A unit whose
// destination is still held by a unit that stays put returns to its origin.
// Units that only wait on each other rotate together when no two of them
// share a destination and no two trade cells outside a swap, and otherwise
// all return.
func (s *Simulation) commitArrivals() map[world.UnitID]*world.Cell {
	moved := make(map[world.UnitID]*world.Cell)
	pending := s.moves.Arrivals()
	arriving := make(map[world.UnitID]bool, len(pending))
	for _, a := range pending {
		arriving[a.Unit.ID] = true
	}

	for progress := true; progress && len(pending) > 0; {
		progress = false
		var rest []Arrival
		for _, a := range pending {
			occupant := a.To.Occupant
			switch {
			case occupant == 0 || occupant == a.Unit.ID:
				s.arrive(a)
				moved[a.Unit.ID] = a.From
			case !arriving[occupant]:
				s.revert(a)
			default:
				rest = append(rest, a)
				continue
			}
			delete(arriving, a.Unit.ID)
			progress = true
		}
		pending = rest
	}
	if len(pending) == 0 {
		return moved
	}

	targets := make(map[int]bool, len(pending))
	leaving := make(map[int]Arrival, len(pending))
	for _, a := range pending {
		targets[a.To.Index] = true
		leaving[a.From.Index] = a
	}
	if len(targets) != len(pending) || tradesCells(pending, leaving) {
		for _, a := range pending {
			s.revert(a)
		}
		return moved
	}
	for _, a := range pending {
		s.units.Vacate(a.Unit)
	}
	for _, a := range pending {
		s.arrive(a)
		moved[a.Unit.ID] = a.From
	}
	return moved
}

// tradesCells reports whether two arrivals exchange cells directly without
// either being a forced swap. Such units passed through each other.
func tradesCells(pending []Arrival, leaving map[int]Arrival) bool {
	for _, a := range pending {
		b, ok := leaving[a.To.Index]
		if ok && b.To == a.From && !a.Forced && !b.Forced {
			return true
		}
	}
	return false
}

func (s *Simulation) arrive(a Arrival) {
	u := a.Unit
	if err := s.units.Relocate(u, a.To); err != nil {
		// commitArrivals only places units on free cells.
		panic(err)
	}
	u.EnRoute = world.NoCell
	if d, ok := s.grid.DirectionTo(a.From, a.To); ok {
		u.Facing = d
	}
	if a.Forced {
		u.Path.Start(a.To)
		return
	}
	u.Budget = max(u.Budget-a.Cost, 0)
	if u.Path.Head() == a.From && u.Path.Next() == a.To {
		u.Path.TrimHead(1)
	} else {
		u.Path.Start(a.To)
	}
}

func (s *Simulation) revert(a Arrival) {
	s.moves.Revert(a.Unit)
	a.Unit.Budget = 0
	a.Unit.Path.Start(a.From)
	slog.Debug("arrival refused", "unit", a.Unit.ID, "target", a.To.Coord)
}

// reap removes every captured unit from the board.
func (s *Simulation) reap() {
	for _, u := range s.units.All() {
		if !u.IsDying {
			continue
		}
		s.moves.Forget(u)
		s.pf.DecreaseVisibility(u.Location(), u.VisionRange)
		s.units.Despawn(u.ID)
	}
}
