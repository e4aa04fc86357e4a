// Simulation ties the grid, units, pathfinder and turn scheduler together and
// advances them once per scheduling tick.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/hexturn/internal/pathing"
	"github.com/talgya/hexturn/internal/rules"
	"github.com/talgya/hexturn/internal/units"
	"github.com/talgya/hexturn/internal/world"
)

const maxEvents = 500

// maxSubstepTravel bounds how far a hop moves between contact checks. Two
// units crossing head-on overlap for half of their hops, so a quarter hop
// never steps over the overlap.
const maxSubstepTravel = 0.25

// Simulation is the authoritative state of one match. Every mutation happens
// on the goroutine that calls Tick; other goroutines talk to it through
// Submit/Do and read published snapshots.
type Simulation struct {
	ID     uuid.UUID
	Config Config

	grid    *world.Grid
	pf      *pathing.Pathfinder
	units   *units.Registry
	catalog *units.Catalog
	moves   *MovementExecutor
	sched   *Scheduler
	tables  map[string]rules.Table

	// Contacts already resolved during the current step.
	contacts  map[pairKey]bool
	// Units pushed during the current step, by push direction.
	displaced map[world.UnitID]world.Direction

	tick     uint64
	inbox    chan Command
	outbox   chan Notification
	previous *Snapshot // Last published snapshot, for diffs

	mu     sync.RWMutex
	latest *Snapshot
	cells  []world.CellRecord
	events []Event
}

// Event is a notable occurrence in a match.
type Event struct {
	Tick        uint64    `json:"tick"`
	State       TurnState `json:"state"`
	Description string    `json:"description"`
	Category    string    `json:"category"` // "capture", "spawn", "round", etc.
}

// NewSimulation creates a match on g with the unit types of catalog.
func NewSimulation(cfg Config, g *world.Grid, catalog *units.Catalog) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tables := make(map[string]rules.Table, len(catalog.Units))
	for _, uc := range catalog.Units {
		t, err := rules.Compile(uc)
		if err != nil {
			return nil, err
		}
		tables[uc.Name] = t
	}

	if cfg.RevealMap {
		g.RevealAll()
	}

	pf := pathing.NewPathfinder(g)
	s := &Simulation{
		ID:        uuid.New(),
		Config:    cfg,
		grid:      g,
		pf:        pf,
		units:     units.NewRegistry(g),
		catalog:   catalog,
		moves:     NewMovementExecutor(pf),
		sched:     NewScheduler(cfg.StepsPerTurn, cfg.TurnsPerRound, cfg.TurnTimer),
		tables:    tables,
		contacts:  make(map[pairKey]bool),
		displaced: make(map[world.UnitID]world.Direction),
		inbox:     make(chan Command, max(cfg.InboxSize, 1)),
		outbox:    make(chan Notification, max(cfg.OutboxSize, 1)),
	}
	s.refresh()
	return s, nil
}

// Grid returns the match grid.
func (s *Simulation) Grid() *world.Grid {
	return s.grid
}

// Pathfinder returns the search state shared by the match.
func (s *Simulation) Pathfinder() *pathing.Pathfinder {
	return s.pf
}

// Units returns the unit registry.
func (s *Simulation) Units() *units.Registry {
	return s.units
}

// Scheduler returns the turn state machine.
func (s *Simulation) Scheduler() *Scheduler {
	return s.sched
}

// Movement returns the hop executor.
func (s *Simulation) Movement() *MovementExecutor {
	return s.moves
}

// UnitTypes returns the catalog's unit type names in declaration order.
func (s *Simulation) UnitTypes() []string {
	names := make([]string, len(s.catalog.Units))
	for i, uc := range s.catalog.Units {
		names[i] = uc.Name
	}
	return names
}

// CurrentTick returns the number of ticks processed.
func (s *Simulation) CurrentTick() uint64 {
	return s.tick
}

// Notifications delivers phase notifications in order. Notifications are
// dropped while the channel is full.
func (s *Simulation) Notifications() <-chan Notification {
	return s.outbox
}

// AddPlayer registers a participant. Call before the first tick or through
// a join command.
func (s *Simulation) AddPlayer(id string, team uint8) error {
	if err := s.sched.AddPlayer(id, team); err != nil {
		return err
	}
	s.event("player", fmt.Sprintf("%s joined team %d", id, team))
	return nil
}

// Spawn places a new unit of the named type. Vision is granted at once and
// the snapshot is refreshed.
func (s *Simulation) Spawn(typeName string, coord world.Coordinate, team uint8) (*units.Unit, error) {
	cfg, err := s.catalog.Lookup(typeName)
	if err != nil {
		return nil, err
	}
	cell := s.grid.CellAt(coord)
	if cell == nil {
		return nil, fmt.Errorf("spawn at %v: %w", coord, ErrOffMap)
	}
	u, err := s.units.Spawn(cfg, cell, team)
	if err != nil {
		return nil, err
	}
	s.pf.IncreaseVisibility(cell, u.VisionRange)
	s.event("spawn", fmt.Sprintf("%s %d deployed at %v for team %d", u.Type, u.ID, coord, team))
	s.refresh()
	return u, nil
}

// Start enters the first round without waiting for a tick.
func (s *Simulation) Start() {
	s.sched.Start(s)
}

// Tick advances the match by one scheduling tick of dt travel time. Pending
// commands are applied first, then hops advance, contacts resolve and the
// scheduler moves on.
func (s *Simulation) Tick(now time.Time, dt time.Duration) {
	s.tick++
	applied := s.drain()

	s.advance(dt.Seconds())

	before := s.sched.State()
	s.sched.Tick(now, s)
	if applied > 0 && s.sched.State() == before {
		s.refresh()
	}
}

// advance moves hops forward in sub-steps short enough that no contact is
// skipped, checking for contacts after each one.
func (s *Simulation) advance(seconds float64) {
	n := max(int(math.Ceil(s.moves.MaxRate()*seconds/maxSubstepTravel)), 1)
	for i := 0; i < n; i++ {
		s.moves.Advance(seconds / float64(n))
		s.detectContacts()
	}
}

// Snapshot returns the most recent published state.
func (s *Simulation) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// MapRecords returns the cell records as of the last snapshot.
func (s *Simulation) MapRecords() []world.CellRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]world.CellRecord(nil), s.cells...)
}

// Events returns recent events, oldest first.
func (s *Simulation) Events(limit int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 && len(s.events) > limit {
		start = len(s.events) - limit
	}
	return append([]Event(nil), s.events[start:]...)
}

func (s *Simulation) event(category, description string) {
	e := Event{
		Tick:        s.tick,
		State:       s.sched.State(),
		Description: description,
		Category:    category,
	}
	s.mu.Lock()
	s.events = append(s.events, e)
	if len(s.events) > maxEvents {
		s.events = s.events[len(s.events)-maxEvents:]
	}
	s.mu.Unlock()
	slog.Info("event", "category", category, "description", description, "tick", s.tick)
}

// refresh rebuilds the readable snapshot without notifying anyone.
func (s *Simulation) refresh() *Snapshot {
	snap := s.snapshot()
	cells := s.grid.Records()
	s.mu.Lock()
	s.latest = snap
	s.cells = cells
	s.mu.Unlock()
	return snap
}

// publish refreshes the snapshot and queues a notification carrying the
// changes since the previous one.
func (s *Simulation) publish(kind NotificationKind, state TurnState) {
	snap := s.refresh()
	n := Notification{
		Kind:     kind,
		State:    state,
		Snapshot: snap,
		Diff:     diffSnapshots(s.previous, snap),
	}
	s.previous = snap

	select {
	case s.outbox <- n:
	default:
		slog.Warn("notification dropped", "kind", kind, "state", state)
	}
}
