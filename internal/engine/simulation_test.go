package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexturn/internal/units"
	"github.com/talgya/hexturn/internal/world"
)

const testCatalog = `
units:
  - name: knight
    movement: 10
    vision: 1
    costs: {flat: 5, slope: 10}
    captures: [pawn]
    rules:
      enemy: {active_border: capture, active_center: capture, idle: capture}
  - name: pawn
    movement: 10
    vision: 1
    costs: {flat: 5, slope: 10}
    rules:
      enemy: {active_border: capture, active_center: capture, idle: capture}
  - name: rook
    movement: 10
    vision: 1
    costs: {flat: 5, slope: 10}
    captures: [rook]
    rules:
      enemy: {active_border: capture, active_center: capture, idle: capture}
  - name: runner
    movement: 20
    vision: 1
    travel_speed: 2
    costs: {flat: 5, slope: 10}
  - name: walker
    movement: 20
    vision: 1
    travel_speed: 0.5
    costs: {flat: 5, slope: 10}
  - name: shover
    movement: 10
    vision: 1
    pass_allies: true
    costs: {flat: 5, slope: 10}
    rules:
      enemy: {idle: push}
      ally: {idle: swap}
  - name: archer
    movement: 5
    vision: 2
    costs: {flat: 5, slope: 10}
    captures: ["*"]
    post_step: arrow
    ranged: {range: 3, charge_steps: 1}
`

const testDT = 100 * time.Millisecond

type harness struct {
	t   *testing.T
	sim *Simulation
	now time.Time
}

func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()
	cfg := DefaultConfig()
	cfg.StepsPerTurn = 1
	cfg.TurnsPerRound = 3
	cfg.TurnTimer = 0
	cfg.OutboxSize = 256
	if mutate != nil {
		mutate(&cfg)
	}

	g, err := world.NewGrid(10, 5, cfg.Metrics)
	require.NoError(t, err)
	catalog, err := units.LoadCatalog(strings.NewReader(testCatalog))
	require.NoError(t, err)

	sim, err := NewSimulation(cfg, g, catalog)
	require.NoError(t, err)
	require.NoError(t, sim.AddPlayer("p1", 1))
	require.NoError(t, sim.AddPlayer("p2", 2))
	sim.Start()

	return &harness{t: t, sim: sim, now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (h *harness) tick() {
	h.tickBy(testDT)
}

func (h *harness) tickBy(dt time.Duration) {
	h.now = h.now.Add(dt)
	h.sim.Tick(h.now, dt)
}

// startStep readies everyone and ticks until the first step's hops have
// begun, before any of them advance.
func (h *harness) startStep() {
	h.t.Helper()
	h.readyAll()
	h.tick()
	h.tick()
	require.True(h.t, h.sim.Scheduler().Stepping())
}

func (h *harness) countEvents(category string) int {
	n := 0
	for _, e := range h.sim.Events(0) {
		if e.Category == category {
			n++
		}
	}
	return n
}

func (h *harness) spawn(kind string, col, row int, team uint8) *units.Unit {
	h.t.Helper()
	u, err := h.sim.Spawn(kind, world.FromOffset(col, row), team)
	require.NoError(h.t, err)
	return u
}

func (h *harness) readyAll() {
	h.t.Helper()
	for _, p := range h.sim.Scheduler().Players() {
		require.NoError(h.t, h.sim.Apply(Command{Kind: CommandReady, Player: p.ID, Ready: true}))
	}
}

// toTurn moves from the economy phase into the first turn.
func (h *harness) toTurn() {
	h.t.Helper()
	require.Equal(h.t, PhaseEconomy, h.sim.Scheduler().State().Phase)
	h.readyAll()
	h.tick()
	require.Equal(h.t, PhaseInTurn, h.sim.Scheduler().State().Phase)
}

func (h *harness) route(player string, u *units.Unit, col, row int) {
	h.t.Helper()
	require.NoError(h.t, h.sim.Apply(Command{
		Kind:   CommandSetPath,
		Player: player,
		Unit:   u.ID,
		Target: world.FromOffset(col, row),
	}))
}

// execute readies everyone and ticks until the turn's steps are done.
func (h *harness) execute() {
	h.t.Helper()
	h.readyAll()
	h.tick()
	require.Equal(h.t, PhaseExecutingSteps, h.sim.Scheduler().State().Phase)
	h.finish()
}

// finish ticks until the executing phase ends.
func (h *harness) finish() {
	h.t.Helper()
	for i := 0; i < 1000 && h.sim.Scheduler().State().Phase == PhaseExecutingSteps; i++ {
		h.tick()
	}
	require.NotEqual(h.t, PhaseExecutingSteps, h.sim.Scheduler().State().Phase, "execution never finished")
}

func (h *harness) cell(col, row int) *world.Cell {
	return h.sim.Grid().CellAtOffset(col, row)
}

func TestNewSimulationValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StepsPerTurn = 0
	g, err := world.NewGrid(10, 5, cfg.Metrics)
	require.NoError(t, err)
	_, err = NewSimulation(cfg, g, &units.Catalog{})
	assert.Error(t, err)
}

func TestCommittedPathStaysWithinBudget(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.StepsPerTurn = 4 })
	u := h.spawn("knight", 1, 2, 1)
	h.toTurn()

	h.route("p1", u, 5, 2)
	require.Equal(t, 5, u.Path.Len())
	state, ok := h.sim.Snapshot().Unit(u.ID)
	require.True(t, ok)
	assert.True(t, state.ExceedsBudget, "a four-hop path costs 20 against a budget of 10")

	h.readyAll()
	h.tick()
	require.Equal(t, PhaseExecutingSteps, h.sim.Scheduler().State().Phase)
	assert.Equal(t, 3, u.Path.Len(), "commit keeps the affordable prefix")
	cost, ok := u.Path.Cost(h.sim.Grid(), u)
	require.True(t, ok)
	assert.LessOrEqual(t, cost, u.Budget)

	h.finish()
	assert.Same(t, h.cell(3, 2), u.Location(), "only two hops were affordable")
	assert.Equal(t, world.DirectionE, u.Facing)
	assert.Equal(t, 1, u.Path.Len(), "paths are cleared after execution")
	assert.Zero(t, h.cell(1, 2).Occupant)
	assert.Equal(t, u.ID, h.cell(3, 2).Occupant)
}

func TestStepBarrierWaitsForSlowestHop(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.StepsPerTurn = 2 })
	fast := h.spawn("runner", 1, 0, 1)
	slow := h.spawn("walker", 1, 4, 1)
	h.toTurn()
	h.route("p1", fast, 3, 0)
	h.route("p1", slow, 3, 4)

	h.readyAll()
	h.tick()
	require.Equal(t, PhaseExecutingSteps, h.sim.Scheduler().State().Phase)

	sawWaiting := false
	for i := 0; i < 100 && h.sim.Scheduler().State().Step == 0; i++ {
		h.tick()
		p, moving := h.sim.Movement().Progress(fast)
		if moving && p >= 1 && h.sim.Scheduler().State().Step == 0 {
			sawWaiting = true
			assert.Same(t, h.cell(1, 0), fast.Location(), "arrivals commit only at the barrier")
			assert.True(t, h.sim.Movement().Pending())
		}
	}
	require.Equal(t, 1, h.sim.Scheduler().State().Step)
	assert.True(t, sawWaiting)
	assert.Same(t, h.cell(2, 0), fast.Location())
	assert.Same(t, h.cell(2, 4), slow.Location())
	assert.False(t, fast.IsMoving())
	assert.False(t, slow.IsMoving())
}

func TestCollisionSymmetryCaptureCenter(t *testing.T) {
	h := newHarness(t, nil)
	knight := h.spawn("knight", 1, 2, 1)
	pawn := h.spawn("pawn", 3, 2, 2)
	h.toTurn()
	h.route("p1", knight, 2, 2)
	h.route("p2", pawn, 2, 2)

	h.execute()
	assert.Equal(t, 1, h.sim.Units().Count())
	assert.Nil(t, h.sim.Units().Get(pawn.ID))
	assert.Same(t, h.cell(2, 2), knight.Location())
	assert.Equal(t, knight.ID, h.cell(2, 2).Occupant)
	assert.Zero(t, h.cell(3, 2).Occupant)
}

func TestMutualCaptureBouncesBoth(t *testing.T) {
	h := newHarness(t, nil)
	a := h.spawn("rook", 1, 2, 1)
	b := h.spawn("rook", 3, 2, 2)
	h.toTurn()
	h.route("p1", a, 2, 2)
	h.route("p2", b, 2, 2)

	h.execute()
	assert.Equal(t, 2, h.sim.Units().Count())
	assert.Same(t, h.cell(1, 2), a.Location())
	assert.Same(t, h.cell(3, 2), b.Location())
	assert.Zero(t, h.cell(2, 2).Occupant)
}

func TestHeadOnCrossingMakesContactAtAnyTickLength(t *testing.T) {
	for _, dt := range []time.Duration{100 * time.Millisecond, 800 * time.Millisecond, 3 * time.Second} {
		t.Run(dt.String(), func(t *testing.T) {
			h := newHarness(t, nil)
			knight := h.spawn("knight", 1, 2, 1)
			pawn := h.spawn("pawn", 2, 2, 2)
			h.toTurn()
			h.route("p1", knight, 2, 2)
			h.route("p2", pawn, 1, 2)

			h.readyAll()
			h.tickBy(dt)
			require.Equal(t, PhaseExecutingSteps, h.sim.Scheduler().State().Phase)
			for i := 0; i < 100 && h.sim.Scheduler().State().Phase == PhaseExecutingSteps; i++ {
				h.tickBy(dt)
			}
			require.NotEqual(t, PhaseExecutingSteps, h.sim.Scheduler().State().Phase)

			assert.Equal(t, 1, h.sim.Units().Count())
			assert.Nil(t, h.sim.Units().Get(pawn.ID), "the pawn cannot slip past the knight")
			assert.Same(t, h.cell(2, 2), knight.Location())
			assert.Equal(t, 1, h.countEvents("capture"))
		})
	}
}

func TestBarrierRefusesUnforcedCellTrade(t *testing.T) {
	h := newHarness(t, nil)
	a := h.spawn("runner", 1, 2, 1)
	b := h.spawn("runner", 2, 2, 2)
	h.toTurn()

	m := h.sim.Movement()
	m.Begin(a, h.cell(2, 2), 5, false)
	m.Begin(b, h.cell(1, 2), 5, false)
	m.Advance(10)
	moved := h.sim.commitArrivals()
	assert.Empty(t, moved)
	assert.Same(t, h.cell(1, 2), a.Location())
	assert.Same(t, h.cell(2, 2), b.Location())
	m.Reset(moved)

	m.Begin(a, h.cell(2, 2), 5, false)
	m.Begin(b, h.cell(1, 2), 0, true)
	m.Advance(10)
	moved = h.sim.commitArrivals()
	assert.Len(t, moved, 2, "a swap trades cells")
	assert.Same(t, h.cell(2, 2), a.Location())
	assert.Same(t, h.cell(1, 2), b.Location())
}

func TestRepeatedContactAppliesOnce(t *testing.T) {
	t.Run("push", func(t *testing.T) {
		h := newHarness(t, nil)
		shover := h.spawn("shover", 1, 2, 1)
		enemy := h.spawn("pawn", 2, 2, 2)
		h.toTurn()
		h.route("p1", shover, 2, 2)
		h.startStep()

		h.sim.resolveContact(shover, enemy)
		h.sim.resolveContact(shover, enemy)
		assert.Same(t, h.cell(3, 2), enemy.Location())
		assert.True(t, h.sim.Push(enemy, world.DirectionE), "the same push reports success")
		assert.Same(t, h.cell(3, 2), enemy.Location())
		assert.False(t, h.sim.Push(enemy, world.DirectionW), "a unit is pushed once per step")
		assert.Same(t, h.cell(3, 2), enemy.Location())
		assert.Positive(t, shover.Budget)
	})

	t.Run("kill", func(t *testing.T) {
		h := newHarness(t, nil)
		knight := h.spawn("knight", 1, 2, 1)
		pawn := h.spawn("pawn", 2, 2, 2)
		h.toTurn()
		h.route("p1", knight, 2, 2)
		h.startStep()

		h.sim.resolveContact(knight, pawn)
		h.sim.resolveContact(knight, pawn)
		h.sim.Kill(pawn, knight)
		assert.True(t, pawn.IsDying)
		assert.Equal(t, 1, h.countEvents("capture"))
	})

	t.Run("bounce", func(t *testing.T) {
		h := newHarness(t, nil)
		a := h.spawn("rook", 1, 2, 1)
		b := h.spawn("rook", 3, 2, 2)
		h.toTurn()
		h.route("p1", a, 2, 2)
		h.route("p2", b, 2, 2)
		h.startStep()

		h.sim.resolveContact(a, b)
		h.sim.resolveContact(a, b)
		h.sim.Bounce(a)
		assert.True(t, a.HasBeenBounced)
		assert.True(t, b.HasBeenBounced)
		assert.False(t, h.sim.Movement().Bounce(a), "a hop bounces once")

		h.finish()
		assert.Same(t, h.cell(1, 2), a.Location())
		assert.Same(t, h.cell(3, 2), b.Location())
	})

	t.Run("block", func(t *testing.T) {
		h := newHarness(t, nil)
		mover := h.spawn("pawn", 1, 2, 1)
		idle := h.spawn("pawn", 2, 2, 2)
		h.toTurn()
		h.route("p1", mover, 2, 2)
		h.startStep()

		h.sim.resolveContact(mover, idle)
		h.sim.resolveContact(mover, idle)
		h.sim.Block(mover)
		assert.Zero(t, mover.Budget)
		assert.Equal(t, 1, mover.Path.Len())

		h.finish()
		assert.Same(t, h.cell(1, 2), mover.Location())
		assert.Same(t, h.cell(2, 2), idle.Location())
	})
}

func TestBounceGuardCoversOneHop(t *testing.T) {
	h := newHarness(t, nil)
	knight := h.spawn("knight", 1, 2, 1)
	h.toTurn()
	h.route("p1", knight, 2, 2)
	h.startStep()

	// Bounced on an earlier hop this turn.
	knight.HasBeenBounced = true
	h.sim.Bounce(knight)
	assert.Zero(t, knight.Budget)
	assert.False(t, h.sim.Movement().Bounce(knight))

	h.finish()
	assert.Same(t, h.cell(1, 2), knight.Location())
}

func TestMoverBlockedByIdleUnit(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.StepsPerTurn = 3 })
	mover := h.spawn("pawn", 1, 2, 1)
	h.spawn("pawn", 2, 2, 2)
	h.toTurn()
	h.route("p1", mover, 4, 2)
	require.Greater(t, mover.Path.Len(), 1)

	h.execute()
	assert.Same(t, h.cell(1, 2), mover.Location())
	assert.Equal(t, 2, h.sim.Units().Count())
}

func TestPushDisplacesIdleEnemy(t *testing.T) {
	h := newHarness(t, nil)
	shover := h.spawn("shover", 1, 2, 1)
	enemy := h.spawn("pawn", 2, 2, 2)
	h.toTurn()
	h.route("p1", shover, 2, 2)

	h.execute()
	assert.Same(t, h.cell(2, 2), shover.Location())
	assert.Same(t, h.cell(3, 2), enemy.Location())
}

func TestSwapTradesPlacesWithIdleAlly(t *testing.T) {
	h := newHarness(t, nil)
	shover := h.spawn("shover", 1, 2, 1)
	ally := h.spawn("pawn", 2, 2, 1)
	h.toTurn()
	h.route("p1", shover, 2, 2)
	require.Equal(t, 2, shover.Path.Len())

	h.execute()
	assert.Same(t, h.cell(2, 2), shover.Location())
	assert.Same(t, h.cell(1, 2), ally.Location())
	assert.Equal(t, shover.ID, h.cell(2, 2).Occupant)
	assert.Equal(t, ally.ID, h.cell(1, 2).Occupant)
}

func TestArrowFiresAfterStandingStill(t *testing.T) {
	h := newHarness(t, nil)
	archer := h.spawn("archer", 1, 2, 1)
	archer.Facing = world.DirectionE
	target := h.spawn("pawn", 3, 2, 2)
	h.toTurn()

	h.execute()
	assert.Nil(t, h.sim.Units().Get(target.ID))
	assert.Zero(t, h.cell(3, 2).Occupant)
	assert.Zero(t, archer.IdleSteps)

	found := false
	for _, e := range h.sim.Events(0) {
		if e.Category == "capture" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestTurnTimerForcesExecution(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.TurnTimer = time.Second })
	h.toTurn()

	for i := 0; i < 9; i++ {
		h.tick()
	}
	assert.Equal(t, PhaseInTurn, h.sim.Scheduler().State().Phase)
	h.tick()
	h.tick()
	assert.Equal(t, PhaseExecutingSteps, h.sim.Scheduler().State().Phase)
}

func TestRoundEndsAfterTurnLimit(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.TurnsPerRound = 2 })
	u := h.spawn("knight", 1, 2, 1)
	h.toTurn()
	h.route("p1", u, 2, 2)
	h.execute()
	assert.Equal(t, TurnState{Round: 1, Turn: 2, Phase: PhaseInTurn}, h.sim.Scheduler().State())
	assert.Equal(t, 10, u.Budget, "budget recovers every turn")

	h.execute()
	assert.Equal(t, TurnState{Round: 2, Phase: PhaseEconomy}, h.sim.Scheduler().State())
}

func TestCommandValidation(t *testing.T) {
	h := newHarness(t, nil)
	u := h.spawn("knight", 1, 2, 1)

	err := h.sim.Apply(Command{Kind: CommandSetPath, Player: "p1", Unit: u.ID, Target: world.FromOffset(2, 2)})
	assert.ErrorIs(t, err, ErrWrongPhase)

	err = h.sim.Apply(Command{Kind: CommandSpawn, Player: "p2", UnitType: "pawn", Target: world.FromOffset(5, 2)})
	require.NoError(t, err)
	assert.Equal(t, 2, h.sim.Units().Count())

	err = h.sim.Apply(Command{Kind: CommandSpawn, Player: "p2", UnitType: "dragon", Target: world.FromOffset(6, 2)})
	assert.ErrorIs(t, err, units.ErrUnknownType)

	err = h.sim.Apply(Command{Kind: CommandSpawn, Player: "p2", UnitType: "pawn", Target: world.Coordinate{X: 99, Z: 99}})
	assert.ErrorIs(t, err, ErrOffMap)

	h.toTurn()

	err = h.sim.Apply(Command{Kind: CommandSetPath, Player: "p2", Unit: u.ID, Target: world.FromOffset(2, 2)})
	assert.ErrorIs(t, err, ErrNotOwner)

	err = h.sim.Apply(Command{Kind: CommandSetPath, Player: "p1", Unit: 999, Target: world.FromOffset(2, 2)})
	assert.ErrorIs(t, err, ErrUnknownUnit)

	err = h.sim.Apply(Command{Kind: CommandSpawn, Player: "p1", UnitType: "pawn", Target: world.FromOffset(7, 2)})
	assert.ErrorIs(t, err, ErrWrongPhase)

	err = h.sim.Apply(Command{Kind: CommandReady, Player: "nobody", Ready: true})
	assert.True(t, errors.Is(err, ErrUnknownPlayer))

	require.NoError(t, h.sim.Apply(Command{Kind: CommandExtendPath, Player: "p1", Unit: u.ID, Target: world.FromOffset(2, 2)}))
	require.NoError(t, h.sim.Apply(Command{Kind: CommandExtendPath, Player: "p1", Unit: u.ID, Target: world.FromOffset(3, 2)}))
	assert.Equal(t, 3, u.Path.Len())
	require.NoError(t, h.sim.Apply(Command{Kind: CommandClearPath, Player: "p1", Unit: u.ID}))
	assert.Equal(t, 1, u.Path.Len())
}

func TestUnreachableTargetLeavesHeadOnly(t *testing.T) {
	h := newHarness(t, nil)
	u := h.spawn("knight", 1, 2, 1)
	for row := 0; row < 5; row++ {
		h.cell(3, row).Elevation = 5
	}
	h.toTurn()

	h.route("p1", u, 6, 2)
	assert.Equal(t, 1, u.Path.Len())
	assert.Same(t, u.Location(), u.Path.Head())
}

func TestDoWaitsForTick(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- h.sim.Do(ctx, Command{Kind: CommandJoin, Player: "p3", Team: 3})
	}()

	for i := 0; i < 5000; i++ {
		h.tick()
		select {
		case err := <-errc:
			require.NoError(t, err)
			_, ok := h.sim.Scheduler().Player("p3")
			assert.True(t, ok)
			return
		default:
			time.Sleep(time.Millisecond)
		}
	}
	t.Fatal("command was never applied")
}

func TestSubmitRefusesWhenInboxFull(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.InboxSize = 1 })
	require.NoError(t, h.sim.Submit(Command{Kind: CommandReady, Player: "p1", Ready: true}))
	assert.ErrorIs(t, h.sim.Submit(Command{Kind: CommandReady, Player: "p2", Ready: true}), ErrInboxFull)

	h.tick()
	p, _ := h.sim.Scheduler().Player("p1")
	assert.True(t, p.Ready)
}

func TestNotificationsCarrySnapshotsAndDiffs(t *testing.T) {
	h := newHarness(t, nil)
	u := h.spawn("knight", 1, 2, 1)
	h.toTurn()
	h.route("p1", u, 2, 2)
	h.execute()

	var kinds []NotificationKind
	var last Notification
	for {
		select {
		case n := <-h.sim.Notifications():
			kinds = append(kinds, n.Kind)
			if n.Kind == NotifyStepComplete {
				last = n
			}
			continue
		default:
		}
		break
	}

	assert.Equal(t, []NotificationKind{
		NotifyBeginRound, NotifyBeginTurn, NotifyBeginExecute, NotifyStepComplete, NotifyBeginTurn,
	}, kinds)

	require.NotNil(t, last.Snapshot)
	assert.Equal(t, h.sim.ID, last.Snapshot.Match)
	require.Len(t, last.Diff.Changed, 1)
	assert.Equal(t, world.FromOffset(2, 2), last.Diff.Changed[0].Coord)
	assert.Equal(t, 1, last.State.Step)
}

func TestDiffSnapshots(t *testing.T) {
	prev := &Snapshot{Units: []UnitState{{ID: 1}, {ID: 2, Budget: 3}, {ID: 4}}}
	next := &Snapshot{Units: []UnitState{{ID: 2, Budget: 1}, {ID: 3}, {ID: 4}}}

	d := diffSnapshots(prev, next)
	assert.False(t, d.StateChanged)
	assert.Equal(t, []world.UnitID{1}, d.Removed)
	require.Len(t, d.Changed, 2)
	assert.Equal(t, world.UnitID(2), d.Changed[0].ID)
	assert.Equal(t, world.UnitID(3), d.Changed[1].ID)

	assert.True(t, diffSnapshots(next, next).Empty())
	assert.True(t, diffSnapshots(nil, next).StateChanged)
}

func TestUnitRecordsRoundTrip(t *testing.T) {
	h := newHarness(t, nil)
	a := h.spawn("knight", 1, 2, 1)
	a.Facing = world.DirectionSW
	h.spawn("pawn", 4, 3, 2)
	records := h.sim.UnitRecords()
	require.Len(t, records, 2)

	other := newHarness(t, nil)
	require.NoError(t, other.sim.RestoreUnits(records))
	assert.Equal(t, records, other.sim.UnitRecords())
	assert.Equal(t, world.DirectionSW, other.sim.Units().At(other.cell(1, 2)).Facing)

	err := other.sim.RestoreUnits(records[:1])
	assert.ErrorIs(t, err, units.ErrCellOccupied)
}

func TestFacingAngles(t *testing.T) {
	for _, d := range world.Directions {
		assert.Equal(t, d, DirectionFromAngle(FacingAngle(d)))
	}
	assert.Equal(t, world.DirectionNE, DirectionFromAngle(10))
	assert.Equal(t, world.DirectionNW, DirectionFromAngle(-10))
	assert.Equal(t, world.DirectionNW, DirectionFromAngle(350))
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`
steps_per_turn: 6
turn_timer: 45s
map:
  width: 30
  seed: 9
metrics:
  cliff_delta: 3
`))
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.StepsPerTurn)
	assert.Equal(t, 45*time.Second, cfg.TurnTimer)
	assert.Equal(t, 30, cfg.Map.Width)
	assert.Equal(t, 15, cfg.Map.Height, "unset fields keep their defaults")
	assert.Equal(t, int64(9), cfg.GenConfig().Seed)
	assert.Equal(t, 3, cfg.Metrics.CliffDelta)

	_, err = LoadConfig(strings.NewReader("turns_per_round: 0\n"))
	assert.Error(t, err)

	cfg, err = LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
