package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

var (
	ErrUnknownPlayer = errors.New("unknown player")
	ErrPlayerExists  = errors.New("player already joined")
	ErrNotAccepting  = errors.New("ready signals are not accepted while steps execute")
)

// Player is a participant whose ready signal gates phase transitions.
type Player struct {
	ID    string `json:"id"`
	Team  uint8  `json:"team"`
	Ready bool   `json:"ready"`
}

// turnDriver carries out the work of each scheduler transition.
type turnDriver interface {
	beginRound(state TurnState)
	beginTurn(state TurnState)
	beginExecute(state TurnState)
	beginStep(state TurnState)
	stepPending() bool
	completeStep(state TurnState)
	endExecute(state TurnState)
}

// Scheduler is the turn state machine. Each Tick performs at most one
// transition; a step in flight holds the machine until no hop is pending.
type Scheduler struct {
	StepsPerTurn  int
	TurnsPerRound int
	TurnTimer     time.Duration // 0 disables the turn timer

	state    TurnState
	players  map[string]*Player
	deadline time.Time
	started  bool
	stepping bool
}

// NewScheduler creates a scheduler that has not started its first round.
func NewScheduler(stepsPerTurn, turnsPerRound int, turnTimer time.Duration) *Scheduler {
	return &Scheduler{
		StepsPerTurn:  stepsPerTurn,
		TurnsPerRound: turnsPerRound,
		TurnTimer:     turnTimer,
		players:       make(map[string]*Player),
	}
}

// State returns the current turn state.
func (s *Scheduler) State() TurnState {
	return s.state
}

// Deadline returns when the turn timer fires, or the zero time.
func (s *Scheduler) Deadline() time.Time {
	return s.deadline
}

// Stepping reports whether a step is waiting on its barrier.
func (s *Scheduler) Stepping() bool {
	return s.stepping
}

// AddPlayer registers a participant for team.
func (s *Scheduler) AddPlayer(id string, team uint8) error {
	if _, ok := s.players[id]; ok {
		return fmt.Errorf("%q: %w", id, ErrPlayerExists)
	}
	s.players[id] = &Player{ID: id, Team: team}
	return nil
}

// RemovePlayer drops a participant. Remaining players may now all be ready.
func (s *Scheduler) RemovePlayer(id string) {
	delete(s.players, id)
}

// Player returns a copy of a participant.
func (s *Scheduler) Player(id string) (Player, bool) {
	p, ok := s.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// Players returns every participant ordered by ID.
func (s *Scheduler) Players() []Player {
	out := make([]Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetReady records a player's ready signal for the current phase.
func (s *Scheduler) SetReady(id string, ready bool) error {
	p, ok := s.players[id]
	if !ok {
		return fmt.Errorf("%q: %w", id, ErrUnknownPlayer)
	}
	if s.state.Phase == PhaseExecutingSteps {
		return ErrNotAccepting
	}
	p.Ready = ready
	return nil
}

// Start enters the economy phase of round 1.
func (s *Scheduler) Start(d turnDriver) {
	if s.started {
		return
	}
	s.started = true
	s.enterRound(d)
}

// Tick advances the state machine.
func (s *Scheduler) Tick(now time.Time, d turnDriver) {
	if !s.started {
		s.Start(d)
		return
	}

	switch s.state.Phase {
	case PhaseEconomy:
		if s.allReady() {
			s.enterTurn(now, d)
		}
	case PhaseInTurn:
		if s.allReady() || s.timerElapsed(now) {
			s.state.Phase = PhaseExecutingSteps
			s.state.Step = 0
			s.deadline = time.Time{}
			s.clearReady()
			slog.Debug("executing turn", "state", s.state)
			d.beginExecute(s.state)
		}
	case PhaseExecutingSteps:
		s.runStep(now, d)
	}
}

func (s *Scheduler) runStep(now time.Time, d turnDriver) {
	if !s.stepping {
		s.stepping = true
		d.beginStep(s.state)
		return
	}
	if d.stepPending() {
		return
	}

	s.stepping = false
	s.state.Step++
	d.completeStep(s.state)
	if s.state.Step < s.StepsPerTurn {
		return
	}

	d.endExecute(s.state)
	if s.state.Turn >= s.TurnsPerRound {
		s.enterRound(d)
		return
	}
	s.enterTurn(now, d)
}

func (s *Scheduler) enterRound(d turnDriver) {
	s.state = TurnState{Round: s.state.Round + 1, Phase: PhaseEconomy}
	s.deadline = time.Time{}
	s.clearReady()
	slog.Info("round started", "round", s.state.Round)
	d.beginRound(s.state)
}

func (s *Scheduler) enterTurn(now time.Time, d turnDriver) {
	s.state.Turn++
	s.state.Step = 0
	s.state.Phase = PhaseInTurn
	s.clearReady()
	if s.TurnTimer > 0 {
		s.deadline = now.Add(s.TurnTimer)
	}
	slog.Debug("turn started", "round", s.state.Round, "turn", s.state.Turn)
	d.beginTurn(s.state)
}

func (s *Scheduler) timerElapsed(now time.Time) bool {
	return s.TurnTimer > 0 && !s.deadline.IsZero() && !now.Before(s.deadline)
}

func (s *Scheduler) allReady() bool {
	if len(s.players) == 0 {
		return false
	}
	for _, p := range s.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

func (s *Scheduler) clearReady() {
	for _, p := range s.players {
		p.Ready = false
	}
}
