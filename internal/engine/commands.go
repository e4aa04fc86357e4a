package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/hexturn/internal/units"
	"github.com/talgya/hexturn/internal/world"
)

var (
	ErrWrongPhase  = errors.New("command not allowed in this phase")
	ErrNotOwner    = errors.New("unit belongs to another team")
	ErrUnknownUnit = errors.New("unknown unit")
	ErrOffMap      = errors.New("coordinate is off the map")
	ErrInboxFull   = errors.New("command inbox full")
)

// CommandKind selects what a Command does.
type CommandKind uint8

const (
	CommandJoin       CommandKind = iota // Register Player on Team
	CommandReady                         // Player signals ready (Ready=false withdraws)
	CommandSetPath                       // Route Unit to Target by search
	CommandExtendPath                    // Append Target to Unit's drawn path
	CommandClearPath                     // Drop Unit's path
	CommandSpawn                         // Deploy UnitType at Target (economy only)
)

var commandNames = map[CommandKind]string{
	CommandJoin:       "join",
	CommandReady:      "ready",
	CommandSetPath:    "set_path",
	CommandExtendPath: "extend_path",
	CommandClearPath:  "clear_path",
	CommandSpawn:      "spawn",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return fmt.Sprintf("CommandKind(%d)", k)
}

// Command is an externally validated input applied on the tick goroutine.
type Command struct {
	Kind     CommandKind
	Player   string
	Team     uint8
	Ready    bool
	Unit     world.UnitID
	Target   world.Coordinate
	UnitType string

	reply chan error
}

// Submit queues a command without waiting for it to be applied.
func (s *Simulation) Submit(cmd Command) error {
	select {
	case s.inbox <- cmd:
		return nil
	default:
		return ErrInboxFull
	}
}

// Do queues a command and waits until the tick goroutine has applied it.
func (s *Simulation) Do(ctx context.Context, cmd Command) error {
	cmd.reply = make(chan error, 1)
	select {
	case s.inbox <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drain applies every queued command and returns how many there were.
func (s *Simulation) drain() int {
	n := 0
	for {
		select {
		case cmd := <-s.inbox:
			err := s.apply(cmd)
			if err != nil {
				slog.Debug("command rejected", "kind", cmd.Kind, "player", cmd.Player, "error", err)
			}
			if cmd.reply != nil {
				cmd.reply <- err
			}
			n++
		default:
			return n
		}
	}
}

// Apply executes a command immediately and refreshes the snapshot. It must
// only be called from the goroutine that ticks the simulation.
func (s *Simulation) Apply(cmd Command) error {
	err := s.apply(cmd)
	s.refresh()
	return err
}

func (s *Simulation) apply(cmd Command) error {
	switch cmd.Kind {
	case CommandJoin:
		return s.AddPlayer(cmd.Player, cmd.Team)
	case CommandReady:
		return s.sched.SetReady(cmd.Player, cmd.Ready)
	case CommandSpawn:
		p, err := s.player(cmd.Player)
		if err != nil {
			return err
		}
		if s.sched.State().Phase != PhaseEconomy {
			return fmt.Errorf("spawn during %s: %w", s.sched.State().Phase, ErrWrongPhase)
		}
		_, err = s.Spawn(cmd.UnitType, cmd.Target, p.Team)
		return err
	case CommandSetPath, CommandExtendPath, CommandClearPath:
		u, err := s.ownedUnit(cmd)
		if err != nil {
			return err
		}
		return s.editPath(u, cmd)
	default:
		return fmt.Errorf("unknown command %v", cmd.Kind)
	}
}

func (s *Simulation) editPath(u *units.Unit, cmd Command) error {
	if cmd.Kind == CommandClearPath {
		u.Path.Start(u.Location())
		return nil
	}
	target := s.grid.CellAt(cmd.Target)
	if target == nil {
		return fmt.Errorf("path to %v: %w", cmd.Target, ErrOffMap)
	}
	if u.Path.Head() != u.Location() {
		u.Path.Start(u.Location())
	}

	if cmd.Kind == CommandExtendPath {
		u.Path.Extend(s.pf, u, target, u.Budget)
		return nil
	}
	// An unreachable target leaves only the head; that is not an error.
	if route := s.pf.FindPath(u.Location(), target, u); route != nil {
		u.Path.Set(route)
	} else {
		u.Path.Start(u.Location())
	}
	return nil
}

func (s *Simulation) player(id string) (Player, error) {
	p, ok := s.sched.Player(id)
	if !ok {
		return Player{}, fmt.Errorf("%q: %w", id, ErrUnknownPlayer)
	}
	return p, nil
}

func (s *Simulation) ownedUnit(cmd Command) (*units.Unit, error) {
	p, err := s.player(cmd.Player)
	if err != nil {
		return nil, err
	}
	if s.sched.State().Phase != PhaseInTurn {
		return nil, fmt.Errorf("%s during %s: %w", cmd.Kind, s.sched.State().Phase, ErrWrongPhase)
	}
	u := s.units.Get(cmd.Unit)
	if u == nil || u.IsDying {
		return nil, fmt.Errorf("unit %d: %w", cmd.Unit, ErrUnknownUnit)
	}
	if u.Team != p.Team {
		return nil, fmt.Errorf("unit %d: %w", cmd.Unit, ErrNotOwner)
	}
	return u, nil
}
