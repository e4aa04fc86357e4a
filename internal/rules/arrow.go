package rules

import (
	"log/slog"

	"github.com/talgya/hexturn/internal/units"
)

// AfterStep runs the post-step hook of a unit and returns a unit it
// captured, if any.
func AfterStep(b Board, t Table, u *units.Unit) *units.Unit {
	switch t.PostStep {
	case KindArrow:
		return FireArrow(b, u)
	default:
		return nil
	}
}

// FireArrow traces a line from the shooter along its facing once it has
// stood still for the configured number of steps. The first enemy on the
// line that the shooter may capture is captured. Terrain above the shooter's
// elevation stops the arrow.
func FireArrow(b Board, shooter *units.Unit) *units.Unit {
	ranged := shooter.Config.Ranged
	if ranged.Range <= 0 || shooter.IdleSteps < ranged.ChargeSteps || shooter.IsDying {
		return nil
	}

	g := b.Grid()
	origin := shooter.Location()
	cell := origin
	for i := 0; i < ranged.Range; i++ {
		cell = g.Neighbor(cell, shooter.Facing)
		if cell == nil || cell.Elevation > origin.Elevation {
			return nil
		}
		target := b.UnitAt(cell)
		if target == nil || target.IsDying || !shooter.CanCapture(target) {
			continue
		}
		b.Kill(target, shooter)
		shooter.IdleSteps = 0
		slog.Debug("arrow hit", "shooter", shooter.ID, "target", target.ID, "range", i+1)
		return target
	}
	return nil
}
