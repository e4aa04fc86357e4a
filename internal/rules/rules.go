package rules

import (
	"fmt"
	"log/slog"

	"github.com/talgya/hexturn/internal/units"
)

// Kind is a collision rule. The set is closed; behavior is selected by switch.
type Kind uint8

const (
	KindNone    Kind = iota // Unaffected
	KindBlock               // Stop in place
	KindBonk                // Both sides bounce, nobody is captured
	KindCapture             // Capture table decides who is removed
	KindCharge              // Beats a blocked opponent that cannot capture back
	KindPush                // Shove a stationary unit one cell onward
	KindSwap                // Trade places with a stationary unit
	KindArrow               // Ranged unit: stops on contact, fires after steps
)

var kindNames = map[Kind]string{
	KindNone:    "none",
	KindBlock:   "block",
	KindBonk:    "bonk",
	KindCapture: "capture",
	KindCharge:  "charge",
	KindPush:    "push",
	KindSwap:    "swap",
	KindArrow:   "arrow",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind resolves a rule name. The empty name means block.
func ParseKind(name string) (Kind, error) {
	if name == "" {
		return KindBlock, nil
	}
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("unknown rule %q", name)
}

// OnActiveCollision applies the rule when both units are moving.
func (k Kind) OnActiveCollision(b Board, self, other *units.Unit, contact ContactKind) {
	switch k {
	case KindNone:
	case KindBlock, KindArrow:
		b.Block(self)
	case KindBonk:
		b.Bounce(self)
		b.Bounce(other)
	case KindCapture:
		contest(b, self, other, contact)
	case KindCharge:
		if isBlocked(other) {
			charge(b, self, other)
			return
		}
		contest(b, self, other, contact)
	case KindPush:
		b.Bounce(self)
	case KindSwap:
		if contact == ContactActiveCenter {
			b.Bounce(self)
		}
	}
}

// OnInactiveCollision applies the rule when self moves into a stationary unit.
func (k Kind) OnInactiveCollision(b Board, self, other *units.Unit) {
	switch k {
	case KindNone:
	case KindBlock, KindArrow:
		b.Block(self)
	case KindBonk:
		b.Bounce(self)
	case KindCapture:
		contest(b, self, other, ContactIdle)
	case KindCharge:
		charge(b, self, other)
	case KindPush:
		d, ok := b.Grid().DirectionTo(self.Location(), self.Destination())
		if !ok || !b.Push(other, d) {
			b.Block(self)
		}
	case KindSwap:
		if !b.Swap(self, other) {
			b.Block(self)
		}
	}
}

// contest resolves a capture attempt in order: self is captured by a
// one-sided opponent, else a contest nobody can win stops self, else self
// captures. Mutual captures favor the mover against a stationary unit and are
// a stalemate between two movers.
func contest(b Board, self, other *units.Unit, contact ContactKind) {
	selfWins := self.CanCapture(other)
	otherWins := other.CanCapture(self)

	switch {
	case otherWins && !selfWins:
		b.Kill(self, other)
	case !selfWins:
		stop(b, self, contact)
	case otherWins && contact.Active():
		b.Bounce(self)
	default:
		b.Kill(other, self)
	}
}

// charge wins against a stationary or blocked opponent unless it can capture
// the charger.
func charge(b Board, self, other *units.Unit) {
	switch {
	case self.IsAlly(other):
		b.Block(self)
	case other.CanCapture(self):
		b.Bounce(self)
	default:
		b.Kill(other, self)
	}
}

func stop(b Board, u *units.Unit, contact ContactKind) {
	if contact.Active() {
		b.Bounce(u)
		return
	}
	b.Block(u)
}

func isBlocked(u *units.Unit) bool {
	return u.Budget == 0 || u.HasBeenBounced
}

// Table is the compiled rule binding of one unit type.
type Table struct {
	Ally     [contactKindCount]Kind
	Enemy    [contactKindCount]Kind
	PostStep Kind
}

// Compile builds the rule table for a unit config.
func Compile(cfg *units.Config) (Table, error) {
	var t Table
	bind := func(dst *[contactKindCount]Kind, r units.ContactRules) error {
		names := [contactKindCount]string{
			ContactIdle:         r.Idle,
			ContactActiveBorder: r.ActiveBorder,
			ContactActiveCenter: r.ActiveCenter,
		}
		for c, name := range names {
			k, err := ParseKind(name)
			if err != nil {
				return err
			}
			dst[c] = k
		}
		return nil
	}
	if err := bind(&t.Ally, cfg.Rules.Ally); err != nil {
		return t, fmt.Errorf("unit %q ally rules: %w", cfg.Name, err)
	}
	if err := bind(&t.Enemy, cfg.Rules.Enemy); err != nil {
		return t, fmt.Errorf("unit %q enemy rules: %w", cfg.Name, err)
	}
	if cfg.PostStep != "" {
		k, err := ParseKind(cfg.PostStep)
		if err != nil {
			return t, fmt.Errorf("unit %q post step: %w", cfg.Name, err)
		}
		t.PostStep = k
	}
	return t, nil
}

// For returns the rule for a relation and contact kind.
func (t Table) For(rel Relation, c ContactKind) Kind {
	if rel == RelationAlly {
		return t.Ally[c]
	}
	return t.Enemy[c]
}

// Resolve classifies the contact between a moving unit and another unit and
// applies self's rule. Both participants may call Resolve for the same
// contact; effects do not stack.
func Resolve(b Board, t Table, self, other *units.Unit) ContactKind {
	if self == nil || other == nil {
		panic("rules: contact without two units")
	}
	contact := Classify(self, other)
	rel := RelationOf(self, other)
	k := t.For(rel, contact)

	slog.Debug("contact",
		"self", self.ID,
		"other", other.ID,
		"contact", contact,
		"relation", rel,
		"rule", k,
	)

	if contact.Active() {
		k.OnActiveCollision(b, self, other, contact)
	} else {
		k.OnInactiveCollision(b, self, other)
	}
	return contact
}
