package units

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/talgya/hexturn/internal/world"
)

// ErrUnknownType is returned when a unit type is not in the catalog.
var ErrUnknownType = errors.New("unknown unit type")

// Config is the static record for one unit type. Units read it at spawn
// time and never modify it.
type Config struct {
	Name        string       `yaml:"name" json:"name"`
	Movement    int          `yaml:"movement" json:"movement"`         // Budget per turn
	Vision      int          `yaml:"vision" json:"vision"`             // Sight range in cells
	TravelSpeed float64      `yaml:"travel_speed" json:"travel_speed"` // Hops per second
	PassAllies  bool         `yaml:"pass_allies" json:"pass_allies"`   // Routes may end on allied units
	Costs       CostTable    `yaml:"costs" json:"costs"`
	Captures    []string     `yaml:"captures" json:"captures"` // Unit types this one may capture; "*" for all
	Rules       RuleBinding  `yaml:"rules" json:"rules"`
	PostStep    string       `yaml:"post_step" json:"post_step,omitempty"`
	Ranged      RangedConfig `yaml:"ranged" json:"ranged"`

	terrainCost [world.TerrainTypeCount]int
	captures    map[string]bool
}

// CostTable prices a single step. Flat and Slope are the base costs by edge
// type; Terrain adds a per-terrain surcharge, where a negative value makes the
// terrain impassable.
type CostTable struct {
	Flat    int            `yaml:"flat" json:"flat"`
	Slope   int            `yaml:"slope" json:"slope"`
	Terrain map[string]int `yaml:"terrain" json:"terrain,omitempty"`
}

// ContactRules names the rule used for each kind of contact.
type ContactRules struct {
	ActiveBorder string `yaml:"active_border" json:"active_border"`
	ActiveCenter string `yaml:"active_center" json:"active_center"`
	Idle         string `yaml:"idle" json:"idle"`
}

// RuleBinding holds the contact rules against allies and enemies.
type RuleBinding struct {
	Ally  ContactRules `yaml:"ally" json:"ally"`
	Enemy ContactRules `yaml:"enemy" json:"enemy"`
}

// RangedConfig configures a post-step ranged attack.
type RangedConfig struct {
	Range       int `yaml:"range" json:"range"`
	ChargeSteps int `yaml:"charge_steps" json:"charge_steps"` // Steps without moving before firing
}

// Catalog is the set of unit types available to a game.
type Catalog struct {
	Units []*Config `yaml:"units" json:"units"`

	index map[string]*Config
}

// LoadCatalog decodes a YAML catalog and validates it.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode unit catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks every record and builds lookup tables.
func (c *Catalog) Validate() error {
	c.index = make(map[string]*Config, len(c.Units))
	for _, cfg := range c.Units {
		if err := cfg.prepare(); err != nil {
			return fmt.Errorf("unit %q: %w", cfg.Name, err)
		}
		if _, dup := c.index[cfg.Name]; dup {
			return fmt.Errorf("unit %q defined twice", cfg.Name)
		}
		c.index[cfg.Name] = cfg
	}
	return nil
}

// Lookup returns the config for a unit type.
func (c *Catalog) Lookup(name string) (*Config, error) {
	cfg, ok := c.index[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownType)
	}
	return cfg, nil
}

func (cfg *Config) prepare() error {
	if cfg.Name == "" {
		return errors.New("missing name")
	}
	if cfg.Movement < 0 || cfg.Vision < 0 {
		return errors.New("movement and vision must not be negative")
	}
	if cfg.Costs.Flat <= 0 || cfg.Costs.Slope <= 0 {
		return errors.New("flat and slope costs must be positive")
	}
	if cfg.TravelSpeed <= 0 {
		cfg.TravelSpeed = 1
	}

	for i := range cfg.terrainCost {
		cfg.terrainCost[i] = 0
	}
	for name, cost := range cfg.Costs.Terrain {
		t, ok := terrainByName(name)
		if !ok {
			return fmt.Errorf("unknown terrain %q", name)
		}
		cfg.terrainCost[t] = cost
	}

	cfg.captures = make(map[string]bool, len(cfg.Captures))
	for _, name := range cfg.Captures {
		cfg.captures[name] = true
	}
	return nil
}

// CanCapture reports whether this type may capture units of the other type.
func (cfg *Config) CanCapture(other string) bool {
	return cfg.captures["*"] || cfg.captures[other]
}

// TerrainCost returns the surcharge for entering a terrain type.
func (cfg *Config) TerrainCost(terrain int) int {
	if terrain < 0 || terrain >= len(cfg.terrainCost) {
		return 0
	}
	return cfg.terrainCost[terrain]
}

func terrainByName(name string) (int, bool) {
	for t := 0; t < world.TerrainTypeCount; t++ {
		if strings.EqualFold(world.TerrainName(t), name) {
			return t, true
		}
	}
	return 0, false
}
