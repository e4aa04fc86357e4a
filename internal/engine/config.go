package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/hexturn/internal/world"
)

// Config holds the game-mode parameters of a simulation.
type Config struct {
	StepsPerTurn  int           `yaml:"steps_per_turn"`  // Hops per turn
	TurnsPerRound int           `yaml:"turns_per_round"` // Turns before the next economy phase
	TurnTimer     time.Duration `yaml:"turn_timer"`      // Forces execution after this long in a turn (0 = wait for everyone)
	TickInterval  time.Duration `yaml:"tick_interval"`   // Scheduling tick
	RevealMap     bool          `yaml:"reveal_map"`      // Start with every cell explored
	InboxSize     int           `yaml:"inbox_size"`      // Pending commands before Submit refuses
	OutboxSize    int           `yaml:"outbox_size"`     // Undelivered notifications before they are dropped

	Map     MapConfig     `yaml:"map"`
	Metrics world.Metrics `yaml:"metrics"`
}

// MapConfig sizes and seeds the generated map.
type MapConfig struct {
	Width        int     `yaml:"width"`  // Cells per row
	Height       int     `yaml:"height"` // Rows
	Seed         int64   `yaml:"seed"`   // 0 = random
	MaxElevation int     `yaml:"max_elevation"`
	WaterLevel   int     `yaml:"water_level"`
	Frequency    float64 `yaml:"frequency"`
}

// DefaultConfig returns the settings of the standard game mode.
func DefaultConfig() Config {
	gen := world.DefaultGenConfig()
	return Config{
		StepsPerTurn:  4,
		TurnsPerRound: 3,
		TurnTimer:     30 * time.Second,
		TickInterval:  50 * time.Millisecond,
		RevealMap:     true,
		InboxSize:     64,
		OutboxSize:    64,
		Map: MapConfig{
			Width:        20,
			Height:       15,
			MaxElevation: gen.MaxElevation,
			WaterLevel:   gen.WaterLevel,
			Frequency:    gen.Frequency,
		},
		Metrics: world.DefaultMetrics(),
	}
}

// GenConfig returns the map generation parameters.
func (c Config) GenConfig() world.GenConfig {
	gen := world.DefaultGenConfig()
	gen.Seed = c.Map.Seed
	gen.MaxElevation = c.Map.MaxElevation
	gen.WaterLevel = c.Map.WaterLevel
	if c.Map.Frequency > 0 {
		gen.Frequency = c.Map.Frequency
	}
	return gen
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.StepsPerTurn <= 0:
		return errors.New("steps_per_turn must be positive")
	case c.TurnsPerRound <= 0:
		return errors.New("turns_per_round must be positive")
	case c.TurnTimer < 0:
		return errors.New("turn_timer must not be negative")
	case c.TickInterval <= 0:
		return errors.New("tick_interval must be positive")
	}
	return nil
}

// LoadConfig reads a YAML config on top of the defaults.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return LoadConfig(f)
}
