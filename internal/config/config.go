// Package config provides YAML and TOML configuration loading and
// difficulty management for the simulation.
package config

import (
	"errors"
	"fmt"
)

// Config contains all tunables of a herder run.
type Config struct {
	Grid       GridConfig       `yaml:"grid" toml:"grid"`
	Sim        SimConfig        `yaml:"sim" toml:"sim"`
	Player     ActorConfig      `yaml:"player" toml:"player"`
	Rabbit     RabbitConfig     `yaml:"rabbit" toml:"rabbit"`
	Patrol     ActorConfig      `yaml:"patrol" toml:"patrol"`
	Chaser     ActorConfig      `yaml:"chaser" toml:"chaser"`
	Pather     ActorConfig      `yaml:"pather" toml:"pather"`
	Items      ItemsConfig      `yaml:"items" toml:"items"`
	Difficulty DifficultyConfig `yaml:"difficulty" toml:"difficulty"`
	Log        LogConfig        `yaml:"log" toml:"log"`
	Storage    StorageConfig    `yaml:"storage" toml:"storage"`
}

// GridConfig defines the tile grid.
type GridConfig struct {
	TileSize    float64 `yaml:"tile_size" toml:"tile_size"`       // pixels per tile edge
	EntityInset float64 `yaml:"entity_inset" toml:"entity_inset"` // actors and items are tile_size - inset wide
}

// SimConfig defines the fixed-step driver.
type SimConfig struct {
	TickRate int   `yaml:"tick_rate" toml:"tick_rate"` // ticks per second
	Seed     int64 `yaml:"seed" toml:"seed"`           // 0 = time based
}

// ActorConfig defines the movement tuning of one kind of actor.
type ActorConfig struct {
	TickRate          float64 `yaml:"tick_rate" toml:"tick_rate"` // seconds between thinks
	BaseSpeed         float64 `yaml:"base_speed" toml:"base_speed"`
	MaxAcceleration   float64 `yaml:"max_acceleration" toml:"max_acceleration"`
	AccelerationRate  float64 `yaml:"acceleration_rate" toml:"acceleration_rate"`
	TargetOffsetTiles float64 `yaml:"target_offset_tiles" toml:"target_offset_tiles"`
	Fallback          string  `yaml:"fallback" toml:"fallback"` // "none" or "patrol"
	RepathEvery       int     `yaml:"repath_every" toml:"repath_every"`
	SearchBudget      int     `yaml:"search_budget" toml:"search_budget"`
}

// RabbitConfig defines the herded animal.
type RabbitConfig struct {
	ActorConfig `yaml:",inline"`
	ScoutRange  float64  `yaml:"scout_range" toml:"scout_range"` // tiles
	Interests   []string `yaml:"interests" toml:"interests"`
}

// ItemsConfig defines pickup effects.
type ItemsConfig struct {
	TickRateStep float64 `yaml:"tick_rate_step" toml:"tick_rate_step"` // speed up/down change in seconds
	BoostStep    float64 `yaml:"boost_step" toml:"boost_step"`         // acceleration rate added by a boost
	CarrotScore  int     `yaml:"carrot_score" toml:"carrot_score"`
}

// LogConfig defines logging defaults; CLI flags override them.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // auto, text, logfmt, json
}

// StorageConfig defines where run history is kept.
type StorageConfig struct {
	Path string `yaml:"path" toml:"path"` // empty = ~/.herder/runs.db
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled" toml:"enabled"`
	InitialLevel float64           `yaml:"initial_level" toml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression" toml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling" toml:"scaling"`
}

// ProgressionConfig defines how difficulty increases over a run.
type ProgressionConfig struct {
	Type  string `yaml:"type" toml:"type"`     // "carrots", "ticks", or "none"
	MaxAt int    `yaml:"max_at" toml:"max_at"` // Carrots or ticks at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	SpeedMultiplier float64 `yaml:"speed_multiplier" toml:"speed_multiplier"` // Added to the rabbit's speed at max difficulty
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset validates a preset name. An empty name means normal.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	}
	return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal, hard or fixed)", s)
}

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}

// ApplyPreset modifies the config based on a difficulty preset.
func ApplyPreset(cfg *Config, preset DifficultyPreset) {
	if preset == DifficultyFixed {
		cfg.Difficulty.Enabled = false
	} else {
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}

	// A slower-thinking rabbit is easier to lead.
	switch preset {
	case DifficultyEasy:
		cfg.Rabbit.TickRate *= 2
		cfg.Rabbit.ScoutRange = 1
	case DifficultyHard:
		cfg.Rabbit.TickRate /= 2
		cfg.Rabbit.ScoutRange += 1
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Grid.TileSize <= 0 {
		errs = append(errs, fmt.Errorf("grid.tile_size must be positive, got %g", c.Grid.TileSize))
	}
	if c.Grid.EntityInset < 0 || c.Grid.EntityInset >= c.Grid.TileSize {
		errs = append(errs, fmt.Errorf("grid.entity_inset must be in [0, tile_size), got %g", c.Grid.EntityInset))
	}
	if c.Sim.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("sim.tick_rate must be positive, got %d", c.Sim.TickRate))
	}
	for name, a := range map[string]ActorConfig{
		"player": c.Player,
		"rabbit": c.Rabbit.ActorConfig,
		"patrol": c.Patrol,
		"chaser": c.Chaser,
		"pather": c.Pather,
	} {
		if a.BaseSpeed <= 0 {
			errs = append(errs, fmt.Errorf("%s.base_speed must be positive, got %g", name, a.BaseSpeed))
		}
		if a.TickRate < 0 || a.MaxAcceleration < 0 || a.AccelerationRate < 0 || a.TargetOffsetTiles < 0 {
			errs = append(errs, fmt.Errorf("%s: tuning values must not be negative", name))
		}
		if a.Fallback != "" && a.Fallback != "none" && a.Fallback != "patrol" {
			errs = append(errs, fmt.Errorf("%s.fallback must be none or patrol, got %q", name, a.Fallback))
		}
	}
	switch c.Difficulty.Progression.Type {
	case "", ProgressCarrots, ProgressTicks, ProgressNone:
	default:
		errs = append(errs, fmt.Errorf("difficulty.progression.type must be carrots, ticks or none, got %q", c.Difficulty.Progression.Type))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: %w", errors.Join(errs...))
}
