package config

import (
	_ "embed"
)

//go:embed defaults/herder.yaml
var defaultYAML []byte

// DefaultConfig returns the hardcoded configuration. It mirrors
// defaults/herder.yaml and is used when the embedded file cannot be parsed.
func DefaultConfig() Config {
	return Config{
		Grid: GridConfig{
			TileSize:    32,
			EntityInset: 2,
		},
		Sim: SimConfig{
			TickRate: 20,
		},
		Player: ActorConfig{
			BaseSpeed:        1,
			MaxAcceleration:  2,
			AccelerationRate: 0.05,
		},
		Rabbit: RabbitConfig{
			ActorConfig: ActorConfig{
				TickRate:          0.05,
				BaseSpeed:         1,
				MaxAcceleration:   1,
				AccelerationRate:  0.02,
				TargetOffsetTiles: 2,
				Fallback:          "none",
				SearchBudget:      2048,
			},
			ScoutRange: 2,
			Interests:  []string{"carrot"},
		},
		Patrol: ActorConfig{
			TickRate:          0.1,
			BaseSpeed:         1,
			TargetOffsetTiles: 3,
			Fallback:          "none",
		},
		Chaser: ActorConfig{
			TickRate:          0.1,
			BaseSpeed:         1,
			MaxAcceleration:   1,
			AccelerationRate:  0.02,
			TargetOffsetTiles: 1,
			Fallback:          "patrol",
		},
		Pather: ActorConfig{
			TickRate:         0.05,
			BaseSpeed:        1,
			MaxAcceleration:  1,
			AccelerationRate: 0.05,
			Fallback:         "patrol",
			RepathEvery:      40,
			SearchBudget:     4096,
		},
		Items: ItemsConfig{
			TickRateStep: 0.05,
			BoostStep:    0.02,
			CarrotScore:  1,
		},
		Difficulty: DifficultyConfig{
			Enabled: true,
			Progression: ProgressionConfig{
				Type:  ProgressCarrots,
				MaxAt: 5,
			},
			Scaling: ScalingConfig{
				SpeedMultiplier: 1.0,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
