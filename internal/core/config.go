package core

// RuntimeConfig contains configuration passed to scenarios at initialization.
type RuntimeConfig struct {
	TickRate int   // Simulation ticks per second (default 20)
	Seed     int64 // RNG seed for deterministic simulation
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		TickRate: 20,
		Seed:     0, // 0 means use current time in the CLI layer
	}
}

// DeltaTime returns the fixed per-tick elapsed time in seconds.
func (c RuntimeConfig) DeltaTime() float64 {
	if c.TickRate <= 0 {
		return 1.0 / 20
	}
	return 1.0 / float64(c.TickRate)
}

// GameState represents the current state of a scenario.
type GameState struct {
	Tick    uint64 // Ticks simulated since Reset
	Score   int    // Current score
	Won     bool   // Whether the win condition was reached
	Message string // Last game message, if any
}

// StepResult is returned by Scenario.Step after each simulation tick.
type StepResult struct {
	State GameState
}
