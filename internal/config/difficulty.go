package config

import "github.com/vovakirdan/tile-herder/internal/core"

// Progression types.
const (
	ProgressCarrots = "carrots" // level follows carrots eaten by the herded animal
	ProgressTicks   = "ticks"   // level follows simulated ticks
	ProgressNone    = "none"
)

// Progress is how far a run has come.
type Progress struct {
	Carrots int
	Ticks   uint64
}

// DifficultyManager turns run progress into a speed for the herded animal.
type DifficultyManager struct {
	cfg          DifficultyConfig
	initialLevel float64
}

// NewDifficultyManager creates a new difficulty manager.
func NewDifficultyManager(cfg DifficultyConfig) *DifficultyManager {
	return &DifficultyManager{
		cfg:          cfg,
		initialLevel: core.ClampF(cfg.InitialLevel, 0, 1),
	}
}

// SetInitialLevel overrides the initial difficulty level (0.0 to 1.0).
func (d *DifficultyManager) SetInitialLevel(level float64) {
	d.initialLevel = core.ClampF(level, 0, 1)
}

// SetEnabled enables or disables difficulty progression.
func (d *DifficultyManager) SetEnabled(enabled bool) {
	d.cfg.Enabled = enabled
}

// IsEnabled returns whether difficulty progression is active.
func (d *DifficultyManager) IsEnabled() bool {
	return d.cfg.Enabled && d.cfg.Progression.Type != ProgressNone
}

// PerTick reports whether the level moves with every simulated tick, so
// callers must rescale each tick rather than only when a carrot is eaten.
func (d *DifficultyManager) PerTick() bool {
	return d.IsEnabled() && d.cfg.Progression.Type == ProgressTicks
}

// Level returns the difficulty level (0.0 to 1.0) reached at p.
func (d *DifficultyManager) Level(p Progress) float64 {
	if !d.IsEnabled() {
		return d.initialLevel
	}

	maxAt := float64(d.cfg.Progression.MaxAt)
	if maxAt <= 0 {
		maxAt = 1
	}

	var progress float64
	switch d.cfg.Progression.Type {
	case ProgressCarrots:
		progress = float64(p.Carrots) / maxAt
	case ProgressTicks:
		progress = float64(p.Ticks) / maxAt
	default:
		return d.initialLevel
	}
	progress = core.ClampF(progress, 0, 1)

	return d.initialLevel + progress*(1-d.initialLevel)
}

// Speed returns baseSpeed scaled up to baseSpeed * (1 + speed_multiplier)
// at the top level.
func (d *DifficultyManager) Speed(baseSpeed float64, p Progress) float64 {
	return baseSpeed * (1 + d.Level(p)*d.cfg.Scaling.SpeedMultiplier)
}
