// Package herd is the "lead the rabbit home" scenario: the player walks,
// the rabbit follows at a distance and detours for carrots, and the run is
// won when the rabbit reaches the burrow.
package herd

import (
	"embed"
	"errors"
	"fmt"

	"github.com/vovakirdan/tile-herder/internal/core"
	"github.com/vovakirdan/tile-herder/internal/games/stage"
	"github.com/vovakirdan/tile-herder/internal/levels"
	"github.com/vovakirdan/tile-herder/internal/registry"
	"github.com/vovakirdan/tile-herder/internal/sim"
)

//go:embed levels
var builtin embed.FS

// DefaultLevel is loaded when no level is selected.
const DefaultLevel = "meadow"

// ErrInvalidLevel is returned by Reset for levels the scenario cannot play.
var ErrInvalidLevel = errors.New("herd: level needs one player, a rabbit and a goal")

// Game implements the herding scenario.
type Game struct {
	stage *stage.Stage
	state core.GameState
}

// New creates a new herd scenario.
func New() *Game {
	return &Game{}
}

func init() {
	registry.Register("herd", func() registry.Scenario {
		return New()
	})
}

// ID returns the unique identifier for this scenario.
func (g *Game) ID() string { return "herd" }

// Title returns the display name for this scenario.
func (g *Game) Title() string { return "Herd the Rabbit" }

// Reset loads the config and level and builds a fresh world.
func (g *Game) Reset(runtime core.RuntimeConfig) error {
	opts := stage.Current()

	cfg, err := stage.LoadConfig(opts)
	if err != nil {
		return err
	}
	level, err := stage.LoadLevel(opts, builtin, "levels", DefaultLevel)
	if err != nil {
		return err
	}
	if level.Count(levels.KindPlayer) != 1 || level.Count(levels.KindRabbit) == 0 || level.Count(levels.KindGoal) == 0 {
		return fmt.Errorf("%w: %s", ErrInvalidLevel, level.ID)
	}

	st, err := stage.Build(level, cfg, runtime.Seed, string(levels.KindRabbit), opts)
	if err != nil {
		return err
	}

	g.Close()
	g.stage = st
	g.state = core.GameState{}
	return nil
}

// Step feeds dir to the player and advances the world. A won run no
// longer advances.
func (g *Game) Step(dt float64, dir core.Direction) core.StepResult {
	if g.stage == nil || g.state.Won {
		return core.StepResult{State: g.state}
	}

	w := g.stage.World
	if player, ok := g.stage.First(levels.KindPlayer); ok {
		if err := w.SetDirection(player.ID(), dir); err != nil {
			w.Logger().Warn("input dropped", "error", err)
		}
	}
	w.Step(dt)
	g.stage.Rules.Advance()

	r := g.stage.Rules
	g.state.Tick = w.Tick()
	g.state.Score = r.Score()
	g.state.Won = r.Won()
	g.state.Message = r.Message()
	if g.state.Won {
		g.state.Message = fmt.Sprintf("rabbit is home after %d ticks", g.state.Tick)
	}
	return core.StepResult{State: g.state}
}

// State returns the current scenario state.
func (g *Game) State() core.GameState { return g.state }

// World returns the simulation, nil before Reset.
func (g *Game) World() *sim.World {
	if g.stage == nil {
		return nil
	}
	return g.stage.World
}

// LevelID returns the id of the loaded level.
func (g *Game) LevelID() string {
	if g.stage == nil {
		return ""
	}
	return g.stage.Level.ID
}

// Close releases the rules script of the current world.
func (g *Game) Close() {
	if g.stage != nil {
		g.stage.Close()
	}
}

// Levels returns the ids of the built-in levels.
func Levels() ([]string, error) {
	return levels.NewFSLoader(builtin, "levels").ListIDs()
}
