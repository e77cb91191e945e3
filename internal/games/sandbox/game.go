// Package sandbox drops patrolling, chasing and path-following actors on
// one map. There is no score and no win condition.
package sandbox

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
const DefaultLevel = "yard"

// ErrNoActors is returned by Reset for levels without anything that moves.
var ErrNoActors = errors.New("sandbox: level has no actors")

var actorKinds = []levels.Kind{
	levels.KindPlayer, levels.KindRabbit, levels.KindPatrol, levels.KindChaser, levels.KindPather,
}

// Game implements the sandbox scenario.
type Game struct {
	stage *stage.Stage
	state core.GameState
}

// New creates a new sandbox scenario.
func New() *Game {
	return &Game{}
}

func init() {
	registry.Register("sandbox", func() registry.Scenario {
		return New()
	})
}

// ID returns the unique identifier for this scenario.
func (g *Game) ID() string { return "sandbox" }

// Title returns the display name for this scenario.
func (g *Game) Title() string { return "Sandbox" }

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
	actors := 0
	for _, k := range actorKinds {
		actors += level.Count(k)
	}
	if actors == 0 {
		return fmt.Errorf("%w: %s", ErrNoActors, level.ID)
	}

	st, err := stage.Build(level, cfg, runtime.Seed, "", opts)
	if err != nil {
		return err
	}

	g.Close()
	g.stage = st
	g.state = core.GameState{}
	return nil
}

// Step feeds dir to the player, if the level has one, and advances the
// world.
func (g *Game) Step(dt float64, dir core.Direction) core.StepResult {
	if g.stage == nil {
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

	g.state.Tick = w.Tick()
	g.state.Message = g.stage.Rules.Message()
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
