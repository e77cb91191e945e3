package sandbox

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tile-herder/internal/core"
	"github.com/vovakirdan/tile-herder/internal/games/stage"
	"github.com/vovakirdan/tile-herder/internal/levels"
	"github.com/vovakirdan/tile-herder/internal/registry"
	"github.com/vovakirdan/tile-herder/internal/sim"
)

const dt = 0.05

func TestRegistered(t *testing.T) {
	if !registry.Exists("sandbox") {
		t.Fatal("expected sandbox to be registered")
	}
}

func TestSandboxRuns(t *testing.T) {
	t.Cleanup(stage.ResetOptions)

	g := New()
	if err := g.Reset(core.RuntimeConfig{Seed: 5}); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	defer g.Close()

	if g.LevelID() != DefaultLevel {
		t.Errorf("expected level %s, got %s", DefaultLevel, g.LevelID())
	}

	var patrol *sim.Entity
	for _, e := range g.World().Entities() {
		if e.Kind == string(levels.KindPatrol) {
			patrol = e
		}
	}
	if patrol == nil {
		t.Fatal("expected a patrol in the yard")
	}
	spawn := patrol.Movement.Spawn()
	half := patrol.Movement.TargetOffset / 2

	var res core.StepResult
	for i := 0; i < 500; i++ {
		res = g.Step(dt, core.DirNone)
		if dx, dy := patrol.X()-spawn.X, patrol.Y()-spawn.Y; dx*dx > half*half || dy*dy > half*half {
			t.Fatalf("tick %d: patrol left its box at %v", i, patrol.Position())
		}
	}
	if res.State.Tick != 500 {
		t.Errorf("expected 500 ticks, got %d", res.State.Tick)
	}
	if res.State.Score != 0 || res.State.Won {
		t.Errorf("sandbox must not score, got %+v", res.State)
	}
}

func TestSandboxLogsDroppedInput(t *testing.T) {
	t.Cleanup(stage.ResetOptions)
	var buf bytes.Buffer
	stage.SetLogger(log.New(&buf))

	g := New()
	if err := g.Reset(core.RuntimeConfig{Seed: 3}); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	defer g.Close()

	var player *sim.Entity
	for _, e := range g.World().Entities() {
		if e.Kind == string(levels.KindPlayer) {
			player = e
		}
	}
	if player == nil {
		t.Fatal("expected a player in the yard")
	}
	if err := g.World().SetMovementType(player.ID(), sim.MovementNone); err != nil {
		t.Fatalf("SetMovementType() error: %v", err)
	}

	g.Step(dt, core.DirEast)
	if !strings.Contains(buf.String(), "input dropped") {
		t.Errorf("expected a warning for the dropped input, got %q", buf.String())
	}
}

func TestSandboxRejectsStaticLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "still.txt")
	if err := os.WriteFile(path, []byte("# ~ X #\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	t.Cleanup(stage.ResetOptions)
	stage.SetLevelPath(path)

	if err := New().Reset(core.RuntimeConfig{Seed: 1}); !errors.Is(err, ErrNoActors) {
		t.Errorf("expected ErrNoActors, got %v", err)
	}
}
