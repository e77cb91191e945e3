package herd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/tile-herder/internal/core"
	"github.com/vovakirdan/tile-herder/internal/games/stage"
	"github.com/vovakirdan/tile-herder/internal/levels"
	"github.com/vovakirdan/tile-herder/internal/registry"
)

const dt = 0.05

func newGame(t *testing.T, level string, seed int64) *Game {
	t.Helper()
	t.Cleanup(stage.ResetOptions)
	stage.SetLevelPath(level)

	g := New()
	if err := g.Reset(core.RuntimeConfig{TickRate: 20, Seed: seed}); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	t.Cleanup(g.Close)
	return g
}

func TestRegistered(t *testing.T) {
	if !registry.Exists("herd") {
		t.Fatal("expected herd to be registered")
	}
	s, err := registry.Create("herd")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if s.Title() != "Herd the Rabbit" {
		t.Errorf("unexpected title %q", s.Title())
	}
}

func TestBuiltinLevels(t *testing.T) {
	ids, err := Levels()
	if err != nil {
		t.Fatalf("Levels() error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "lane" || ids[1] != DefaultLevel {
		t.Errorf("expected [lane meadow], got %v", ids)
	}
}

func TestResetDefaultLevel(t *testing.T) {
	g := newGame(t, "", 1)

	if g.LevelID() != DefaultLevel {
		t.Errorf("expected level %s, got %s", DefaultLevel, g.LevelID())
	}
	w := g.World()
	if w == nil {
		t.Fatal("expected a world after Reset")
	}
	if w.Grid().Cols() != 20 || w.Grid().Rows() != 12 {
		t.Errorf("expected a 20x12 grid, got %dx%d", w.Grid().Cols(), w.Grid().Rows())
	}
	if g.State() != (core.GameState{}) {
		t.Errorf("expected a fresh state, got %+v", g.State())
	}
}

func TestStepBeforeReset(t *testing.T) {
	g := New()
	res := g.Step(dt, core.DirEast)
	if res.State.Tick != 0 {
		t.Errorf("expected no progress before Reset, got %+v", res.State)
	}
	if g.World() != nil {
		t.Error("expected no world before Reset")
	}
}

func TestRabbitFollowsToBurrow(t *testing.T) {
	g := newGame(t, "lane", 1)

	var res core.StepResult
	for i := 0; i < 600 && !res.State.Won; i++ {
		res = g.Step(dt, core.DirNone)
	}

	if !res.State.Won {
		t.Fatalf("expected the rabbit to reach the burrow, state %+v", res.State)
	}
	if res.State.Message == "" {
		t.Error("expected a win message")
	}

	// A won run is frozen.
	tick := res.State.Tick
	if again := g.Step(dt, core.DirWest); again.State.Tick != tick {
		t.Errorf("expected tick to stay at %d, got %d", tick, again.State.Tick)
	}
}

func TestPlayerInputMovesPlayer(t *testing.T) {
	g := newGame(t, "", 1)

	var startX float64
	for _, e := range g.World().Entities() {
		if e.Kind == string(levels.KindPlayer) {
			startX = e.X()
		}
	}
	for i := 0; i < 40; i++ {
		g.Step(dt, core.DirEast)
	}
	for _, e := range g.World().Entities() {
		if e.Kind == string(levels.KindPlayer) && e.X() <= startX {
			t.Errorf("expected the player to move east from %g, at %g", startX, e.X())
		}
	}
}

func TestDeterministic(t *testing.T) {
	run := func() uint64 {
		g := newGame(t, "", 99)
		for i := 0; i < 300; i++ {
			dir := core.DirEast
			if i%50 >= 25 {
				dir = core.DirSouth
			}
			g.Step(dt, dir)
		}
		return g.World().Hash()
	}

	if a, b := run(), run(); a != b {
		t.Errorf("Determinism failed: hashes differ. Run1=%d, Run2=%d", a, b)
	}
}

func TestResetRejectsLevelWithoutRabbit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("#@ X#\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	t.Cleanup(stage.ResetOptions)
	stage.SetLevelPath(path)

	err := New().Reset(core.RuntimeConfig{Seed: 1})
	if !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("expected ErrInvalidLevel, got %v", err)
	}
}

func TestResetUnknownLevel(t *testing.T) {
	t.Cleanup(stage.ResetOptions)
	stage.SetLevelPath("no-such-level")

	if err := New().Reset(core.RuntimeConfig{Seed: 1}); err == nil {
		t.Error("expected error for unknown level")
	}
}
