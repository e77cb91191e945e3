package stage

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/vovakirdan/tile-herder/internal/config"
	"github.com/vovakirdan/tile-herder/internal/levels"
	"github.com/vovakirdan/tile-herder/internal/sim"
	"github.com/vovakirdan/tile-herder/internal/spatial"
)

func parseLevel(t *testing.T, text string) levels.Level {
	t.Helper()
	lvl, err := levels.Parse("test.txt", []byte(text))
	if err != nil {
		t.Fatalf("levels.Parse() error: %v", err)
	}
	return lvl
}

func TestSpecForKinds(t *testing.T) {
	cfg := config.DefaultConfig()
	tile := cfg.Grid.TileSize
	small := tile - cfg.Grid.EntityInset

	tests := []struct {
		kind  levels.Kind
		size  float64
		layer spatial.Layer
		solid bool
		role  sim.Role
		move  bool
	}{
		{levels.KindWall, tile, spatial.LayerWorld, true, sim.RoleStatic, false},
		{levels.KindGoal, tile, spatial.LayerItem, false, sim.RoleStatic, false},
		{levels.KindCarrot, small, spatial.LayerItem, false, sim.RoleItem, false},
		{levels.KindBoost, small, spatial.LayerItem, false, sim.RoleItem, false},
		{levels.KindPlayer, small, spatial.LayerPlayer, false, sim.RoleControlled, true},
		{levels.KindRabbit, small, spatial.LayerNPC, false, sim.RoleActor, true},
		{levels.KindPather, small, spatial.LayerNPC, false, sim.RoleActor, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			spec, err := specFor(levels.Placement{Row: 1, Col: 2, Kind: tt.kind}, cfg)
			if err != nil {
				t.Fatalf("specFor() error: %v", err)
			}
			if spec.Width != tt.size || spec.Height != tt.size {
				t.Errorf("expected size %g, got %gx%g", tt.size, spec.Width, spec.Height)
			}
			if spec.Layer != tt.layer || spec.Solid != tt.solid || spec.Role != tt.role {
				t.Errorf("unexpected spec %+v", spec)
			}
			if (spec.Movement != nil) != tt.move {
				t.Errorf("expected movement=%t, got %+v", tt.move, spec.Movement)
			}
		})
	}

	rabbit, _ := specFor(levels.Placement{Kind: levels.KindRabbit}, cfg)
	if rabbit.Scout == nil || rabbit.Scout.Range != cfg.Rabbit.ScoutRange {
		t.Errorf("expected rabbit to scout, got %+v", rabbit.Scout)
	}
	if rabbit.Movement.TargetOffset != cfg.Rabbit.TargetOffsetTiles*tile {
		t.Errorf("expected offset in pixels, got %g", rabbit.Movement.TargetOffset)
	}

	if _, err := specFor(levels.Placement{Kind: "dragon"}, cfg); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestBuildWiresTargets(t *testing.T) {
	lvl := parseLevel(t, `
#########
#@  &  C#
#F  ~  X#
#########
`)
	st, err := Build(lvl, config.DefaultConfig(), 3, "rabbit", Current())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	defer st.Close()

	if st.World.Len() != len(lvl.Placements) {
		t.Errorf("expected %d entities, got %d", len(lvl.Placements), st.World.Len())
	}

	player, ok := st.First(levels.KindPlayer)
	if !ok {
		t.Fatal("expected a player")
	}
	for _, kind := range []levels.Kind{levels.KindRabbit, levels.KindChaser, levels.KindPather} {
		e, ok := st.First(kind)
		if !ok {
			t.Fatalf("expected a %s", kind)
		}
		if e.Movement.Target != player.ID() {
			t.Errorf("%s: expected target %d, got %d", kind, player.ID(), e.Movement.Target)
		}
	}

	rabbit, _ := st.First(levels.KindRabbit)
	if rabbit.Scout == nil || !rabbit.Scout.Interested("carrot") {
		t.Error("expected rabbit to be interested in carrots")
	}
	if st.Rules == nil {
		t.Error("expected rules to be attached")
	}
}

func TestBuildPatherWithoutQuarryUsesGoal(t *testing.T) {
	lvl := parseLevel(t, `
#######
#F   X#
#######
`)
	st, err := Build(lvl, config.DefaultConfig(), 3, "", Current())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	defer st.Close()

	pather, _ := st.First(levels.KindPather)
	goal, _ := st.First(levels.KindGoal)
	if pather.Movement.Target != 0 {
		t.Errorf("expected no target, got %d", pather.Movement.Target)
	}
	if pather.Movement.Goal == nil || *pather.Movement.Goal != goal.Tile() {
		t.Errorf("expected goal %s, got %v", goal.Tile(), pather.Movement.Goal)
	}

	for i := 0; i < 400; i++ {
		st.World.Step(0.05)
	}
	if pather.Tile() != goal.Tile() {
		t.Errorf("expected pather to reach %s, at %s", goal.Tile(), pather.Tile())
	}
}

func TestBuildRejectsBadConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Patrol.Fallback = "chase"

	lvl := parseLevel(t, "#P#\n")
	if _, err := Build(lvl, cfg, 1, "", Current()); err == nil {
		t.Error("expected error for chase fallback")
	}
}

func TestBuildLoadsScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.lua")
	if err := os.WriteFile(path, []byte("function on_collide(other, mover) return nil end\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	o := Current()
	o.ScriptPath = path
	st, err := Build(parseLevel(t, "@ ~\n"), config.DefaultConfig(), 1, "", o)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if st.script == nil {
		t.Fatal("expected script to be loaded")
	}
	st.Close()
	if st.script != nil {
		t.Error("expected Close to release the script")
	}

	o.ScriptPath = filepath.Join(t.TempDir(), "missing.lua")
	if _, err := Build(parseLevel(t, "@ ~\n"), config.DefaultConfig(), 1, "", o); err == nil {
		t.Error("expected error for missing script")
	}
}

func TestLoadLevel(t *testing.T) {
	builtin := fstest.MapFS{
		"levels/one.txt": {Data: []byte("; id: one\n@X\n")},
		"levels/two.txt": {Data: []byte("; id: two\n@ X\n")},
	}

	lvl, err := LoadLevel(Options{}, builtin, "levels", "one")
	if err != nil || lvl.ID != "one" {
		t.Fatalf("expected default level one, got %q (%v)", lvl.ID, err)
	}

	lvl, err = LoadLevel(Options{LevelPath: "two"}, builtin, "levels", "one")
	if err != nil || lvl.ID != "two" {
		t.Fatalf("expected built-in level two, got %q (%v)", lvl.ID, err)
	}

	path := filepath.Join(t.TempDir(), "disk.txt")
	if err := os.WriteFile(path, []byte("@  X\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	lvl, err = LoadLevel(Options{LevelPath: path}, builtin, "levels", "one")
	if err != nil || lvl.ID != "disk" || lvl.Cols != 4 {
		t.Fatalf("expected level from disk, got %q %dx%d (%v)", lvl.ID, lvl.Cols, lvl.Rows, err)
	}

	if _, err := LoadLevel(Options{LevelPath: "nope"}, builtin, "levels", "one"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLoadConfigAppliesPreset(t *testing.T) {
	base := config.DefaultConfig()

	cfg, err := LoadConfig(Options{Difficulty: config.DifficultyEasy})
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Rabbit.TickRate != base.Rabbit.TickRate*2 {
		t.Errorf("expected easy to slow the rabbit, got tick rate %g", cfg.Rabbit.TickRate)
	}
	if !cfg.Difficulty.Enabled {
		t.Error("expected progression enabled for easy")
	}
}

func TestOptionsSetters(t *testing.T) {
	t.Cleanup(ResetOptions)

	SetConfigPath("c.yaml")
	SetLevelPath("lane")
	SetScriptPath("r.lua")
	SetDifficultyPreset(config.DifficultyHard)

	o := Current()
	if o.ConfigPath != "c.yaml" || o.LevelPath != "lane" || o.ScriptPath != "r.lua" || o.Difficulty != config.DifficultyHard {
		t.Errorf("unexpected options %+v", o)
	}
	if o.Logger == nil {
		t.Error("expected a default logger")
	}

	ResetOptions()
	if Current().LevelPath != "" {
		t.Error("expected options to be cleared")
	}
}
