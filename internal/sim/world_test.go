package sim

import (
	"errors"
	"testing"

	"github.com/vovakirdan/tile-herder/internal/core"
	"github.com/vovakirdan/tile-herder/internal/event"
	"github.com/vovakirdan/tile-herder/internal/spatial"
)

const testTile = 32

func newTestWorld(t *testing.T, cols, rows int) *World {
	t.Helper()
	grid, err := spatial.New(cols, rows, testTile)
	if err != nil {
		t.Fatalf("spatial.New() error: %v", err)
	}
	return NewWorld(grid, WithSeed(42))
}

func spawnWall(t *testing.T, w *World, row, col int) *Entity {
	t.Helper()
	e, err := w.Spawn(SpawnSpec{
		Row: row, Col: col,
		Width: testTile, Height: testTile,
		Layer: spatial.LayerWorld,
		Kind:  "wall",
		Solid: true,
		Role:  RoleStatic,
	})
	if err != nil {
		t.Fatalf("spawn wall at %d,%d: %v", row, col, err)
	}
	return e
}

func spawnItem(t *testing.T, w *World, row, col int, kind string) *Entity {
	t.Helper()
	e, err := w.Spawn(SpawnSpec{
		Row: row, Col: col,
		Width: testTile - 2, Height: testTile - 2,
		Layer: spatial.LayerItem,
		Kind:  kind,
		Role:  RoleItem,
	})
	if err != nil {
		t.Fatalf("spawn %s at %d,%d: %v", kind, row, col, err)
	}
	return e
}

func spawnMover(t *testing.T, w *World, row, col int, width float64, layer spatial.Layer, role Role, mv MovementConfig) *Entity {
	t.Helper()
	e, err := w.Spawn(SpawnSpec{
		Row: row, Col: col,
		Width: width, Height: width,
		Layer:    layer,
		Kind:     "mover",
		Solid:    true,
		Role:     role,
		Movement: &mv,
	})
	if err != nil {
		t.Fatalf("spawn mover at %d,%d: %v", row, col, err)
	}
	return e
}

func collisions(w *World) *[]CollisionEvent {
	var got []CollisionEvent
	event.Subscribe(w.Bus(), func(ev CollisionEvent) { got = append(got, ev) })
	return &got
}

func assertOccupancy(t *testing.T, w *World, e *Entity) {
	t.Helper()
	if got := w.Grid().At(e.X(), e.Y(), e.Layer()); got != uint64(e.ID()) {
		t.Fatalf("tick %d: slot under entity %d holds %d", w.Tick(), e.ID(), got)
	}
	if e.Tile() != w.Grid().TileForPixel(e.X(), e.Y()) {
		t.Fatalf("tick %d: entity %d tile %v out of date", w.Tick(), e.ID(), e.Tile())
	}
}

func TestSpawnAssignsIncreasingIDs(t *testing.T) {
	w := newTestWorld(t, 5, 5)

	a := spawnWall(t, w, 0, 0)
	b := spawnItem(t, w, 0, 1, "carrot")
	if a.ID() != 1 || b.ID() != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", a.ID(), b.ID())
	}

	if err := w.Detach(b.ID()); err != nil {
		t.Fatalf("Detach() error: %v", err)
	}
	c := spawnItem(t, w, 0, 1, "carrot")
	if c.ID() != 3 {
		t.Errorf("expected retired id to stay unused, got %d", c.ID())
	}
	if _, ok := w.Entity(b.ID()); ok {
		t.Error("expected detached entity to stop resolving")
	}
	if !b.Detached() {
		t.Error("expected Detached() to report true")
	}
}

func TestSpawnCentersOnTile(t *testing.T) {
	w := newTestWorld(t, 5, 5)

	e := spawnItem(t, w, 2, 3, "carrot")
	if e.X() != 112 || e.Y() != 80 {
		t.Errorf("expected center (112,80), got (%g,%g)", e.X(), e.Y())
	}
	b := e.Bounds()
	if b.TopLeft != core.Pt(97, 65) || b.BottomRight != core.Pt(127, 95) {
		t.Errorf("unexpected corners %v %v", b.TopLeft, b.BottomRight)
	}
	if b.MiddleRight != core.Pt(127, 80) || b.TopMiddle != core.Pt(112, 65) {
		t.Errorf("unexpected edge midpoints %v %v", b.MiddleRight, b.TopMiddle)
	}
	assertOccupancy(t, w, e)
}

func TestSpawnRejectsOccupiedSlot(t *testing.T) {
	w := newTestWorld(t, 5, 5)

	spawnWall(t, w, 1, 1)
	_, err := w.Spawn(SpawnSpec{Row: 1, Col: 1, Width: 32, Height: 32, Layer: spatial.LayerWorld, Kind: "wall", Solid: true})
	if !errors.Is(err, ErrTileOccupied) {
		t.Errorf("expected ErrTileOccupied, got %v", err)
	}

	// A different layer shares the tile.
	spawnItem(t, w, 1, 1, "carrot")
}

func TestSpawnValidation(t *testing.T) {
	w := newTestWorld(t, 5, 5)

	tests := []struct {
		name string
		spec SpawnSpec
		want error
	}{
		{"outside grid", SpawnSpec{Row: 5, Col: 0, Width: 10, Height: 10}, ErrOutOfGrid},
		{"too wide for edge tile", SpawnSpec{Row: 0, Col: 0, Width: 40, Height: 10}, ErrOutOfGrid},
		{"zero size", SpawnSpec{Row: 0, Col: 0}, nil},
		{"scout without movement", SpawnSpec{Row: 0, Col: 0, Width: 10, Height: 10, Scout: &ScoutConfig{}}, nil},
		{"bad fallback", SpawnSpec{Row: 0, Col: 0, Width: 10, Height: 10, Movement: &MovementConfig{BaseSpeed: 1, Fallback: MovementChase}}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := w.Spawn(tc.spec)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCanThinkGating(t *testing.T) {
	e := &Entity{TickRate: 0.5}

	var got []bool
	for i := 0; i < 7; i++ {
		got = append(got, e.canThink(0.25))
	}
	expected := []bool{true, false, false, true, false, false, true}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("canThink sequence = %v, expected %v", got, expected)
		}
	}
}

func TestStepOrder(t *testing.T) {
	w := newTestWorld(t, 10, 10)

	// The chaser sees the controlled target's position from the previous
	// tick because controlled entities think last.
	target := spawnMover(t, w, 5, 1, 20, spatial.LayerPlayer, RoleControlled, MovementConfig{Type: MovementControlled, BaseSpeed: 1})
	chaser := spawnMover(t, w, 5, 8, 20, spatial.LayerNPC, RoleActor, MovementConfig{Type: MovementChase, Target: target.ID(), BaseSpeed: 1})

	if err := w.SetDirection(target.ID(), core.DirEast); err != nil {
		t.Fatalf("SetDirection() error: %v", err)
	}
	before := target.X()
	w.Step(0.05)

	if chaser.Movement.Destination.X != before {
		t.Errorf("expected chaser destination x %g (pre-move), got %g", before, chaser.Movement.Destination.X)
	}
	if target.X() == before {
		t.Error("expected controlled entity to move")
	}
}

func TestSetDirectionRequiresControlled(t *testing.T) {
	w := newTestWorld(t, 5, 5)

	e := spawnMover(t, w, 1, 1, 20, spatial.LayerNPC, RoleActor, MovementConfig{Type: MovementPatrol, BaseSpeed: 1})
	if err := w.SetDirection(e.ID(), core.DirEast); !errors.Is(err, ErrNotControlled) {
		t.Errorf("expected ErrNotControlled, got %v", err)
	}
	if err := w.SetDirection(99, core.DirEast); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("expected ErrUnknownEntity, got %v", err)
	}
}

func TestDetachRemovesFromGridAndLists(t *testing.T) {
	w := newTestWorld(t, 5, 5)

	item := spawnItem(t, w, 2, 2, "carrot")
	if err := w.Detach(item.ID()); err != nil {
		t.Fatalf("Detach() error: %v", err)
	}
	if w.Grid().At(item.X(), item.Y(), spatial.LayerItem) != 0 {
		t.Error("expected slot cleared")
	}
	if len(w.items) != 0 {
		t.Errorf("expected item list empty, got %v", w.items)
	}
	if err := w.Detach(item.ID()); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("expected ErrUnknownEntity on second detach, got %v", err)
	}
}

func TestSnapshot(t *testing.T) {
	w := newTestWorld(t, 7, 3)

	spawnWall(t, w, 0, 0)
	p := spawnMover(t, w, 1, 0, 30, spatial.LayerNPC, RoleActor, MovementConfig{
		Type:      MovementPath,
		Goal:      &spatial.Tile{Row: 1, Col: 6},
		BaseSpeed: 1,
	})
	w.Step(0.05)

	views := w.Snapshot()
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	v := views[1]
	if v.ID != p.ID() || v.Movement != MovementPath {
		t.Errorf("unexpected view %+v", v)
	}
	if v.Center != p.Position() || v.TopLeft != p.Bounds().TopLeft {
		t.Errorf("view corners out of date: %+v", v)
	}
	if len(v.Waypoints) == 0 {
		t.Fatal("expected live waypoints in view")
	}
	last := v.Waypoints[len(v.Waypoints)-1]
	if last != w.Grid().PixelCenterForTile(1, 6) {
		t.Errorf("expected last waypoint at goal center, got %v", last)
	}
}

func TestHashTracksState(t *testing.T) {
	build := func() *World {
		w := newTestWorld(t, 8, 8)
		spawnMover(t, w, 4, 4, 30, spatial.LayerNPC, RoleActor, MovementConfig{
			Type: MovementPatrol, TargetOffset: 64, BaseSpeed: 1,
		})
		return w
	}

	a, b := build(), build()
	if a.Hash() != b.Hash() {
		t.Fatal("expected equal hashes for equal worlds")
	}
	before := a.Hash()
	for i := 0; i < 50; i++ {
		a.Step(0.05)
		b.Step(0.05)
	}
	if a.Hash() != b.Hash() {
		t.Error("expected seeded worlds to stay in step")
	}
	if a.Hash() == before {
		t.Error("expected the hash to change as the world advances")
	}
}
