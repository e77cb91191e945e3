package sim

import (
	"testing"

	"github.com/vovakirdan/tile-herder/internal/spatial"
)

func spawnScout(t *testing.T, w *World, row, col int, target ID, interests []string) *Entity {
	t.Helper()
	e, err := w.Spawn(SpawnSpec{
		Row: row, Col: col,
		Width: 30, Height: 30,
		Layer: spatial.LayerNPC,
		Kind:  "rabbit",
		Role:  RoleActor,
		Movement: &MovementConfig{
			Type:         MovementChase,
			Target:       target,
			TargetOffset: 64,
			BaseSpeed:    1,
		},
		Scout: &ScoutConfig{Interests: interests, Range: 2},
	})
	if err != nil {
		t.Fatalf("spawn scout: %v", err)
	}
	return e
}

func TestScoutDeviatesAndRestores(t *testing.T) {
	w := newTestWorld(t, 10, 3)
	events := collisions(w)

	player := spawnItem(t, w, 1, 8, "player")
	carrot := spawnItem(t, w, 0, 2, "carrot")
	rabbit := spawnScout(t, w, 1, 1, player.ID(), []string{"carrot"})
	m := rabbit.Movement

	w.Step(dt)
	if m.Type != MovementPath || m.Target != carrot.ID() || m.TargetOffset != 0 {
		t.Fatalf("expected PATH to the carrot, got %v target=%d offset=%g", m.Type, m.Target, m.TargetOffset)
	}
	if m.Path == nil || m.Path.Goal != carrot.Tile() {
		t.Fatalf("expected a path ending at the carrot, got %+v", m.Path)
	}

	touched := false
	for i := 0; i < 100 && !touched; i++ {
		w.Step(dt)
		for _, ev := range *events {
			if ev.Mover == rabbit.ID() && ev.Other == carrot.ID() {
				touched = true
			}
		}
		if !touched && m.Target != carrot.ID() {
			t.Fatalf("tick %d: scout gave up on the carrot", i)
		}
	}
	if !touched {
		t.Fatal("expected the scout to reach the carrot")
	}

	if err := w.Detach(carrot.ID()); err != nil {
		t.Fatalf("Detach() error: %v", err)
	}
	w.Step(dt)
	if m.Type != MovementChase || m.Target != player.ID() || m.TargetOffset != 64 {
		t.Errorf("expected original chase restored, got %v target=%d offset=%g", m.Type, m.Target, m.TargetOffset)
	}
	if m.Path != nil {
		t.Error("expected the deviation path dropped")
	}
}

func TestScoutIgnoresOutOfRange(t *testing.T) {
	w := newTestWorld(t, 12, 3)

	player := spawnItem(t, w, 1, 0, "player")
	spawnItem(t, w, 1, 9, "carrot")
	rabbit := spawnScout(t, w, 1, 3, player.ID(), []string{"carrot"})

	w.Step(dt)
	if rabbit.Movement.Type != MovementChase || rabbit.Movement.Target != player.ID() {
		t.Errorf("expected chase to continue, got %v target=%d", rabbit.Movement.Type, rabbit.Movement.Target)
	}
}

func TestScoutInterestsAreNotShared(t *testing.T) {
	w := newTestWorld(t, 10, 3)

	interests := []string{"carrot"}
	a := spawnScout(t, w, 0, 0, 0, interests)
	b := spawnScout(t, w, 2, 0, 0, interests)

	interests[0] = "goal"
	a.Scout.AddInterest("boost")

	if !b.Scout.Interested("carrot") {
		t.Error("expected b to keep its own copy of the interests")
	}
	if b.Scout.Interested("goal") || b.Scout.Interested("boost") {
		t.Errorf("expected b unaffected by changes elsewhere, got %v", b.Scout.Interests())
	}
	if got := a.Scout.Interests(); len(got) != 2 || got[0] != "boost" || got[1] != "carrot" {
		t.Errorf("expected a interests [boost carrot], got %v", got)
	}
}
