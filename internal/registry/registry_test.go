package registry

import (
	"errors"
	"testing"

	"github.com/vovakirdan/tile-herder/internal/core"
	"github.com/vovakirdan/tile-herder/internal/sim"
)

type fakeScenario struct {
	id    string
	state core.GameState
}

func (f *fakeScenario) ID() string    { return f.id }
func (f *fakeScenario) Title() string { return "Fake " + f.id }

func (f *fakeScenario) Reset(core.RuntimeConfig) error {
	f.state = core.GameState{}
	return nil
}

func (f *fakeScenario) Step(float64, core.Direction) core.StepResult {
	f.state.Tick++
	return core.StepResult{State: f.state}
}

func (f *fakeScenario) State() core.GameState { return f.state }
func (f *fakeScenario) World() *sim.World     { return nil }

func TestRegisterCreateList(t *testing.T) {
	Register("zz_fake", func() Scenario { return &fakeScenario{id: "zz_fake"} })
	Register("aa_fake", func() Scenario { return &fakeScenario{id: "aa_fake"} })
	t.Cleanup(func() {
		unregister("zz_fake")
		unregister("aa_fake")
	})

	if !Exists("zz_fake") {
		t.Fatal("expected zz_fake to exist")
	}

	s, err := Create("zz_fake")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if s.ID() != "zz_fake" {
		t.Errorf("expected id zz_fake, got %q", s.ID())
	}
	if res := s.Step(0.05, core.DirNone); res.State.Tick != 1 {
		t.Errorf("expected tick 1, got %d", res.State.Tick)
	}

	list := List()
	var ids []string
	for _, info := range list {
		if info.ID == "aa_fake" && info.Title != "Fake aa_fake" {
			t.Errorf("unexpected title %q", info.Title)
		}
		ids = append(ids, info.ID)
	}
	first, last := -1, -1
	for i, id := range ids {
		switch id {
		case "aa_fake":
			first = i
		case "zz_fake":
			last = i
		}
	}
	if first < 0 || last < 0 || first > last {
		t.Errorf("expected sorted list containing both fakes, got %v", ids)
	}
}

func TestCreateUnknown(t *testing.T) {
	_, err := Create("no_such_scenario")
	if !errors.Is(err, ErrUnknownScenario) {
		t.Errorf("expected ErrUnknownScenario, got %v", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("dup_fake", func() Scenario { return &fakeScenario{id: "dup_fake"} })
	t.Cleanup(func() { unregister("dup_fake") })

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register("dup_fake", func() Scenario { return &fakeScenario{id: "dup_fake"} })
}
