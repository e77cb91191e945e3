// Package registry provides a global registry for scenario factories.
// Scenarios register themselves in init() functions, allowing the CLI to
// discover and instantiate them without hardcoded dependencies.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tile-herder/internal/core"
	"github.com/vovakirdan/tile-herder/internal/sim"
)

// ErrUnknownScenario is returned by Create for ids nobody registered.
var ErrUnknownScenario = errors.New("registry: unknown scenario")

// Scenario is a playable setup built on a sim.World. The driver owns
// timing and input; the scenario owns the world and its rules.
type Scenario interface {
	// ID returns a unique identifier (e.g., "herd"). Used for CLI commands
	// and run history.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset builds a fresh world. Called once at start and again on
	// restart.
	Reset(cfg core.RuntimeConfig) error

	// Step feeds dir to the controlled entity, if any, and advances the
	// world by one tick of dt seconds.
	Step(dt float64, dir core.Direction) core.StepResult

	// State returns the current scenario state.
	State() core.GameState

	// World exposes the simulation for snapshots and inspection.
	World() *sim.World
}

// Info contains metadata about a registered scenario.
type Info struct {
	ID    string
	Title string
}

// Factory is a function that creates a new instance of a scenario.
type Factory func() Scenario

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a scenario factory to the registry.
// Panics if a scenario with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: scenario %q already registered", id))
	}

	factories[id] = f
	titles[id] = f().Title()
}

// List returns information about all registered scenarios, sorted by ID.
func List() []Info {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Info, 0, len(factories))
	for id := range factories {
		result = append(result, Info{ID: id, Title: titles[id]})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Create instantiates a new scenario by its ID.
func Create(id string) (Scenario, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownScenario, id)
	}
	return f(), nil
}

// Exists checks if a scenario with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}

// unregister removes id; tests use it to keep the registry clean.
func unregister(id string) {
	mu.Lock()
	defer mu.Unlock()
	delete(factories, id)
	delete(titles, id)
}
