// Package sim is the tile-grid entity simulation: entity state, collision
// resolution, the movement state machine, path planning and scouting.
//
// A World owns every entity and the spatial index. It is single-threaded;
// Step is the only driver and must not be called concurrently.
package sim

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tile-herder/internal/core"
	"github.com/vovakirdan/tile-herder/internal/event"
	"github.com/vovakirdan/tile-herder/internal/spatial"
)

var (
	// ErrTileOccupied is returned when a spawn or move targets a tile slot
	// already held by another entity on the same layer.
	ErrTileOccupied = errors.New("sim: tile occupied")
	// ErrUnknownEntity is returned for ids that do not resolve.
	ErrUnknownEntity = errors.New("sim: unknown entity")
	// ErrOutOfGrid is returned when a spawn lies outside the grid.
	ErrOutOfGrid = errors.New("sim: tile outside grid")
	// ErrNotControlled is returned by SetDirection for entities that are not
	// in CONTROLLED movement.
	ErrNotControlled = errors.New("sim: entity is not controlled")
)

// SpawnSpec describes an entity to create at a tile center.
type SpawnSpec struct {
	Row, Col      int
	Width, Height float64
	Layer         spatial.Layer
	Kind          string
	Solid         bool
	Colour        core.Color
	TickRate      float64
	Role          Role
	Movement      *MovementConfig
	Scout         *ScoutConfig
}

// World owns the entities of one level and the spatial index they live in.
type World struct {
	grid     *spatial.Index
	entities map[ID]*Entity
	nextID   ID

	items      []ID
	actors     []ID
	controlled []ID

	rng    *rand.Rand
	bus    *event.Bus
	logger *log.Logger
	tick   uint64
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger used for debug and warning output.
func WithLogger(l *log.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithBus sets the bus collision events are published on.
func WithBus(b *event.Bus) Option {
	return func(w *World) {
		if b != nil {
			w.bus = b
		}
	}
}

// WithSeed seeds the random source used for tie-breaking and patrols.
func WithSeed(seed int64) Option {
	return func(w *World) {
		w.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand sets the random source directly.
func WithRand(r *rand.Rand) Option {
	return func(w *World) {
		if r != nil {
			w.rng = r
		}
	}
}

// NewWorld creates an empty world over grid.
func NewWorld(grid *spatial.Index, opts ...Option) *World {
	w := &World{
		grid:     grid,
		entities: make(map[ID]*Entity),
		rng:      rand.New(rand.NewSource(1)),
		bus:      event.NewBus(),
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Grid returns the spatial index.
func (w *World) Grid() *spatial.Index { return w.grid }

// Bus returns the event bus.
func (w *World) Bus() *event.Bus { return w.bus }

// Logger returns the world logger.
func (w *World) Logger() *log.Logger { return w.logger }

// Tick returns the number of completed Step calls.
func (w *World) Tick() uint64 { return w.tick }

// Len returns the number of live entities.
func (w *World) Len() int { return len(w.entities) }

// Spawn creates an entity centred on the tile (spec.Row, spec.Col).
func (w *World) Spawn(spec SpawnSpec) (*Entity, error) {
	tile := spatial.Tile{Row: spec.Row, Col: spec.Col}
	if !w.grid.InBounds(tile) {
		return nil, fmt.Errorf("%w: %s", ErrOutOfGrid, tile)
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("sim: invalid size %gx%g for %q", spec.Width, spec.Height, spec.Kind)
	}
	if spec.Layer < 0 || spec.Layer >= spatial.NumLayers {
		return nil, fmt.Errorf("sim: invalid layer %d", spec.Layer)
	}
	c := w.grid.PixelCenterForTile(spec.Row, spec.Col)
	if r := core.RectAround(c.X, c.Y, spec.Width, spec.Height); !w.grid.Contains(r.X, r.Y) || !w.grid.Contains(r.Right(), r.Bottom()) {
		return nil, fmt.Errorf("%w: %q at %s does not fit inside the grid", ErrOutOfGrid, spec.Kind, tile)
	}
	if occ := w.grid.OccupantAt(tile, spec.Layer); occ != 0 {
		return nil, fmt.Errorf("%w: %s on %s layer held by %d", ErrTileOccupied, tile, spec.Layer, occ)
	}

	if spec.Scout != nil && spec.Movement == nil {
		return nil, fmt.Errorf("sim: scouting %q needs a movement config", spec.Kind)
	}

	var mv *Movement
	if spec.Movement != nil {
		var err error
		if mv, err = newMovement(*spec.Movement); err != nil {
			return nil, err
		}
	}

	w.nextID++
	e := &Entity{
		id:       w.nextID,
		x:        c.X,
		y:        c.Y,
		lastX:    c.X,
		lastY:    c.Y,
		width:    spec.Width,
		height:   spec.Height,
		layer:    spec.Layer,
		role:     spec.Role,
		tile:     tile,
		Kind:     spec.Kind,
		Solid:    spec.Solid,
		Colour:   spec.Colour,
		TickRate: spec.TickRate,
		Movement: mv,
	}
	if mv != nil {
		mv.spawn = c
	}
	if spec.Scout != nil {
		e.Scout = NewScout(spec.Scout.Interests, spec.Scout.Range*w.grid.TileSize())
		e.Scout.remember(mv)
	}
	e.refreshBounds()

	w.entities[e.id] = e
	w.grid.Insert(uint64(e.id), e.x, e.y, e.layer)
	switch e.role {
	case RoleItem:
		w.items = append(w.items, e.id)
	case RoleActor:
		w.actors = append(w.actors, e.id)
	case RoleControlled:
		w.controlled = append(w.controlled, e.id)
	}

	w.logger.Debug("spawned", "entity", e.id, "kind", e.Kind, "tile", tile, "layer", e.layer)
	return e, nil
}

// Entity looks up a live entity. Detached entities do not resolve.
func (w *World) Entity(id ID) (*Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// Entities returns every live entity in id order.
func (w *World) Entities() []*Entity {
	ids := make([]ID, 0, len(w.entities))
	for id := range w.entities {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]*Entity, len(ids))
	for i, id := range ids {
		out[i] = w.entities[id]
	}
	return out
}

// EntityAt returns the live occupant of the tile holding (x, y) on layer.
func (w *World) EntityAt(x, y float64, layer spatial.Layer) (*Entity, bool) {
	id := w.grid.At(x, y, layer)
	if id == 0 {
		return nil, false
	}
	return w.Entity(ID(id))
}

// Detach removes an entity from the grid and the think lists. Its id stays
// retired and later lookups fail.
func (w *World) Detach(id ID) error {
	e, ok := w.entities[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	w.grid.Remove(uint64(id))
	delete(w.entities, id)
	e.detached = true

	w.items = slices.DeleteFunc(w.items, func(v ID) bool { return v == id })
	w.actors = slices.DeleteFunc(w.actors, func(v ID) bool { return v == id })
	w.controlled = slices.DeleteFunc(w.controlled, func(v ID) bool { return v == id })

	w.logger.Debug("detached", "entity", id, "kind", e.Kind)
	return nil
}

// SetDirection feeds an input direction to a CONTROLLED entity.
func (w *World) SetDirection(id ID, dir core.Direction) error {
	e, ok := w.entities[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	if e.Movement == nil || e.Movement.Type != MovementControlled {
		return fmt.Errorf("%w: %d", ErrNotControlled, id)
	}
	e.Movement.Input = dir
	return nil
}

// SetTarget points the movement of id at another entity. The reference is
// weak: it is resolved by id every tick.
func (w *World) SetTarget(id, target ID) error {
	e, ok := w.entities[id]
	if !ok || e.Movement == nil {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	e.Movement.Target = target
	e.Movement.Path = nil
	if e.Scout != nil {
		e.Scout.remember(e.Movement)
	}
	return nil
}

// SetGoal gives a PATH entity a fixed goal tile.
func (w *World) SetGoal(id ID, goal spatial.Tile) error {
	e, ok := w.entities[id]
	if !ok || e.Movement == nil {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	if !w.grid.InBounds(goal) {
		return fmt.Errorf("%w: %s", ErrOutOfGrid, goal)
	}
	g := goal
	e.Movement.Goal = &g
	e.Movement.Path = nil
	return nil
}

// SetMovementType switches the movement state of id.
func (w *World) SetMovementType(id ID, t MovementType) error {
	e, ok := w.entities[id]
	if !ok || e.Movement == nil {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	e.Movement.Type = t
	e.Movement.Path = nil
	e.Movement.hasDest = false
	if e.Scout != nil {
		e.Scout.remember(e.Movement)
	}
	return nil
}

// Step advances the simulation by one tick of dt seconds. Items think
// first, then actors, then controlled entities, so actors see controlled
// entities as they were at the end of the previous tick.
func (w *World) Step(dt float64) {
	w.tick++
	for _, list := range [][]ID{w.items, w.actors, w.controlled} {
		for _, id := range slices.Clone(list) {
			e, ok := w.entities[id]
			if !ok {
				continue
			}
			w.think(e, dt)
		}
	}
}

// think runs one gated update for e and reports whether it ran.
func (w *World) think(e *Entity, dt float64) bool {
	if !e.canThink(dt) {
		return false
	}
	if e.Movement == nil {
		return true
	}
	if e.Scout != nil {
		w.scout(e)
	}
	w.move(e)
	return true
}

// place moves e to (x, y), keeping the spatial index in step. A move into a
// tile held on e's layer by another live entity is rolled back to the last
// committed position and reported as false.
func (w *World) place(e *Entity, x, y float64) bool {
	e.x, e.y = x, y
	e.refreshBounds()

	tile := w.grid.TileForPixel(x, y)
	if tile == e.tile {
		e.lastX, e.lastY = x, y
		return true
	}

	if occ := w.grid.OccupantAt(tile, e.layer); occ != 0 && ID(occ) != e.id {
		if _, live := w.entities[ID(occ)]; live {
			e.x, e.y = e.lastX, e.lastY
			e.refreshBounds()
			return false
		}
	}

	w.grid.Remove(uint64(e.id))
	w.grid.Insert(uint64(e.id), x, y, e.layer)
	e.tile = tile
	e.lastX, e.lastY = x, y
	return true
}
