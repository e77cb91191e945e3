package sim

import (
	"fmt"
	"math"
	"strings"

	"github.com/vovakirdan/tile-herder/internal/core"
	"github.com/vovakirdan/tile-herder/internal/spatial"
)

// MovementType selects how an entity picks its destination.
type MovementType int

const (
	MovementNone       MovementType = iota // no autonomous motion
	MovementControlled                     // one unit in the input direction
	MovementPatrol                         // random points around the spawn
	MovementChase                          // live position of the target
	MovementPath                           // next waypoint of a planned path
)

var movementNames = [...]string{"none", "controlled", "patrol", "chase", "path"}

func (t MovementType) String() string {
	if t < 0 || int(t) >= len(movementNames) {
		return fmt.Sprintf("movement(%d)", int(t))
	}
	return movementNames[t]
}

// ParseMovementType parses the lower-case movement name.
func ParseMovementType(s string) (MovementType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range movementNames {
		if n == name {
			return MovementType(i), nil
		}
	}
	return MovementNone, fmt.Errorf("sim: unknown movement type %q", s)
}

// MovementConfig is the initial movement state of a spawned entity.
type MovementConfig struct {
	Type             MovementType
	Target           ID
	Goal             *spatial.Tile
	TargetOffset     float64
	BaseSpeed        float64
	MaxAcceleration  float64
	AccelerationRate float64
	Fallback         MovementType // used when the target stops resolving
	RepathEvery      int          // forced re-plan cadence in thinks, 0 = off
	SearchBudget     int          // A* node budget, 0 = default
}

// Movement is the movement component of an entity.
type Movement struct {
	Type         MovementType
	Target       ID // weak reference, resolved through the World each tick
	Goal         *spatial.Tile
	TargetOffset float64

	Speed            float64
	BaseSpeed        float64
	Acceleration     float64
	MaxAcceleration  float64
	AccelerationRate float64

	Direction core.Direction // last movement direction
	Input     core.Direction // requested direction for CONTROLLED

	Path         *Path
	Fallback     MovementType
	RepathEvery  int
	SearchBudget int

	Destination core.Point
	hasDest     bool
	onWaypoint  bool
	spawn       core.Point
	sinceRepath int
}

func newMovement(cfg MovementConfig) (*Movement, error) {
	if cfg.BaseSpeed <= 0 {
		return nil, fmt.Errorf("sim: base speed must be positive, got %g", cfg.BaseSpeed)
	}
	if cfg.MaxAcceleration < 0 || cfg.AccelerationRate < 0 || cfg.TargetOffset < 0 {
		return nil, fmt.Errorf("sim: negative movement tuning")
	}
	if cfg.Fallback != MovementNone && cfg.Fallback != MovementPatrol {
		return nil, fmt.Errorf("sim: fallback must be none or patrol, got %s", cfg.Fallback)
	}
	m := &Movement{
		Type:             cfg.Type,
		Target:           cfg.Target,
		TargetOffset:     cfg.TargetOffset,
		BaseSpeed:        cfg.BaseSpeed,
		MaxAcceleration:  cfg.MaxAcceleration,
		AccelerationRate: cfg.AccelerationRate,
		Fallback:         cfg.Fallback,
		RepathEvery:      cfg.RepathEvery,
		SearchBudget:     cfg.SearchBudget,
	}
	if cfg.Goal != nil {
		g := *cfg.Goal
		m.Goal = &g
	}
	return m, nil
}

// Spawn returns the point patrols wander around.
func (m *Movement) Spawn() core.Point { return m.spawn }

// accelerate updates speed for a step in dir and returns it. A change of
// direction restarts the ramp from zero.
func (m *Movement) accelerate(dir core.Direction) float64 {
	if dir != m.Direction {
		m.Speed = 0
		m.Acceleration = 0
	}
	if m.Speed < m.BaseSpeed {
		m.Speed = math.Min(m.Speed+1, m.BaseSpeed)
	} else {
		m.Acceleration = core.ClampF(m.Acceleration+m.BaseSpeed*m.AccelerationRate, 0, m.MaxAcceleration)
		m.Speed = m.BaseSpeed + m.Acceleration
	}
	return m.Speed
}

// offset is the arrival tolerance for the current destination.
func (m *Movement) offset() float64 {
	switch m.Type {
	case MovementControlled, MovementPatrol:
		return 0
	case MovementPath:
		if m.onWaypoint {
			return 0
		}
	}
	return m.TargetOffset
}

func (m *Movement) stop() {
	m.Direction = core.DirNone
}

// outside reports whether cur lies outside [dest-off, dest+off].
func outside(cur, dest, off float64) bool {
	return cur < dest-off || cur > dest+off
}

// move runs one movement update for e and reports whether a step was
// committed.
func (w *World) move(e *Entity) bool {
	m := e.Movement

	dest, ok := w.destination(e)
	if !ok {
		m.stop()
		return false
	}
	m.Destination = dest
	off := m.offset()

	moveX := outside(e.x, dest.X, off)
	moveY := outside(e.y, dest.Y, off)
	both := moveX && moveY
	if both {
		moveX = w.rng.Intn(2) == 0
		moveY = !moveX
	}

	horizontal := func() bool {
		return w.moveInPlane(e, e.x, dest.X, off, core.DirWest, core.DirEast)
	}
	vertical := func() bool {
		return w.moveInPlane(e, e.y, dest.Y, off, core.DirNorth, core.DirSouth)
	}

	switch {
	case moveX:
		if horizontal() {
			return true
		}
		return both && vertical()
	case moveY:
		if vertical() {
			return true
		}
		return both && horizontal()
	}

	w.arrive(e)
	return false
}

// arrive handles reaching the destination window on both axes.
func (w *World) arrive(e *Entity) {
	m := e.Movement
	m.stop()
	switch m.Type {
	case MovementPatrol:
		m.Destination = w.patrolPoint(m)
	case MovementPath:
		if m.Path != nil && m.Path.Done() {
			m.Path = nil
		}
	}
}

// moveInPlane picks the direction along one axis from the side of the
// [dest-off, dest+off] window cur lies on. move only calls it for an axis
// outside the window, so a value inside or straddling dest never reaches it.
func (w *World) moveInPlane(e *Entity, cur, dest, off float64, decrease, increase core.Direction) bool {
	switch {
	case cur < dest-off:
		return w.stepToward(e, increase, dest, off)
	case cur > dest+off:
		return w.stepToward(e, decrease, dest, off)
	}
	return false
}

// stepToward steps e one speed unit in the cardinal direction dir. Outside
// CONTROLLED movement the step never carries e past dest by more than off.
func (w *World) stepToward(e *Entity, dir core.Direction, dest, off float64) bool {
	m := e.Movement
	mag := m.accelerate(dir)

	if m.Type != MovementControlled {
		switch dir {
		case core.DirEast:
			mag = math.Min(mag, dest+off-e.x)
		case core.DirWest:
			mag = math.Min(mag, e.x-(dest-off))
		case core.DirSouth:
			mag = math.Min(mag, dest+off-e.y)
		case core.DirNorth:
			mag = math.Min(mag, e.y-(dest-off))
		}
	}
	if mag <= 0 {
		return false
	}

	dx, dy := dir.Delta()
	return w.moveInDirection(e, float64(dx)*mag, float64(dy)*mag)
}

// destination computes where e is heading this tick.
func (w *World) destination(e *Entity) (core.Point, bool) {
	m := e.Movement
	m.onWaypoint = false

	switch m.Type {
	case MovementControlled:
		if m.Input == core.DirNone {
			return core.Point{}, false
		}
		dx, dy := m.Input.Delta()
		return core.Pt(e.x+float64(dx), e.y+float64(dy)), true

	case MovementPatrol:
		if !m.hasDest {
			m.Destination = w.patrolPoint(m)
			m.hasDest = true
		}
		return m.Destination, true

	case MovementChase:
		t, ok := w.resolveTarget(e)
		if !ok {
			return core.Point{}, false
		}
		return t.Position(), true

	case MovementPath:
		return w.pathDestination(e)
	}
	return core.Point{}, false
}

// patrolPoint picks a random pixel within TargetOffset/2 of the spawn point
// on each axis.
func (w *World) patrolPoint(m *Movement) core.Point {
	half := math.Floor(m.TargetOffset / 2)
	span := int(2*half) + 1
	return core.Pt(
		m.spawn.X-half+float64(w.rng.Intn(span)),
		m.spawn.Y-half+float64(w.rng.Intn(span)),
	)
}

// resolveTarget looks up the weak target of e. A target that no longer
// resolves is dropped and movement falls back to m.Fallback.
func (w *World) resolveTarget(e *Entity) (*Entity, bool) {
	m := e.Movement
	if m.Target == 0 {
		w.dropTarget(e)
		return nil, false
	}
	t, ok := w.entities[m.Target]
	if !ok {
		w.dropTarget(e)
		return nil, false
	}
	return t, true
}

func (w *World) dropTarget(e *Entity) {
	m := e.Movement
	w.logger.Debug("target lost", "entity", e.id, "target", m.Target, "fallback", m.Fallback)
	m.Target = 0
	m.Type = m.Fallback
	m.Path = nil
	m.hasDest = false
}
