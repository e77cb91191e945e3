package sim

import (
	"fmt"

	"github.com/vovakirdan/tile-herder/internal/core"
	"github.com/vovakirdan/tile-herder/internal/spatial"
)

// ID identifies an entity for the lifetime of a World. IDs start at 1, are
// assigned in spawn order and never reused.
type ID uint64

// Role decides whether and when an entity thinks during World.Step.
type Role int

const (
	RoleStatic     Role = iota // never thinks (walls)
	RoleItem                   // thinks first
	RoleActor                  // autonomous, thinks second
	RoleControlled             // driven by input, thinks last
)

var roleNames = [...]string{"static", "item", "actor", "controlled"}

func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// Bounds holds the bounding points of an entity. They are derived from the
// position and half extents and recomputed on every move.
type Bounds struct {
	TopLeft, TopMiddle, TopRight          core.Point
	MiddleLeft, Middle, MiddleRight       core.Point
	BottomLeft, BottomMiddle, BottomRight core.Point
}

// Entity is one simulated rectangle. Position, extents and layer are owned
// by the World; game rules may change the exported tuning fields.
type Entity struct {
	id            ID
	x, y          float64
	lastX, lastY  float64 // last committed position
	width, height float64
	layer         spatial.Layer
	role          Role
	tile          spatial.Tile
	bounds        Bounds

	Kind     string
	Solid    bool
	Colour   core.Color
	TickRate float64 // seconds between thinks

	Movement *Movement // nil for entities that never move
	Scout    *Scout    // nil unless the entity looks for things of interest

	acc      float64
	ticked   bool
	detached bool
}

// ID returns the entity id.
func (e *Entity) ID() ID { return e.id }

// X returns the center x coordinate.
func (e *Entity) X() float64 { return e.x }

// Y returns the center y coordinate.
func (e *Entity) Y() float64 { return e.y }

// Position returns the center point.
func (e *Entity) Position() core.Point { return core.Pt(e.x, e.y) }

// Width returns the entity width in pixels.
func (e *Entity) Width() float64 { return e.width }

// Height returns the entity height in pixels.
func (e *Entity) Height() float64 { return e.height }

// HalfWidth returns half the width.
func (e *Entity) HalfWidth() float64 { return e.width / 2 }

// HalfHeight returns half the height.
func (e *Entity) HalfHeight() float64 { return e.height / 2 }

// Layer returns the occupancy layer the entity lives on.
func (e *Entity) Layer() spatial.Layer { return e.layer }

// Role returns the scheduling role.
func (e *Entity) Role() Role { return e.role }

// Tile returns the tile currently holding the entity.
func (e *Entity) Tile() spatial.Tile { return e.tile }

// Bounds returns the bounding points for the current position.
func (e *Entity) Bounds() Bounds { return e.bounds }

// Rect returns the bounding box.
func (e *Entity) Rect() core.Rect {
	return core.RectAround(e.x, e.y, e.width, e.height)
}

// Detached reports whether the entity was removed from the simulation.
func (e *Entity) Detached() bool { return e.detached }

func (e *Entity) String() string {
	return fmt.Sprintf("%d:%s@%s", e.id, e.Kind, core.Pt(e.x, e.y))
}

func (e *Entity) refreshBounds() {
	hw, hh := e.HalfWidth(), e.HalfHeight()
	e.bounds = Bounds{
		TopLeft:      core.Pt(e.x-hw, e.y-hh),
		TopMiddle:    core.Pt(e.x, e.y-hh),
		TopRight:     core.Pt(e.x+hw, e.y-hh),
		MiddleLeft:   core.Pt(e.x-hw, e.y),
		Middle:       core.Pt(e.x, e.y),
		MiddleRight:  core.Pt(e.x+hw, e.y),
		BottomLeft:   core.Pt(e.x-hw, e.y+hh),
		BottomMiddle: core.Pt(e.x, e.y+hh),
		BottomRight:  core.Pt(e.x+hw, e.y+hh),
	}
}

// probe returns the collision probe point for a step in dir: the leading
// edge midpoint for cardinal directions, the center otherwise.
func (e *Entity) probe(dir core.Direction) core.Point {
	switch dir {
	case core.DirNorth:
		return e.bounds.TopMiddle
	case core.DirEast:
		return e.bounds.MiddleRight
	case core.DirSouth:
		return e.bounds.BottomMiddle
	case core.DirWest:
		return e.bounds.MiddleLeft
	}
	return e.bounds.Middle
}

// canThink advances the tick-rate accumulator. The first call always
// thinks; after that the entity thinks once the accumulator exceeds
// TickRate.
func (e *Entity) canThink(dt float64) bool {
	if !e.ticked {
		e.ticked = true
		return true
	}
	e.acc += dt
	if e.acc > e.TickRate {
		e.acc = 0
		return true
	}
	return false
}
