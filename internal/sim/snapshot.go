package sim

import (
	"math"

	"github.com/vovakirdan/tile-herder/internal/core"
	"github.com/vovakirdan/tile-herder/internal/spatial"
)

// EntityView is the read-only picture of an entity handed to renderers.
type EntityView struct {
	ID     ID
	Kind   string
	Colour core.Color
	Layer  spatial.Layer
	Solid  bool

	TopLeft, TopRight       core.Point
	BottomLeft, BottomRight core.Point
	Center                  core.Point

	Movement  MovementType
	Direction core.Direction
	Waypoints []core.Point // remaining waypoints of the held path
}

// Snapshot returns a view of every live entity in id order.
func (w *World) Snapshot() []EntityView {
	entities := w.Entities()
	views := make([]EntityView, len(entities))
	for i, e := range entities {
		b := e.bounds
		v := EntityView{
			ID:          e.id,
			Kind:        e.Kind,
			Colour:      e.Colour,
			Layer:       e.layer,
			Solid:       e.Solid,
			TopLeft:     b.TopLeft,
			TopRight:    b.TopRight,
			BottomLeft:  b.BottomLeft,
			BottomRight: b.BottomRight,
			Center:      b.Middle,
		}
		if m := e.Movement; m != nil {
			v.Movement = m.Type
			v.Direction = m.Direction
			if m.Path != nil {
				v.Waypoints = append([]core.Point(nil), m.Path.Remaining()...)
			}
		}
		views[i] = v
	}
	return views
}

// Hash folds the tick and every entity position into one value, so two
// runs can be compared for determinism.
func (w *World) Hash() uint64 {
	h := w.tick
	for _, v := range w.Snapshot() {
		h = h*31 + uint64(v.ID)
		h = h*31 + math.Float64bits(v.Center.X)
		h = h*31 + math.Float64bits(v.Center.Y)
		h = h*31 + uint64(v.Movement)
		h = h*31 + uint64(v.Direction)
		h = h*31 + uint64(len(v.Waypoints))
	}
	return h
}
