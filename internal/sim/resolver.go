package sim

import (
	"math"

	"github.com/vovakirdan/tile-herder/internal/core"
	"github.com/vovakirdan/tile-herder/internal/event"
)

// Clearance is the gap left between a mover and a solid it is clamped
// against.
const Clearance = 1.0

// moveInDirection is the stepping primitive. It classifies (dx, dy), probes
// for obstructions along the leading edge and commits the step. It returns
// true only if the full step was taken.
func (w *World) moveInDirection(e *Entity, dx, dy float64) bool {
	m := e.Movement
	dir := core.Classify(dx, dy)
	if dir == core.DirNone {
		return false
	}

	step := math.Max(math.Abs(dx), math.Abs(dy))
	blocked := false

	// Keep the bounding box inside the play area.
	if limit := w.edgeLimit(e, dir); limit < step {
		step = math.Max(limit, 0)
		blocked = true
	}

	solid, gap, contacts := w.scan(e, dir, step)

	if solid != nil && gap-Clearance <= step {
		w.snap(e, dir, solid)
		m.stop()
		w.collide(e, solid, gap)
		return false
	}

	if step > 0 {
		sx, sy := dir.Delta()
		nx, ny := e.x+float64(sx)*step, e.y+float64(sy)*step
		if blocked {
			nx, ny = w.edgePosition(e, dir)
		}
		if !w.place(e, nx, ny) {
			m.stop()
			return false
		}
	}

	for _, c := range contacts {
		w.collide(e, c.other, c.distance)
	}

	if blocked {
		m.stop()
		return false
	}
	m.Direction = dir
	return true
}

// edgeLimit returns how far e may travel in dir before leaving the grid.
func (w *World) edgeLimit(e *Entity, dir core.Direction) float64 {
	r, b := e.Rect(), w.grid.Bounds()
	switch dir {
	case core.DirEast:
		return b.Right() - r.Right()
	case core.DirWest:
		return r.X - b.X
	case core.DirSouth:
		return b.Bottom() - r.Bottom()
	case core.DirNorth:
		return r.Y - b.Y
	}
	return math.Inf(1)
}

// edgePosition returns the center that puts e flush with the play-area
// edge in dir.
func (w *World) edgePosition(e *Entity, dir core.Direction) (float64, float64) {
	b := w.grid.Bounds()
	switch dir {
	case core.DirEast:
		return b.Right() - e.HalfWidth(), e.y
	case core.DirWest:
		return b.X + e.HalfWidth(), e.y
	case core.DirSouth:
		return e.x, b.Bottom() - e.HalfHeight()
	case core.DirNorth:
		return e.x, b.Y + e.HalfHeight()
	}
	return e.x, e.y
}

type contact struct {
	other    *Entity
	distance float64
}

// scan queries the tiles around the leading-edge probe. It returns the
// nearest solid in the box e sweeps in dir (with the gap between the facing
// edges, negative once they overlap) and the non-solid entities the probe
// is touching.
func (w *World) scan(e *Entity, dir core.Direction, step float64) (solid *Entity, gap float64, contacts []contact) {
	p := e.probe(dir)
	self := e.Rect()
	swept := sweep(self, dir, step+Clearance)

	// Take e off the grid so the query never finds it.
	w.grid.Remove(uint64(e.id))
	hits := w.grid.Nearest(p.X, p.Y, w.grid.Cols()*w.grid.Rows(), w.reach(e, dir, step))
	w.grid.Insert(uint64(e.id), e.x, e.y, e.layer)

	gap = math.Inf(1)
	seen := make(map[ID]bool, len(hits))
	for _, h := range hits {
		id := ID(h.ID)
		if id == e.id || seen[id] {
			continue
		}
		seen[id] = true
		other, ok := w.entities[id]
		if !ok {
			continue
		}

		if !other.Solid {
			if h.Distance <= other.HalfWidth() {
				contacts = append(contacts, contact{other: other, distance: h.Distance})
			}
			continue
		}

		r := other.Rect()
		if !r.Intersects(swept) {
			continue
		}
		if g, ahead := facingGap(self, r, dir); ahead && g < gap {
			gap, solid = g, other
		}
	}
	return solid, gap, contacts
}

// reach bounds the probe query so that every tile whose square meets the
// swept box of e has its center in range.
func (w *World) reach(e *Entity, dir core.Direction, step float64) float64 {
	half := w.grid.TileSize() / 2
	along, across := e.width, e.HalfHeight()
	if dir == core.DirNorth || dir == core.DirSouth {
		along, across = e.height, e.HalfWidth()
	}
	r := math.Hypot(math.Max(along, step+Clearance)+half, across+half)
	return math.Max(r, e.width+step)
}

// sweep extends r by d in dir.
func sweep(r core.Rect, dir core.Direction, d float64) core.Rect {
	switch dir {
	case core.DirEast:
		r.W += d
	case core.DirWest:
		r.X -= d
		r.W += d
	case core.DirSouth:
		r.H += d
	case core.DirNorth:
		r.Y -= d
		r.H += d
	}
	return r
}

// facingGap returns the distance between the leading edge of a and the
// facing edge of b, and whether b lies ahead of a in dir. A b that a
// already overlaps counts as ahead while its far edge is beyond a's
// leading edge; the gap is then negative.
func facingGap(a, b core.Rect, dir core.Direction) (float64, bool) {
	switch dir {
	case core.DirEast:
		return b.X - a.Right(), b.Right() > a.Right()
	case core.DirWest:
		return a.X - b.Right(), b.X < a.X
	case core.DirSouth:
		return b.Y - a.Bottom(), b.Bottom() > a.Bottom()
	case core.DirNorth:
		return a.Y - b.Bottom(), b.Y < a.Y
	}
	return 0, false
}

// snap puts e exactly one Clearance short of the facing edge of solid,
// backing it out when it is already closer.
func (w *World) snap(e *Entity, dir core.Direction, solid *Entity) {
	r := solid.Rect()
	x, y := e.x, e.y
	switch dir {
	case core.DirEast:
		x = r.X - Clearance - e.HalfWidth()
	case core.DirWest:
		x = r.Right() + Clearance + e.HalfWidth()
	case core.DirSouth:
		y = r.Y - Clearance - e.HalfHeight()
	case core.DirNorth:
		y = r.Bottom() + Clearance + e.HalfHeight()
	}
	if x != e.x || y != e.y {
		w.place(e, x, y)
	}
}

// CollisionEvent reports that Mover made contact with Other. Other is the
// reacting party: game rules apply its effect to Mover.
type CollisionEvent struct {
	Mover   ID
	Other   ID
	Overlap float64
}

// collide notifies a contact between mover and other. The event is only
// published when overlap is within other's half width. A solid other is
// returned as the single obstruction.
func (w *World) collide(mover, other *Entity, overlap float64) []*Entity {
	if other.id == mover.id {
		return nil
	}
	if overlap <= other.HalfWidth() {
		event.Publish(w.bus, CollisionEvent{Mover: mover.id, Other: other.id, Overlap: overlap})
	}
	if other.Solid {
		return []*Entity{other}
	}
	return nil
}
