package sim

import (
	"slices"

	"github.com/vovakirdan/tile-herder/internal/core"
	"github.com/vovakirdan/tile-herder/internal/nav"
	"github.com/vovakirdan/tile-herder/internal/spatial"
)

// Path is one planned route: tile-center waypoints consumed in order by an
// advancing cursor. A Path is never modified after planning; re-planning
// replaces it.
type Path struct {
	Goal      spatial.Tile
	Tiles     []spatial.Tile
	Waypoints []core.Point
	cursor    int
}

// Cursor returns the index of the next waypoint.
func (p *Path) Cursor() int { return p.cursor }

// Done reports whether every waypoint was consumed.
func (p *Path) Done() bool { return p.cursor >= len(p.Waypoints) }

// Next returns the next unconsumed waypoint.
func (p *Path) Next() (core.Point, bool) {
	if p.Done() {
		return core.Point{}, false
	}
	return p.Waypoints[p.cursor], true
}

// Remaining returns the waypoints not yet consumed.
func (p *Path) Remaining() []core.Point {
	if p.Done() {
		return nil
	}
	return p.Waypoints[p.cursor:]
}

// End returns the final waypoint.
func (p *Path) End() (core.Point, bool) {
	if len(p.Waypoints) == 0 {
		return core.Point{}, false
	}
	return p.Waypoints[len(p.Waypoints)-1], true
}

// Contains reports whether t lies anywhere on the path.
func (p *Path) Contains(t spatial.Tile) bool {
	return slices.Contains(p.Tiles, t)
}

// advance moves the cursor past every waypoint pos sits exactly on.
func (p *Path) advance(pos core.Point) {
	for p.cursor < len(p.Waypoints) && p.Waypoints[p.cursor] == pos {
		p.cursor++
	}
}

// skipBehind starts the cursor at the second waypoint when pos already
// lies on the segment between the first two, so a fresh plan never walks
// back to the center of the tile the entity is leaving.
func (p *Path) skipBehind(pos core.Point) {
	if len(p.Waypoints) < 2 {
		return
	}
	a, b := p.Waypoints[0], p.Waypoints[1]
	switch {
	case a.Y == b.Y && pos.Y == a.Y:
		if between(pos.X, a.X, b.X) {
			p.cursor = 1
		}
	case a.X == b.X && pos.X == a.X:
		if between(pos.Y, a.Y, b.Y) {
			p.cursor = 1
		}
	}
}

func between(v, a, b float64) bool {
	if a > b {
		a, b = b, a
	}
	return v > a && v <= b
}

// navGrid exposes the world layer to the A* search. A tile is blocked when
// a live solid entity occupies it on spatial.LayerWorld.
type navGrid struct {
	w *World
}

func (g navGrid) InBounds(t spatial.Tile) bool {
	return g.w.grid.InBounds(t)
}

func (g navGrid) Blocked(t spatial.Tile) bool {
	id := g.w.grid.OccupantAt(t, spatial.LayerWorld)
	if id == 0 {
		return false
	}
	e, ok := g.w.entities[ID(id)]
	return ok && e.Solid
}

// Plan searches for a path from e's tile to goal. ok is true only if the
// path reaches goal.
func (w *World) Plan(e *Entity, goal spatial.Tile) (*Path, bool) {
	budget := 0
	if e.Movement != nil {
		budget = e.Movement.SearchBudget
	}
	tiles, reached := nav.FindPath(navGrid{w}, e.tile, goal, budget)
	if !reached {
		return nil, false
	}

	p := &Path{Goal: goal, Tiles: tiles, Waypoints: make([]core.Point, len(tiles))}
	for i, t := range tiles {
		p.Waypoints[i] = w.grid.PixelCenterForTile(t.Row, t.Col)
	}
	return p, true
}

// replan tries to replace the held path. A plan that does not reach goal
// is discarded and the held path, if any, is kept.
func (w *World) replan(e *Entity, goal spatial.Tile) bool {
	m := e.Movement
	m.sinceRepath = 0

	p, ok := w.Plan(e, goal)
	if !ok {
		if m.Path != nil {
			w.logger.Debug("replan kept stale path", "entity", e.id, "goal", goal)
		} else {
			w.logger.Debug("no path", "entity", e.id, "from", e.tile, "goal", goal)
		}
		return false
	}
	p.skipBehind(e.Position())
	m.Path = p
	return true
}

// needsReplan reports whether the held path should be recomputed.
func (m *Movement) needsReplan(goal spatial.Tile) bool {
	switch {
	case m.Path == nil:
		return true
	case m.Target != 0 && !m.Path.Contains(goal):
		return true
	case m.Path.Done():
		return true
	case m.RepathEvery > 0 && m.sinceRepath >= m.RepathEvery:
		return true
	}
	return false
}

// pathGoal returns the tile e is pathing to: the live target's tile, or
// the fixed goal when there is no target.
func (w *World) pathGoal(e *Entity) (spatial.Tile, *Entity, bool) {
	m := e.Movement
	if m.Target != 0 {
		t, ok := w.resolveTarget(e)
		if !ok {
			return spatial.Tile{}, nil, false
		}
		return t.tile, t, true
	}
	if m.Goal != nil {
		return *m.Goal, nil, true
	}
	return spatial.Tile{}, nil, false
}

// pathDestination resolves the destination of a PATH entity: the next
// waypoint of its path, or a direct approach when it holds none.
func (w *World) pathDestination(e *Entity) (core.Point, bool) {
	m := e.Movement
	goal, target, ok := w.pathGoal(e)
	if !ok {
		return core.Point{}, false
	}

	m.sinceRepath++
	if m.needsReplan(goal) {
		w.replan(e, goal)
	}

	if m.Path != nil {
		m.Path.advance(e.Position())
		if wp, ok := m.Path.Next(); ok {
			m.onWaypoint = true
			return wp, true
		}
		m.Path = nil
	}

	if target != nil {
		return target.Position(), true
	}
	return w.grid.PixelCenterForTile(goal.Row, goal.Col), true
}
