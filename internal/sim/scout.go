package sim

import (
	"slices"

	"github.com/vovakirdan/tile-herder/internal/spatial"
)

// ScoutConfig enables scouting on a spawned entity.
type ScoutConfig struct {
	Interests []string // entity kinds worth deviating for
	Range     float64  // search radius in tiles
}

// scoutNeighbours is the number of tiles a scout inspects around itself.
const scoutNeighbours = 8

// Scout layers opportunistic re-targeting over a Movement. While something
// interesting is within Range, the entity paths to it; otherwise its
// original movement type, target and offset are restored.
type Scout struct {
	interests map[string]struct{}
	Range     float64 // pixels

	origType   MovementType
	origTarget ID
	origOffset float64
}

// NewScout creates a scout looking for the given kinds within rangePx
// pixels. The kinds are copied; the caller's slice is not retained.
func NewScout(interests []string, rangePx float64) *Scout {
	s := &Scout{
		interests: make(map[string]struct{}, len(interests)),
		Range:     rangePx,
	}
	for _, k := range interests {
		s.interests[k] = struct{}{}
	}
	return s
}

// Interested reports whether kind is in the interest set.
func (s *Scout) Interested(kind string) bool {
	_, ok := s.interests[kind]
	return ok
}

// Interests returns the interest set in sorted order.
func (s *Scout) Interests() []string {
	out := make([]string, 0, len(s.interests))
	for k := range s.interests {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// AddInterest adds kind to this scout's interest set only.
func (s *Scout) AddInterest(kind string) {
	s.interests[kind] = struct{}{}
}

// Deviated reports whether the scout currently overrides the target.
func (s *Scout) Deviated(m *Movement) bool {
	return m.Target != s.origTarget
}

func (s *Scout) remember(m *Movement) {
	if m == nil {
		return
	}
	s.origType = m.Type
	s.origTarget = m.Target
	s.origOffset = m.TargetOffset
}

// scout runs before movement resolution for entities with a Scout.
func (w *World) scout(e *Entity) {
	s, m := e.Scout, e.Movement

	// Keep heading for something interesting already at the end of the path.
	if m.Path != nil {
		if end, ok := m.Path.End(); ok && w.interestingAt(s, e, end.X, end.Y) {
			return
		}
	}

	found := w.nearestInteresting(s, e)
	deviated := s.Deviated(m)

	m.Type = s.origType
	m.TargetOffset = s.origOffset

	if found != 0 && !deviated {
		m.Type = MovementPath
		m.TargetOffset = 0
		m.Target = found
		w.logger.Debug("scout deviating", "entity", e.id, "target", found)
		return
	}

	m.Target = s.origTarget
	if deviated {
		m.Path = nil
		w.logger.Debug("scout restored", "entity", e.id, "target", s.origTarget, "movement", s.origType)
	}
}

func (w *World) nearestInteresting(s *Scout, e *Entity) ID {
	for _, h := range w.grid.Nearest(e.x, e.y, scoutNeighbours, s.Range) {
		id := ID(h.ID)
		if id == e.id {
			continue
		}
		if o, ok := w.entities[id]; ok && s.Interested(o.Kind) {
			return id
		}
	}
	return 0
}

func (w *World) interestingAt(s *Scout, e *Entity, x, y float64) bool {
	for _, l := range spatial.AllLayers {
		o, ok := w.EntityAt(x, y, l)
		if ok && o.id != e.id && s.Interested(o.Kind) {
			return true
		}
	}
	return false
}
