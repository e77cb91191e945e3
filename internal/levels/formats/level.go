// Package formats provides pluggable level file format parsers.
// Every parser produces the same Level: a grid size plus a list of
// placements. Nothing here knows about the simulation.
package formats

import (
	"errors"
	"fmt"
)

// Kind names what a placement spawns.
type Kind string

// Level kinds understood by the scenarios.
const (
	KindWall      Kind = "wall"
	KindPlayer    Kind = "player"
	KindRabbit    Kind = "rabbit"
	KindSpeedDown Kind = "speed_down"
	KindSpeedUp   Kind = "speed_up"
	KindCarrot    Kind = "carrot"
	KindGoal      Kind = "goal"
	KindBoost     Kind = "boost"
	KindPatrol    Kind = "patrol"
	KindChaser    Kind = "chaser"
	KindPather    Kind = "pather"
)

// legend maps text-grid runes to kinds.
var legend = map[rune]Kind{
	'#': KindWall,
	'@': KindPlayer,
	'&': KindRabbit,
	'.': KindSpeedDown,
	'*': KindSpeedUp,
	'~': KindCarrot,
	'X': KindGoal,
	'+': KindBoost,
	'P': KindPatrol,
	'C': KindChaser,
	'F': KindPather,
}

// KindForRune returns the kind drawn by r in a text grid.
func KindForRune(r rune) (Kind, bool) {
	k, ok := legend[r]
	return k, ok
}

// RuneForKind is the inverse of KindForRune.
func RuneForKind(k Kind) rune {
	for r, kind := range legend {
		if kind == k {
			return r
		}
	}
	return '?'
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, kind := range legend {
		if kind == k {
			return true
		}
	}
	return false
}

// Placement puts one entity of Kind on a tile.
type Placement struct {
	Row  int
	Col  int
	Kind Kind
}

// Level represents a parsed level ready for use.
type Level struct {
	ID         string
	Name       string
	Cols       int
	Rows       int
	Placements []Placement
	Metadata   map[string]string
}

// Count returns how many placements have kind k.
func (l *Level) Count(k Kind) int {
	n := 0
	for _, p := range l.Placements {
		if p.Kind == k {
			n++
		}
	}
	return n
}

// Validate checks the grid size, the placement bounds and that no tile is
// used twice.
func (l *Level) Validate() error {
	if l.Cols <= 0 || l.Rows <= 0 {
		return fmt.Errorf("invalid size %dx%d", l.Cols, l.Rows)
	}
	var errs []error
	seen := make(map[[2]int]Kind, len(l.Placements))
	for _, p := range l.Placements {
		if !p.Kind.Valid() {
			errs = append(errs, fmt.Errorf("unknown kind %q at %d,%d", p.Kind, p.Row, p.Col))
			continue
		}
		if p.Row < 0 || p.Row >= l.Rows || p.Col < 0 || p.Col >= l.Cols {
			errs = append(errs, fmt.Errorf("%s at %d,%d is outside %dx%d", p.Kind, p.Row, p.Col, l.Cols, l.Rows))
			continue
		}
		key := [2]int{p.Row, p.Col}
		if prev, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("%s at %d,%d overlaps %s", p.Kind, p.Row, p.Col, prev))
			continue
		}
		seen[key] = p.Kind
	}
	return errors.Join(errs...)
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".txt", ".yaml", ".yml", ".toml"}
}
