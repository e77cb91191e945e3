package core

import (
	"fmt"
	"strings"
)

// Direction is one of the eight compass directions, or DirNone.
// Y grows downward, so North is negative Y.
type Direction int

const (
	DirNone Direction = iota
	DirNorth
	DirNorthEast
	DirEast
	DirSouthEast
	DirSouth
	DirSouthWest
	DirWest
	DirNorthWest
)

var directionNames = [...]string{
	DirNone:      "none",
	DirNorth:     "north",
	DirNorthEast: "north-east",
	DirEast:      "east",
	DirSouthEast: "south-east",
	DirSouth:     "south",
	DirSouthWest: "south-west",
	DirWest:      "west",
	DirNorthWest: "north-west",
}

// String returns a human-readable name for the direction.
func (d Direction) String() string {
	if d < DirNone || int(d) >= len(directionNames) {
		return "unknown"
	}
	return directionNames[d]
}

// Classify maps a signed step to a compass direction by comparing signs.
// This sign classification, not the vector angle, is the canonical
// direction everywhere in the engine.
func Classify(dx, dy float64) Direction {
	sx, sy := Sign(dx), Sign(dy)
	switch {
	case sx == 0 && sy < 0:
		return DirNorth
	case sx == 0 && sy > 0:
		return DirSouth
	case sy == 0 && sx < 0:
		return DirWest
	case sy == 0 && sx > 0:
		return DirEast
	case sy < 0 && sx > 0:
		return DirNorthEast
	case sy < 0 && sx < 0:
		return DirNorthWest
	case sy > 0 && sx > 0:
		return DirSouthEast
	case sy > 0 && sx < 0:
		return DirSouthWest
	}
	return DirNone
}

// Delta returns the unit step for the direction.
func (d Direction) Delta() (int, int) {
	switch d {
	case DirNorth:
		return 0, -1
	case DirNorthEast:
		return 1, -1
	case DirEast:
		return 1, 0
	case DirSouthEast:
		return 1, 1
	case DirSouth:
		return 0, 1
	case DirSouthWest:
		return -1, 1
	case DirWest:
		return -1, 0
	case DirNorthWest:
		return -1, -1
	}
	return 0, 0
}

// ParseDirection accepts compass abbreviations ("n", "ne", "e", ...), full
// names ("north", "south-west") and "x"/"none"/"stop" for DirNone.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "north", "up":
		return DirNorth, nil
	case "ne", "north-east", "northeast":
		return DirNorthEast, nil
	case "e", "east", "right":
		return DirEast, nil
	case "se", "south-east", "southeast":
		return DirSouthEast, nil
	case "s", "south", "down":
		return DirSouth, nil
	case "sw", "south-west", "southwest":
		return DirSouthWest, nil
	case "w", "west", "left":
		return DirWest, nil
	case "nw", "north-west", "northwest":
		return DirNorthWest, nil
	case "x", "none", "stop", "":
		return DirNone, nil
	}
	return DirNone, fmt.Errorf("unknown direction %q", s)
}
