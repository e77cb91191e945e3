package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vovakirdan/tile-herder/internal/core"
)

// segment holds one direction for a number of ticks.
type segment struct {
	Dir   core.Direction
	Ticks int
}

// inputScript is a scripted direction sequence such as "E:40,S:20,X:5".
// Once exhausted it yields DirNone.
type inputScript []segment

// parseInput parses comma-separated DIR:TICKS pairs. A pair without a
// count lasts one tick.
func parseInput(s string) (inputScript, error) {
	var script inputScript
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, count, hasCount := strings.Cut(part, ":")
		dir, err := core.ParseDirection(name)
		if err != nil {
			return nil, err
		}
		ticks := 1
		if hasCount {
			if ticks, err = strconv.Atoi(strings.TrimSpace(count)); err != nil || ticks <= 0 {
				return nil, fmt.Errorf("invalid tick count in %q", part)
			}
		}
		script = append(script, segment{Dir: dir, Ticks: ticks})
	}
	return script, nil
}

// at returns the direction held on the given zero-based tick.
func (s inputScript) at(tick int) core.Direction {
	for _, seg := range s {
		if tick < seg.Ticks {
			return seg.Dir
		}
		tick -= seg.Ticks
	}
	return core.DirNone
}

// length returns the total number of scripted ticks.
func (s inputScript) length() int {
	n := 0
	for _, seg := range s {
		n += seg.Ticks
	}
	return n
}
