package formats

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ParseText parses a text grid level. Lines starting with ';' are
// "key: value" headers; id and name fill the level, anything else goes to
// Metadata. Every other line is a grid row drawn with the legend, where a
// space or '-' is an empty tile.
func ParseText(data []byte) (Level, error) {
	level := Level{Metadata: make(map[string]string)}

	var rows []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.HasPrefix(line, ";") {
			key, value, ok := strings.Cut(strings.TrimPrefix(line, ";"), ":")
			if !ok {
				continue
			}
			key, value = strings.TrimSpace(key), strings.TrimSpace(value)
			switch strings.ToLower(key) {
			case "id":
				level.ID = value
			case "name":
				level.Name = value
			default:
				level.Metadata[key] = value
			}
			continue
		}
		rows = append(rows, line)
	}
	if err := sc.Err(); err != nil {
		return Level{}, fmt.Errorf("text scan: %w", err)
	}

	for len(rows) > 0 && strings.TrimSpace(rows[len(rows)-1]) == "" {
		rows = rows[:len(rows)-1]
	}
	for len(rows) > 0 && strings.TrimSpace(rows[0]) == "" {
		rows = rows[1:]
	}

	placements, cols, err := parseGrid(rows)
	if err != nil {
		return Level{}, err
	}
	level.Rows = len(rows)
	level.Cols = cols
	level.Placements = placements
	return level, nil
}

// parseGrid turns legend rows into placements and reports the widest row.
func parseGrid(rows []string) ([]Placement, int, error) {
	var placements []Placement
	cols := 0
	for r, line := range rows {
		if n := utf8.RuneCountInString(line); n > cols {
			cols = n
		}
		c := 0
		for _, ch := range line {
			switch ch {
			case ' ', '-':
			default:
				kind, ok := KindForRune(ch)
				if !ok {
					return nil, 0, fmt.Errorf("row %d col %d: unknown tile %q", r, c, ch)
				}
				placements = append(placements, Placement{Row: r, Col: c, Kind: kind})
			}
			c++
		}
	}
	return placements, cols, nil
}

// FormatText draws the level back as a text grid with its headers.
func FormatText(l Level) string {
	grid := make([][]rune, l.Rows)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", l.Cols))
	}
	for _, p := range l.Placements {
		if p.Row >= 0 && p.Row < l.Rows && p.Col >= 0 && p.Col < l.Cols {
			grid[p.Row][p.Col] = RuneForKind(p.Kind)
		}
	}

	var b strings.Builder
	if l.ID != "" {
		fmt.Fprintf(&b, "; id: %s\n", l.ID)
	}
	if l.Name != "" {
		fmt.Fprintf(&b, "; name: %s\n", l.Name)
	}
	for _, row := range grid {
		b.WriteString(strings.TrimRight(string(row), " "))
		b.WriteByte('\n')
	}
	return b.String()
}
