package formats

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLLevel represents the YAML structure for a level file. Tiles can be
// listed one by one under placements, drawn as a legend grid, or both.
type YAMLLevel struct {
	ID         string            `yaml:"id"`
	Name       string            `yaml:"name"`
	Size       YAMLSize          `yaml:"size"`
	Grid       string            `yaml:"grid,omitempty"`
	Placements []YAMLPlacement   `yaml:"placements,omitempty"`
	Metadata   map[string]string `yaml:"metadata,omitempty"`
}

// YAMLSize represents grid dimensions.
type YAMLSize struct {
	Cols int `yaml:"cols"`
	Rows int `yaml:"rows"`
}

// YAMLPlacement represents a single placement in YAML format.
type YAMLPlacement struct {
	Row  int    `yaml:"row"`
	Col  int    `yaml:"col"`
	Kind string `yaml:"kind"`
}

// ParseYAML parses a YAML level file.
func ParseYAML(data []byte) (Level, error) {
	var yl YAMLLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return Level{}, fmt.Errorf("yaml unmarshal: %w", err)
	}

	listed := make([]Placement, len(yl.Placements))
	for i, p := range yl.Placements {
		listed[i] = Placement{Row: p.Row, Col: p.Col, Kind: normalizeKind(p.Kind)}
	}
	return structured(yl.ID, yl.Name, yl.Size.Cols, yl.Size.Rows, yl.Grid, listed, yl.Metadata)
}

// structured merges the shared shape of the YAML and TOML formats.
func structured(id, name string, cols, rows int, grid string, listed []Placement, meta map[string]string) (Level, error) {
	level := Level{
		ID:       id,
		Name:     name,
		Cols:     cols,
		Rows:     rows,
		Metadata: meta,
	}

	if strings.TrimSpace(grid) != "" {
		lines := strings.Split(strings.TrimRight(grid, "\n"), "\n")
		drawn, width, err := parseGrid(lines)
		if err != nil {
			return Level{}, fmt.Errorf("grid: %w", err)
		}
		level.Placements = append(level.Placements, drawn...)
		if level.Cols == 0 {
			level.Cols = width
		}
		if level.Rows == 0 {
			level.Rows = len(lines)
		}
	}

	level.Placements = append(level.Placements, listed...)
	return level, nil
}

func normalizeKind(s string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(s)))
}
