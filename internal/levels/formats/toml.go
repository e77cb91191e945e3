package formats

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// TOMLLevel mirrors YAMLLevel; placements are written as [[placements]]
// tables.
type TOMLLevel struct {
	ID         string            `toml:"id"`
	Name       string            `toml:"name"`
	Size       TOMLSize          `toml:"size"`
	Grid       string            `toml:"grid"`
	Placements []TOMLPlacement   `toml:"placements"`
	Metadata   map[string]string `toml:"metadata"`
}

// TOMLSize represents grid dimensions.
type TOMLSize struct {
	Cols int `toml:"cols"`
	Rows int `toml:"rows"`
}

// TOMLPlacement represents a single placement in TOML format.
type TOMLPlacement struct {
	Row  int    `toml:"row"`
	Col  int    `toml:"col"`
	Kind string `toml:"kind"`
}

// ParseTOML parses a TOML level file.
func ParseTOML(data []byte) (Level, error) {
	var tl TOMLLevel
	md, err := toml.Decode(string(data), &tl)
	if err != nil {
		return Level{}, fmt.Errorf("toml decode: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Level{}, fmt.Errorf("toml: unknown keys %v", undecoded)
	}

	listed := make([]Placement, len(tl.Placements))
	for i, p := range tl.Placements {
		listed[i] = Placement{Row: p.Row, Col: p.Col, Kind: normalizeKind(p.Kind)}
	}
	return structured(tl.ID, tl.Name, tl.Size.Cols, tl.Size.Rows, tl.Grid, listed, tl.Metadata)
}
