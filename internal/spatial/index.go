// Package spatial provides the tile-grid occupancy index used for every
// proximity query in the simulation.
//
// The grid is built once per level from the tile-center points of a
// cols x rows grid. Each layer is an independent occupancy array over the
// same tile set; a slot holds at most one occupant id, 0 meaning empty.
package spatial

import (
	"fmt"
	"math"
	"sort"

	"github.com/vovakirdan/tile-herder/internal/core"
)

// Layer is an occupancy plane over the tile grid.
type Layer int

// Occupancy layers.
const (
	LayerWorld Layer = iota // walls and other collision geometry
	LayerPlayer
	LayerNPC
	LayerItem

	NumLayers
)

var layerNames = [...]string{"world", "player", "npc", "item"}

// String returns the layer name.
func (l Layer) String() string {
	if l < 0 || l >= NumLayers {
		return fmt.Sprintf("layer(%d)", int(l))
	}
	return layerNames[l]
}

// AllLayers lists every layer in ascending order.
var AllLayers = []Layer{LayerWorld, LayerPlayer, LayerNPC, LayerItem}

// Unbounded disables the distance bound of a Nearest query.
var Unbounded = math.Inf(1)

// Tile is a grid cell addressed by row and column.
type Tile struct {
	Row, Col int
}

// String returns "row,col".
func (t Tile) String() string {
	return fmt.Sprintf("%d,%d", t.Row, t.Col)
}

// Hit is one occupied slot returned by Nearest.
type Hit struct {
	Tile     Tile
	Layer    Layer
	ID       uint64
	Distance float64 // from the query point to the tile center
}

// CoverageError reports a pixel position outside the grid.
// The grid exactly covers the play area, so this is a programmer error and
// is raised with panic.
type CoverageError struct {
	X, Y          float64
	Width, Height float64
}

func (e *CoverageError) Error() string {
	return fmt.Sprintf("spatial: pixel (%g,%g) outside grid coverage %gx%g", e.X, e.Y, e.Width, e.Height)
}

type slot struct {
	layer Layer
	index int
}

// Index is the tile-center occupancy index.
type Index struct {
	cols, rows int
	tileSize   float64
	occupancy  [NumLayers][]uint64
	slots      map[uint64][]slot
}

// New builds an index for a cols x rows grid of square tiles.
func New(cols, rows int, tileSize float64) (*Index, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("spatial: invalid grid size %dx%d", cols, rows)
	}
	if tileSize <= 0 {
		return nil, fmt.Errorf("spatial: invalid tile size %g", tileSize)
	}

	idx := &Index{
		cols:     cols,
		rows:     rows,
		tileSize: tileSize,
		slots:    make(map[uint64][]slot),
	}
	for l := range idx.occupancy {
		idx.occupancy[l] = make([]uint64, cols*rows)
	}
	return idx, nil
}

// Cols returns the number of grid columns.
func (g *Index) Cols() int { return g.cols }

// Rows returns the number of grid rows.
func (g *Index) Rows() int { return g.rows }

// TileSize returns the tile edge length in pixels.
func (g *Index) TileSize() float64 { return g.tileSize }

// Bounds returns the pixel rectangle covered by the grid.
func (g *Index) Bounds() core.Rect {
	return core.NewRect(0, 0, float64(g.cols)*g.tileSize, float64(g.rows)*g.tileSize)
}

// Contains reports whether (x, y) lies within the grid coverage.
func (g *Index) Contains(x, y float64) bool {
	return g.Bounds().Contains(x, y)
}

// InBounds reports whether t addresses a tile of this grid.
func (g *Index) InBounds(t Tile) bool {
	return t.Row >= 0 && t.Row < g.rows && t.Col >= 0 && t.Col < g.cols
}

func (g *Index) mustContain(x, y float64) {
	if !g.Contains(x, y) {
		b := g.Bounds()
		panic(&CoverageError{X: x, Y: y, Width: b.W, Height: b.H})
	}
}

// TileForPixel returns the tile whose center is nearest to (x, y).
func (g *Index) TileForPixel(x, y float64) Tile {
	g.mustContain(x, y)
	return Tile{
		Row: core.Clamp(int(math.Floor(y/g.tileSize)), 0, g.rows-1),
		Col: core.Clamp(int(math.Floor(x/g.tileSize)), 0, g.cols-1),
	}
}

// TileCenterForPixel snaps (x, y) to the center of its nearest tile.
func (g *Index) TileCenterForPixel(x, y float64) core.Point {
	t := g.TileForPixel(x, y)
	return g.PixelCenterForTile(t.Row, t.Col)
}

// PixelCenterForTile returns the pixel center of the tile at (row, col).
func (g *Index) PixelCenterForTile(row, col int) core.Point {
	half := g.tileSize / 2
	return core.Pt(float64(col)*g.tileSize+half, float64(row)*g.tileSize+half)
}

func (g *Index) index(t Tile) int {
	return t.Row*g.cols + t.Col
}

func (g *Index) tileAt(i int) Tile {
	return Tile{Row: i / g.cols, Col: i % g.cols}
}

// Insert writes id into the slot nearest to (x, y) on layer and returns the
// id it replaced (0 if the slot was empty).
func (g *Index) Insert(id uint64, x, y float64, layer Layer) uint64 {
	i := g.index(g.TileForPixel(x, y))
	prev := g.occupancy[layer][i]
	if prev == id {
		return prev
	}
	g.occupancy[layer][i] = id
	if id != 0 {
		g.slots[id] = append(g.slots[id], slot{layer: layer, index: i})
	}
	return prev
}

// Remove clears every slot holding id on every layer.
func (g *Index) Remove(id uint64) {
	if id == 0 {
		return
	}
	for _, s := range g.slots[id] {
		if g.occupancy[s.layer][s.index] == id {
			g.occupancy[s.layer][s.index] = 0
		}
	}
	delete(g.slots, id)
}

// At returns the occupant of the slot nearest to (x, y) on layer.
func (g *Index) At(x, y float64, layer Layer) uint64 {
	return g.occupancy[layer][g.index(g.TileForPixel(x, y))]
}

// OccupantAt returns the occupant of tile t on layer, or 0 when t is empty or
// outside the grid.
func (g *Index) OccupantAt(t Tile, layer Layer) uint64 {
	if !g.InBounds(t) {
		return 0
	}
	return g.occupancy[layer][g.index(t)]
}

// Nearest returns the occupants of the k tiles nearest to (x, y) whose
// centers lie within maxDist, in ascending distance. Equal distances keep
// row-major tile order, and occupants of one tile are listed by layer.
// Empty slots are omitted. With no layers given every layer is searched.
func (g *Index) Nearest(x, y float64, k int, maxDist float64, layers ...Layer) []Hit {
	g.mustContain(x, y)
	if k <= 0 {
		return nil
	}
	if len(layers) == 0 {
		layers = AllLayers
	}

	minCol, maxCol, minRow, maxRow := 0, g.cols-1, 0, g.rows-1
	if !math.IsInf(maxDist, 1) {
		minCol = core.Clamp(int(math.Floor((x-maxDist)/g.tileSize)), 0, g.cols-1)
		maxCol = core.Clamp(int(math.Floor((x+maxDist)/g.tileSize)), 0, g.cols-1)
		minRow = core.Clamp(int(math.Floor((y-maxDist)/g.tileSize)), 0, g.rows-1)
		maxRow = core.Clamp(int(math.Floor((y+maxDist)/g.tileSize)), 0, g.rows-1)
	}

	type candidate struct {
		index int
		dist  float64
	}
	candidates := make([]candidate, 0, (maxCol-minCol+1)*(maxRow-minRow+1))
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			c := g.PixelCenterForTile(row, col)
			d := math.Hypot(c.X-x, c.Y-y)
			if d > maxDist {
				continue
			}
			candidates = append(candidates, candidate{index: row*g.cols + col, dist: d})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].index < candidates[j].index
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	var hits []Hit
	for _, c := range candidates {
		for _, l := range layers {
			id := g.occupancy[l][c.index]
			if id == 0 {
				continue
			}
			hits = append(hits, Hit{Tile: g.tileAt(c.index), Layer: l, ID: id, Distance: c.dist})
		}
	}
	return hits
}
