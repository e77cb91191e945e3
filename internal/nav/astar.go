// Package nav implements A* search over a 4-connected tile grid.
package nav

import (
	"container/heap"

	"github.com/vovakirdan/tile-herder/internal/core"
	"github.com/vovakirdan/tile-herder/internal/spatial"
)

// DefaultBudget caps the number of nodes expanded by one search.
const DefaultBudget = 4096

// Grid is the topology a search runs over.
type Grid interface {
	InBounds(t spatial.Tile) bool
	Blocked(t spatial.Tile) bool
}

type pathNode struct {
	tile   spatial.Tile
	g, h   int
	seq    int
	parent *pathNode
	index  int // heap index
}

type openList []*pathNode

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	fi, fj := ol[i].g+ol[i].h, ol[j].g+ol[j].h
	if fi != fj {
		return fi < fj
	}
	if ol[i].h != ol[j].h {
		return ol[i].h < ol[j].h
	}
	return ol[i].seq < ol[j].seq
}
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

// north, east, south, west
var dirs = [4][2]int{{-1, 0}, {0, 1}, {1, 0}, {0, -1}}

func manhattan(a, b spatial.Tile) int {
	return core.Abs(a.Row-b.Row) + core.Abs(a.Col-b.Col)
}

// FindPath searches from start to goal, expanding at most budget nodes
// (DefaultBudget when budget <= 0). The start tile is never tested for
// blocking. The returned path includes both ends.
//
// When the goal is reached the path ends at goal and reached is true. When
// the budget runs out first, the path leads to the expanded tile closest to
// the goal and reached is false. A blocked or out-of-grid goal yields no path.
func FindPath(g Grid, start, goal spatial.Tile, budget int) (path []spatial.Tile, reached bool) {
	if !g.InBounds(start) || !g.InBounds(goal) || g.Blocked(goal) {
		return nil, false
	}
	if budget <= 0 {
		budget = DefaultBudget
	}

	seq := 0
	startNode := &pathNode{tile: start, h: manhattan(start, goal)}
	ol := &openList{startNode}
	heap.Init(ol)

	closed := make(map[spatial.Tile]bool)
	best := map[spatial.Tile]*pathNode{start: startNode}
	closest := startNode

	expanded := 0
	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		if cur.tile == goal {
			return buildPath(cur), true
		}
		if closed[cur.tile] {
			continue
		}
		closed[cur.tile] = true
		if cur.h < closest.h {
			closest = cur
		}

		expanded++
		if expanded >= budget {
			break
		}

		for _, d := range dirs {
			next := spatial.Tile{Row: cur.tile.Row + d[0], Col: cur.tile.Col + d[1]}
			if !g.InBounds(next) || g.Blocked(next) || closed[next] {
				continue
			}
			ng := cur.g + 1
			if prev, ok := best[next]; ok && ng >= prev.g {
				continue
			}
			seq++
			node := &pathNode{tile: next, g: ng, h: manhattan(next, goal), seq: seq, parent: cur}
			best[next] = node
			heap.Push(ol, node)
		}
	}

	if closest == startNode {
		return nil, false
	}
	return buildPath(closest), false
}

func buildPath(end *pathNode) []spatial.Tile {
	var tiles []spatial.Tile
	for n := end; n != nil; n = n.parent {
		tiles = append(tiles, n.tile)
	}
	for i, j := 0, len(tiles)-1; i < j; i, j = i+1, j-1 {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	}
	return tiles
}
