package world

import (
	"math"

	"github.com/fragd/server/internal/core/arena"
)

// Grid is a cell-based spatial index over object origins (x/y only).
// Queries expand by Slack so objects whose boxes cross a cell border are not
// missed; callers do fine-grained filtering.
// Accessed only from the tick goroutine, so there are no locks.
type Grid struct {
	cellSize float64
	slack    float64
	cells    map[cellKey]map[arena.Handle]struct{}
	where    map[arena.Handle]cellKey
}

type cellKey struct {
	cx int32
	cy int32
}

func NewGrid(cellSize, slack float64) *Grid {
	if cellSize <= 0 {
		cellSize = 256
	}
	return &Grid{
		cellSize: cellSize,
		slack:    slack,
		cells:    make(map[cellKey]map[arena.Handle]struct{}),
		where:    make(map[arena.Handle]cellKey),
	}
}

func (g *Grid) coord(v float64) int32 {
	return int32(math.Floor(v / g.cellSize))
}

func (g *Grid) key(p Vec3) cellKey {
	return cellKey{cx: g.coord(p[0]), cy: g.coord(p[1])}
}

// Link places h at p, moving it if it is already linked elsewhere.
func (g *Grid) Link(h arena.Handle, p Vec3) {
	k := g.key(p)
	if old, ok := g.where[h]; ok {
		if old == k {
			return
		}
		g.remove(h, old)
	}
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[arena.Handle]struct{})
		g.cells[k] = cell
	}
	cell[h] = struct{}{}
	g.where[h] = k
}

// Unlink takes h out of the grid. Implements arena.Unlinker.
func (g *Grid) Unlink(h arena.Handle) {
	if k, ok := g.where[h]; ok {
		g.remove(h, k)
	}
}

func (g *Grid) remove(h arena.Handle, k cellKey) {
	delete(g.where, h)
	cell := g.cells[k]
	if cell != nil {
		delete(cell, h)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Linked reports whether h is in the grid.
func (g *Grid) Linked(h arena.Handle) bool {
	_, ok := g.where[h]
	return ok
}

// Query returns every handle linked in a cell overlapping [mins, maxs]
// grown by the slack.
func (g *Grid) Query(mins, maxs Vec3) []arena.Handle {
	x0, x1 := g.coord(mins[0]-g.slack), g.coord(maxs[0]+g.slack)
	y0, y1 := g.coord(mins[1]-g.slack), g.coord(maxs[1]+g.slack)
	var result []arena.Handle
	for cx := x0; cx <= x1; cx++ {
		for cy := y0; cy <= y1; cy++ {
			for h := range g.cells[cellKey{cx: cx, cy: cy}] {
				result = append(result, h)
			}
		}
	}
	return result
}
