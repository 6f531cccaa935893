package spatial

import (
	"sort"

	"github.com/paulmach/orb"
)

// cellGrid is a uniform grid over a fixed bound mapping cells to the ids of
// items whose bounding box touches them. It is built once per snapshot and
// read-only afterwards.
type cellGrid struct {
	bound      orb.Bound
	cellWidth  float64
	cellHeight float64
	cols       int
	rows       int
	cells      [][]int
}

func newCellGrid(bound orb.Bound, cols, rows int) *cellGrid {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	g := &cellGrid{
		bound: bound,
		cols:  cols,
		rows:  rows,
		cells: make([][]int, cols*rows),
	}
	g.cellWidth = (bound.Max[0] - bound.Min[0]) / float64(cols)
	g.cellHeight = (bound.Max[1] - bound.Min[1]) / float64(rows)
	// degenerate bounds (single node datasets) collapse to one cell
	if g.cellWidth <= 0 {
		g.cellWidth = 1
	}
	if g.cellHeight <= 0 {
		g.cellHeight = 1
	}
	return g
}

func (g *cellGrid) insert(b orb.Bound, id int) {
	minCol, minRow := g.cell(b.Min)
	maxCol, maxRow := g.cell(b.Max)
	for c := minCol; c <= maxCol; c++ {
		for r := minRow; r <= maxRow; r++ {
			idx := r*g.cols + c
			g.cells[idx] = append(g.cells[idx], id)
		}
	}
}

// query returns the ids of all items whose bounding box may intersect b,
// deduplicated and sorted for deterministic iteration.
func (g *cellGrid) query(b orb.Bound) []int {
	minCol, minRow := g.cell(b.Min)
	maxCol, maxRow := g.cell(b.Max)

	seen := make(map[int]struct{})
	var ids []int
	for c := minCol; c <= maxCol; c++ {
		for r := minRow; r <= maxRow; r++ {
			for _, id := range g.cells[r*g.cols+c] {
				if _, ok := seen[id]; !ok {
					seen[id] = struct{}{}
					ids = append(ids, id)
				}
			}
		}
	}
	sort.Ints(ids)
	return ids
}

func (g *cellGrid) cell(p orb.Point) (col, row int) {
	col = g.clamp(int((p[0]-g.bound.Min[0])/g.cellWidth), g.cols)
	row = g.clamp(int((p[1]-g.bound.Min[1])/g.cellHeight), g.rows)
	return col, row
}

func (g *cellGrid) clamp(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v >= limit {
		return limit - 1
	}
	return v
}
