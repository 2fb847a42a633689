package sim

import (
	"fmt"
	"math"
)

// Grid is a uniform spatial hash over a rectangular world. Items are
// identified by index, so one grid can serve any particle slice.
//
// Query cost scales with the number of items in the cells overlapping the
// query radius, not with the total population.
type Grid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int
}

// NewGrid creates a grid covering width x height with square cells.
// cellSize should be close to the typical query radius.
func NewGrid(width, height, cellSize float64) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid size must be > 0: %gx%g", width, height)
	}
	if cellSize <= 0 || math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
		return nil, fmt.Errorf("grid cell size must be positive and finite: %g", cellSize)
	}
	cols := int(math.Ceil(width/cellSize)) + 1
	rows := int(math.Ceil(height/cellSize)) + 1
	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 4)
	}
	return &Grid{cellSize: cellSize, cols: cols, rows: rows, cells: cells}, nil
}

func (g *Grid) cellCoord(v float64, n int) int {
	c := int(math.Floor(v / g.cellSize))
	if c < 0 {
		return 0
	}
	if c >= n {
		return n - 1
	}
	return c
}

// Clear empties every cell, keeping capacity. Call once per frame before
// re-inserting.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds item i at pos. Positions outside the world clamp to the
// border cells.
func (g *Grid) Insert(i int, pos Vec2) {
	cx := g.cellCoord(pos[0], g.cols)
	cy := g.cellCoord(pos[1], g.rows)
	idx := cy*g.cols + cx
	g.cells[idx] = append(g.cells[idx], i)
}

// Query appends to dst the items in every cell overlapping the circle of
// radius around pos and returns the extended slice. Results are candidates:
// callers filter by exact distance.
func (g *Grid) Query(pos Vec2, radius float64, dst []int) []int {
	x0 := g.cellCoord(pos[0]-radius, g.cols)
	x1 := g.cellCoord(pos[0]+radius, g.cols)
	y0 := g.cellCoord(pos[1]-radius, g.rows)
	y1 := g.cellCoord(pos[1]+radius, g.rows)
	for cy := y0; cy <= y1; cy++ {
		row := cy * g.cols
		for cx := x0; cx <= x1; cx++ {
			dst = append(dst, g.cells[row+cx]...)
		}
	}
	return dst
}
