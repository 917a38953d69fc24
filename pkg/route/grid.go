package route

import (
	"math"
	"strings"

	"github.com/matzehuels/lanechart/pkg/geom"
)

const (
	// DefaultCellSize is the grid resolution in pixels.
	DefaultCellSize = 10.0

	// PadX is the number of cells added left and right of every obstacle.
	PadX = 2

	// PadY is the number of cells added above and below every obstacle.
	PadY = 3
)

// Cell addresses one grid cell by column and row.
type Cell struct {
	Col, Row int
}

// Grid is an occupancy grid over the canvas. Cell (c, r) corresponds to the
// grid point (c*CellSize, r*CellSize).
type Grid struct {
	Cols     int
	Rows     int
	CellSize float64
	blocked  []bool
}

// BuildGrid rasterizes obstacles into a fresh grid covering a width×height
// canvas. Obstacles are padded by PadX/PadY cells and clamped to the grid.
func BuildGrid(width, height, cellSize float64, obstacles []geom.Rect) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	cols := max(int(math.Ceil(width/cellSize)), 1)
	rows := max(int(math.Ceil(height/cellSize)), 1)

	g := &Grid{
		Cols:     cols,
		Rows:     rows,
		CellSize: cellSize,
		blocked:  make([]bool, cols*rows),
	}
	for _, o := range obstacles {
		g.block(o)
	}
	return g
}

func (g *Grid) block(o geom.Rect) {
	c0 := int(math.Floor(o.X/g.CellSize)) - PadX
	c1 := int(math.Ceil((o.X+o.Width)/g.CellSize)) + PadX
	r0 := int(math.Floor(o.Y/g.CellSize)) - PadY
	r1 := int(math.Ceil((o.Y+o.Height)/g.CellSize)) + PadY

	c0, c1 = max(c0, 0), min(c1, g.Cols-1)
	r0, r1 = max(r0, 0), min(r1, g.Rows-1)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			g.blocked[r*g.Cols+c] = true
		}
	}
}

// InBounds reports whether c lies on the grid.
func (g *Grid) InBounds(c Cell) bool {
	return c.Col >= 0 && c.Col < g.Cols && c.Row >= 0 && c.Row < g.Rows
}

// Blocked reports whether c is occupied. Cells outside the grid count as
// blocked.
func (g *Grid) Blocked(c Cell) bool {
	if !g.InBounds(c) {
		return true
	}
	return g.blocked[c.Row*g.Cols+c.Col]
}

// BlockedCount returns the number of occupied cells.
func (g *Grid) BlockedCount() int {
	n := 0
	for _, b := range g.blocked {
		if b {
			n++
		}
	}
	return n
}

// Snap returns the grid cell nearest to p, clamped to the grid.
func (g *Grid) Snap(p geom.Point) Cell {
	c := int(math.Round(p.X / g.CellSize))
	r := int(math.Round(p.Y / g.CellSize))
	return Cell{
		Col: min(max(c, 0), g.Cols-1),
		Row: min(max(r, 0), g.Rows-1),
	}
}

// Point returns the canvas position of c.
func (g *Grid) Point(c Cell) geom.Point {
	return geom.Point{X: float64(c.Col) * g.CellSize, Y: float64(c.Row) * g.CellSize}
}

// String draws the grid with '#' for blocked and '.' for free cells, one row
// per line.
func (g *Grid) String() string {
	var b strings.Builder
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if g.blocked[r*g.Cols+c] {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
