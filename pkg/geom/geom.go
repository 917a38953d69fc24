// Package geom defines the small value types shared by the layout, routing and
// rendering packages: points, rectangles and canvas sizes in screen pixels.
//
// All types are plain values. Nothing in this package allocates or holds
// state, so values can be copied freely between goroutines.
package geom

import (
	"fmt"
	"math"
)

// Point is a position on the canvas in pixels.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// String formats the point as "(x, y)".
func (p Point) String() string { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// R builds a Rect, clamping negative sizes to zero.
func R(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, Width: math.Max(w, 0), Height: math.Max(h, 0)}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// CenterY returns the vertical midpoint.
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point { return Point{X: r.X + r.Width/2, Y: r.CenterY()} }

// LeftMid returns the midpoint of the left edge.
func (r Rect) LeftMid() Point { return Point{X: r.X, Y: r.CenterY()} }

// RightMid returns the midpoint of the right edge.
func (r Rect) RightMid() Point { return Point{X: r.Right(), Y: r.CenterY()} }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Intersects reports whether r and o overlap with positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Size is the extent of a canvas.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Bounds returns the smallest rectangle containing all rects, or the zero
// Rect when rects is empty.
func Bounds(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, r := range rects {
		minX = math.Min(minX, r.X)
		minY = math.Min(minY, r.Y)
		maxX = math.Max(maxX, r.Right())
		maxY = math.Max(maxY, r.Bottom())
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// PathLength returns the summed Manhattan length of consecutive segments.
func PathLength(points []Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += math.Abs(points[i].X-points[i-1].X) + math.Abs(points[i].Y-points[i-1].Y)
	}
	return total
}

// Rectilinear reports whether every consecutive pair of points differs in
// exactly one axis.
func Rectilinear(points []Point) bool {
	for i := 1; i < len(points); i++ {
		sameX := points[i].X == points[i-1].X
		sameY := points[i].Y == points[i-1].Y
		if sameX == sameY {
			return false
		}
	}
	return true
}
