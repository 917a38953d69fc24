package route

import "github.com/matzehuels/lanechart/pkg/geom"

// ApproachStub is the length of the horizontal lead-in added when a route
// would otherwise arrive vertically on top of its end point.
const ApproachStub = 20.0

// Side tells which edge of its bar a route endpoint sits on.
type Side int

const (
	// SideLeft is the leading edge of a bar.
	SideLeft Side = iota
	// SideRight is the trailing edge of a bar.
	SideRight
)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// sign is the x direction pointing away from the bar.
func (s Side) sign() float64 {
	if s == SideRight {
		return 1
	}
	return -1
}

type heading struct{ dx, dy int }

func headingOf(a, b geom.Point) heading {
	return heading{dx: cmp(b.X, a.X), dy: cmp(b.Y, a.Y)}
}

func cmp(a, b float64) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}

// Simplify drops every interior point whose incoming and outgoing headings
// are the same, along with interior points that repeat their predecessor.
// The endpoints are always kept and the result is never longer than points.
func Simplify(points []geom.Point) []geom.Point {
	if len(points) <= 2 {
		return append([]geom.Point(nil), points...)
	}
	out := make([]geom.Point, 0, len(points))
	out = append(out, points[0])
	for i := 1; i < len(points)-1; i++ {
		prev, cur, next := out[len(out)-1], points[i], points[i+1]
		if cur == prev {
			continue
		}
		if headingOf(prev, cur) == headingOf(cur, next) {
			continue
		}
		out = append(out, cur)
	}
	return append(out, points[len(points)-1])
}

// EnsureHorizontalApproach makes the last segment of a route horizontal.
//
// Routes already arriving horizontally are returned unchanged. Otherwise the
// point
// (secondToLast.X, end.Y) is inserted before the end. When the last segment
// is vertical and directly above or below the end, the final leg is moved
// ApproachStub pixels out on side so there is room for the horizontal entry.
func EnsureHorizontalApproach(points []geom.Point, side Side) []geom.Point {
	n := len(points)
	if n < 2 {
		return points
	}
	end, prev := points[n-1], points[n-2]
	if prev.Y == end.Y {
		return points
	}

	out := make([]geom.Point, 0, n+2)
	if prev.X != end.X {
		out = append(out, points[:n-1]...)
		return append(out, geom.Point{X: prev.X, Y: end.Y}, end)
	}

	x := end.X + side.sign()*ApproachStub
	keep := n - 1
	if n >= 3 && points[n-3].Y == prev.Y {
		// Arrived at prev horizontally: slide the vertical leg instead of
		// doubling back along the same line.
		keep = n - 2
	}
	out = append(out, points[:keep]...)
	if out[len(out)-1].X != x {
		out = append(out, geom.Point{X: x, Y: prev.Y})
	}
	return append(out, geom.Point{X: x, Y: end.Y}, end)
}
