package route

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/lanechart/pkg/geom"
)

// DefaultCornerRadius is the corner rounding used by [Router] when none is
// configured.
const DefaultCornerRadius = 8.0

// SharpCorners is the corner radius that turns rounding off. A zero radius
// means "use the default" in option structs, so any negative value does too.
const SharpCorners = -1.0

// ToSVGPath converts a rectilinear route into SVG path data.
//
// Every interior point where the route turns by a right angle is rounded
// with a quadratic curve whose radius is the smaller of cornerRadius and half
// of each adjoining segment, so neighbouring corners never overlap. Other
// interior points are joined with straight lines. An empty route yields "".
func ToSVGPath(points []geom.Point, cornerRadius float64) string {
	if len(points) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("M ")
	writePoint(&b, points[0])

	for i := 1; i < len(points)-1; i++ {
		prev, corner, next := points[i-1], points[i], points[i+1]
		in := delta(prev, corner)
		out := delta(corner, next)

		r := min(cornerRadius, in.length()/2, out.length()/2)
		if !rightAngle(in, out) || r <= 0 {
			b.WriteString(" L ")
			writePoint(&b, corner)
			continue
		}

		before := corner.Add(-in.unitX()*r, -in.unitY()*r)
		after := corner.Add(out.unitX()*r, out.unitY()*r)
		b.WriteString(" L ")
		writePoint(&b, before)
		b.WriteString(" Q ")
		writePoint(&b, corner)
		b.WriteByte(' ')
		writePoint(&b, after)
	}

	if len(points) > 1 {
		b.WriteString(" L ")
		writePoint(&b, points[len(points)-1])
	}
	return b.String()
}

// CornerCount returns how many right-angle turns a route has.
func CornerCount(points []geom.Point) int {
	n := 0
	for i := 1; i < len(points)-1; i++ {
		if rightAngle(delta(points[i-1], points[i]), delta(points[i], points[i+1])) {
			n++
		}
	}
	return n
}

type vec struct{ x, y float64 }

func delta(a, b geom.Point) vec { return vec{x: b.X - a.X, y: b.Y - a.Y} }

func (v vec) length() float64 { return math.Abs(v.x) + math.Abs(v.y) }

func (v vec) unitX() float64 { return float64(cmp(v.x, 0)) }

func (v vec) unitY() float64 { return float64(cmp(v.y, 0)) }

func rightAngle(in, out vec) bool {
	horizontalIn := in.y == 0 && in.x != 0
	verticalIn := in.x == 0 && in.y != 0
	horizontalOut := out.y == 0 && out.x != 0
	verticalOut := out.x == 0 && out.y != 0
	return (horizontalIn && verticalOut) || (verticalIn && horizontalOut)
}

func writePoint(b *strings.Builder, p geom.Point) {
	b.WriteString(num(p.X))
	b.WriteByte(' ')
	b.WriteString(num(p.Y))
}

// num formats v with at most two decimals and no trailing zeros.
func num(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
