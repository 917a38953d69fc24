package route

import (
	"slices"
	"testing"

	"github.com/matzehuels/lanechart/pkg/geom"
)

// crosses reports whether any axis-aligned segment of pts passes through
// the interior of r.
func crosses(pts []geom.Point, r geom.Rect) bool {
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		seg := geom.Rect{
			X:      min(a.X, b.X),
			Y:      min(a.Y, b.Y),
			Width:  max(a.X, b.X) - min(a.X, b.X),
			Height: max(a.Y, b.Y) - min(a.Y, b.Y),
		}
		inX := seg.Right() > r.X && seg.X < r.Right()
		inY := seg.Bottom() > r.Y && seg.Y < r.Bottom()
		if seg.Width == 0 {
			inX = seg.X > r.X && seg.X < r.Right()
		}
		if seg.Height == 0 {
			inY = seg.Y > r.Y && seg.Y < r.Bottom()
		}
		if inX && inY {
			return true
		}
	}
	return false
}

func checkEndpoints(t *testing.T, pts []geom.Point, start, end geom.Point) {
	t.Helper()
	if len(pts) < 2 {
		t.Fatalf("route has %d points, want at least 2", len(pts))
	}
	if pts[0] != start {
		t.Errorf("first point = %v, want %v", pts[0], start)
	}
	if pts[len(pts)-1] != end {
		t.Errorf("last point = %v, want %v", pts[len(pts)-1], end)
	}
	if !geom.Rectilinear(pts) {
		t.Errorf("route is not rectilinear: %v", pts)
	}
}

func TestFindPathStraight(t *testing.T) {
	g := BuildGrid(200, 200, 10, nil)
	start, end := geom.Pt(0, 0), geom.Pt(100, 0)

	pts := Simplify(FindPath(g, start, end))
	want := []geom.Point{start, end}
	if !slices.Equal(pts, want) {
		t.Errorf("route = %v, want %v", pts, want)
	}
}

func TestFindPathDetour(t *testing.T) {
	obstacle := geom.R(40, -10, 20, 20)
	g := BuildGrid(200, 200, 10, []geom.Rect{obstacle})
	start, end := geom.Pt(0, 0), geom.Pt(100, 0)

	res := Search(g, start, end)
	if res.Fallback {
		t.Fatal("expected a grid route, got fallback")
	}
	checkEndpoints(t, res.Points, start, end)

	if got := geom.PathLength(res.Points); got <= 100 {
		t.Errorf("detour length = %v, want > 100", got)
	}
	if crosses(res.Points, obstacle) {
		t.Errorf("route %v passes through obstacle %+v", res.Points, obstacle)
	}

	want := []geom.Point{start, geom.Pt(0, 50), geom.Pt(100, 50), end}
	if got := Simplify(res.Points); !slices.Equal(got, want) {
		t.Errorf("simplified route = %v, want %v", got, want)
	}
}

func TestFindPathLiteralEndpoints(t *testing.T) {
	g := BuildGrid(300, 200, 10, []geom.Rect{geom.R(100, 20, 60, 30)})
	start, end := geom.Pt(37, 52), geom.Pt(243, 128)

	pts := FindPath(g, start, end)
	checkEndpoints(t, pts, start, end)
}

func TestFindPathProbesBlockedStart(t *testing.T) {
	g := BuildGrid(200, 200, 10, []geom.Rect{geom.R(0, 0, 20, 20)})
	start, end := geom.Pt(10, 10), geom.Pt(150, 10)

	if !g.Blocked(g.Snap(start)) {
		t.Fatal("test setup: start cell should be blocked")
	}
	res := Search(g, start, end)
	if res.Fallback {
		t.Fatal("probing should find a free start cell")
	}
	checkEndpoints(t, res.Points, start, end)
}

func TestSearchFullyBlocked(t *testing.T) {
	g := BuildGrid(200, 100, 10, []geom.Rect{geom.R(0, 0, 200, 100)})
	start, end := geom.Pt(10, 20), geom.Pt(150, 60)

	res := Search(g, start, end)
	if !res.Fallback {
		t.Fatal("expected fallback on a fully blocked grid")
	}
	want := []geom.Point{start, geom.Pt(10, 90), geom.Pt(150, 90), end}
	if !slices.Equal(res.Points, want) {
		t.Errorf("fallback = %v, want %v", res.Points, want)
	}
}

func TestSearchExpansionCap(t *testing.T) {
	// Goal enclosed by four walls in a large open canvas: the search floods
	// the outside until it hits the cap.
	walls := []geom.Rect{
		geom.R(800, 800, 400, 0),
		geom.R(800, 1200, 400, 0),
		geom.R(800, 800, 0, 400),
		geom.R(1200, 800, 0, 400),
	}
	g := BuildGrid(2000, 2000, 10, walls)
	start, end := geom.Pt(100, 100), geom.Pt(1000, 1000)

	res := Search(g, start, end)
	if !res.Fallback {
		t.Fatal("expected fallback for an enclosed goal")
	}
	if res.Expansions > MaxExpansions {
		t.Errorf("Expansions = %d, want <= %d", res.Expansions, MaxExpansions)
	}
	if !slices.Equal(res.Points, Fallback(start, end)) {
		t.Errorf("Points = %v, want fallback route", res.Points)
	}
}

func TestSearchDeterministic(t *testing.T) {
	obstacles := []geom.Rect{geom.R(60, 0, 20, 80), geom.R(120, 60, 20, 120)}
	g := BuildGrid(240, 200, 10, obstacles)
	start, end := geom.Pt(10, 40), geom.Pt(220, 100)

	a := Search(g, start, end)
	b := Search(g, start, end)
	if !slices.Equal(a.Points, b.Points) {
		t.Errorf("routes differ between runs:\n%v\n%v", a.Points, b.Points)
	}
	if geom.PathLength(a.Points) != geom.PathLength(b.Points) {
		t.Error("route lengths differ between runs")
	}
}

func TestSearchObstacleNeverShortens(t *testing.T) {
	start, end := geom.Pt(10, 100), geom.Pt(290, 100)
	open := Search(BuildGrid(300, 300, 10, nil), start, end)
	blocked := Search(BuildGrid(300, 300, 10, []geom.Rect{geom.R(140, 60, 20, 80)}), start, end)

	if geom.PathLength(blocked.Points) < geom.PathLength(open.Points) {
		t.Errorf("obstacle shortened the route: %v < %v",
			geom.PathLength(blocked.Points), geom.PathLength(open.Points))
	}
}

func TestSearchPrefersFewerTurns(t *testing.T) {
	g := BuildGrid(200, 200, 10, nil)
	start, end := geom.Pt(0, 0), geom.Pt(100, 100)

	pts := Simplify(FindPath(g, start, end))
	if n := CornerCount(pts); n != 1 {
		t.Errorf("CornerCount() = %d, want 1 for an open L route: %v", n, pts)
	}
}

func TestFallback(t *testing.T) {
	tests := []struct {
		name       string
		start, end geom.Point
		want       []geom.Point
	}{
		{
			name:  "start lower",
			start: geom.Pt(0, 50),
			end:   geom.Pt(100, 10),
			want:  []geom.Point{geom.Pt(0, 50), geom.Pt(0, 80), geom.Pt(100, 80), geom.Pt(100, 10)},
		},
		{
			name:  "end lower",
			start: geom.Pt(0, 10),
			end:   geom.Pt(100, 60),
			want:  []geom.Point{geom.Pt(0, 10), geom.Pt(0, 90), geom.Pt(100, 90), geom.Pt(100, 60)},
		},
		{
			name:  "same column",
			start: geom.Pt(40, 10),
			end:   geom.Pt(40, 60),
			want:  []geom.Point{geom.Pt(40, 10), geom.Pt(40, 90), geom.Pt(70, 90), geom.Pt(70, 60), geom.Pt(40, 60)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fallback(tt.start, tt.end); !slices.Equal(got, tt.want) {
				t.Errorf("Fallback() = %v, want %v", got, tt.want)
			}
		})
	}
}
