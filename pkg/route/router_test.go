package route

import (
	"bytes"
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lanechart/pkg/geom"
	"github.com/matzehuels/lanechart/pkg/observability"
)

// parsePoints reads "x,y x,y ..." into points.
func parsePoints(t *testing.T, s string) []geom.Point {
	t.Helper()
	var out []geom.Point
	for _, f := range strings.Fields(s) {
		xs, ys, ok := strings.Cut(f, ",")
		if !ok {
			t.Fatalf("bad point %q", f)
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			t.Fatalf("bad x in %q: %v", f, err)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			t.Fatalf("bad y in %q: %v", f, err)
		}
		out = append(out, geom.Pt(x, y))
	}
	return out
}

type countingHooks struct {
	observability.NoopRouteHooks
	mu        sync.Mutex
	started   int
	completed int
	fallbacks int
}

func (h *countingHooks) OnRouteStart(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started++
}

func (h *countingHooks) OnRouteComplete(_ context.Context, _ string, _ int, fallback bool, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completed++
	if fallback {
		h.fallbacks++
	}
}

func TestRouterDetourArrivesHorizontally(t *testing.T) {
	obstacle := geom.R(40, -10, 20, 20)
	r := NewRouter(log.New(&bytes.Buffer{}))

	for _, end := range []geom.Point{geom.Pt(100, 0), geom.Pt(100, 3)} {
		t.Run(end.String(), func(t *testing.T) {
			start := geom.Pt(0, end.Y)
			got := r.Route(context.Background(), Request{
				Start:     start,
				End:       end,
				EndSide:   SideLeft,
				Canvas:    geom.Size{Width: 200, Height: 100},
				Obstacles: []geom.Rect{obstacle},
			})
			pts := got.Points
			if got.Fallback {
				t.Fatalf("unexpected fallback: %v", pts)
			}
			checkEndpoints(t, pts, start, end)
			if n := len(pts); pts[n-2].Y != end.Y {
				t.Errorf("final segment %v -> %v is not horizontal", pts[n-2], pts[n-1])
			}
			if crosses(pts, obstacle) {
				t.Errorf("route %v passes through obstacle", pts)
			}
		})
	}
}

func TestRouterCornerRadius(t *testing.T) {
	req := Request{
		Start:  geom.Pt(0, 0),
		End:    geom.Pt(100, 100),
		Canvas: geom.Size{Width: 200, Height: 200},
	}
	tests := []struct {
		name    string
		radius  float64
		rounded bool
	}{
		{"default", 0, true},
		{"sharp", SharpCorners, false},
		{"custom", 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Router{CornerRadius: tt.radius, Logger: log.New(&bytes.Buffer{})}
			got := r.Route(context.Background(), req)
			if rounded := strings.Contains(got.Path, "Q"); rounded != tt.rounded {
				t.Errorf("Path = %q, rounded = %v, want %v", got.Path, rounded, tt.rounded)
			}
		})
	}
}

func TestRouterFallbackSameColumn(t *testing.T) {
	r := NewRouter(log.New(&bytes.Buffer{}))
	start, end := geom.Pt(50, 10), geom.Pt(50, 60)
	got := r.Route(context.Background(), Request{
		Start:     start,
		End:       end,
		Canvas:    geom.Size{Width: 100, Height: 100},
		Obstacles: []geom.Rect{geom.R(0, 0, 100, 100)},
	})
	if !got.Fallback {
		t.Fatal("expected fallback on a fully blocked canvas")
	}
	pts := got.Points
	if CornerCount(pts) < 3 {
		t.Errorf("fallback %v should go down, across and back", pts)
	}
	if n := len(pts); pts[n-2].Y != end.Y {
		t.Errorf("final segment %v -> %v is not horizontal", pts[n-2], pts[n-1])
	}
}

func TestRouterStraight(t *testing.T) {
	r := NewRouter(log.New(&bytes.Buffer{}))
	got := r.Route(context.Background(), Request{
		ID:     "a-b",
		Start:  geom.Pt(10, 50),
		End:    geom.Pt(150, 50),
		Canvas: geom.Size{Width: 200, Height: 100},
	})

	want := []geom.Point{geom.Pt(10, 50), geom.Pt(150, 50)}
	if !slices.Equal(got.Points, want) {
		t.Errorf("Points = %v, want %v", got.Points, want)
	}
	if got.Path != "M 10 50 L 150 50" {
		t.Errorf("Path = %q", got.Path)
	}
	if got.Fallback {
		t.Error("Fallback = true, want false")
	}
}

func TestRouterApproachesHorizontally(t *testing.T) {
	r := NewRouter(log.New(&bytes.Buffer{}))
	req := Request{
		Start:     geom.Pt(120, 40),
		End:       geom.Pt(300, 160),
		StartSide: SideRight,
		EndSide:   SideLeft,
		Canvas:    geom.Size{Width: 400, Height: 240},
		Obstacles: []geom.Rect{geom.R(180, 20, 100, 40), geom.R(140, 140, 80, 40)},
	}
	got := r.Route(context.Background(), req)

	checkEndpoints(t, got.Points, req.Start, req.End)
	n := len(got.Points)
	if got.Points[n-2].Y != req.End.Y {
		t.Errorf("final segment not horizontal: %v", got.Points)
	}
	for _, o := range req.Obstacles {
		if crosses(got.Points, o) {
			t.Errorf("route %v crosses obstacle %+v", got.Points, o)
		}
	}
	if !strings.HasPrefix(got.Path, "M 120 40") {
		t.Errorf("Path should start at the literal start: %q", got.Path)
	}
}

func TestRouterFallbackLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	r := NewRouter(log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel}))

	hooks := &countingHooks{}
	observability.SetRouteHooks(hooks)
	defer observability.Reset()

	got := r.Route(context.Background(), Request{
		ID:        "blocked",
		Start:     geom.Pt(10, 50),
		End:       geom.Pt(150, 50),
		Canvas:    geom.Size{Width: 200, Height: 100},
		Obstacles: []geom.Rect{geom.R(0, 0, 200, 100)},
	})

	if !got.Fallback {
		t.Fatal("expected fallback")
	}
	want := []geom.Point{geom.Pt(10, 50), geom.Pt(10, 80), geom.Pt(150, 80), geom.Pt(150, 50)}
	if !slices.Equal(got.Points, want) {
		t.Errorf("Points = %v, want %v", got.Points, want)
	}
	if !strings.Contains(buf.String(), "fallback") {
		t.Errorf("expected a fallback warning, log was %q", buf.String())
	}
	if hooks.started != 1 || hooks.completed != 1 || hooks.fallbacks != 1 {
		t.Errorf("hooks = %d started, %d completed, %d fallbacks; want 1, 1, 1",
			hooks.started, hooks.completed, hooks.fallbacks)
	}
}

func TestRouterConcurrent(t *testing.T) {
	r := NewRouter(log.New(&bytes.Buffer{}))
	req := Request{
		Start:     geom.Pt(20, 20),
		End:       geom.Pt(380, 180),
		Canvas:    geom.Size{Width: 400, Height: 200},
		Obstacles: []geom.Rect{geom.R(150, 0, 40, 120)},
	}
	want := r.Route(context.Background(), req)

	var wg sync.WaitGroup
	results := make([]Route, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Route(context.Background(), req)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if got.Path != want.Path {
			t.Errorf("result %d = %q, want %q", i, got.Path, want.Path)
		}
	}
}

func TestRouterZeroValue(t *testing.T) {
	var r Router
	got := r.Route(context.Background(), Request{
		Start:  geom.Pt(0, 0),
		End:    geom.Pt(100, 0),
		Canvas: geom.Size{Width: 200, Height: 50},
	})
	if len(got.Points) != 2 {
		t.Errorf("Points = %v, want a straight two-point route", got.Points)
	}
}
