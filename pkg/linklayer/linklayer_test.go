package linklayer

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lanechart/pkg/chart"
	"github.com/matzehuels/lanechart/pkg/geom"
	"github.com/matzehuels/lanechart/pkg/observability"
)

// bars is a fixed Positions provider keyed by item id.
type bars map[string]struct {
	lane string
	rect geom.Rect
}

func (b bars) add(item, lane string, r geom.Rect) bars {
	b[item] = struct {
		lane string
		rect geom.Rect
	}{lane, r}
	return b
}

func (b bars) ScreenRect(swimlaneID, itemID string) (geom.Rect, bool) {
	e, ok := b[itemID]
	if !ok || e.lane != swimlaneID {
		return geom.Rect{}, false
	}
	return e.rect, true
}

func (b bars) Obstacles() []Obstacle {
	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]Obstacle, len(ids))
	for i, id := range ids {
		out[i] = Obstacle{ItemID: id, Rect: b[id].rect}
	}
	return out
}

type recordingHooks struct {
	observability.NoopRouteHooks
	mu        sync.Mutex
	obstacles map[string]int
	skipped   map[string]string
}

func newRecordingHooks(t *testing.T) *recordingHooks {
	h := &recordingHooks{obstacles: map[string]int{}, skipped: map[string]string{}}
	observability.SetRouteHooks(h)
	t.Cleanup(observability.Reset)
	return h
}

func (h *recordingHooks) OnRouteStart(_ context.Context, id string, n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.obstacles[id] = n
}

func (h *recordingHooks) OnLinkSkipped(_ context.Context, id, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.skipped[id] = reason
}

func quietLayer() (*Layer, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	return New(logger), &buf
}

var canvas = geom.Size{Width: 400, Height: 200}

func link(id, from, fromLane, to, toLane string) chart.Link {
	return chart.Link{ID: id, FromID: from, FromSwimlaneID: fromLane, ToID: to, ToSwimlaneID: toLane}
}

func TestResolveStraight(t *testing.T) {
	pos := bars{}.
		add("a", "l1", geom.R(0, 20, 50, 20)).
		add("b", "l1", geom.R(150, 20, 50, 20))
	layer, _ := quietLayer()

	got := layer.Resolve(context.Background(), []chart.Link{link("ab", "a", "l1", "b", "l1")}, pos, canvas, Options{})
	if len(got) != 1 {
		t.Fatalf("routed %d links, want 1", len(got))
	}
	want := []geom.Point{geom.Pt(50, 30), geom.Pt(150, 30)}
	if !slices.Equal(got[0].Points, want) {
		t.Errorf("Points = %v, want %v", got[0].Points, want)
	}
	if got[0].Path != "M 50 30 L 150 30" {
		t.Errorf("Path = %q", got[0].Path)
	}
	if got[0].Selected || got[0].Fallback {
		t.Errorf("Selected=%v Fallback=%v, want false/false", got[0].Selected, got[0].Fallback)
	}
}

func TestResolveHandles(t *testing.T) {
	pos := bars{}.
		add("a", "l1", geom.R(100, 20, 50, 20)).
		add("b", "l2", geom.R(200, 100, 50, 20))
	layer, _ := quietLayer()

	tests := []struct {
		name       string
		from, to   chart.Handle
		start, end geom.Point
	}{
		{"finish to start", chart.HandleFinish, chart.HandleStart, geom.Pt(150, 30), geom.Pt(200, 110)},
		{"start to start", chart.HandleStart, chart.HandleStart, geom.Pt(100, 30), geom.Pt(200, 110)},
		{"finish to finish", chart.HandleFinish, chart.HandleFinish, geom.Pt(150, 30), geom.Pt(250, 110)},
		{"start to finish", chart.HandleStart, chart.HandleFinish, geom.Pt(100, 30), geom.Pt(250, 110)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := link("ab", "a", "l1", "b", "l2")
			l.FromHandle, l.ToHandle = tt.from, tt.to
			r, ok := layer.ResolveOne(context.Background(), l, pos, canvas, Options{})
			if !ok {
				t.Fatal("link skipped")
			}
			pts := r.Points
			if pts[0] != tt.start || pts[len(pts)-1] != tt.end {
				t.Errorf("endpoints = %v..%v, want %v..%v", pts[0], pts[len(pts)-1], tt.start, tt.end)
			}
			if !geom.Rectilinear(pts) {
				t.Errorf("route not rectilinear: %v", pts)
			}
			if prev := pts[len(pts)-2]; prev.Y != tt.end.Y {
				t.Errorf("last segment %v -> %v is not horizontal", prev, tt.end)
			}
		})
	}
}

func TestResolveExcludesConnectedBars(t *testing.T) {
	h := newRecordingHooks(t)
	pos := bars{}.
		add("a", "l1", geom.R(0, 40, 40, 20)).
		add("b", "l1", geom.R(200, 40, 40, 20)).
		add("c", "l1", geom.R(100, 20, 40, 60))
	layer, _ := quietLayer()

	got := layer.Resolve(context.Background(), []chart.Link{link("ab", "a", "l1", "b", "l1")}, pos, canvas, Options{})
	if len(got) != 1 {
		t.Fatalf("routed %d links, want 1", len(got))
	}
	if n := h.obstacles["ab"]; n != 1 {
		t.Errorf("router saw %d obstacles, want 1", n)
	}

	pts := got[0].Points
	if pts[0] != geom.Pt(40, 50) || pts[len(pts)-1] != geom.Pt(200, 50) {
		t.Errorf("endpoints = %v..%v", pts[0], pts[len(pts)-1])
	}
	c := geom.R(100, 20, 40, 60)
	for i := 1; i < len(pts); i++ {
		seg := segmentRect(pts[i-1], pts[i])
		if seg.Intersects(c) {
			t.Errorf("segment %v -> %v crosses obstacle %v", pts[i-1], pts[i], c)
		}
	}
	if len(pts) < 4 {
		t.Errorf("expected a detour, got %v", pts)
	}
}

func segmentRect(a, b geom.Point) geom.Rect {
	x0, x1 := min(a.X, b.X), max(a.X, b.X)
	y0, y1 := min(a.Y, b.Y), max(a.Y, b.Y)
	return geom.R(x0, y0, x1-x0, y1-y0)
}

func TestResolveDrag(t *testing.T) {
	h := newRecordingHooks(t)
	pos := bars{}.
		add("a", "l1", geom.R(0, 20, 50, 20)).
		add("b", "l1", geom.R(150, 20, 50, 20)).
		add("c", "l2", geom.R(300, 100, 50, 20))
	layer, _ := quietLayer()

	drag := &Drag{ItemID: "b", SwimlaneID: "l2", Rect: geom.R(160, 100, 50, 20)}
	got := layer.Resolve(context.Background(), []chart.Link{link("ab", "a", "l1", "b", "l1")}, pos, canvas, Options{Drag: drag})
	if len(got) != 1 {
		t.Fatalf("routed %d links, want 1", len(got))
	}
	pts := got[0].Points
	if end := pts[len(pts)-1]; end != geom.Pt(160, 110) {
		t.Errorf("end = %v, want drag position (160, 110)", end)
	}
	if n := h.obstacles["ab"]; n != 1 {
		t.Errorf("router saw %d obstacles, want 1 (c only)", n)
	}
}

func TestCollectReplacesDraggedBar(t *testing.T) {
	pos := bars{}.
		add("a", "l1", geom.R(0, 0, 10, 10)).
		add("b", "l1", geom.R(20, 0, 10, 10))
	drag := &Drag{ItemID: "b", SwimlaneID: "l1", Rect: geom.R(50, 50, 10, 10)}

	got := collect(pos, drag)
	want := []Obstacle{
		{ItemID: "a", Rect: geom.R(0, 0, 10, 10)},
		{ItemID: "b", Rect: geom.R(50, 50, 10, 10)},
	}
	if !slices.Equal(got, want) {
		t.Errorf("collect() = %v, want %v", got, want)
	}
	if got := collect(pos, nil); len(got) != 2 || got[1].Rect != geom.R(20, 0, 10, 10) {
		t.Errorf("collect(nil drag) = %v", got)
	}
}

func TestResolveSkips(t *testing.T) {
	h := newRecordingHooks(t)
	pos := bars{}.
		add("a", "l1", geom.R(0, 20, 50, 20)).
		add("near", "l1", geom.R(52, 22, 50, 20)).
		add("b", "l2", geom.R(150, 100, 50, 20))
	layer, buf := quietLayer()

	links := []chart.Link{
		link("coincident", "a", "l1", "near", "l1"),
		link("deleted", "a", "l1", "gone", "l1"),
		link("moved", "a", "l1", "b", "l1"),
		link("ok", "a", "l1", "b", "l2"),
	}
	got := layer.Resolve(context.Background(), links, pos, canvas, Options{})
	if len(got) != 1 || got[0].Link.ID != "ok" {
		t.Fatalf("routed %v, want only ok", got)
	}

	want := map[string]string{
		"coincident": SkipCoincident,
		"deleted":    SkipMissingEndpoint,
		"moved":      SkipMissingEndpoint,
	}
	for id, reason := range want {
		if h.skipped[id] != reason {
			t.Errorf("skip reason for %s = %q, want %q", id, h.skipped[id], reason)
		}
	}
	if !strings.Contains(buf.String(), "skipping link") {
		t.Errorf("expected a debug log line, got %q", buf.String())
	}
}

func TestResolveSelected(t *testing.T) {
	pos := bars{}.
		add("a", "l1", geom.R(0, 20, 50, 20)).
		add("b", "l1", geom.R(150, 20, 50, 20)).
		add("c", "l1", geom.R(300, 20, 50, 20))
	layer, _ := quietLayer()

	links := []chart.Link{link("ab", "a", "l1", "b", "l1"), link("bc", "b", "l1", "c", "l1")}
	got := layer.Resolve(context.Background(), links, pos, canvas, Options{Selected: "bc"})
	if len(got) != 2 {
		t.Fatalf("routed %d links, want 2", len(got))
	}
	if got[0].Selected || !got[1].Selected {
		t.Errorf("selected = %v/%v, want false/true", got[0].Selected, got[1].Selected)
	}
}

func TestResolveCancelled(t *testing.T) {
	pos := bars{}.
		add("a", "l1", geom.R(0, 20, 50, 20)).
		add("b", "l1", geom.R(150, 20, 50, 20))
	layer, _ := quietLayer()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := layer.Resolve(ctx, []chart.Link{link("ab", "a", "l1", "b", "l1")}, pos, canvas, Options{}); len(got) != 0 {
		t.Errorf("cancelled Resolve routed %d links", len(got))
	}
}

func TestResolveIdempotent(t *testing.T) {
	pos := bars{}.
		add("a", "l1", geom.R(0, 40, 40, 20)).
		add("b", "l2", geom.R(250, 140, 40, 20)).
		add("c", "l1", geom.R(100, 20, 40, 60))
	var layer Layer
	layer.Logger = log.New(&bytes.Buffer{})

	links := []chart.Link{link("ab", "a", "l1", "b", "l2")}
	first := layer.Resolve(context.Background(), links, pos, canvas, Options{})
	second := layer.Resolve(context.Background(), links, pos, canvas, Options{})
	if len(first) != 1 || len(second) != 1 || first[0].Path != second[0].Path {
		t.Errorf("Resolve is not repeatable: %v vs %v", first, second)
	}
}
