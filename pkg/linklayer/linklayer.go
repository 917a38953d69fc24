package linklayer

import (
	"context"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lanechart/pkg/chart"
	"github.com/matzehuels/lanechart/pkg/geom"
	"github.com/matzehuels/lanechart/pkg/observability"
	"github.com/matzehuels/lanechart/pkg/route"
)

// MinSeparation is the distance, on both axes, below which two endpoints
// count as the same point and the link is not drawn.
const MinSeparation = 5.0

// Skip reasons reported to observability hooks.
const (
	SkipMissingEndpoint = "missing-endpoint"
	SkipCoincident      = "coincident"
)

// Obstacle is a bar on screen.
type Obstacle struct {
	ItemID string
	Rect   geom.Rect
}

// Positions supplies the current screen geometry of a chart.
type Positions interface {
	// ScreenRect returns the rectangle of itemID, provided it sits in
	// swimlaneID.
	ScreenRect(swimlaneID, itemID string) (geom.Rect, bool)
	// Obstacles returns every bar currently on screen.
	Obstacles() []Obstacle
}

// Drag is a bar being moved. Its rectangle replaces the committed one, both
// as a link endpoint and as an obstacle for other links.
type Drag struct {
	ItemID     string
	SwimlaneID string
	Rect       geom.Rect
}

// Options tune a single Resolve call.
type Options struct {
	// Selected marks the link with this id as selected.
	Selected string
	// Drag is the in-progress drag, if any.
	Drag *Drag
}

// Routed is a link with its computed route.
type Routed struct {
	Link     chart.Link   `json:"link"`
	Points   []geom.Point `json:"points"`
	Path     string       `json:"path"`
	Selected bool         `json:"selected,omitempty"`
	Fallback bool         `json:"fallback,omitempty"`
}

// Layer routes links against a Positions provider.
type Layer struct {
	Router *route.Router
	Logger *log.Logger
}

// New returns a Layer with a default router. If logger is nil,
// log.Default() is used.
func New(logger *log.Logger) *Layer {
	if logger == nil {
		logger = log.Default()
	}
	return &Layer{Router: route.NewRouter(logger), Logger: logger}
}

// Resolve routes every drawable link in order. Skipped links are absent from
// the result. Resolve checks ctx between links and returns what it has routed
// so far once ctx is done.
func (l *Layer) Resolve(ctx context.Context, links []chart.Link, pos Positions, canvas geom.Size, opts Options) []Routed {
	obstacles := collect(pos, opts.Drag)
	out := make([]Routed, 0, len(links))
	for _, link := range links {
		if ctx.Err() != nil {
			break
		}
		r, ok := l.resolve(ctx, link, pos, canvas, obstacles, opts)
		if ok {
			out = append(out, r)
		}
	}
	return out
}

// ResolveOne routes a single link. The bool is false if the link was skipped.
func (l *Layer) ResolveOne(ctx context.Context, link chart.Link, pos Positions, canvas geom.Size, opts Options) (Routed, bool) {
	return l.resolve(ctx, link, pos, canvas, collect(pos, opts.Drag), opts)
}

func (l *Layer) resolve(ctx context.Context, link chart.Link, pos Positions, canvas geom.Size, obstacles []Obstacle, opts Options) (Routed, bool) {
	fromRect, okFrom := endpointRect(pos, opts.Drag, link.FromSwimlaneID, link.FromID)
	toRect, okTo := endpointRect(pos, opts.Drag, link.ToSwimlaneID, link.ToID)
	if !okFrom || !okTo {
		l.skip(ctx, link, SkipMissingEndpoint, "from_found", okFrom, "to_found", okTo)
		return Routed{}, false
	}

	fromHandle, toHandle := link.Handles()
	start, startSide := attach(fromRect, fromHandle)
	end, endSide := attach(toRect, toHandle)
	if math.Abs(end.X-start.X) < MinSeparation && math.Abs(end.Y-start.Y) < MinSeparation {
		l.skip(ctx, link, SkipCoincident, "at", start)
		return Routed{}, false
	}

	rt := l.router().Route(ctx, route.Request{
		ID:        link.ID,
		Start:     start,
		End:       end,
		StartSide: startSide,
		EndSide:   endSide,
		Canvas:    canvas,
		Obstacles: without(obstacles, link.FromID, link.ToID),
	})
	return Routed{
		Link:     link,
		Points:   rt.Points,
		Path:     rt.Path,
		Selected: opts.Selected != "" && opts.Selected == link.ID,
		Fallback: rt.Fallback,
	}, true
}

func (l *Layer) skip(ctx context.Context, link chart.Link, reason string, kv ...any) {
	l.logger().Debug("skipping link", append([]any{"link", link.ID, "reason", reason}, kv...)...)
	observability.Routing().OnLinkSkipped(ctx, link.ID, reason)
}

func (l *Layer) router() *route.Router {
	if l.Router == nil {
		return route.NewRouter(l.logger())
	}
	return l.Router
}

func (l *Layer) logger() *log.Logger {
	if l.Logger == nil {
		return log.Default()
	}
	return l.Logger
}

// endpointRect prefers the drag rectangle for the dragged item.
func endpointRect(pos Positions, drag *Drag, swimlaneID, itemID string) (geom.Rect, bool) {
	if drag != nil && drag.ItemID == itemID {
		return drag.Rect, true
	}
	return pos.ScreenRect(swimlaneID, itemID)
}

func attach(r geom.Rect, h chart.Handle) (geom.Point, route.Side) {
	if h == chart.HandleStart {
		return r.LeftMid(), route.SideLeft
	}
	return r.RightMid(), route.SideRight
}

// collect snapshots the provider's obstacles with the drag applied.
func collect(pos Positions, drag *Drag) []Obstacle {
	obs := pos.Obstacles()
	out := make([]Obstacle, 0, len(obs)+1)
	for _, o := range obs {
		if drag != nil && o.ItemID == drag.ItemID {
			continue
		}
		out = append(out, o)
	}
	if drag != nil {
		out = append(out, Obstacle{ItemID: drag.ItemID, Rect: drag.Rect})
	}
	return out
}

func without(obs []Obstacle, fromID, toID string) []geom.Rect {
	out := make([]geom.Rect, 0, len(obs))
	for _, o := range obs {
		if o.ItemID == fromID || o.ItemID == toID {
			continue
		}
		out = append(out, o.Rect)
	}
	return out
}
