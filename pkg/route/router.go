package route

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lanechart/pkg/geom"
	"github.com/matzehuels/lanechart/pkg/observability"
)

// Request describes one link to route.
type Request struct {
	// ID identifies the route in logs and hooks. Optional.
	ID string

	Start     geom.Point
	End       geom.Point
	StartSide Side
	EndSide   Side

	// Canvas bounds the grid. Points outside it are clamped onto the edge.
	Canvas geom.Size

	// Obstacles must not include the bars the route connects.
	Obstacles []geom.Rect
}

// Route is a computed link route.
type Route struct {
	Points     []geom.Point `json:"points"`
	Path       string       `json:"path"`
	Expansions int          `json:"expansions"`
	Fallback   bool         `json:"fallback,omitempty"`
}

// Router routes requests with a fixed cell size and corner radius. The zero
// value is usable; NewRouter fills in a logger. A zero CornerRadius selects
// DefaultCornerRadius and a negative one, such as SharpCorners, disables
// rounding.
type Router struct {
	CellSize     float64
	CornerRadius float64
	Logger       *log.Logger
}

// NewRouter creates a Router with the default cell size and corner radius.
// If logger is nil, log.Default() is used.
func NewRouter(logger *log.Logger) *Router {
	if logger == nil {
		logger = log.Default()
	}
	return &Router{
		CellSize:     DefaultCellSize,
		CornerRadius: DefaultCornerRadius,
		Logger:       logger,
	}
}

// Route builds a grid for req, searches it, and returns the simplified,
// horizontally terminated route with its SVG path data.
func (r *Router) Route(ctx context.Context, req Request) Route {
	start := time.Now()
	hooks := observability.Routing()
	hooks.OnRouteStart(ctx, req.ID, len(req.Obstacles))

	grid := BuildGrid(req.Canvas.Width, req.Canvas.Height, r.cellSize(), req.Obstacles)
	res := Search(grid, req.Start, req.End)
	if res.Fallback {
		r.logger().Warn("no grid route found, using fallback",
			"link", req.ID,
			"from", req.Start,
			"to", req.End,
			"expansions", res.Expansions)
	}

	pts := EnsureHorizontalApproach(Simplify(res.Points), req.EndSide)
	out := Route{
		Points:     pts,
		Path:       ToSVGPath(pts, r.cornerRadius()),
		Expansions: res.Expansions,
		Fallback:   res.Fallback,
	}

	hooks.OnRouteComplete(ctx, req.ID, res.Expansions, res.Fallback, time.Since(start))
	return out
}

func (r *Router) cellSize() float64 {
	if r.CellSize <= 0 {
		return DefaultCellSize
	}
	return r.CellSize
}

func (r *Router) cornerRadius() float64 {
	if r.CornerRadius < 0 {
		return 0
	}
	if r.CornerRadius == 0 {
		return DefaultCornerRadius
	}
	return r.CornerRadius
}

func (r *Router) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}
