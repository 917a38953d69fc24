package pipeline

import (
	"context"

	"github.com/matzehuels/lanechart/pkg/chart"
	"github.com/matzehuels/lanechart/pkg/errors"
	"github.com/matzehuels/lanechart/pkg/layout"
	"github.com/matzehuels/lanechart/pkg/linklayer"
	"github.com/matzehuels/lanechart/pkg/route"
)

// =============================================================================
// Layout
// =============================================================================

// GenerateLayout places c on a canvas according to opts.
func GenerateLayout(c *chart.Chart, opts Options) *layout.Layout {
	return layout.Build(c, opts.Layout, opts.Viewport)
}

// =============================================================================
// Routing
// =============================================================================

// newLayer builds the link layer for opts. A fresh router per call keeps
// concurrent runs independent.
func newLayer(opts Options) *linklayer.Layer {
	r := route.NewRouter(opts.Logger)
	r.CellSize = opts.CellSize
	r.CornerRadius = opts.CornerRadius
	return &linklayer.Layer{Router: r, Logger: opts.Logger}
}

// layerOptions resolves the drag, if any, against l.
func layerOptions(l *layout.Layout, opts Options) (linklayer.Options, error) {
	lo := linklayer.Options{Selected: opts.Selected}
	if opts.Drag == nil {
		return lo, nil
	}
	d, ok := l.Drag(opts.Drag.ItemID, opts.Drag.SwimlaneID, opts.Drag.Start)
	if !ok {
		return lo, errors.New(errors.ErrCodeInvalidInput,
			"drag: unknown item %q in swimlane %q", opts.Drag.ItemID, opts.Drag.SwimlaneID)
	}
	lo.Drag = d
	return lo, nil
}

// RouteLinks routes every link of c over l. Links whose endpoints are missing
// or coincide are left out. RouteLinks returns ctx's error if it is
// cancelled before every link was considered.
func RouteLinks(ctx context.Context, c *chart.Chart, l *layout.Layout, opts Options) ([]linklayer.Routed, error) {
	lo, err := layerOptions(l, opts)
	if err != nil {
		return nil, err
	}
	routed := newLayer(opts).Resolve(ctx, c.Links, l, l.Canvas, lo)
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, err, "routing interrupted after %d links", len(routed))
	}
	return routed, nil
}

// RouteLink routes a single link over l. The bool is false when the link
// was skipped.
func RouteLink(ctx context.Context, link chart.Link, l *layout.Layout, opts Options) (linklayer.Routed, bool, error) {
	lo, err := layerOptions(l, opts)
	if err != nil {
		return linklayer.Routed{}, false, err
	}
	r, ok := newLayer(opts).ResolveOne(ctx, link, l, l.Canvas, lo)
	return r, ok, nil
}
