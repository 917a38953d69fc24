package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/lanechart/pkg/chart"
	"github.com/matzehuels/lanechart/pkg/errors"
	"github.com/matzehuels/lanechart/pkg/geom"
	"github.com/matzehuels/lanechart/pkg/layout"
	"github.com/matzehuels/lanechart/pkg/linklayer"
	"github.com/matzehuels/lanechart/pkg/render"
	"github.com/matzehuels/lanechart/pkg/render/chartsvg"
	"github.com/matzehuels/lanechart/pkg/render/deps"
)

// Scene is the JSON dump of a laid-out, routed chart.
type Scene struct {
	ChartID string             `json:"chart_id,omitempty"`
	Title   string             `json:"title,omitempty"`
	Canvas  geom.Size          `json:"canvas"`
	Origin  float64            `json:"origin"`
	Scale   float64            `json:"scale"`
	Lanes   []layout.Lane      `json:"lanes"`
	Bars    []layout.Bar       `json:"bars"`
	Flags   []layout.FlagMark  `json:"flags,omitempty"`
	Links   []linklayer.Routed `json:"links"`
	Skipped []string           `json:"skipped,omitempty"`
}

// NewScene collects l and routes into a Scene. Links of c without a route
// are listed by id in Skipped.
func NewScene(c *chart.Chart, l *layout.Layout, routes []linklayer.Routed) Scene {
	s := Scene{
		ChartID: c.ID,
		Title:   c.Title,
		Canvas:  l.Canvas,
		Origin:  l.Origin,
		Scale:   l.Scale,
		Lanes:   l.Lanes,
		Bars:    l.Bars,
		Flags:   l.Flags,
		Links:   routes,
	}
	if s.Links == nil {
		s.Links = []linklayer.Routed{}
	}
	drawn := make(map[string]bool, len(routes))
	for _, r := range routes {
		drawn[r.Link.ID] = true
	}
	for _, link := range c.Links {
		if !drawn[link.ID] {
			s.Skipped = append(s.Skipped, link.ID)
		}
	}
	return s
}

// MarshalScene encodes a scene as indented JSON.
func MarshalScene(s Scene) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode scene")
	}
	return data, nil
}

// svgOptions builds chart SVG options.
func svgOptions(c *chart.Chart, opts Options) []chartsvg.Option {
	var out []chartsvg.Option
	title := opts.Title
	if title == "" {
		title = c.Title
	}
	if title != "" {
		out = append(out, chartsvg.WithTitle(title))
	}
	if opts.Selected != "" {
		out = append(out, chartsvg.WithSelected(opts.Selected))
	}
	if opts.Grid {
		out = append(out, chartsvg.WithGrid(opts.CellSize))
	}
	if opts.Interactive {
		out = append(out, chartsvg.WithInteraction())
	}
	return out
}

// RenderChart renders one format of the chart view.
func RenderChart(ctx context.Context, c *chart.Chart, l *layout.Layout, routes []linklayer.Routed, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return chartsvg.Render(l, routes, svgOptions(c, opts)...), nil
	case FormatPNG:
		return render.ToPNG(ctx, chartsvg.Render(l, routes, svgOptions(c, opts)...), opts.Scale)
	case FormatPDF:
		return render.ToPDF(ctx, chartsvg.Render(l, routes, svgOptions(c, opts)...))
	case FormatJSON:
		return MarshalScene(NewScene(c, l, routes))
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported chart format: %s", format)
	}
}

// RenderDeps renders one format of the dependency graph view.
func RenderDeps(ctx context.Context, c *chart.Chart, format string, opts Options) ([]byte, error) {
	dot := deps.ToDOT(c, deps.Options{Detailed: opts.Detailed, LeftToRight: opts.LeftToRight})
	switch format {
	case FormatSVG:
		return deps.RenderSVG(ctx, dot)
	case FormatPNG:
		return deps.RenderPNG(ctx, dot, opts.Scale)
	case FormatPDF:
		return deps.RenderPDF(ctx, dot)
	case FormatDOT:
		return []byte(dot), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported deps format: %s", format)
	}
}

func renderFormat(ctx context.Context, c *chart.Chart, l *layout.Layout, routes []linklayer.Routed, format string, opts Options) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if opts.IsDeps() {
		data, err = RenderDeps(ctx, c, format, opts)
	} else {
		data, err = RenderChart(ctx, c, l, routes, format, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return data, nil
}
