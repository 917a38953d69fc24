// Package pipeline turns a chart document into rendered output.
//
// This package implements the complete validate → layout → route → render
// pipeline used by the CLI and the HTTP server, so both produce identical
// output for identical options.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Validate: check the chart's references and values
//  2. Layout: place swimlanes, bars and flags on a canvas
//  3. Route: compute an obstacle-avoiding path for every link
//  4. Render: produce SVG, PNG, PDF or a JSON scene dump
//
// The "deps" viz type skips layout and routing and renders the chart's
// dependency graph with Graphviz instead.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, c, pipeline.Options{
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	l, routes, err := runner.Plan(ctx, c, opts)
//	artifacts, hit, err := runner.Render(ctx, c, l, routes, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lanechart/pkg/cache"
	"github.com/matzehuels/lanechart/pkg/chart"
	"github.com/matzehuels/lanechart/pkg/errors"
	"github.com/matzehuels/lanechart/pkg/layout"
	"github.com/matzehuels/lanechart/pkg/linklayer"
	"github.com/matzehuels/lanechart/pkg/route"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

// Visualization types.
const (
	VizTypeChart = "chart"
	VizTypeDeps  = "deps"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizTypeChart

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// DefaultScale is the PNG pixel density.
const DefaultScale = 2.0

// ValidFormats is the set of supported output formats per viz type.
var ValidFormats = map[string]map[string]bool{
	VizTypeChart: {FormatSVG: true, FormatPNG: true, FormatPDF: true, FormatJSON: true},
	VizTypeDeps:  {FormatSVG: true, FormatPNG: true, FormatPDF: true, FormatDOT: true},
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizTypeChart: true,
	VizTypeDeps:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// DragOptions describe a bar being dragged to a new start time. Links are
// routed as if the bar already sat there.
type DragOptions struct {
	ItemID     string  `json:"item"`
	SwimlaneID string  `json:"swimlane,omitempty"`
	Start      float64 `json:"start"`
}

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	VizType string   `json:"viz_type,omitempty"`
	Formats []string `json:"formats,omitempty"`

	// Layout options
	Layout   layout.Options  `json:"layout"`
	Viewport layout.Viewport `json:"viewport"`

	// Route options
	CellSize     float64      `json:"cell_size,omitempty"`
	CornerRadius float64      `json:"corner_radius,omitempty"` // 0 default, <0 sharp
	Drag         *DragOptions `json:"drag,omitempty"`

	// Render options
	Title       string  `json:"title,omitempty"`
	Selected    string  `json:"selected,omitempty"`
	Grid        bool    `json:"grid,omitempty"`
	Interactive bool    `json:"interactive,omitempty"`
	Detailed    bool    `json:"detailed,omitempty"`
	LeftToRight bool    `json:"left_to_right,omitempty"`
	Scale       float64 `json:"scale,omitempty"`

	// Refresh bypasses cached artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Chart is the validated input.
	Chart *chart.Chart

	// ChartHash is the content hash used in cache keys.
	ChartHash string

	// Layout and Routes are nil for the deps viz type.
	Layout *layout.Layout
	Routes []linklayer.Routed

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains counts and timings.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Lanes     int `json:"lanes"`
	Items     int `json:"items"`
	Links     int `json:"links"`
	Routed    int `json:"routed"`
	Skipped   int `json:"skipped"`
	Fallbacks int `json:"fallbacks"`

	LayoutTime time.Duration `json:"layout_time"`
	RouteTime  time.Duration `json:"route_time"`
	RenderTime time.Duration `json:"render_time"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return errors.New(errors.ErrCodeInvalidVizType,
			"invalid viz_type: %q (must be one of: chart, deps)", vizType)
	}
	return nil
}

// ValidateFormat checks that format is valid for vizType.
func ValidateFormat(vizType, format string) error {
	if !ValidFormats[vizType][format] {
		if vizType == VizTypeDeps {
			return errors.New(errors.ErrCodeInvalidFormat,
				"invalid format for deps: %q (must be one of: svg, png, pdf, dot)", format)
		}
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid for vizType.
func ValidateFormats(vizType string, formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(vizType, f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills unset options. It is idempotent.
func (o *Options) SetDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.Layout.SetDefaults()
	if o.CellSize <= 0 {
		o.CellSize = route.DefaultCellSize
	}
	if o.CornerRadius == 0 {
		o.CornerRadius = route.DefaultCornerRadius
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option values. Call SetDefaults first.
func (o *Options) Validate() error {
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.VizType, o.Formats); err != nil {
		return err
	}
	if o.Viewport.Zoom < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "zoom must not be negative")
	}
	if o.Drag != nil && o.Drag.ItemID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "drag needs an item id")
	}
	return nil
}

// ValidateAndSetDefaults applies defaults, then validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// IsDeps returns true if this is a dependency graph visualization.
func (o *Options) IsDeps() bool {
	return o.VizType == VizTypeDeps
}

// LayoutKeyOpts returns cache key options for layout and routing.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	k := cache.LayoutKeyOpts{
		Width:        o.Layout.Width,
		LabelWidth:   o.Layout.LabelWidth,
		HeaderHeight: o.Layout.HeaderHeight,
		LaneHeight:   o.Layout.LaneHeight,
		BarHeight:    o.Layout.BarHeight,
		Padding:      o.Layout.Padding,
		PxPerUnit:    o.Layout.PxPerUnit,
		Zoom:         o.Viewport.Zoom,
		ScrollX:      o.Viewport.ScrollX,
		ScrollY:      o.Viewport.ScrollY,
		CellSize:     o.CellSize,
		Radius:       o.CornerRadius,
		Selected:     o.Selected,
	}
	if o.Drag != nil {
		k.Drag = o.Drag.ItemID + "@" + o.Drag.SwimlaneID
		k.DragStart = o.Drag.Start
	}
	return k
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		VizType:     o.VizType,
		Format:      format,
		Layout:      o.LayoutKeyOpts(),
		Grid:        o.Grid,
		Interactive: o.Interactive,
		Detailed:    o.Detailed,
		LeftToRight: o.LeftToRight,
		Title:       o.Title,
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}
