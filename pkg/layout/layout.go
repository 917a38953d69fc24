// Package layout places a chart's swimlanes, bars and flags on screen.
//
// Time runs left to right after a fixed label column; swimlanes stack top to
// bottom below a header. A [Viewport] scrolls and zooms the result. A
// [Layout] is a snapshot: build a new one whenever the chart, the options or
// the viewport change.
//
// Layout implements linklayer.Positions, so it can be handed directly to the
// link layer.
package layout

import (
	"math"

	"github.com/matzehuels/lanechart/pkg/chart"
	"github.com/matzehuels/lanechart/pkg/geom"
	"github.com/matzehuels/lanechart/pkg/linklayer"
)

// Default dimensions, in pixels. With the default header, lane and bar
// heights every bar's vertical center lies on the routing grid.
const (
	DefaultWidth        = 1200.0
	DefaultLabelWidth   = 160.0
	DefaultHeaderHeight = 40.0
	DefaultLaneHeight   = 60.0
	DefaultBarHeight    = 30.0
	DefaultPadding      = 16.0

	// MinBarWidth keeps zero-duration items visible and grabbable.
	MinBarWidth = 4.0
)

// Options size the layout. Zero fields take the defaults above.
type Options struct {
	Width        float64 `json:"width,omitempty" toml:"width"`
	LabelWidth   float64 `json:"label_width,omitempty" toml:"label_width"`
	HeaderHeight float64 `json:"header_height,omitempty" toml:"header_height"`
	LaneHeight   float64 `json:"lane_height,omitempty" toml:"lane_height"`
	BarHeight    float64 `json:"bar_height,omitempty" toml:"bar_height"`
	Padding      float64 `json:"padding,omitempty" toml:"padding"`

	// PxPerUnit is the horizontal scale. Zero fits the chart's time span
	// into the space right of the label column.
	PxPerUnit float64 `json:"px_per_unit,omitempty" toml:"px_per_unit"`
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.LabelWidth <= 0 {
		o.LabelWidth = DefaultLabelWidth
	}
	if o.HeaderHeight <= 0 {
		o.HeaderHeight = DefaultHeaderHeight
	}
	if o.LaneHeight <= 0 {
		o.LaneHeight = DefaultLaneHeight
	}
	if o.BarHeight <= 0 {
		o.BarHeight = DefaultBarHeight
	}
	if o.BarHeight > o.LaneHeight {
		o.BarHeight = o.LaneHeight
	}
	if o.Padding < 0 {
		o.Padding = 0
	} else if o.Padding == 0 {
		o.Padding = DefaultPadding
	}
}

// Viewport is the visible window onto the chart.
type Viewport struct {
	ScrollX float64 `json:"scroll_x,omitempty"`
	ScrollY float64 `json:"scroll_y,omitempty"`
	// Zoom scales the time axis. Zero means 1.
	Zoom float64 `json:"zoom,omitempty"`
}

func (v Viewport) zoom() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}

// Lane is a placed swimlane. Rect spans the full canvas width.
type Lane struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color,omitempty"`
	Rect  geom.Rect `json:"rect"`
}

// Bar is a placed item.
type Bar struct {
	ItemID     string         `json:"item"`
	SwimlaneID string         `json:"swimlane"`
	Kind       chart.ItemKind `json:"kind"`
	Label      string         `json:"label,omitempty"`
	Color      string         `json:"color,omitempty"`
	Rect       geom.Rect      `json:"rect"`
}

// FlagMark is a placed flag.
type FlagMark struct {
	ID    string  `json:"id"`
	Label string  `json:"label,omitempty"`
	Color string  `json:"color,omitempty"`
	X     float64 `json:"x"`
}

// Layout is a chart placed on a canvas.
type Layout struct {
	Options  Options    `json:"options"`
	Viewport Viewport   `json:"viewport"`
	Origin   float64    `json:"origin"`
	Scale    float64    `json:"scale"`
	Canvas   geom.Size  `json:"canvas"`
	Lanes    []Lane     `json:"lanes"`
	Bars     []Bar      `json:"bars"`
	Flags    []FlagMark `json:"flags,omitempty"`

	bars map[string]int
}

// Build lays c out. Build never fails; an empty chart yields an empty
// canvas of the configured width.
func Build(c *chart.Chart, opts Options, vp Viewport) *Layout {
	opts.SetDefaults()
	start, end := c.Span()

	scale := opts.PxPerUnit
	if scale <= 0 {
		avail := opts.Width - opts.LabelWidth - 2*opts.Padding
		scale = math.Max(avail, 1) / (end - start)
	}

	l := &Layout{
		Options:  opts,
		Viewport: vp,
		Origin:   start,
		Scale:    scale * vp.zoom(),
		bars:     make(map[string]int, c.ItemCount()),
	}

	right := opts.Width
	for i, lane := range c.Swimlanes {
		top := opts.HeaderHeight + float64(i)*opts.LaneHeight - vp.ScrollY
		l.Lanes = append(l.Lanes, Lane{ID: lane.ID, Name: lane.Name, Color: lane.Color,
			Rect: geom.R(0, top, 0, opts.LaneHeight)})

		barTop := top + (opts.LaneHeight-opts.BarHeight)/2
		for _, it := range lane.Items {
			x := l.X(it.Start)
			w := math.Max(it.Duration*l.Scale, MinBarWidth)
			l.bars[it.ID] = len(l.Bars)
			l.Bars = append(l.Bars, Bar{
				ItemID:     it.ID,
				SwimlaneID: lane.ID,
				Kind:       it.Kind,
				Label:      it.Label,
				Color:      it.Color,
				Rect:       geom.R(x, barTop, w, opts.BarHeight),
			})
			right = math.Max(right, x+w+opts.Padding)
		}
	}
	for _, f := range c.Flags {
		x := l.X(f.At)
		l.Flags = append(l.Flags, FlagMark{ID: f.ID, Label: f.Label, Color: f.Color, X: x})
		right = math.Max(right, x+opts.Padding)
	}

	l.Canvas = geom.Size{
		Width:  math.Ceil(right),
		Height: opts.HeaderHeight + float64(len(c.Swimlanes))*opts.LaneHeight + opts.Padding,
	}
	for i := range l.Lanes {
		l.Lanes[i].Rect.Width = l.Canvas.Width
	}
	return l
}

// X maps a time to a screen x coordinate.
func (l *Layout) X(t float64) float64 {
	return l.Options.LabelWidth + l.Options.Padding + (t-l.Origin)*l.Scale - l.Viewport.ScrollX
}

// Time maps a screen x coordinate back to a time.
func (l *Layout) Time(x float64) float64 {
	return (x+l.Viewport.ScrollX-l.Options.LabelWidth-l.Options.Padding)/l.Scale + l.Origin
}

// Bar returns the placed bar for itemID.
func (l *Layout) Bar(itemID string) (Bar, bool) {
	i, ok := l.bars[itemID]
	if !ok {
		return Bar{}, false
	}
	return l.Bars[i], true
}

// Lane returns the placed swimlane with the given id.
func (l *Layout) Lane(id string) (Lane, bool) {
	for _, lane := range l.Lanes {
		if lane.ID == id {
			return lane, true
		}
	}
	return Lane{}, false
}

// ScreenRect implements linklayer.Positions. It reports false when the item
// is unknown or sits in a different swimlane.
func (l *Layout) ScreenRect(swimlaneID, itemID string) (geom.Rect, bool) {
	b, ok := l.Bar(itemID)
	if !ok || (swimlaneID != "" && b.SwimlaneID != swimlaneID) {
		return geom.Rect{}, false
	}
	return b.Rect, true
}

// Obstacles implements linklayer.Positions.
func (l *Layout) Obstacles() []linklayer.Obstacle {
	out := make([]linklayer.Obstacle, len(l.Bars))
	for i, b := range l.Bars {
		out[i] = linklayer.Obstacle{ItemID: b.ItemID, Rect: b.Rect}
	}
	return out
}

// DragRect returns where itemID would be drawn if it started at start in
// swimlane swimlaneID, keeping its width.
func (l *Layout) DragRect(itemID, swimlaneID string, start float64) (geom.Rect, bool) {
	b, ok := l.Bar(itemID)
	if !ok {
		return geom.Rect{}, false
	}
	lane, ok := l.Lane(swimlaneID)
	if !ok {
		return geom.Rect{}, false
	}
	top := lane.Rect.Y + (l.Options.LaneHeight-l.Options.BarHeight)/2
	return geom.R(l.X(start), top, b.Rect.Width, b.Rect.Height), true
}

// Drag builds a linklayer.Drag for itemID moved to start in swimlaneID.
func (l *Layout) Drag(itemID, swimlaneID string, start float64) (*linklayer.Drag, bool) {
	r, ok := l.DragRect(itemID, swimlaneID, start)
	if !ok {
		return nil, false
	}
	return &linklayer.Drag{ItemID: itemID, SwimlaneID: swimlaneID, Rect: r}, true
}
