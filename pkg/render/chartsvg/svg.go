package chartsvg

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/lanechart/pkg/chart"
	"github.com/matzehuels/lanechart/pkg/geom"
	"github.com/matzehuels/lanechart/pkg/layout"
	"github.com/matzehuels/lanechart/pkg/linklayer"
	"github.com/matzehuels/lanechart/pkg/route"
)

const (
	defaultLinkColor = "#555555"
	selectedWidth    = 3
	linkWidth        = 1.5
	fontFamily       = "system-ui,-apple-system,sans-serif"
)

// palette colors lanes and bars that do not set their own color.
var palette = []string{"#4a90d9", "#50b86c", "#e5a33d", "#c95d63", "#8e6cc9", "#3fb3b3"}

const linkInteractionCSS = `
    .bar { transition: stroke-width 0.2s ease; }
    .bar.highlight { stroke: #222; stroke-width: 2; }
    .link { transition: stroke-width 0.2s ease, opacity 0.2s ease; }
    .links.dim .link { opacity: 0.25; }
    .links.dim .link.highlight { opacity: 1; stroke-width: 3; }`

const linkInteractionJS = `
    const links = document.querySelector('.links');
    function highlight(item) {
      links.classList.add('dim');
      document.querySelectorAll('.link').forEach(l => {
        const on = l.dataset.from === item || l.dataset.to === item;
        l.classList.toggle('highlight', on);
        if (on) {
          document.getElementById('bar-' + l.dataset.from).classList.add('highlight');
          document.getElementById('bar-' + l.dataset.to).classList.add('highlight');
        }
      });
    }
    function clearHighlight() {
      links.classList.remove('dim');
      document.querySelectorAll('.highlight').forEach(el => el.classList.remove('highlight'));
    }
    document.querySelectorAll('.bar').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.id.replace('bar-', '')));
      el.addEventListener('mouseleave', clearHighlight);
    });`

// Option configures Render.
type Option func(*renderer)

type renderer struct {
	title       string
	selected    string
	gridCell    float64
	interactive bool
}

// WithTitle draws title in the header above the label column.
func WithTitle(title string) Option { return func(r *renderer) { r.title = title } }

// WithSelected emphasizes the link with the given id, in addition to any
// link already marked Selected.
func WithSelected(linkID string) Option { return func(r *renderer) { r.selected = linkID } }

// WithGrid overlays the occupancy grid the router sees, built with the given
// cell size over every bar. Useful when a route looks wrong.
func WithGrid(cellSize float64) Option {
	return func(r *renderer) {
		if cellSize <= 0 {
			cellSize = route.DefaultCellSize
		}
		r.gridCell = cellSize
	}
}

// WithInteraction inlines CSS and JavaScript that highlight a bar's links on
// hover.
func WithInteraction() Option { return func(r *renderer) { r.interactive = true } }

// Render draws l and routed as an SVG document.
func Render(l *layout.Layout, routed []linklayer.Routed, opts ...Option) []byte {
	var r renderer
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	w, h := px(l.Canvas.Width), px(l.Canvas.Height)
	canvas := svg.New(&buf)
	canvas.Start(w, h, fmt.Sprintf(`viewBox="0 0 %d %d"`, w, h))
	if r.title != "" {
		canvas.Title(r.title)
	}

	renderDefs(canvas, routed)
	canvas.Rect(0, 0, w, h, "fill:#ffffff")
	renderLanes(canvas, l)
	renderAxis(canvas, l, r.title)
	if r.gridCell > 0 {
		renderGrid(canvas, l, r.gridCell)
	}
	renderFlags(canvas, l)
	renderBars(canvas, l)
	renderLinks(canvas, routed, r.selected)
	if r.interactive {
		canvas.Style("text/css", linkInteractionCSS)
		canvas.Script("application/javascript", linkInteractionJS)
	}

	canvas.End()
	return buf.Bytes()
}

func renderDefs(canvas *svg.SVG, routed []linklayer.Routed) {
	canvas.Def()
	seen := make(map[string]bool)
	for _, rt := range routed {
		c := linkColor(rt)
		if seen[c] {
			continue
		}
		seen[c] = true
		canvas.Marker(markerID(c), 9, 5, 8, 8, `viewBox="0 0 10 10"`, `orient="auto"`, `markerUnits="strokeWidth"`)
		canvas.Path("M 0 0 L 10 5 L 0 10 z", "fill:"+c)
		canvas.MarkerEnd()
	}
	canvas.DefEnd()
}

func renderLanes(canvas *svg.SVG, l *layout.Layout) {
	canvas.Gid("lanes")
	for i, lane := range l.Lanes {
		r := lane.Rect
		fill := "#f7f8fa"
		if i%2 == 1 {
			fill = "#eef0f4"
		}
		canvas.Rect(px(r.X), px(r.Y), px(r.Width), px(r.Height),
			fmt.Sprintf(`id="lane-%s"`, lane.ID), "fill:"+fill)
		canvas.Rect(0, px(r.Y), 4, px(r.Height), "fill:"+laneColor(i, lane.Color))
		canvas.Text(12, px(r.CenterY()), lane.Name,
			fmt.Sprintf("fill:#333;font-size:13px;font-family:%s;dominant-baseline:middle", fontFamily))
	}
	if len(l.Lanes) > 0 {
		x := px(l.Options.LabelWidth)
		canvas.Line(x, px(l.Options.HeaderHeight), x, px(l.Canvas.Height), "stroke:#d0d4dc;stroke-width:1")
	}
	canvas.Gend()
}

// renderAxis draws the header with evenly spaced time ticks.
func renderAxis(canvas *svg.SVG, l *layout.Layout, title string) {
	canvas.Gid("axis")
	header := l.Options.HeaderHeight
	if title != "" {
		canvas.Text(12, px(header/2), title,
			fmt.Sprintf("fill:#111;font-size:14px;font-weight:600;font-family:%s;dominant-baseline:middle", fontFamily))
	}
	step := tickStep(l.Scale)
	first := math.Ceil(l.Time(l.Options.LabelWidth)/step) * step
	for t := first; l.X(t) <= l.Canvas.Width; t += step {
		x := px(l.X(t))
		canvas.Line(x, px(header-6), x, px(l.Canvas.Height), "stroke:#e1e4ea;stroke-width:1")
		canvas.Text(x, px(header-10), formatTick(t),
			fmt.Sprintf("fill:#777;font-size:10px;font-family:%s;text-anchor:middle", fontFamily))
	}
	canvas.Gend()
}

// tickStep picks a 1/2/5 step giving ticks at least 60px apart.
func tickStep(scale float64) float64 {
	if scale <= 0 {
		return 1
	}
	raw := 60 / scale
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if m*mag >= raw {
			return m * mag
		}
	}
	return 10 * mag
}

func formatTick(t float64) string {
	if t == math.Trunc(t) {
		return fmt.Sprintf("%d", int64(t))
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", t), "0"), ".")
}

func renderGrid(canvas *svg.SVG, l *layout.Layout, cell float64) {
	rects := make([]geom.Rect, len(l.Bars))
	for i, b := range l.Bars {
		rects[i] = b.Rect
	}
	g := route.BuildGrid(l.Canvas.Width, l.Canvas.Height, cell, rects)
	canvas.Gid("grid")
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if !g.Blocked(route.Cell{Col: col, Row: row}) {
				continue
			}
			p := g.Point(route.Cell{Col: col, Row: row})
			canvas.Rect(px(p.X-cell/2), px(p.Y-cell/2), px(cell), px(cell), "fill:#d9534f;fill-opacity:0.12")
		}
	}
	canvas.Gend()
}

func renderFlags(canvas *svg.SVG, l *layout.Layout) {
	canvas.Gid("flags")
	for _, f := range l.Flags {
		c := f.Color
		if c == "" {
			c = "#c0392b"
		}
		x := px(f.X)
		canvas.Line(x, px(l.Options.HeaderHeight), x, px(l.Canvas.Height),
			fmt.Sprintf(`id="flag-%s"`, f.ID), fmt.Sprintf("stroke:%s;stroke-width:1.5;stroke-dasharray:4,3", c))
		if f.Label != "" {
			canvas.Text(x+4, px(l.Options.HeaderHeight)+12, f.Label,
				fmt.Sprintf("fill:%s;font-size:11px;font-family:%s", c, fontFamily))
		}
	}
	canvas.Gend()
}

func renderBars(canvas *svg.SVG, l *layout.Layout) {
	lanes := make(map[string]int, len(l.Lanes))
	for i, lane := range l.Lanes {
		lanes[lane.ID] = i
	}

	canvas.Gid("bars")
	for _, b := range l.Bars {
		i := lanes[b.SwimlaneID]
		c := b.Color
		if c == "" {
			c = laneColor(i, l.Lanes[i].Color)
		}
		r := b.Rect
		id := fmt.Sprintf(`id="bar-%s"`, b.ItemID)
		kind := fmt.Sprintf(`class="bar %s"`, b.Kind)
		if b.Kind == chart.KindState {
			canvas.Rect(px(r.X), px(r.Y), px(r.Width), px(r.Height), id, kind,
				fmt.Sprintf("fill:%s;fill-opacity:0.35;stroke:%s;stroke-width:1", c, c))
		} else {
			canvas.Roundrect(px(r.X), px(r.Y), px(r.Width), px(r.Height), 4, 4, id, kind,
				fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", c, c))
		}
		if b.Label != "" {
			canvas.Text(px(r.X)+6, px(r.CenterY()), b.Label,
				fmt.Sprintf(`data-bar="%s"`, b.ItemID),
				fmt.Sprintf("fill:%s;font-size:11px;font-family:%s;dominant-baseline:middle;pointer-events:none", labelColor(b.Kind), fontFamily))
		}
	}
	canvas.Gend()
}

func labelColor(kind chart.ItemKind) string {
	if kind == chart.KindState {
		return "#222"
	}
	return "#fff"
}

func renderLinks(canvas *svg.SVG, routed []linklayer.Routed, selected string) {
	canvas.Group(`class="links"`, `fill="none"`)
	for _, rt := range routed {
		if rt.Path == "" {
			continue
		}
		c := linkColor(rt)
		width := linkWidth
		class := "link"
		if rt.Selected || (selected != "" && rt.Link.ID == selected) {
			width = selectedWidth
			class = "link selected"
		}
		if rt.Fallback {
			class += " fallback"
		}
		canvas.Path(rt.Path,
			fmt.Sprintf(`id="link-%s"`, rt.Link.ID),
			fmt.Sprintf(`class="%s"`, class),
			fmt.Sprintf(`data-from="%s"`, rt.Link.FromID),
			fmt.Sprintf(`data-to="%s"`, rt.Link.ToID),
			fmt.Sprintf(`marker-end="url(#%s)"`, markerID(c)),
			fmt.Sprintf("stroke:%s;stroke-width:%g", c, width))
		if rt.Link.Label != "" && len(rt.Points) >= 2 {
			mid := midpoint(rt.Points)
			canvas.Text(px(mid.X), px(mid.Y)-4, rt.Link.Label,
				fmt.Sprintf("fill:%s;font-size:10px;font-family:%s;text-anchor:middle", c, fontFamily))
		}
	}
	canvas.Gend()
}

// midpoint returns the point halfway along a polyline.
func midpoint(points []geom.Point) geom.Point {
	half := geom.PathLength(points) / 2
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		seg := math.Abs(b.X-a.X) + math.Abs(b.Y-a.Y)
		if half <= seg && seg > 0 {
			f := half / seg
			return geom.Pt(a.X+(b.X-a.X)*f, a.Y+(b.Y-a.Y)*f)
		}
		half -= seg
	}
	return points[len(points)-1]
}

func linkColor(rt linklayer.Routed) string {
	if rt.Link.Color != "" {
		return strings.ToLower(rt.Link.Color)
	}
	return defaultLinkColor
}

func markerID(color string) string {
	return "arrow-" + strings.TrimPrefix(color, "#")
}

func laneColor(i int, c string) string {
	if c != "" {
		return c
	}
	return palette[i%len(palette)]
}

func px(v float64) int { return int(math.Round(v)) }
