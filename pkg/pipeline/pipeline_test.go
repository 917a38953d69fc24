package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/lanechart/pkg/cache"
	"github.com/matzehuels/lanechart/pkg/chart"
	"github.com/matzehuels/lanechart/pkg/errors"
	"github.com/matzehuels/lanechart/pkg/layout"
)

// sample links dev's "API" to ops' "Deploy".
func sample() *chart.Chart {
	b := chart.NewBuilder("Release")
	dev := b.Lane("Development")
	ops := b.Lane("Operations")
	api := b.Task(dev, "API", 0, 4)
	deploy := b.Task(ops, "Deploy", 6, 2)
	b.Link(api, deploy)
	return b.Chart()
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		vizType string
		format  string
		wantErr bool
	}{
		{"chart", "svg", false},
		{"chart", "png", false},
		{"chart", "pdf", false},
		{"chart", "json", false},
		{"chart", "dot", true},
		{"deps", "dot", false},
		{"deps", "json", true},
		{"chart", "SVG", true}, // case-sensitive
		{"chart", "", true},
		{"gantt", "svg", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.vizType, tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q, %q) error = %v, wantErr %v", tt.vizType, tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q, %q) code = %s", tt.vizType, tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats("chart", []string{"svg", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats("chart", []string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	// Empty slice is valid
	if err := ValidateFormats("chart", nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateVizType(t *testing.T) {
	tests := []struct {
		vizType string
		wantErr bool
	}{
		{"chart", false},
		{"deps", false},
		{"invalid", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateVizType(tt.vizType)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateVizType(%q) error = %v, wantErr %v", tt.vizType, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.VizType != VizTypeChart || len(o.Formats) != 1 || o.Formats[0] != FormatSVG {
		t.Errorf("defaults = %q %v", o.VizType, o.Formats)
	}
	if o.CellSize != 10 || o.Scale != DefaultScale || o.Logger == nil {
		t.Errorf("cell %v scale %v logger %v", o.CellSize, o.Scale, o.Logger)
	}
	if o.Layout.LaneHeight == 0 {
		t.Error("layout defaults not applied")
	}

	bad := []Options{
		{VizType: "gantt"},
		{Formats: []string{"gif"}},
		{Viewport: layout.Viewport{Zoom: -1}},
		{Drag: &DragOptions{}},
	}
	for i, o := range bad {
		if err := o.ValidateAndSetDefaults(); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestKeyOpts(t *testing.T) {
	a := Options{}
	a.SetDefaults()
	b := a
	b.Selected = "link-1"
	if a.LayoutKeyOpts() == b.LayoutKeyOpts() {
		t.Error("selection should change the layout key")
	}
	c := a
	c.Drag = &DragOptions{ItemID: "item-1", Start: 3}
	if a.LayoutKeyOpts() == c.LayoutKeyOpts() {
		t.Error("drag should change the layout key")
	}
	if a.ArtifactKeyOpts(FormatSVG).Scale != 0 {
		t.Error("scale should only key PNG artifacts")
	}
	if a.ArtifactKeyOpts(FormatPNG).Scale != DefaultScale {
		t.Error("PNG artifacts should be keyed by scale")
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	c := sample()
	res, err := r.Execute(context.Background(), c, Options{Formats: []string{"svg", "json"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Stats.Lanes != 2 || res.Stats.Items != 2 || res.Stats.Links != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.Stats.Routed != 1 || res.Stats.Skipped != 0 {
		t.Errorf("routed %d skipped %d", res.Stats.Routed, res.Stats.Skipped)
	}
	if res.ChartHash == "" || res.Layout == nil {
		t.Error("missing hash or layout")
	}

	svg := string(res.Artifacts["svg"])
	for _, want := range []string{`id="link-link-1"`, `id="bar-item-1"`, "<title>Release</title>"} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %s", want)
		}
	}

	var scene Scene
	if err := json.Unmarshal(res.Artifacts["json"], &scene); err != nil {
		t.Fatalf("scene: %v", err)
	}
	if len(scene.Links) != 1 || len(scene.Bars) != 2 || len(scene.Skipped) != 0 {
		t.Errorf("scene links %d bars %d skipped %v", len(scene.Links), len(scene.Bars), scene.Skipped)
	}
	if scene.Links[0].Path == "" || !strings.HasPrefix(scene.Links[0].Path, "M ") {
		t.Errorf("path = %q", scene.Links[0].Path)
	}
}

func TestExecuteSkipped(t *testing.T) {
	b := chart.NewBuilder("")
	lane := b.Lane("Only")
	a := b.Task(lane, "A", 0, 5)
	bb := b.Task(lane, "B", 5, 5)
	b.Link(a, bb) // A's finish is B's start
	c := b.Chart()

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), c, Options{Formats: []string{"json"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", res.Stats.Skipped)
	}
	var scene Scene
	if err := json.Unmarshal(res.Artifacts["json"], &scene); err != nil {
		t.Fatal(err)
	}
	if len(scene.Skipped) != 1 || scene.Skipped[0] != "link-1" {
		t.Errorf("scene.Skipped = %v", scene.Skipped)
	}
}

func TestExecuteCached(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	ctx := context.Background()
	opts := Options{Formats: []string{"svg"}}

	first, err := r.Execute(ctx, sample(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should miss")
	}
	second, err := r.Execute(ctx, sample(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit")
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached artifact differs")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, sample(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}

	opts.Refresh = false
	opts.Selected = "link-1"
	fourth, _ := r.Execute(ctx, sample(), opts)
	if fourth.CacheInfo.RenderHit {
		t.Error("selection change should miss")
	}
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	broken := sample()
	broken.Links[0].ToID = "ghost"
	if _, err := r.Execute(ctx, broken, Options{}); !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("dangling link: %v", err)
	}

	if _, err := r.Execute(ctx, sample(), Options{Formats: []string{"gif"}}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad format: %v", err)
	}

	drag := Options{Drag: &DragOptions{ItemID: "ghost", Start: 1}}
	if _, err := r.Execute(ctx, sample(), drag); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown drag item: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := r.Execute(cancelled, sample(), Options{}); !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("cancelled: %v", err)
	}
}

func TestExecuteDrag(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()
	c := sample()

	still, err := r.Execute(ctx, c, Options{Formats: []string{"json"}})
	if err != nil {
		t.Fatal(err)
	}
	moved, err := r.Execute(ctx, c, Options{
		Formats: []string{"json"},
		Drag:    &DragOptions{ItemID: "item-2", SwimlaneID: "lane-2", Start: 9},
	})
	if err != nil {
		t.Fatal(err)
	}
	a, b := still.Routes[0].Points, moved.Routes[0].Points
	if a[len(a)-1] == b[len(b)-1] {
		t.Error("dragging the target should move the link end")
	}
	if c.Swimlanes[1].Items[0].Start != 6 {
		t.Error("drag must not modify the chart")
	}
}

func TestExecuteDeps(t *testing.T) {
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), sample(), Options{
		VizType: VizTypeDeps,
		Formats: []string{FormatDOT},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Layout != nil || res.Routes != nil {
		t.Error("deps view should not lay out or route")
	}
	dot := string(res.Artifacts["dot"])
	if !strings.HasPrefix(dot, "digraph") || !strings.Contains(dot, "cluster_") {
		t.Errorf("dot = %s", dot)
	}
}

func TestRouteLink(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	c := sample()
	link := chart.Link{ID: "tmp", FromID: "item-2", ToID: "item-1", FromHandle: chart.HandleFinish, ToHandle: chart.HandleStart}
	rt, ok, err := r.RouteLink(context.Background(), c, link, Options{})
	if err != nil || !ok {
		t.Fatalf("RouteLink = %v, %v", ok, err)
	}
	if rt.Link.ID != "tmp" || len(rt.Points) < 2 {
		t.Errorf("routed = %+v", rt)
	}
}

func TestParse(t *testing.T) {
	jsonDoc := []byte(`{"swimlanes":[{"name":"Dev","items":[{"start":0,"duration":2}]}]}`)
	yamlDoc := []byte("swimlanes:\n  - name: Dev\n    items:\n      - start: 0\n        duration: 2\n")

	tests := []struct {
		name   string
		data   []byte
		format string
	}{
		{"sniff json", jsonDoc, ""},
		{"sniff yaml", yamlDoc, ""},
		{"json", jsonDoc, "json"},
		{"yaml media type", yamlDoc, "application/yaml; charset=utf-8"},
		{"json media type", jsonDoc, "application/json"},
		{"text plain", yamlDoc, "text/plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse(tt.data, tt.format)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(c.Swimlanes) != 1 || c.Swimlanes[0].Items[0].ID == "" {
				t.Errorf("chart = %+v", c)
			}
		})
	}

	if _, err := Parse(jsonDoc, "application/xml"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("xml: %v", err)
	}
}
