package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanechart/pkg/chart"
	"github.com/matzehuels/lanechart/pkg/errors"
	"github.com/matzehuels/lanechart/pkg/pipeline"
	"github.com/matzehuels/lanechart/pkg/route"
)

// chartFlags are the layout and routing flags shared by render, route and
// inspect. Only flags the user sets override the config file.
type chartFlags struct {
	width      float64
	pxPerUnit  float64
	laneHeight float64
	zoom       float64
	cellSize   float64
	radius     float64
	selected   string
	drag       string
}

func (f *chartFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&f.width, "width", 0, "canvas width in pixels")
	fs.Float64Var(&f.pxPerUnit, "px-per-unit", 0, "horizontal scale (default: fit the time span)")
	fs.Float64Var(&f.laneHeight, "lane-height", 0, "swimlane height in pixels")
	fs.Float64Var(&f.zoom, "zoom", 0, "viewport zoom factor")
	fs.Float64Var(&f.cellSize, "cell-size", 0, "routing grid cell size in pixels")
	fs.Float64Var(&f.radius, "radius", route.DefaultCornerRadius, "corner radius of routed paths (0 for sharp corners)")
	fs.StringVar(&f.selected, "selected", "", "link id to highlight")
	fs.StringVar(&f.drag, "drag", "", "preview an item move: ITEM[@LANE]=START")
}

func (f *chartFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	changed := cmd.Flags().Changed
	if changed("width") {
		opts.Layout.Width = f.width
	}
	if changed("px-per-unit") {
		opts.Layout.PxPerUnit = f.pxPerUnit
	}
	if changed("lane-height") {
		opts.Layout.LaneHeight = f.laneHeight
	}
	if changed("zoom") {
		opts.Viewport.Zoom = f.zoom
	}
	if changed("cell-size") {
		opts.CellSize = f.cellSize
	}
	if changed("radius") {
		opts.CornerRadius = cornerRadius(f.radius)
	}
	if f.selected != "" {
		opts.Selected = f.selected
	}
	if f.drag != "" {
		d, err := parseDrag(f.drag)
		if err != nil {
			return err
		}
		opts.Drag = d
	}
	return nil
}

// parseDrag parses "item=12" or "item@lane=12".
func parseDrag(s string) (*pipeline.DragOptions, error) {
	target, start, ok := strings.Cut(s, "=")
	if !ok || target == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "drag %q: want ITEM[@LANE]=START", s)
	}
	at, err := strconv.ParseFloat(strings.TrimSpace(start), 64)
	if err != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "drag %q: start is not a number", s)
	}
	item, lane, _ := strings.Cut(target, "@")
	return &pipeline.DragOptions{ItemID: item, SwimlaneID: lane, Start: at}, nil
}

// renderFlags holds the render command's own flags.
type renderFlags struct {
	chartFlags
	output      string
	vizType     string
	formats     string
	title       string
	grid        bool
	interactive bool
	detailed    bool
	leftToRight bool
	scale       float64
	noCache     bool
	refresh     bool
}

func (c *CLI) renderCommand() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a chart to SVG, PNG, PDF or JSON",
		Long: `Render lays out the chart, routes every link around the item bars and
writes one file per requested format. The deps type draws the link graph with
Graphviz instead of the timeline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.renderOptions(cmd, &f)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], f.output, f.noCache, opts)
		},
	}

	f.register(cmd)
	fs := cmd.Flags()
	fs.StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	fs.StringVarP(&f.vizType, "type", "t", "", "visualization: chart (default), deps")
	fs.StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	fs.StringVar(&f.title, "title", "", "title override")
	fs.BoolVar(&f.grid, "grid", false, "draw time grid lines")
	fs.BoolVar(&f.interactive, "interactive", false, "embed hover highlighting script (svg)")
	fs.BoolVar(&f.detailed, "detailed", false, "show item times in the deps graph")
	fs.BoolVar(&f.leftToRight, "left-to-right", false, "lay the deps graph out left to right")
	fs.Float64Var(&f.scale, "scale", 0, "PNG scale factor")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the render cache")
	fs.BoolVar(&f.refresh, "refresh", false, "re-render even when cached")

	return cmd
}

// renderOptions starts from the config file's render section and applies
// the flags the user set.
func (c *CLI) renderOptions(cmd *cobra.Command, f *renderFlags) (pipeline.Options, error) {
	opts := c.Config.Render.PipelineOptions()
	if err := f.apply(cmd, &opts); err != nil {
		return opts, err
	}
	changed := cmd.Flags().Changed
	if f.vizType != "" {
		opts.VizType = f.vizType
	}
	if f.formats != "" {
		opts.Formats = parseFormats(f.formats)
	}
	if f.title != "" {
		opts.Title = f.title
	}
	if changed("grid") {
		opts.Grid = f.grid
	}
	if changed("interactive") {
		opts.Interactive = f.interactive
	}
	if changed("detailed") {
		opts.Detailed = f.detailed
	}
	if changed("left-to-right") {
		opts.LeftToRight = f.leftToRight
	}
	if changed("scale") {
		opts.Scale = f.scale
	}
	opts.Refresh = f.refresh
	return opts, nil
}

// runRender loads input, runs the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input, output string, noCache bool, opts pipeline.Options) error {
	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	ch, err := c.loadChart(ctx, input, noCache)
	if err != nil {
		return err
	}
	c.Logger.Debugf("Loaded %s: %d lanes, %d links", input, len(ch.Swimlanes), len(ch.Links))

	runner, err := c.newRunner(noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Routing %d links...", len(ch.Links)))
	spinner.Start()
	result, err := runner.Execute(ctx, ch, opts)
	took := spinner.Stop()
	if err != nil {
		return err
	}
	c.Logger.Debug("pipeline finished", "took", took.Round(time.Millisecond))
	prog.done(fmt.Sprintf("Rendered %s", input))

	single := len(opts.Formats) == 1
	if output == "-" {
		if !single {
			return errors.New(errors.ErrCodeInvalidInput, "stdout output needs exactly one format")
		}
		return writeOutput(output, result.Artifacts[opts.Formats[0]])
	}

	base := basePath(output, localName(input))
	var written []string
	for _, format := range opts.Formats {
		path := base + "." + format
		if single && output != "" {
			path = output
		}
		if err := writeOutput(path, result.Artifacts[format]); err != nil {
			return err
		}
		written = append(written, path)
	}

	printSuccess("Rendered %s", titleOf(ch, input))
	printStats(result.Stats, result.CacheInfo.RenderHit)
	for _, path := range written {
		printFile(path)
	}
	if result.Stats.Skipped > 0 {
		printWarning("%d link(s) could not be routed", result.Stats.Skipped)
		printNextStep("See which", fmt.Sprintf("%s route %s", appName, input))
	}
	return nil
}

func titleOf(c *chart.Chart, fallback string) string {
	if c.Title != "" {
		return c.Title
	}
	return fallback
}

// basePath derives the output path without extension. Without an explicit
// output the input's name is used; a known format extension on output is
// stripped so "-o plan.svg -f svg,png" writes plan.svg and plan.png.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if knownFormat(strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func knownFormat(f string) bool {
	for _, formats := range pipeline.ValidFormats {
		if formats[f] {
			return true
		}
	}
	return false
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}

// cornerRadius maps a user-given radius to the options encoding, where zero
// means the default.
func cornerRadius(v float64) float64 {
	if v <= 0 {
		return route.SharpCorners
	}
	return v
}
