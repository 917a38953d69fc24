package deps

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/lanechart/pkg/chart"
	"github.com/matzehuels/lanechart/pkg/errors"
	"github.com/matzehuels/lanechart/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the time span to node labels and handles to edges.
	Detailed bool
	// LeftToRight lays the graph out horizontally instead of top to bottom.
	LeftToRight bool
}

// ToDOT converts a chart to Graphviz DOT format.
func ToDOT(c *chart.Chart, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.LeftToRight {
		buf.WriteString("  rankdir=LR;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")

	for i, lane := range c.Swimlanes {
		fmt.Fprintf(&buf, "\n  subgraph \"cluster_%d\" {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", lane.Name)
		buf.WriteString("    style=\"rounded\";\n")
		if lane.Color != "" {
			fmt.Fprintf(&buf, "    color=%q;\n", lane.Color)
		}
		for _, it := range lane.Items {
			fmt.Fprintf(&buf, "    %q [%s];\n", it.ID, strings.Join(nodeAttrs(it, opts.Detailed), ", "))
		}
		buf.WriteString("  }\n")
	}

	stale := make(map[string]bool)
	for _, l := range c.StaleLinks() {
		stale[l.ID] = true
	}

	buf.WriteString("\n")
	for _, l := range c.Links {
		attrs := edgeAttrs(l, opts.Detailed, stale[l.ID])
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", l.FromID, l.ToID)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", l.FromID, l.ToID, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(it chart.Item, detailed bool) []string {
	label := it.Label
	if label == "" {
		label = it.ID
	}
	if detailed {
		label += fmt.Sprintf("\n%g – %g", it.Start, it.End())
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if it.Kind == chart.KindState {
		attrs = append(attrs, "style=\"filled,dashed\"", "fillcolor=\"#f0f0f0\"")
	}
	if it.Color != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", it.Color))
	}
	return attrs
}

func edgeAttrs(l chart.Link, detailed, stale bool) []string {
	var attrs []string
	if detailed {
		from, to := l.Handles()
		attrs = append(attrs, fmt.Sprintf("taillabel=%q", string(from)), fmt.Sprintf("headlabel=%q", string(to)))
	}
	if l.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", l.Label))
	}
	switch {
	case stale:
		attrs = append(attrs, "style=dashed", "color=grey")
	case l.Color != "":
		attrs = append(attrs, fmt.Sprintf("color=%q", l.Color))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render DOT")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites Graphviz's root element so the drawing scales
// from a zero origin and its pixel size matches the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
