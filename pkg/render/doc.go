// Package render turns laid-out charts into images.
//
// # Overview
//
// Two views are available:
//
//   - [chartsvg]: the timeline itself, with swimlanes, bars, flags and
//     routed dependency links
//   - [deps]: a Graphviz node-link view of the dependency graph, with
//     items clustered by swimlane
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). Both views go through them.
//
//	svg := chartsvg.Render(l, routed, chartsvg.WithTitle(c.Title))
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// When rsvg-convert is missing the functions return an UNSUPPORTED error;
// [Available] checks up front.
//
// [chartsvg]: github.com/matzehuels/lanechart/pkg/render/chartsvg
// [deps]: github.com/matzehuels/lanechart/pkg/render/deps
package render
