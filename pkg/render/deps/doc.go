// Package deps renders a chart's dependency graph as a node-link diagram.
//
// Items become boxes grouped into one cluster per swimlane; links become
// arrows. Time is ignored, which makes this view useful for spotting
// dependency chains that the timeline spreads across many lanes.
//
//	dot := deps.ToDOT(c, deps.Options{})
//	svg, err := deps.RenderSVG(ctx, dot)
//
// Links whose recorded swimlanes no longer match are drawn dashed and grey.
// Rendering uses the Graphviz library embedded by go-graphviz, so no
// external binary is needed for SVG; PDF and PNG go through
// render.ToPDF and render.ToPNG.
package deps
