// Package chartsvg draws a laid-out chart and its routed links as SVG.
//
// The output is self-contained: styles and the optional hover script are
// inlined, and every element carries a stable id ("bar-<item>",
// "link-<link>") so the document can be scripted or diffed.
//
//	l := layout.Build(c, layout.Options{}, layout.Viewport{})
//	routed := linklayer.New(logger).Resolve(ctx, c.Links, l, l.Canvas, linklayer.Options{})
//	svg := chartsvg.Render(l, routed, chartsvg.WithTitle(c.Title))
//
// Link paths are drawn exactly as the router produced them, with an
// arrowhead that assumes a horizontal final segment.
package chartsvg
