// Package pkg provides the core libraries for Lanechart timeline charts.
//
// # Overview
//
// Lanechart draws timelines of swimlanes holding items (bars and states) and
// routes the dependency links between those items as rounded orthogonal paths
// that stay clear of every bar. The pkg directory is organized into four
// areas:
//
//  1. Domain model: [chart], [geom]
//  2. Routing: [route], [linklayer], [layout]
//  3. Output: [render], [render/chartsvg], [render/deps], [io]
//  4. Plumbing: [pipeline], [cache], [store], [httputil], [errors],
//     [observability], [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	JSON / YAML document
//	         ↓
//	    [io] package (decode + schema + semantic validation)
//	         ↓
//	    [layout] package (time → x, lane → y, item rectangles)
//	         ↓
//	    [linklayer] package (endpoints, obstacles, one route per link)
//	         ↓
//	    [route] package (grid, A*, simplify, rounded SVG path)
//	         ↓
//	    [render/chartsvg] or [render/deps] → SVG/PDF/PNG/JSON/DOT
//
// [pipeline] runs the whole chain and is shared by the CLI and the HTTP
// server, so both produce identical output for the same input.
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/lanechart/pkg/cache"
//	    chartio "github.com/matzehuels/lanechart/pkg/io"
//	    "github.com/matzehuels/lanechart/pkg/pipeline"
//	)
//
//	c, _ := chartio.Import("plan.yaml")
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	defer runner.Close()
//
//	res, _ := runner.Execute(context.Background(), c, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	svg := res.Artifacts[pipeline.FormatSVG]
//
// # Main Packages
//
// [route] - The link router. A padded occupancy grid is rebuilt from the
// obstacles for every request, searched with a turn-penalized A*, simplified
// to corner points and drawn as a path with quadratic corners. When no path
// exists the router falls back to a fixed detour below both endpoints.
//
// [linklayer] - Resolves link endpoints against item rectangles, filters the
// obstacle list, nudges coincident routes apart and previews drags.
//
// [layout] - Places swimlanes and items on the canvas under a viewport.
//
// [cache] - Layout and render caching with file, Redis and null backends.
//
// [store] - Saved chart documents in memory, on disk or in MongoDB.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/route/...              # Specific package
//	go test -run Example                 # Examples only
//
// [chart]: https://pkg.go.dev/github.com/matzehuels/lanechart/pkg/chart
// [geom]: https://pkg.go.dev/github.com/matzehuels/lanechart/pkg/geom
// [route]: https://pkg.go.dev/github.com/matzehuels/lanechart/pkg/route
// [linklayer]: https://pkg.go.dev/github.com/matzehuels/lanechart/pkg/linklayer
// [layout]: https://pkg.go.dev/github.com/matzehuels/lanechart/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/lanechart/pkg/render
// [render/chartsvg]: https://pkg.go.dev/github.com/matzehuels/lanechart/pkg/render/chartsvg
// [render/deps]: https://pkg.go.dev/github.com/matzehuels/lanechart/pkg/render/deps
// [io]: https://pkg.go.dev/github.com/matzehuels/lanechart/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/lanechart/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/lanechart/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/lanechart/pkg/store
// [httputil]: https://pkg.go.dev/github.com/matzehuels/lanechart/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/matzehuels/lanechart/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/lanechart/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/lanechart/pkg/buildinfo
package pkg
