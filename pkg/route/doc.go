// Package route computes obstacle-avoiding orthogonal paths between two
// points on a canvas and turns them into rounded SVG path data.
//
// # Overview
//
// Routing one link is a short, synchronous pipeline:
//
//  1. [BuildGrid] rasterizes the obstacle rectangles into an occupancy grid,
//     padding every obstacle by [PadX] cells horizontally and [PadY] cells
//     vertically so routes keep clear of bar labels.
//  2. [Search] runs A* over the 4-connected grid. Every step costs 1 and a
//     change of direction costs an extra [TurnPenalty], which favors routes
//     with few elbows over marginally shorter staircases.
//  3. [Simplify] removes collinear points and [EnsureHorizontalApproach]
//     guarantees the route enters its target horizontally.
//  4. [ToSVGPath] rounds each right-angle corner with a quadratic curve.
//
// [Router] bundles these steps behind a single [Router.Route] call and adds
// logging and observability hooks.
//
// # Guarantees
//
// The returned point list is never nil. The first point is always the
// literal start and the last point the literal end; consecutive points differ
// in exactly one axis. When no route exists, or the search exceeds
// [MaxExpansions] node expansions, a deterministic three-segment detour below
// both endpoints is returned instead (see [Fallback]).
//
// No state survives between calls. Each call builds its own grid and search
// structures, so a Router may be shared by any number of goroutines.
package route
