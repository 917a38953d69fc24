// Package linklayer turns a chart's dependency links into routed paths.
//
// For every link the layer resolves the live screen rectangles of both
// connected bars from a [Positions] provider, preferring an in-progress
// [Drag] over the committed position. The start handle attaches to the
// middle of a bar's left edge and the finish handle to the middle of its
// right edge. Every other bar on screen becomes an obstacle, and the request
// goes to a [route.Router].
//
// Links that cannot be drawn are skipped, never reported as errors:
//
//   - an endpoint whose item is gone or no longer sits in the recorded
//     swimlane ("missing-endpoint")
//   - endpoints closer than [MinSeparation] on both axes ("coincident")
//
// Skips are logged at debug level and reported through
// observability.RouteHooks.OnLinkSkipped. Nothing is cached between calls to
// [Layer.Resolve]; positions can change for reasons the layer never sees.
package linklayer
