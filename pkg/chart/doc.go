// Package chart defines the timeline chart document: swimlanes holding task
// and state bars, dependency links between bars, and flags marking points in
// time.
//
// Documents arrive as JSON or YAML (see pkg/io), are checked against the
// embedded JSON Schema with [ValidateSchema], filled in with [Chart.Normalize]
// and checked semantically with [Validate]. [Builder] assembles charts in
// code.
//
// Links record the swimlanes their endpoints lived in. When an item moves to
// another lane the link becomes stale; [Chart.StaleLinks] lists those so
// callers can skip them rather than draw a link to the wrong row.
package chart
