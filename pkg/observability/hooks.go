// Package observability lets callers instrument lanechart without the
// library depending on a metrics or tracing backend.
//
// Four hook sets exist: pipeline stages, link routing, cache access and
// HTTP requests. Each starts out as a no-op. Register replacements once at
// startup:
//
//	observability.SetRouteHooks(&routeMetrics{})
//
// and the instrumented packages report through the accessors:
//
//	observability.Routing().OnRouteComplete(ctx, linkID, expansions, fallback, took)
//
// Swapping hooks is safe while other goroutines emit events; emitters see
// either the old or the new set, never a mix within one accessor call.
package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives stage events from pipeline.Runner. chartID is the
// content hash of the chart being processed.
type PipelineHooks interface {
	OnLayoutStart(ctx context.Context, chartID string, itemCount int)
	OnLayoutComplete(ctx context.Context, chartID string, took time.Duration, err error)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, took time.Duration, err error)
}

// =============================================================================
// Route Hooks
// =============================================================================

// RouteHooks receives events from the link router and link layer.
type RouteHooks interface {
	// OnRouteStart records the start of a single route search.
	OnRouteStart(ctx context.Context, linkID string, obstacles int)

	// OnRouteComplete records a finished route. fallback is true when the
	// grid search gave up and the detour route was used.
	OnRouteComplete(ctx context.Context, linkID string, expansions int, fallback bool, duration time.Duration)

	// OnLinkSkipped records a link that was not routed, with a short reason
	// such as "missing-endpoint" or "coincident".
	OnLinkSkipped(ctx context.Context, linkID, reason string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives lookups and writes made through cache.GetOrCompute.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, key string)
	OnCacheMiss(ctx context.Context, key string)
	OnCacheSet(ctx context.Context, key string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks sees every request served by the HTTP API.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, status int, took time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// The Noop types can be embedded to implement only part of an interface.

// NoopPipelineHooks ignores every event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                       {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, time.Duration, error)   {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopRouteHooks ignores every event.
type NoopRouteHooks struct{}

func (NoopRouteHooks) OnRouteStart(context.Context, string, int)                         {}
func (NoopRouteHooks) OnRouteComplete(context.Context, string, int, bool, time.Duration) {}
func (NoopRouteHooks) OnLinkSkipped(context.Context, string, string)                     {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Registry
// =============================================================================

// hookSet is an immutable snapshot of the registered hooks. Setters copy
// it, so readers never take a lock.
type hookSet struct {
	pipeline PipelineHooks
	route    RouteHooks
	cache    CacheHooks
	http     HTTPHooks
}

func defaults() *hookSet {
	return &hookSet{
		pipeline: NoopPipelineHooks{},
		route:    NoopRouteHooks{},
		cache:    NoopCacheHooks{},
		http:     NoopHTTPHooks{},
	}
}

var (
	current  atomic.Pointer[hookSet]
	updateMu sync.Mutex
)

func init() { current.Store(defaults()) }

// update applies fn to a copy of the current set and publishes it.
func update(fn func(*hookSet)) {
	updateMu.Lock()
	defer updateMu.Unlock()
	next := *current.Load()
	fn(&next)
	current.Store(&next)
}

// SetPipelineHooks registers pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(s *hookSet) { s.pipeline = h })
	}
}

// SetRouteHooks registers routing hooks. nil is ignored.
func SetRouteHooks(h RouteHooks) {
	if h != nil {
		update(func(s *hookSet) { s.route = h })
	}
}

// SetCacheHooks registers cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(s *hookSet) { s.cache = h })
	}
}

// SetHTTPHooks registers HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(s *hookSet) { s.http = h })
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return current.Load().pipeline }

// Routing returns the registered routing hooks.
func Routing() RouteHooks { return current.Load().route }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return current.Load().cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return current.Load().http }

// Reset restores the no-op hooks. Tests call it in cleanup.
func Reset() {
	updateMu.Lock()
	defer updateMu.Unlock()
	current.Store(defaults())
}
