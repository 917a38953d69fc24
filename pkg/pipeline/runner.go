package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lanechart/pkg/cache"
	"github.com/matzehuels/lanechart/pkg/chart"
	"github.com/matzehuels/lanechart/pkg/errors"
	"github.com/matzehuels/lanechart/pkg/layout"
	"github.com/matzehuels/lanechart/pkg/linklayer"
	"github.com/matzehuels/lanechart/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete validate → layout → route → render pipeline
// with caching. c is not modified.
func (r *Runner) Execute(ctx context.Context, c *chart.Chart, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := chart.Validate(c); err != nil {
		return nil, err
	}

	result := &Result{Chart: c}
	result.Stats.Lanes = len(c.Swimlanes)
	result.Stats.Items = c.ItemCount()
	result.Stats.Links = len(c.Links)

	hash, err := cache.HashJSON(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash chart")
	}
	result.ChartHash = hash

	if !opts.IsDeps() {
		l, routes, err := r.plan(ctx, c, opts, &result.Stats)
		if err != nil {
			return nil, err
		}
		result.Layout = l
		result.Routes = routes
	}

	renderStart := time.Now()
	artifacts, hit, err := r.render(ctx, c, hash, result.Layout, result.Routes, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Plan lays c out and routes its links without rendering.
func (r *Runner) Plan(ctx context.Context, c *chart.Chart, opts Options) (*layout.Layout, []linklayer.Routed, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := chart.Validate(c); err != nil {
		return nil, nil, err
	}
	var stats Stats
	return r.plan(ctx, c, opts, &stats)
}

func (r *Runner) plan(ctx context.Context, c *chart.Chart, opts Options, stats *Stats) (*layout.Layout, []linklayer.Routed, error) {
	hooks := observability.Pipeline()

	// Stage 1: Layout
	layoutStart := time.Now()
	hooks.OnLayoutStart(ctx, c.ID, c.ItemCount())
	l := GenerateLayout(c, opts)
	stats.LayoutTime = time.Since(layoutStart)
	hooks.OnLayoutComplete(ctx, c.ID, stats.LayoutTime, nil)

	r.Logger.Debug("computed layout",
		"lanes", len(l.Lanes),
		"bars", len(l.Bars),
		"canvas", fmt.Sprintf("%gx%g", l.Canvas.Width, l.Canvas.Height),
		"duration", stats.LayoutTime)

	// Stage 2: Route
	routeStart := time.Now()
	routes, err := RouteLinks(ctx, c, l, opts)
	if err != nil {
		return nil, nil, err
	}
	stats.RouteTime = time.Since(routeStart)
	stats.Routed = len(routes)
	stats.Skipped = len(c.Links) - len(routes)
	for _, rt := range routes {
		if rt.Fallback {
			stats.Fallbacks++
		}
	}

	r.Logger.Info("routed links",
		"routed", stats.Routed,
		"skipped", stats.Skipped,
		"fallbacks", stats.Fallbacks,
		"duration", stats.RouteTime)

	return l, routes, nil
}

// Render produces every requested format, reusing cached artifacts. The
// bool reports whether all of them came from the cache. l and routes are
// ignored for the deps viz type.
func (r *Runner) Render(ctx context.Context, c *chart.Chart, l *layout.Layout, routes []linklayer.Routed, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, fmt.Errorf("invalid options: %w", err)
	}
	if !opts.IsDeps() && l == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidInput, "chart view needs a layout")
	}
	hash, err := cache.HashJSON(c)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash chart")
	}
	return r.render(ctx, c, hash, l, routes, opts)
}

func (r *Runner) render(ctx context.Context, c *chart.Chart, hash string, l *layout.Layout, routes []linklayer.Routed, opts Options) (map[string][]byte, bool, error) {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)

	artifacts := make(map[string][]byte, len(opts.Formats))
	allHit := true
	var err error
	for _, format := range opts.Formats {
		if _, done := artifacts[format]; done {
			continue
		}
		compute := func() ([]byte, error) {
			return renderFormat(ctx, c, l, routes, format, opts)
		}
		var (
			data []byte
			hit  bool
		)
		if opts.Refresh {
			data, err = compute()
			if err == nil {
				_ = r.Cache.Set(ctx, r.artifactKey(hash, format, opts), data, r.ttl(format))
			}
		} else {
			data, hit, err = cache.GetOrCompute(ctx, r.Cache, r.artifactKey(hash, format, opts), r.ttl(format), compute)
		}
		if err != nil {
			break
		}
		allHit = allHit && hit
		artifacts[format] = data
	}

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	return artifacts, allHit, nil
}

// artifactKey uses the layout key for the JSON scene, which only depends on
// layout and routing.
func (r *Runner) artifactKey(hash, format string, opts Options) string {
	if format == FormatJSON && !opts.IsDeps() {
		return r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())
	}
	return r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
}

func (r *Runner) ttl(format string) time.Duration {
	if format == FormatJSON {
		return cache.TTLLayout
	}
	return cache.TTLArtifact
}

// RouteLink lays c out and routes a single link, which need not be part of
// c. The bool is false when the link was skipped.
func (r *Runner) RouteLink(ctx context.Context, c *chart.Chart, link chart.Link, opts Options) (linklayer.Routed, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return linklayer.Routed{}, false, fmt.Errorf("invalid options: %w", err)
	}
	if err := chart.Validate(c); err != nil {
		return linklayer.Routed{}, false, err
	}
	return RouteLink(ctx, link, GenerateLayout(c, opts), opts)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
