// Package cache stores rendered artifacts and routed layouts so unchanged
// charts are not laid out, routed and drawn again.
//
// Three backends share the [Cache] interface:
//
//   - [NullCache] never stores anything
//   - [FileCache] keeps entries on disk, used by the CLI
//   - [RedisCache] shares entries between server instances
//
// Keys come from a [Keyer]. [DefaultKeyer] hashes the chart content hash
// together with every option that changes the output, so a key changes
// whenever the result could.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/lanechart/pkg/observability"
)

// Default entry lifetimes.
const (
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with optional expiry.
// Implementations are safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies a laid-out and routed chart.
	LayoutKey(chartHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendered output file.
	ArtifactKey(chartHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the inputs that change layout and routing.
type LayoutKeyOpts struct {
	Width        float64 `json:"width,omitempty"`
	LabelWidth   float64 `json:"label_width,omitempty"`
	HeaderHeight float64 `json:"header_height,omitempty"`
	LaneHeight   float64 `json:"lane_height,omitempty"`
	BarHeight    float64 `json:"bar_height,omitempty"`
	Padding      float64 `json:"padding,omitempty"`
	PxPerUnit    float64 `json:"px_per_unit,omitempty"`
	Zoom         float64 `json:"zoom,omitempty"`
	ScrollX      float64 `json:"scroll_x,omitempty"`
	ScrollY      float64 `json:"scroll_y,omitempty"`
	CellSize     float64 `json:"cell_size,omitempty"`
	Radius       float64 `json:"radius,omitempty"`
	Drag         string  `json:"drag,omitempty"`
	DragStart    float64 `json:"drag_start,omitempty"`
	Selected     string  `json:"selected,omitempty"`
}

// ArtifactKeyOpts are the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	VizType     string        `json:"viz_type"`
	Format      string        `json:"format"`
	Layout      LayoutKeyOpts `json:"layout"`
	Grid        bool          `json:"grid,omitempty"`
	Interactive bool          `json:"interactive,omitempty"`
	Detailed    bool          `json:"detailed,omitempty"`
	LeftToRight bool          `json:"left_to_right,omitempty"`
	Title       string        `json:"title,omitempty"`
	Scale       float64       `json:"scale,omitempty"`
}

// DefaultKeyer produces keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(chartHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", chartHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(chartHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.VizType+":"+opts.Format, chartHash, opts)
}

// GetOrCompute returns the cached value for key, or runs compute, stores its
// result with ttl and returns it. The bool reports a cache hit. Cache read
// and write failures are not fatal; compute errors are returned as is.
func GetOrCompute(ctx context.Context, c Cache, key string, ttl time.Duration, compute func() ([]byte, error)) ([]byte, bool, error) {
	hooks := observability.Cache()
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		hooks.OnCacheHit(ctx, key)
		return data, true, nil
	}
	hooks.OnCacheMiss(ctx, key)

	data, err := compute()
	if err != nil {
		return nil, false, err
	}
	if err := c.Set(ctx, key, data, ttl); err == nil {
		hooks.OnCacheSet(ctx, key, len(data))
	}
	return data, false, nil
}
