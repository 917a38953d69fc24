package httputil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/lanechart/pkg/errors"
)

// Defaults for [NewFetcher].
const (
	DefaultTimeout  = 30 * time.Second
	DefaultTTL      = time.Hour
	DefaultMaxBytes = 4 << 20
	DefaultAttempts = 3
)

// Cache is the subset of the render cache a Fetcher needs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// Document is a fetched response body.
type Document struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
	Cached      bool   `json:"-"`
}

// Fetcher downloads documents with retries and optional caching.
type Fetcher struct {
	Client   *http.Client
	Cache    Cache // nil disables caching
	TTL      time.Duration
	MaxBytes int64
	Attempts int
	Delay    time.Duration
}

// NewFetcher returns a Fetcher with default limits. c may be nil.
func NewFetcher(c Cache) *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: DefaultTimeout},
		Cache:    c,
		TTL:      DefaultTTL,
		MaxBytes: DefaultMaxBytes,
		Attempts: DefaultAttempts,
		Delay:    time.Second,
	}
}

// IsURL reports whether s looks like an http(s) URL rather than a path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func cacheKey(url string) string {
	h := sha256.Sum256([]byte(url))
	return "fetch:" + hex.EncodeToString(h[:])
}

// Fetch returns the body at url. A 404 is a FILE_NOT_FOUND error, other
// non-2xx statuses are INVALID_INPUT; neither is retried unless the status
// is 429 or 5xx.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Document, error) {
	if !IsURL(url) {
		return nil, errors.New(errors.ErrCodeInvalidPath, "not an http(s) URL: %q", url)
	}
	key := cacheKey(url)
	if f.Cache != nil {
		if data, ok, err := f.Cache.Get(ctx, key); err == nil && ok {
			var doc Document
			if json.Unmarshal(data, &doc) == nil {
				doc.Cached = true
				return &doc, nil
			}
		}
	}

	var doc *Document
	err := Retry(ctx, f.Attempts, f.Delay, func() error {
		var err error
		doc, err = f.get(ctx, url)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s", url)
		}
		if errors.GetCode(err) == "" {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "fetch %s", url)
		}
		return nil, err
	}

	if f.Cache != nil {
		if data, err := json.Marshal(doc); err == nil {
			_ = f.Cache.Set(ctx, key, data, f.TTL)
		}
	}
	return doc, nil
}

func (f *Fetcher) get(ctx context.Context, url string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "build request")
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, Retryable(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		wait := retryAfter(resp.Header.Get("Retry-After"), time.Now())
		return nil, RetryableAfter(fmt.Errorf("GET %s: %s", url, resp.Status), wait)
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeFileNotFound, "GET %s: %s", url, resp.Status)
	case resp.StatusCode >= 300:
		return nil, errors.New(errors.ErrCodeInvalidInput, "GET %s: %s", url, resp.Status)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, Retryable(err)
	}
	if int64(len(body)) > limit {
		return nil, errors.New(errors.ErrCodeInvalidInput, "GET %s: document larger than %d bytes", url, limit)
	}
	return &Document{URL: url, ContentType: resp.Header.Get("Content-Type"), Body: body}, nil
}
