package cache

import (
	"context"
	"time"
)

// NullCache stores nothing; every Get misses. The pipeline uses it when
// caching is off.
type NullCache struct{}

// NewNullCache returns a NullCache as a Cache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
