// Package cache provides byte-oriented caches for fetched export resources.
//
// The export pipeline resolves every external image in a tab to an embedded
// data URI. Fetching the same image on every export is wasteful, so resolved
// data URIs are stored in a [Cache] keyed by the image's absolute URL.
//
// Three backends are available:
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for several panel servers
//
// Keys are produced by a [Keyer] so that deployments sharing one Redis can
// isolate themselves with [NewScopedKeyer].
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional time-to-live.
//
// Get reports a miss with (nil, false, nil); an error means the backend
// itself failed. A ttl of 0 stores the value without expiration.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys for the resources the exporter caches.
type Keyer interface {
	// ImageKey returns the key for the embedded form of the image at url.
	ImageKey(url string) string
	// ChartKey returns the key for a rendered chart with the given options hash.
	ChartKey(optsHash string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ImageKey hashes the URL so that arbitrary URLs yield safe keys.
func (DefaultKeyer) ImageKey(url string) string {
	return hashKey("img", url)
}

// ChartKey returns a key for a rendered chart image.
func (DefaultKeyer) ChartKey(optsHash string) string {
	return "chart:" + optsHash
}
