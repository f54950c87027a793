// Package cache stores rendered artifacts, such as a user's mosaic SVG,
// keyed by a hash of the inputs that produced them.
//
// Implementations:
//   - [NullCache]: caches nothing
//   - [FileCache]: JSON entries on disk for the CLI
//   - [RedisCache]: shared cache for servers
//
// Keys come from a [Keyer], which hashes the content together with the
// render options so that any change to points, shards or size yields a new
// key and stale entries are simply never read again.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value cache with optional expiry.
type Cache interface {
	// Get returns the cached data and whether it was found. A miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// MosaicKey returns the key of a rendered mosaic artifact. contentHash
	// identifies the working set and shards that were rendered.
	MosaicKey(contentHash string, opts MosaicKeyOpts) string
}

// MosaicKeyOpts are the render options that affect the artifact bytes.
type MosaicKeyOpts struct {
	Format      string `json:"format"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Interactive bool   `json:"interactive,omitempty"`
}

// DefaultKeyer hashes the content hash and options into a fixed-length key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// MosaicKey implements Keyer.
func (DefaultKeyer) MosaicKey(contentHash string, opts MosaicKeyOpts) string {
	return "mosaic:" + mosaicDigest(contentHash, opts)
}
