// Package cache stores computed layouts and rendered artifacts between runs.
//
// Layout computation is pure, so results can be memoized by a key derived
// from the input items and the layout options. [Cache] is a plain byte store
// with TTLs; the pipeline decides what to put in it.
//
// # Backends
//
//   - [NullCache]: caching disabled
//   - [MemoryCache]: process-local, used by the interactive browser
//   - [FileCache]: zstd-compressed files under the user cache directory (CLI default)
//   - [RedisCache]: shared cache for multi-instance API deployments
//   - [MongoCache]: shared cache with server-side TTL expiry
//
// # Keys
//
// Use a [Keyer] to build keys. [DefaultKeyer] hashes the options with
// SHA-256; [ScopedKeyer] adds a namespace prefix. [ItemsHash] fingerprints an
// item list with xxhash.
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.LayoutKey(cache.ItemsHash(items), cache.LayoutKeyOpts{Mode: "log", Width: 1200, Height: 800})
package cache

import (
	"context"
	"time"
)

// Cache is a key/value byte store with optional expiry.
//
// Get reports a miss with (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs.
const (
	// LayoutTTL is how long computed layouts are kept.
	LayoutTTL = 7 * 24 * time.Hour

	// ArtifactTTL is how long rendered SVG/JSON output is kept.
	ArtifactTTL = 24 * time.Hour
)
