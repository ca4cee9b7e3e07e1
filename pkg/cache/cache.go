// Package cache provides byte-level caches for parsed uploads and rendered
// snapshots.
//
// # Backends
//
//   - [FileCache]: entries as JSON files under a directory, for the CLI
//   - [RedisCache]: entries in Redis, shared by every API replica
//   - [NullCache]: stores nothing, for tests and --no-cache
//
// All backends satisfy [Cache]. Keys are produced by a [Keyer] so the same
// content always lands on the same key regardless of backend.
//
// # Keys
//
// Graph keys are derived from the SHA-256 of the uploaded bytes plus the
// format, so re-uploading an identical file skips parsing. Snapshot keys
// combine the graph hash with the encoding configuration and the highlight
// sets, so a static render is reused until any of them changes.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Default time-to-live values.
const (
	GraphTTL    = 24 * time.Hour
	SnapshotTTL = time.Hour
)
