// Package cache persists evaluated chunk results keyed by content
// fingerprint. Reuse is semantically transparent: a warm cache may only
// change render latency, never rendered bytes, and the whole store may be
// discarded at any time without correctness loss.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrChecksumMismatch indicates a stored fragment no longer matches the
// checksum recorded with it. Such entries are never served.
var ErrChecksumMismatch = errors.New("cached fragment failed checksum verification")

// Stats summarizes store contents for the `cache stats` command.
type Stats struct {
	Entries int
	Bytes   int64
	Oldest  time.Time
}

// Store is the fragment cache interface.
type Store interface {
	// Get returns the cached output for key. ok is false on a miss.
	// A hit whose integrity checksum fails returns ErrChecksumMismatch.
	Get(ctx context.Context, key string) (output string, ok bool, err error)

	// Put stores (or replaces) the output for key. passID identifies the
	// render pass that produced it, for diagnostics only.
	Put(ctx context.Context, key, lang, output, passID string) error

	// Delete removes an entry; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Stats reports entry count and size.
	Stats(ctx context.Context) (Stats, error)

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}
