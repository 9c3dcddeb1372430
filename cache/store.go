// Package cache stores rendered GET responses keyed by request shape.
package cache

import (
	"context"
	"time"
)

// Store is a string key-value store with per-entry expiry. Patterns use SQL
// LIKE wildcards: % for any run of characters, _ for a single one.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) (int64, error)
	// Sweep removes expired entries and reports how many were removed.
	Sweep(ctx context.Context) (int64, error)
}
