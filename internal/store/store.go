// Package store provides the cache store for finalized catalog lists.
// Supports an in-memory backend and a Redis backend selectable by configuration.
package store

import (
	"context"
	"fmt"
	"time"

	"indcat/config"
	"indcat/internal/core"
)

// Entry is the cached catalog list for one key. FetchedAt records when the
// populate run that produced it completed; it drives the retry policy for
// populated-but-empty entries.
type Entry struct {
	Items     []core.CatalogItem `json:"items"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// Empty reports whether the entry was populated with zero items.
func (e *Entry) Empty() bool {
	return len(e.Items) == 0
}

// Store defines the interface for catalog list storage.
// Implementations must be safe for concurrent use. Get must never block on
// a concurrent populate; an in-flight run is invisible until its Put.
type Store interface {
	// Get retrieves the entry for key.
	// Returns nil, nil if no entry exists yet.
	Get(ctx context.Context, key core.CacheKey) (*Entry, error)

	// Put atomically replaces the entry for key.
	Put(ctx context.Context, key core.CacheKey, entry *Entry) error

	// Close releases any resources held by the store.
	Close() error
}

// New creates the store selected by cfg.Cache.Backend.
func New(cfg *config.Config) (Store, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(RedisConfig{
			URL:       cfg.Cache.RedisURL,
			KeyPrefix: cfg.Cache.RedisKeyPrefix,
			TTL:       cfg.Cache.RedisTTL,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend: %q", cfg.Cache.Backend)
	}
}
