package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"indcat/internal/core"
)

const (
	// DefaultRedisKeyPrefix namespaces catalog entries in Redis.
	DefaultRedisKeyPrefix = "indcat:catalog:"

	// DefaultRedisTTL is the default time-to-live for stored entries.
	// The addon has no eviction policy of its own; the TTL ensures stale
	// lists eventually expire if the process stops refreshing them.
	DefaultRedisTTL = 24 * time.Hour
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379" or "redis://:password@host:6379/0")
	URL string

	// KeyPrefix namespaces catalog entries (defaults to "indcat:catalog:")
	KeyPrefix string

	// TTL is the time-to-live for stored entries (defaults to 24 hours)
	TTL time.Duration
}

// RedisStore implements Store using Redis. Cache keys already hash the
// credential, so Redis key names never contain a raw API key.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore creates a new Redis-backed store.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = DefaultRedisKeyPrefix
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultRedisTTL
	}

	slog.Info("redis store connected", "key_prefix", keyPrefix, "ttl", ttl)

	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}, nil
}

// Get retrieves the entry for key from Redis.
func (s *RedisStore) Get(ctx context.Context, key core.CacheKey) (*Entry, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+string(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // No entry yet, not an error
		}
		return nil, fmt.Errorf("failed to get entry from redis: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to parse entry from redis: %w", err)
	}

	return &entry, nil
}

// Put stores the entry for key in Redis.
func (s *RedisStore) Put(ctx context.Context, key core.CacheKey, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if err := s.client.Set(ctx, s.keyPrefix+string(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set entry in redis: %w", err)
	}

	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
