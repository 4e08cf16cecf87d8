// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Server  ServerConfig
	TMDB    TMDBConfig
	Catalog CatalogConfig
	Cache   CacheConfig
	Metrics MetricsConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port          string
	BodySizeLimit int64
}

// TMDBConfig holds metadata source configuration
type TMDBConfig struct {
	BaseURL      string
	ImageBaseURL string
	// Region used for the subscription-availability check.
	Region string
}

// CatalogConfig holds cache population and pagination configuration
type CatalogConfig struct {
	// PageSize is the fixed number of items returned per catalog read.
	PageSize int
	// PageCeiling bounds discovery pagination. It is a termination safety
	// valve against an upstream that never signals "no more pages", not a
	// tuned business value.
	PageCeiling int
	// EmptyRetryInterval is how long a populated-but-empty entry is served
	// before a read may trigger a fresh populate for its key.
	EmptyRetryInterval time.Duration
	// MaxConcurrentFetches bounds the number of populate runs in flight
	// across all keys.
	MaxConcurrentFetches int
	// LanguagesFile optionally points at a YAML file overriding the
	// built-in language registry.
	LanguagesFile string
}

// CacheConfig holds cache store backend configuration
type CacheConfig struct {
	// Backend selects the store implementation: "memory" (default) or "redis".
	Backend string
	// RedisURL is the Redis connection URL (e.g., "redis://localhost:6379/0").
	RedisURL string
	// RedisKeyPrefix namespaces catalog entries in Redis.
	RedisKeyPrefix string
	// RedisTTL is the time-to-live for Redis-stored entries.
	RedisTTL time.Duration
}

// MetricsConfig holds Prometheus metrics configuration
type MetricsConfig struct {
	Enabled  bool
	Endpoint string
}

// LoggingConfig holds log output configuration
type LoggingConfig struct {
	// Format selects the slog handler: "json" (default) or "pretty".
	Format string
	Level  string
}

// DefaultBodySizeLimit is the default maximum request body size in bytes.
const DefaultBodySizeLimit int64 = 1 << 20 // 1MB

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:          getEnv("PORT", "10000"),
			BodySizeLimit: DefaultBodySizeLimit,
		},
		TMDB: TMDBConfig{
			BaseURL:      getEnv("INDCAT_TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			ImageBaseURL: getEnv("INDCAT_TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p"),
			Region:       getEnv("INDCAT_REGION", "IN"),
		},
		Catalog: CatalogConfig{
			PageSize:             100,
			PageCeiling:          getEnvInt("INDCAT_PAGE_CEILING", 999),
			EmptyRetryInterval:   getEnvDuration("INDCAT_EMPTY_RETRY_INTERVAL", 15*time.Minute),
			MaxConcurrentFetches: getEnvInt("INDCAT_MAX_CONCURRENT_FETCHES", 4),
			LanguagesFile:        getEnv("INDCAT_LANGUAGES_FILE", ""),
		},
		Cache: CacheConfig{
			Backend:        getEnv("INDCAT_CACHE_BACKEND", "memory"),
			RedisURL:       getEnv("INDCAT_REDIS_URL", ""),
			RedisKeyPrefix: getEnv("INDCAT_REDIS_KEY_PREFIX", "indcat:catalog:"),
			RedisTTL:       getEnvDuration("INDCAT_REDIS_TTL", 24*time.Hour),
		},
		Metrics: MetricsConfig{
			Enabled:  getEnvBool("INDCAT_METRICS_ENABLED", false),
			Endpoint: getEnv("INDCAT_METRICS_ENDPOINT", "/metrics"),
		},
		Logging: LoggingConfig{
			Format: getEnv("INDCAT_LOG_FORMAT", "json"),
			Level:  getEnv("INDCAT_LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Catalog.PageSize <= 0 {
		return fmt.Errorf("catalog page size must be positive, got %d", c.Catalog.PageSize)
	}
	if c.Catalog.PageCeiling <= 0 {
		return fmt.Errorf("page ceiling must be positive, got %d", c.Catalog.PageCeiling)
	}
	if c.Catalog.MaxConcurrentFetches <= 0 {
		return fmt.Errorf("max concurrent fetches must be positive, got %d", c.Catalog.MaxConcurrentFetches)
	}
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("INDCAT_REDIS_URL is required when cache backend is redis")
		}
	default:
		return fmt.Errorf("unknown cache backend %q (expected memory or redis)", c.Cache.Backend)
	}
	switch c.Logging.Format {
	case "json", "pretty":
	default:
		return fmt.Errorf("unknown log format %q (expected json or pretty)", c.Logging.Format)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

// getEnvDuration accepts either plain integers (interpreted as seconds) or
// Go duration strings (e.g., "15m", "1h30m").
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	return defaultVal
}
