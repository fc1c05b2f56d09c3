package cache

import (
	"fmt"
	"time"
)

// Supported engines.
const (
	EngineMemory = "memory"
	EngineRedis  = "redis"
)

// CacheConfig configures the term cache behind the memoized strategy.
type CacheConfig struct {
	// Engine selects the backend: "memory" or "redis".
	Engine string `yaml:"engine" toml:"engine" json:"engine" env:"ENGINE" default:"memory" desc:"Cache engine (memory or redis)"`

	// DefaultTTL is how long a term stays cached. Zero keeps terms forever.
	DefaultTTL time.Duration `yaml:"defaultTTL" toml:"defaultTTL" json:"defaultTTL" env:"DEFAULT_TTL" desc:"Time to live for cached terms, 0 for no expiry"`

	// CleanupInterval is how often the memory engine drops expired terms.
	CleanupInterval time.Duration `yaml:"cleanupInterval" toml:"cleanupInterval" json:"cleanupInterval" env:"CLEANUP_INTERVAL" default:"60s" desc:"Expired entry cleanup interval (memory engine)"`

	// MaxItems caps the memory engine. Zero means unbounded.
	MaxItems int `yaml:"maxItems" toml:"maxItems" json:"maxItems" env:"MAX_ITEMS" default:"10000" desc:"Maximum cached terms (memory engine)"`

	RedisURL      string `yaml:"redisURL" toml:"redisURL" json:"redisURL" env:"REDIS_URL" default:"redis://localhost:6379" desc:"Redis connection URL"`
	RedisPassword string `yaml:"redisPassword" toml:"redisPassword" json:"redisPassword" env:"REDIS_PASSWORD" desc:"Redis password, overrides the URL"`
	RedisDB       int    `yaml:"redisDB" toml:"redisDB" json:"redisDB" env:"REDIS_DB" desc:"Redis database number, overrides the URL when non-zero"`

	// KeyPrefix namespaces every Redis key.
	KeyPrefix string `yaml:"keyPrefix" toml:"keyPrefix" json:"keyPrefix" env:"KEY_PREFIX" default:"fibonacci" desc:"Prefix for Redis keys"`
}

// Validate implements app.ConfigValidator.
func (c *CacheConfig) Validate() error {
	switch c.Engine {
	case EngineMemory, EngineRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEngine, c.Engine)
	}
	if c.MaxItems < 0 {
		return fmt.Errorf("%w: maxItems must not be negative", ErrInvalidConfig)
	}
	if c.DefaultTTL < 0 {
		return fmt.Errorf("%w: defaultTTL must not be negative", ErrInvalidConfig)
	}
	if c.Engine == EngineRedis && c.RedisURL == "" {
		return fmt.Errorf("%w: redisURL is required for the redis engine", ErrInvalidConfig)
	}
	return nil
}
