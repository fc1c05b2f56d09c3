package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint used when walking keys for Flush and Len.
const scanBatch = 100

// RedisCache implements CacheEngine on a Redis server. Terms are stored as
// decimal strings under "<keyPrefix>:term:<n>".
type RedisCache struct {
	config *CacheConfig
	mu     sync.RWMutex
	client *redis.Client
}

// NewRedisCache creates a new Redis cache engine. No connection is made
// until Connect.
func NewRedisCache(config *CacheConfig) *RedisCache {
	return &RedisCache{
		config: config,
	}
}

// Connect parses the URL, applies password and database overrides, and
// pings the server.
func (c *RedisCache) Connect(ctx context.Context) error {
	opts, err := redis.ParseURL(c.config.RedisURL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	if c.config.RedisPassword != "" {
		opts.Password = c.config.RedisPassword
	}
	if c.config.RedisDB != 0 {
		opts.DB = c.config.RedisDB
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("connect to redis: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		_ = c.client.Close()
	}
	c.client = client
	return nil
}

// Close closes the client. Closing an unconnected engine is a no-op.
func (c *RedisCache) Close(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// Load implements fibonacci.MemoStore.
func (c *RedisCache) Load(ctx context.Context, n int) (uint64, bool, error) {
	client, err := c.connected()
	if err != nil {
		return 0, false, err
	}

	raw, err := client.Get(ctx, c.key(n)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load term %d: %w", n, err)
	}

	term, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: index %d: %q", ErrCorruptTerm, n, raw)
	}
	return term, true, nil
}

// Store implements fibonacci.MemoStore.
func (c *RedisCache) Store(ctx context.Context, n int, term uint64) error {
	client, err := c.connected()
	if err != nil {
		return err
	}
	if err := client.Set(ctx, c.key(n), strconv.FormatUint(term, 10), c.config.DefaultTTL).Err(); err != nil {
		return fmt.Errorf("store term %d: %w", n, err)
	}
	return nil
}

// Flush deletes every key under the configured prefix. Other keys in the
// database are left alone.
func (c *RedisCache) Flush(ctx context.Context) error {
	client, err := c.connected()
	if err != nil {
		return err
	}

	iter := client.Scan(ctx, 0, c.pattern(), scanBatch).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete keys: %w", err)
	}
	return nil
}

// Len counts the keys under the configured prefix.
func (c *RedisCache) Len(ctx context.Context) (int, error) {
	client, err := c.connected()
	if err != nil {
		return 0, err
	}

	count := 0
	iter := client.Scan(ctx, 0, c.pattern(), scanBatch).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scan keys: %w", err)
	}
	return count, nil
}

// Ping checks the server is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	client, err := c.connected()
	if err != nil {
		return err
	}
	return client.Ping(ctx).Err()
}

func (c *RedisCache) connected() (*redis.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.client == nil {
		return nil, ErrNotConnected
	}
	return c.client, nil
}

func (c *RedisCache) key(n int) string {
	return c.config.KeyPrefix + ":term:" + strconv.Itoa(n)
}

func (c *RedisCache) pattern() string {
	return c.config.KeyPrefix + ":term:*"
}
