package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache implements CacheEngine using in-memory storage
type MemoryCache struct {
	config     *CacheConfig
	items      map[int]cacheItem
	mutex      sync.RWMutex
	cancelFunc context.CancelFunc
	done       chan struct{}
}

type cacheItem struct {
	term       uint64
	expiration time.Time
}

func (i cacheItem) expired(now time.Time) bool {
	return !i.expiration.IsZero() && now.After(i.expiration)
}

// NewMemoryCache creates a new memory cache engine
func NewMemoryCache(config *CacheConfig) *MemoryCache {
	return &MemoryCache{
		config: config,
		items:  make(map[int]cacheItem),
	}
}

// Connect starts the cleanup loop.
func (c *MemoryCache) Connect(_ context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.cancelFunc != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelFunc = cancel
	c.done = make(chan struct{})
	go c.cleanupLoop(ctx, c.done)
	return nil
}

// Close stops the cleanup loop and waits for it to exit.
func (c *MemoryCache) Close(_ context.Context) error {
	c.mutex.Lock()
	cancel, done := c.cancelFunc, c.done
	c.cancelFunc, c.done = nil, nil
	c.mutex.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}

// Load implements fibonacci.MemoStore. Expired terms count as misses.
func (c *MemoryCache) Load(_ context.Context, n int) (uint64, bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, found := c.items[n]
	if !found || item.expired(time.Now()) {
		return 0, false, nil
	}
	return item.term, true, nil
}

// Store implements fibonacci.MemoStore. New terms are rejected with
// ErrCacheFull once MaxItems is reached; existing terms may be refreshed.
func (c *MemoryCache) Store(_ context.Context, n int, term uint64) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.items[n]; !exists && c.config.MaxItems > 0 && len(c.items) >= c.config.MaxItems {
		return ErrCacheFull
	}

	var exp time.Time
	if c.config.DefaultTTL > 0 {
		exp = time.Now().Add(c.config.DefaultTTL)
	}
	c.items[n] = cacheItem{term: term, expiration: exp}
	return nil
}

// Flush removes every term.
func (c *MemoryCache) Flush(_ context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items = make(map[int]cacheItem)
	return nil
}

// Len reports the number of stored terms, expired or not.
func (c *MemoryCache) Len(_ context.Context) (int, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.items), nil
}

// Ping always succeeds.
func (c *MemoryCache) Ping(_ context.Context) error {
	return nil
}

func (c *MemoryCache) cleanupLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	interval := c.config.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-ctx.Done():
			return
		}
	}
}

func (c *MemoryCache) cleanupExpired() {
	now := time.Now()
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for n, item := range c.items {
		if item.expired(now) {
			delete(c.items, n)
		}
	}
}
