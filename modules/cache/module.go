// Package cache provides the term store behind the memoized strategy.
//
// Two engines are available: an in-process map with TTL and capacity
// limits, and Redis through go-redis. The module publishes itself as the
// "fibonacci.memo" service, so the computer module can use it as a
// fibonacci.MemoStore.
package cache

import (
	"context"
	"fmt"

	"github.com/GoCodeAlone/fibonacci"
	"github.com/GoCodeAlone/fibonacci/app"
)

// ModuleName is the name of this module
const ModuleName = "cache"

// ServiceName is the name of the service provided by this module
const ServiceName = "fibonacci.memo"

// CacheModule represents the cache module
type CacheModule struct {
	name        string
	config      *CacheConfig
	logger      app.Logger
	subject     app.Subject
	cacheEngine CacheEngine
}

var _ fibonacci.MemoStore = (*CacheModule)(nil)

// NewModule creates a new instance of the cache module
func NewModule() *CacheModule {
	return &CacheModule{
		name: ModuleName,
	}
}

// Name returns the name of the module
func (m *CacheModule) Name() string {
	return m.name
}

// RegisterConfig registers the module's configuration structure
func (m *CacheModule) RegisterConfig(application app.Application) error {
	application.RegisterConfigSection(m.Name(), app.NewStdConfigProvider(&CacheConfig{}))
	return nil
}

// Init builds the configured engine. The engine does not connect until Start.
func (m *CacheModule) Init(application app.Application) error {
	cfg, err := application.GetConfigSection(m.name)
	if err != nil {
		return err
	}

	config, ok := cfg.GetConfig().(*CacheConfig)
	if !ok {
		return fmt.Errorf("%w: %T", ErrInvalidConfig, cfg.GetConfig())
	}
	m.config = config
	m.logger = application.Logger()
	m.subject = application.Subject()

	switch m.config.Engine {
	case EngineRedis:
		m.cacheEngine = NewRedisCache(m.config)
		m.logger.Info("Initialized Redis cache engine", "url", m.config.RedisURL)
	default:
		m.cacheEngine = NewMemoryCache(m.config)
		m.logger.Info("Initialized memory cache engine", "maxItems", m.config.MaxItems)
	}
	return nil
}

// Start connects the engine.
func (m *CacheModule) Start(ctx context.Context) error {
	m.logger.Info("Starting cache module", "engine", m.config.Engine)
	if err := m.cacheEngine.Connect(ctx); err != nil {
		m.emit(ctx, EventTypeCacheError, map[string]any{"engine": m.config.Engine, "error": err.Error()})
		return err
	}
	m.emit(ctx, EventTypeCacheConnected, map[string]any{"engine": m.config.Engine})
	return nil
}

// Stop disconnects the engine.
func (m *CacheModule) Stop(ctx context.Context) error {
	m.logger.Info("Stopping cache module")
	err := m.cacheEngine.Close(ctx)
	m.emit(ctx, EventTypeCacheDisconnected, map[string]any{"engine": m.config.Engine})
	return err
}

// ProvidesServices declares services provided by this module
func (m *CacheModule) ProvidesServices() []app.ServiceProvider {
	return []app.ServiceProvider{
		{
			Name:        ServiceName,
			Description: "Term store for the memoized strategy",
			Instance:    m,
		},
	}
}

// Load implements fibonacci.MemoStore.
func (m *CacheModule) Load(ctx context.Context, n int) (uint64, bool, error) {
	return m.cacheEngine.Load(ctx, n)
}

// Store implements fibonacci.MemoStore.
func (m *CacheModule) Store(ctx context.Context, n int, term uint64) error {
	return m.cacheEngine.Store(ctx, n, term)
}

// Flush removes every cached term.
func (m *CacheModule) Flush(ctx context.Context) error {
	if err := m.cacheEngine.Flush(ctx); err != nil {
		return err
	}
	m.emit(ctx, EventTypeCacheFlush, map[string]any{"engine": m.config.Engine})
	return nil
}

// Len reports how many terms are cached.
func (m *CacheModule) Len(ctx context.Context) (int, error) {
	return m.cacheEngine.Len(ctx)
}

func (m *CacheModule) emit(ctx context.Context, eventType string, data map[string]any) {
	if m.subject == nil {
		return
	}
	event := app.NewCloudEvent(eventType, EventSource, data, nil)
	if err := m.subject.NotifyObservers(ctx, event); err != nil {
		m.logger.Debug("Failed to emit cache event", "type", eventType, "error", err)
	}
}
