package cache

import (
	"context"
	"sync"
	"testing"

	"github.com/GoCodeAlone/fibonacci"
	"github.com/GoCodeAlone/fibonacci/app"
	"github.com/alicebob/miniredis/v2"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventCollector struct {
	mu    sync.Mutex
	types []string
}

func (c *eventCollector) observer() app.Observer {
	return app.NewFunctionalObserver("collector", func(_ context.Context, e cloudevents.Event) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.types = append(c.types, e.Type())
		return nil
	})
}

type sectionFeeder struct {
	engine, url string
}

func (sectionFeeder) Feed(any) error { return nil }

func (f sectionFeeder) FeedKey(key string, target any) error {
	if cfg, ok := target.(*CacheConfig); ok && key == ModuleName {
		cfg.Engine = f.engine
		cfg.RedisURL = f.url
	}
	return nil
}

func startModule(t *testing.T, feeder app.Feeder) (*CacheModule, *app.StdApplication, *eventCollector) {
	t.Helper()
	application := app.NewStdApplication(app.NewStdConfigProvider(&struct{}{}), nil)
	if feeder != nil {
		application.SetConfigFeeders(feeder)
	}
	module := NewModule()
	application.RegisterModule(module)

	events := &eventCollector{}
	require.NoError(t, application.Subject().RegisterObserver(events.observer()))
	require.NoError(t, application.Init())
	require.NoError(t, application.Start(context.Background()))
	t.Cleanup(func() { _ = application.Stop(context.Background()) })
	return module, application, events
}

func TestModuleDefaultsToMemory(t *testing.T) {
	module, application, events := startModule(t, nil)

	assert.Equal(t, EngineMemory, module.config.Engine)
	assert.Equal(t, 10000, module.config.MaxItems)
	assert.Equal(t, "fibonacci", module.config.KeyPrefix)
	assert.IsType(t, &MemoryCache{}, module.cacheEngine)
	assert.Contains(t, events.types, EventTypeCacheConnected)

	var store fibonacci.MemoStore
	require.NoError(t, application.GetService(ServiceName, &store))
	assert.Same(t, module, store)
}

func TestModuleBacksMemoizedComputer(t *testing.T) {
	server := miniredis.RunT(t)
	module, _, _ := startModule(t, sectionFeeder{engine: EngineRedis, url: "redis://" + server.Addr()})
	require.IsType(t, &RedisCache{}, module.cacheEngine)

	c := fibonacci.NewComputer(fibonacci.StrategyMemoized, fibonacci.WithMemoStore(module))
	term, err := c.Compute(30)
	require.NoError(t, err)
	assert.Equal(t, uint64(832040), term)

	size, err := module.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 29, size)
	stored, err := server.Get("fibonacci:term:30")
	require.NoError(t, err)
	assert.Equal(t, "832040", stored)

	require.NoError(t, module.Flush(context.Background()))
	size, _ = module.Len(context.Background())
	assert.Zero(t, size)
}

func TestModuleRejectsUnknownEngine(t *testing.T) {
	application := app.NewStdApplication(app.NewStdConfigProvider(&struct{}{}), nil)
	application.SetConfigFeeders(sectionFeeder{engine: "memcached"})
	application.RegisterModule(NewModule())

	err := application.Init()
	assert.ErrorIs(t, err, ErrUnknownEngine)
}

func TestModuleHealth(t *testing.T) {
	module, _, _ := startModule(t, nil)
	ctx := context.Background()

	reports, err := module.HealthCheck(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, app.HealthStatusHealthy, reports[0].Status)

	module.config.MaxItems = 10
	for n := 2; n < 11; n++ {
		require.NoError(t, module.Store(ctx, n, 1))
	}
	reports, _ = module.HealthCheck(ctx)
	assert.Equal(t, app.HealthStatusDegraded, reports[0].Status)
}

func TestModuleHealthRedisDown(t *testing.T) {
	server := miniredis.RunT(t)
	module, _, _ := startModule(t, sectionFeeder{engine: EngineRedis, url: "redis://" + server.Addr()})
	server.Close()

	reports, err := module.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, app.HealthStatusUnhealthy, reports[0].Status)
}
