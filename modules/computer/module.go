// Package computer publishes an instrumented fibonacci.Computer as the
// "fibonacci.computer" service.
//
// Every computation is counted and timed in Prometheus and reported as a
// CloudEvent. The strategy comes from the "computer" config section and can
// be swapped at runtime with Reconfigure.
package computer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/GoCodeAlone/fibonacci"
	"github.com/GoCodeAlone/fibonacci/app"
	"github.com/prometheus/client_golang/prometheus"
)

// ModuleName is the name of this module
const ModuleName = "computer"

// ServiceName is the name of the service provided by this module
const ServiceName = "fibonacci.computer"

// ErrInvalidConfig is returned when the registered section has the wrong type.
var ErrInvalidConfig = errors.New("invalid computer configuration")

// Option configures the module.
type Option func(*ComputerModule)

// WithRegisterer sets the registry the compute metrics are registered with.
// The default is prometheus.DefaultRegisterer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(m *ComputerModule) {
		m.registerer = reg
	}
}

// WithMemoModule makes the module initialise after the named module, which
// is expected to provide the memo service.
func WithMemoModule(name string) Option {
	return func(m *ComputerModule) {
		m.dependencies = append(m.dependencies, name)
	}
}

// ComputerModule serves fibonacci.Computer with metrics and events.
type ComputerModule struct {
	config       *ComputerConfig
	logger       app.Logger
	subject      app.Subject
	registerer   prometheus.Registerer
	metrics      *metrics
	dependencies []string
	store        fibonacci.MemoStore

	mu       sync.RWMutex
	computer fibonacci.Computer
}

var _ fibonacci.Computer = (*ComputerModule)(nil)

// NewModule creates a new instance of the computer module
func NewModule(opts ...Option) *ComputerModule {
	m := &ComputerModule{registerer: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the name of the module
func (m *ComputerModule) Name() string {
	return ModuleName
}

// Dependencies returns the modules set with WithMemoModule.
func (m *ComputerModule) Dependencies() []string {
	return m.dependencies
}

// RegisterConfig registers the module's configuration structure
func (m *ComputerModule) RegisterConfig(application app.Application) error {
	application.RegisterConfigSection(ModuleName, app.NewStdConfigProvider(&ComputerConfig{}))
	return nil
}

// Init resolves the memo store, registers metrics and builds the configured
// computer.
func (m *ComputerModule) Init(application app.Application) error {
	cfg, err := application.GetConfigSection(ModuleName)
	if err != nil {
		return err
	}
	config, ok := cfg.GetConfig().(*ComputerConfig)
	if !ok {
		return fmt.Errorf("%w: %T", ErrInvalidConfig, cfg.GetConfig())
	}
	m.config = config
	m.logger = application.Logger()
	m.subject = application.Subject()

	if m.metrics, err = newMetrics(m.registerer); err != nil {
		return fmt.Errorf("register compute metrics: %w", err)
	}

	if config.MemoService != "" {
		var store fibonacci.MemoStore
		if err := application.GetService(config.MemoService, &store); err != nil {
			m.logger.Debug("Memo service unavailable, memoized strategy uses an in-process map",
				"service", config.MemoService, "error", err)
		} else {
			m.store = store
		}
	}

	strategy, err := fibonacci.ParseStrategy(config.Strategy)
	if err != nil {
		return err
	}
	m.computer = m.build(strategy)
	m.logger.Info("Computer module initialized", "strategy", strategy)
	return nil
}

// ProvidesServices declares services provided by this module
func (m *ComputerModule) ProvidesServices() []app.ServiceProvider {
	return []app.ServiceProvider{
		{
			Name:        ServiceName,
			Description: "Instrumented Fibonacci computer",
			Instance:    m,
		},
	}
}

// Compute implements fibonacci.Computer.
func (m *ComputerModule) Compute(n int) (uint64, error) {
	return m.ComputeContext(context.Background(), n)
}

// ComputeContext implements fibonacci.Computer. The result is recorded in
// the compute metrics and announced as a term.computed or term.failed event.
func (m *ComputerModule) ComputeContext(ctx context.Context, n int) (uint64, error) {
	c := m.current()
	strategy := c.Strategy().String()

	start := time.Now()
	term, err := c.ComputeContext(ctx, n)
	elapsed := time.Since(start)

	m.metrics.computeDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	m.metrics.computeTotal.WithLabelValues(strategy, outcome(err)).Inc()

	if err != nil {
		m.emit(ctx, EventTypeTermFailed, map[string]any{
			"index":    n,
			"strategy": strategy,
			"error":    err.Error(),
		})
		return 0, err
	}
	m.emit(ctx, EventTypeTermComputed, map[string]any{
		"index":      n,
		"term":       strconv.FormatUint(term, 10),
		"strategy":   strategy,
		"durationNs": elapsed.Nanoseconds(),
	})
	return term, nil
}

// Strategy implements fibonacci.Computer.
func (m *ComputerModule) Strategy() fibonacci.Strategy {
	return m.current().Strategy()
}

// Reconfigure swaps the strategy. In-flight computations finish on the
// previous computer.
func (m *ComputerModule) Reconfigure(name string) error {
	strategy, err := fibonacci.ParseStrategy(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	previous := m.computer.Strategy()
	if previous == strategy {
		m.mu.Unlock()
		return nil
	}
	m.computer = m.build(strategy)
	m.config.Strategy = strategy.String()
	m.mu.Unlock()

	m.logger.Info("Computer strategy changed", "from", previous, "to", strategy)
	m.emit(context.Background(), EventTypeReconfigured, map[string]any{
		"from": previous.String(),
		"to":   strategy.String(),
	})
	return nil
}

// HealthCheck implements app.HealthProvider.
func (m *ComputerModule) HealthCheck(_ context.Context) ([]app.HealthReport, error) {
	report := app.HealthReport{
		Module:    ModuleName,
		CheckedAt: time.Now(),
	}
	c := m.current()
	if c == nil {
		report.Status = app.HealthStatusUnhealthy
		report.Message = "computer not initialized"
		return []app.HealthReport{report}, nil
	}
	report.Status = app.HealthStatusHealthy
	report.Message = "computer ready"
	report.Details = map[string]any{
		"strategy":   c.Strategy().String(),
		"sharedMemo": m.store != nil,
		"maxIndex":   fibonacci.MaxIndex,
	}
	return []app.HealthReport{report}, nil
}

func (m *ComputerModule) current() fibonacci.Computer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.computer
}

func (m *ComputerModule) build(strategy fibonacci.Strategy) fibonacci.Computer {
	opts := []fibonacci.Option{fibonacci.WithLogger(m.logger)}
	if m.store != nil {
		opts = append(opts, fibonacci.WithMemoStore(m.store))
	}
	return fibonacci.NewComputer(strategy, opts...)
}

func (m *ComputerModule) emit(ctx context.Context, eventType string, data map[string]any) {
	if m.subject == nil {
		return
	}
	event := app.NewCloudEvent(eventType, EventSource, data, nil)
	if err := m.subject.NotifyObservers(ctx, event); err != nil {
		m.logger.Debug("Failed to emit computer event", "type", eventType, "error", err)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, fibonacci.ErrInvalidArgument):
		return outcomeInvalid
	case errors.Is(err, fibonacci.ErrOverflow):
		return outcomeOverflow
	default:
		return outcomeError
	}
}
