// Package scheduler keeps the shared memo store warm.
//
// A cron job computes F(0) through F(warmupUpTo) with a memoized computer
// backed by the "fibonacci.memo" service, so requests served by the
// memoized strategy hit the cache even after entries expire.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GoCodeAlone/fibonacci"
	"github.com/GoCodeAlone/fibonacci/app"
	"github.com/GoCodeAlone/fibonacci/modules/cache"
	"github.com/robfig/cron/v3"
)

// ModuleName is the name of this module
const ModuleName = "scheduler"

// RunStatus describes the most recent warm-up.
type RunStatus struct {
	Runs     int           `json:"runs"`
	LastRun  time.Time     `json:"lastRun"`
	Duration time.Duration `json:"duration"`
	LastErr  error         `json:"-"`
}

// SchedulerModule runs the memo warm-up on a cron schedule.
type SchedulerModule struct {
	config   *SchedulerConfig
	logger   app.Logger
	subject  app.Subject
	computer fibonacci.Computer

	cron    *cron.Cron
	entryID cron.EntryID
	cancel  context.CancelFunc

	runMu     sync.Mutex
	statusMu  sync.RWMutex
	status    RunStatus
	isStarted bool
}

// NewModule creates a new instance of the scheduler module
func NewModule() *SchedulerModule {
	return &SchedulerModule{}
}

// Name returns the name of the module
func (m *SchedulerModule) Name() string {
	return ModuleName
}

// Dependencies returns the names of modules this module depends on
func (m *SchedulerModule) Dependencies() []string {
	return []string{cache.ModuleName}
}

// RegisterConfig registers the module's configuration structure
func (m *SchedulerModule) RegisterConfig(application app.Application) error {
	application.RegisterConfigSection(ModuleName, app.NewStdConfigProvider(&SchedulerConfig{}))
	return nil
}

// Init builds the warm-up computer on top of the memo service.
func (m *SchedulerModule) Init(application app.Application) error {
	cfg, err := application.GetConfigSection(ModuleName)
	if err != nil {
		return err
	}
	config, ok := cfg.GetConfig().(*SchedulerConfig)
	if !ok {
		return fmt.Errorf("%w: %T", ErrInvalidConfig, cfg.GetConfig())
	}
	m.config = config
	m.logger = application.Logger()
	m.subject = application.Subject()

	var store fibonacci.MemoStore
	if err := application.GetService(cache.ServiceName, &store); err != nil {
		return fmt.Errorf("scheduler requires the memo service: %w", err)
	}
	m.computer = fibonacci.NewComputer(fibonacci.StrategyMemoized,
		fibonacci.WithMemoStore(store),
		fibonacci.WithLogger(m.logger),
	)
	return nil
}

// Start schedules the warm-up and, unless SkipInitialWarmup is set, runs it
// once before returning.
func (m *SchedulerModule) Start(ctx context.Context) error {
	if m.isStarted {
		return nil
	}

	if !m.config.SkipInitialWarmup {
		if err := m.RunNow(ctx); err != nil {
			m.logger.Warn("Initial warm-up failed", "error", err)
		}
	}

	jobCtx, cancel := context.WithCancel(context.Background())
	logger := cronLogger{logger: m.logger}
	m.cron = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	entryID, err := m.cron.AddFunc(m.config.WarmupSchedule, func() {
		if err := m.RunNow(jobCtx); err != nil {
			m.logger.Warn("Scheduled warm-up failed", "error", err)
		}
	})
	if err != nil {
		cancel()
		return fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}

	m.entryID, m.cancel = entryID, cancel
	m.cron.Start()
	m.isStarted = true
	m.logger.Info("Scheduled memo warm-up", "schedule", m.config.WarmupSchedule, "upTo", m.config.upTo())
	return nil
}

// Stop cancels a running warm-up and waits for it to return.
func (m *SchedulerModule) Stop(ctx context.Context) error {
	if !m.isStarted {
		return nil
	}
	m.cancel()
	stopped := m.cron.Stop()
	m.isStarted = false

	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow computes F(0)..F(warmupUpTo) through the memo store. Concurrent
// calls are serialised.
func (m *SchedulerModule) RunNow(ctx context.Context) error {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	start := time.Now()
	_, err := fibonacci.Sequence(ctx, m.computer, 0, m.config.upTo())
	elapsed := time.Since(start)

	m.statusMu.Lock()
	m.status.Runs++
	m.status.LastRun = start
	m.status.Duration = elapsed
	m.status.LastErr = err
	m.statusMu.Unlock()

	if err != nil {
		m.emit(ctx, EventTypeWarmupFailed, map[string]any{"upTo": m.config.upTo(), "error": err.Error()})
		return fmt.Errorf("warm-up to %d: %w", m.config.upTo(), err)
	}
	m.logger.Debug("Memo warm-up completed", "upTo", m.config.upTo(), "duration", elapsed)
	m.emit(ctx, EventTypeWarmupCompleted, map[string]any{
		"upTo":       m.config.upTo(),
		"durationNs": elapsed.Nanoseconds(),
	})
	return nil
}

// Status returns the most recent run.
func (m *SchedulerModule) Status() RunStatus {
	m.statusMu.RLock()
	defer m.statusMu.RUnlock()
	return m.status
}

// NextRun returns when the warm-up runs next, or the zero time when the
// module is not started.
func (m *SchedulerModule) NextRun() time.Time {
	if m.cron == nil || !m.isStarted {
		return time.Time{}
	}
	return m.cron.Entry(m.entryID).Next
}

// HealthCheck implements app.HealthProvider. A failed last run is degraded:
// the memoized strategy still recomputes missing terms.
func (m *SchedulerModule) HealthCheck(_ context.Context) ([]app.HealthReport, error) {
	status := m.Status()
	report := app.HealthReport{
		Module:    ModuleName,
		Component: "warmup",
		CheckedAt: time.Now(),
		Status:    app.HealthStatusHealthy,
		Message:   "warm-up scheduled",
		Details: map[string]any{
			"runs":    status.Runs,
			"nextRun": m.NextRun(),
		},
	}
	if !status.LastRun.IsZero() {
		report.Details["lastRun"] = status.LastRun
	}
	if status.LastErr != nil {
		report.Status = app.HealthStatusDegraded
		report.Message = "last warm-up failed: " + status.LastErr.Error()
	}
	return []app.HealthReport{report}, nil
}

func (m *SchedulerModule) emit(ctx context.Context, eventType string, data map[string]any) {
	if m.subject == nil {
		return
	}
	if err := m.subject.NotifyObservers(ctx, app.NewCloudEvent(eventType, EventSource, data, nil)); err != nil {
		m.logger.Debug("Failed to emit scheduler event", "type", eventType, "error", err)
	}
}
