package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"slices"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/GoCodeAlone/fibonacci"
)

// Application is the container modules are registered with.
type Application interface {
	ConfigProvider() ConfigProvider
	RegisterModule(module Module)
	RegisterConfigSection(section string, cp ConfigProvider)
	ConfigSections() map[string]ConfigProvider
	GetConfigSection(section string) (ConfigProvider, error)
	RegisterService(name string, service any) error
	GetService(name string, target any) error
	Init() error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Run(ctx context.Context) error
	Health(ctx context.Context) AggregatedHealth
	Logger() Logger
	Subject() Subject
}

var _ Application = (*StdApplication)(nil)

// DefaultShutdownTimeout bounds Stop when Run shuts the application down.
const DefaultShutdownTimeout = 30 * time.Second

// StdApplication represents the core application container
type StdApplication struct {
	cfgProvider ConfigProvider
	cfgSections map[string]ConfigProvider
	feeders     []Feeder
	services    map[string]any
	modules     map[string]Module
	order       []string
	logger      Logger
	subject     *StdSubject
	mu          sync.RWMutex
}

// NewStdApplication creates a new application instance
func NewStdApplication(cp ConfigProvider, logger Logger) *StdApplication {
	if logger == nil {
		logger = fibonacci.NopLogger{}
	}
	return &StdApplication{
		cfgProvider: cp,
		cfgSections: make(map[string]ConfigProvider),
		services:    make(map[string]any),
		modules:     make(map[string]Module),
		logger:      logger,
		subject:     NewStdSubject(logger),
	}
}

// SetConfigFeeders sets the feeders used by Init to load configuration.
func (app *StdApplication) SetConfigFeeders(feeders ...Feeder) {
	app.feeders = feeders
}

// ConfigProvider retrieves the application config provider
func (app *StdApplication) ConfigProvider() ConfigProvider {
	return app.cfgProvider
}

// Logger returns the application logger
func (app *StdApplication) Logger() Logger {
	return app.logger
}

// Subject returns the observer registry events are emitted through
func (app *StdApplication) Subject() Subject {
	return app.subject
}

// RegisterModule adds a module to the application
func (app *StdApplication) RegisterModule(module Module) {
	app.modules[module.Name()] = module
}

// RegisterConfigSection registers a configuration section with the application
func (app *StdApplication) RegisterConfigSection(section string, cp ConfigProvider) {
	app.cfgSections[section] = cp
}

// ConfigSections retrieves all registered configuration sections
func (app *StdApplication) ConfigSections() map[string]ConfigProvider {
	return app.cfgSections
}

// GetConfigSection retrieves a configuration section
func (app *StdApplication) GetConfigSection(section string) (ConfigProvider, error) {
	cp, exists := app.cfgSections[section]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrConfigSectionNotFound, section)
	}
	return cp, nil
}

// RegisterService adds a named service
func (app *StdApplication) RegisterService(name string, service any) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if _, exists := app.services[name]; exists {
		return fmt.Errorf("%w: %s", ErrServiceAlreadyRegistered, name)
	}
	app.services[name] = service
	app.logger.Debug("Registered service", "name", name, "type", reflect.TypeOf(service))
	return nil
}

// GetService stores the named service in target, which must be a non-nil
// pointer to an interface the service implements or to a type the service
// is assignable to.
func (app *StdApplication) GetService(name string, target any) error {
	app.mu.RLock()
	service, exists := app.services[name]
	app.mu.RUnlock()
	if !exists {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}

	targetValue := reflect.ValueOf(target)
	if targetValue.Kind() != reflect.Ptr || targetValue.IsNil() {
		return ErrTargetNotPointer
	}

	serviceType := reflect.TypeOf(service)
	targetType := targetValue.Elem().Type()
	if serviceType == nil {
		return fmt.Errorf("%w: service '%s' is nil", ErrServiceIncompatible, name)
	}

	switch {
	case targetType.Kind() == reflect.Interface && serviceType.Implements(targetType):
		targetValue.Elem().Set(reflect.ValueOf(service))
	case serviceType.AssignableTo(targetType):
		targetValue.Elem().Set(reflect.ValueOf(service))
	default:
		return fmt.Errorf("%w: service '%s' of type %s cannot be assigned to %s",
			ErrServiceIncompatible, name, serviceType, targetType)
	}
	return nil
}

// Init registers config sections, loads configuration and initializes
// every module in dependency order.
func (app *StdApplication) Init() error {
	for _, name := range app.sortedModuleNames() {
		configurable, ok := app.modules[name].(Configurable)
		if !ok {
			app.logger.Debug("Module does not implement Configurable, skipping", "module", name)
			continue
		}
		if err := configurable.RegisterConfig(app); err != nil {
			return fmt.Errorf("failed to register config for module %s: %w", name, err)
		}
	}

	if err := loadConfig(app.feeders, app.cfgProvider, app.cfgSections); err != nil {
		return fmt.Errorf("failed to load app config: %w", err)
	}
	app.emit(context.Background(), EventTypeConfigLoaded, map[string]any{"sections": len(app.cfgSections)})

	order, err := app.resolveDependencies()
	if err != nil {
		return fmt.Errorf("failed to resolve dependencies: %w", err)
	}
	app.order = order

	for _, name := range order {
		module := app.modules[name]
		if err := module.Init(app); err != nil {
			app.emit(context.Background(), EventTypeApplicationFailed, map[string]any{"module": name, "error": err.Error()})
			return fmt.Errorf("failed to initialize module '%s': %w", name, err)
		}

		if aware, ok := module.(ServiceAware); ok {
			for _, svc := range aware.ProvidesServices() {
				if err := app.RegisterService(svc.Name, svc.Instance); err != nil {
					return fmt.Errorf("module '%s' failed to register service: %w", name, err)
				}
			}
		}

		app.logger.Info("Initialized module", "module", name, "type", fmt.Sprintf("%T", module))
		app.emit(context.Background(), EventTypeModuleInitialized, map[string]any{"module": name})
	}
	return nil
}

// Start starts modules in dependency order. When a module fails to start,
// the modules already started are stopped in reverse order before Start
// returns.
func (app *StdApplication) Start(ctx context.Context) error {
	var started []string
	for _, name := range app.order {
		startable, ok := app.modules[name].(Startable)
		if !ok {
			continue
		}
		app.logger.Info("Starting module", "module", name)
		if err := startable.Start(ctx); err != nil {
			startErr := fmt.Errorf("failed to start module %s: %w", name, err)
			if len(started) == 0 {
				return startErr
			}
			app.logger.Warn("Stopping started modules after start failure", "module", name, "started", len(started))
			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultShutdownTimeout)
			defer cancel()
			return errors.Join(startErr, app.stopModules(stopCtx, started))
		}
		started = append(started, name)
		app.emit(ctx, EventTypeModuleStarted, map[string]any{"module": name})
	}
	return nil
}

// Stop stops modules in reverse dependency order. Every module is given a
// chance to stop; the returned error joins all failures.
func (app *StdApplication) Stop(ctx context.Context) error {
	return app.stopModules(ctx, app.order)
}

func (app *StdApplication) stopModules(ctx context.Context, names []string) error {
	order := slices.Clone(names)
	slices.Reverse(order)

	var errs []error
	for _, name := range order {
		stoppable, ok := app.modules[name].(Stoppable)
		if !ok {
			continue
		}
		app.logger.Info("Stopping module", "module", name)
		if err := stoppable.Stop(ctx); err != nil {
			app.logger.Error("Error stopping module", "module", name, "error", err)
			errs = append(errs, fmt.Errorf("module %s: %w", name, err))
			continue
		}
		app.emit(ctx, EventTypeModuleStopped, map[string]any{"module": name})
	}
	return errors.Join(errs...)
}

// Run initializes and starts the application, then blocks until ctx is
// done or the process receives SIGINT or SIGTERM.
func (app *StdApplication) Run(ctx context.Context) error {
	if err := app.Init(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()
	app.logger.Info("Shutting down", "reason", context.Cause(sigCtx))

	stopCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	return app.Stop(stopCtx)
}

// Health runs every HealthProvider module and aggregates the reports.
func (app *StdApplication) Health(ctx context.Context) AggregatedHealth {
	var reports []HealthReport
	for _, name := range app.sortedModuleNames() {
		provider, ok := app.modules[name].(HealthProvider)
		if !ok {
			continue
		}
		moduleReports, err := provider.HealthCheck(ctx)
		if err != nil {
			reports = append(reports, HealthReport{
				Module:    name,
				Status:    HealthStatusUnhealthy,
				Message:   err.Error(),
				CheckedAt: time.Now(),
			})
			continue
		}
		reports = append(reports, moduleReports...)
	}
	return AggregatedHealth{
		Status:    aggregateHealth(reports),
		Reports:   reports,
		CheckedAt: time.Now(),
	}
}

func (app *StdApplication) emit(ctx context.Context, eventType string, data map[string]any) {
	event := NewCloudEvent(eventType, EventSourceApplication, data, nil)
	if err := app.subject.NotifyObservers(ctx, event); err != nil {
		app.logger.Debug("Failed to emit event", "eventType", eventType, "error", err)
	}
}

func (app *StdApplication) sortedModuleNames() []string {
	names := make([]string, 0, len(app.modules))
	for name := range app.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveDependencies returns module names in topological order. Modules
// with no ordering constraint between them keep alphabetical order.
func (app *StdApplication) resolveDependencies() ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(app.modules))
	order := make([]string, 0, len(app.modules))

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %v", ErrCircularDependency, append(slices.Clone(path), name))
		}
		state[name] = visiting

		if aware, ok := app.modules[name].(DependencyAware); ok {
			deps := slices.Clone(aware.Dependencies())
			sort.Strings(deps)
			for _, dep := range deps {
				if _, exists := app.modules[dep]; !exists {
					return fmt.Errorf("%w: %s depends on %s", ErrModuleDependencyMissing, name, dep)
				}
				if err := visit(dep, append(slices.Clone(path), name)); err != nil {
					return err
				}
			}
		}

		state[name] = done
		order = append(order, name)
		return nil
	}

	for _, name := range app.sortedModuleNames() {
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}
