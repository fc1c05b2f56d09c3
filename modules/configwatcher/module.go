// Package configwatcher reports changes to config files.
//
// Files are watched through their parent directory so that editors which
// replace a file by rename are still noticed. Bursts of events for the same
// file are debounced, then every OnChange callback runs and a
// com.fibonacci.config.changed event is emitted.
package configwatcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/GoCodeAlone/fibonacci/app"
	"github.com/fsnotify/fsnotify"
)

// ModuleName is the name of this module
const ModuleName = "configwatcher"

// EventTypeConfigChanged is emitted once per debounced change.
const EventTypeConfigChanged = "com.fibonacci.config.changed"

// EventSource is the CloudEvents source of watcher events.
const EventSource = "fibonacci.configwatcher"

var (
	// ErrInvalidConfig is returned when the configwatcher section fails validation.
	ErrInvalidConfig = errors.New("invalid configwatcher configuration")
)

// ChangeFunc is called with the absolute path of a changed file.
type ChangeFunc func(ctx context.Context, path string) error

// ConfigWatcherModule watches config files with fsnotify.
type ConfigWatcherModule struct {
	config     *WatcherConfig
	logger     app.Logger
	subject    app.Subject
	extraPaths []string

	mu        sync.Mutex
	callbacks []ChangeFunc
	watched   map[string]bool
	timers    map[string]*time.Timer
	watcher   *fsnotify.Watcher
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewModule creates a watcher for paths, plus any configured in the
// "configwatcher" section.
func NewModule(paths ...string) *ConfigWatcherModule {
	return &ConfigWatcherModule{extraPaths: paths}
}

// Name returns the name of the module
func (m *ConfigWatcherModule) Name() string {
	return ModuleName
}

// RegisterConfig registers the module's configuration structure
func (m *ConfigWatcherModule) RegisterConfig(application app.Application) error {
	application.RegisterConfigSection(ModuleName, app.NewStdConfigProvider(&WatcherConfig{}))
	return nil
}

// Init resolves the watched paths.
func (m *ConfigWatcherModule) Init(application app.Application) error {
	cfg, err := application.GetConfigSection(ModuleName)
	if err != nil {
		return err
	}
	config, ok := cfg.GetConfig().(*WatcherConfig)
	if !ok {
		return fmt.Errorf("%w: %T", ErrInvalidConfig, cfg.GetConfig())
	}
	m.config = config
	m.logger = application.Logger()
	m.subject = application.Subject()

	m.watched = make(map[string]bool)
	for _, path := range append(slices.Clone(m.extraPaths), config.Paths...) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", path, err)
		}
		m.watched[abs] = true
	}
	return nil
}

// OnChange registers fn to run after a watched file changes. Callbacks run
// sequentially in registration order; errors are logged.
func (m *ConfigWatcherModule) OnChange(fn ChangeFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// Start begins watching. With no paths configured it does nothing.
func (m *ConfigWatcherModule) Start(_ context.Context) error {
	if len(m.watched) == 0 {
		m.logger.Debug("No config files to watch")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	dirs := make(map[string]bool)
	for path := range m.watched {
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	m.mu.Lock()
	m.watcher = watcher
	m.timers = make(map[string]*time.Timer)
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.done = make(chan struct{})
	m.mu.Unlock()

	go m.loop(watcher, m.done)
	m.logger.Info("Watching config files", "count", len(m.watched))
	return nil
}

// Stop stops watching and cancels pending notifications.
func (m *ConfigWatcherModule) Stop(_ context.Context) error {
	m.mu.Lock()
	watcher, done := m.watcher, m.done
	m.watcher, m.done = nil, nil
	if m.cancel != nil {
		m.cancel()
	}
	for _, timer := range m.timers {
		timer.Stop()
	}
	m.timers = nil
	m.mu.Unlock()

	if watcher == nil {
		return nil
	}
	err := watcher.Close()
	<-done
	return err
}

func (m *ConfigWatcherModule) loop(watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			path := filepath.Clean(event.Name)
			if !m.watched[path] || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			m.schedule(path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("Config watcher error", "error", err)
		}
	}
}

func (m *ConfigWatcherModule) schedule(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timers == nil {
		return
	}
	if timer, ok := m.timers[path]; ok {
		timer.Reset(m.config.Debounce)
		return
	}
	m.timers[path] = time.AfterFunc(m.config.Debounce, func() { m.fire(path) })
}

func (m *ConfigWatcherModule) fire(path string) {
	m.mu.Lock()
	if m.timers == nil {
		m.mu.Unlock()
		return
	}
	delete(m.timers, path)
	ctx := m.ctx
	callbacks := slices.Clone(m.callbacks)
	m.mu.Unlock()

	m.logger.Info("Config file changed", "path", path)
	for _, fn := range callbacks {
		if err := fn(ctx, path); err != nil {
			m.logger.Error("Config change handler failed", "path", path, "error", err)
		}
	}

	if m.subject == nil {
		return
	}
	event := app.NewCloudEvent(EventTypeConfigChanged, EventSource, map[string]any{"path": path}, nil)
	if err := m.subject.NotifyObservers(ctx, event); err != nil {
		m.logger.Debug("Failed to emit config change event", "error", err)
	}
}
