package eventlogger

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/GoCodeAlone/fibonacci/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	level, msg string
	args       []any
}

type captureLogger struct {
	mu      sync.Mutex
	entries []entry
}

func (l *captureLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry{level, msg, args})
}

func (l *captureLogger) Info(msg string, args ...any)  { l.add("INFO", msg, args) }
func (l *captureLogger) Error(msg string, args ...any) { l.add("ERROR", msg, args) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.add("WARN", msg, args) }
func (l *captureLogger) Debug(msg string, args ...any) { l.add("DEBUG", msg, args) }

func (l *captureLogger) events(level string) []entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []entry
	for _, e := range l.entries {
		if e.level == level && e.msg == "Event" {
			out = append(out, e)
		}
	}
	return out
}

type loggerFeeder EventLoggerConfig

func (loggerFeeder) Feed(any) error { return nil }

func (f loggerFeeder) FeedKey(key string, target any) error {
	if cfg, ok := target.(*EventLoggerConfig); ok && key == ModuleName {
		*cfg = EventLoggerConfig(f)
	}
	return nil
}

func newLoggedApp(t *testing.T, cfg EventLoggerConfig) (*EventLoggerModule, *app.StdApplication, *captureLogger) {
	t.Helper()
	logger := &captureLogger{}
	application := app.NewStdApplication(app.NewStdConfigProvider(&struct{}{}), logger)
	application.SetConfigFeeders(loggerFeeder(cfg))
	module := NewModule()
	application.RegisterModule(module)
	require.NoError(t, application.Init())
	return module, application, logger
}

func TestLogsEventsAtDebug(t *testing.T) {
	module, application, logger := newLoggedApp(t, EventLoggerConfig{})
	require.NoError(t, application.Subject().NotifyObservers(context.Background(),
		app.NewCloudEvent("com.fibonacci.term.computed", "test", nil, nil)))

	entries := logger.events("DEBUG")
	require.Len(t, entries, 2)
	assert.Equal(t, []any{"type", app.EventTypeModuleInitialized}, entries[0].args[:2])
	assert.Equal(t, "com.fibonacci.term.computed", entries[1].args[1])
	assert.EqualValues(t, 2, module.Logged())
}

func TestFiltersAndInfoLevel(t *testing.T) {
	module, application, logger := newLoggedApp(t, EventLoggerConfig{
		LogLevel:         "info",
		EventTypeFilters: []string{"com.fibonacci.term.computed"},
		IncludeData:      true,
	})

	ctx := context.Background()
	subject := application.Subject()
	require.NoError(t, subject.NotifyObservers(ctx, app.NewCloudEvent("com.fibonacci.term.computed", "test", map[string]any{"index": 10}, nil)))
	require.NoError(t, subject.NotifyObservers(ctx, app.NewCloudEvent("com.fibonacci.term.failed", "test", nil, nil)))

	entries := logger.events("INFO")
	require.Len(t, entries, 1)
	assert.EqualValues(t, 1, module.Logged())
	joined := strings.TrimSpace(entries[0].args[len(entries[0].args)-1].(string))
	assert.JSONEq(t, `{"index":10}`, joined)
}

func TestDisabled(t *testing.T) {
	module, application, _ := newLoggedApp(t, EventLoggerConfig{Disabled: true})
	for _, info := range application.Subject().GetObservers() {
		assert.NotEqual(t, ModuleName, info.ID)
	}
	assert.Zero(t, module.Logged())
}

func TestStopUnregisters(t *testing.T) {
	module, application, _ := newLoggedApp(t, EventLoggerConfig{})
	require.NoError(t, module.Stop(context.Background()))
	assert.Empty(t, application.Subject().GetObservers())
}

func TestInvalidLevel(t *testing.T) {
	assert.ErrorIs(t, (&EventLoggerConfig{LogLevel: "trace"}).Validate(), ErrInvalidLogLevel)
}
