// Package eventlogger logs every CloudEvent emitted through the
// application's subject.
package eventlogger

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/GoCodeAlone/fibonacci/app"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// ModuleName is the name of this module
const ModuleName = "eventlogger"

var (
	// ErrInvalidLogLevel is returned for a log level other than DEBUG or INFO.
	ErrInvalidLogLevel = errors.New("invalid event log level")

	// ErrInvalidConfig is returned when the registered section has the wrong type.
	ErrInvalidConfig = errors.New("invalid eventlogger configuration")
)

// EventLoggerModule is an observer that writes events to the application log.
type EventLoggerModule struct {
	config  *EventLoggerConfig
	logger  app.Logger
	subject app.Subject
	logged  atomic.Int64
}

var _ app.Observer = (*EventLoggerModule)(nil)

// NewModule creates a new instance of the event logger module
func NewModule() *EventLoggerModule {
	return &EventLoggerModule{}
}

// Name returns the name of the module
func (m *EventLoggerModule) Name() string {
	return ModuleName
}

// RegisterConfig registers the module's configuration structure
func (m *EventLoggerModule) RegisterConfig(application app.Application) error {
	application.RegisterConfigSection(ModuleName, app.NewStdConfigProvider(&EventLoggerConfig{}))
	return nil
}

// Init registers the module as an observer unless it is disabled.
func (m *EventLoggerModule) Init(application app.Application) error {
	cfg, err := application.GetConfigSection(ModuleName)
	if err != nil {
		return err
	}
	config, ok := cfg.GetConfig().(*EventLoggerConfig)
	if !ok {
		return fmt.Errorf("%w: %T", ErrInvalidConfig, cfg.GetConfig())
	}
	m.config = config
	m.logger = application.Logger()
	m.subject = application.Subject()

	if config.Disabled {
		m.logger.Debug("Event logging disabled")
		return nil
	}
	return m.subject.RegisterObserver(m, config.EventTypeFilters...)
}

// Stop unregisters the observer.
func (m *EventLoggerModule) Stop(_ context.Context) error {
	if m.subject == nil {
		return nil
	}
	return m.subject.UnregisterObserver(m)
}

// ObserverID implements app.Observer.
func (m *EventLoggerModule) ObserverID() string {
	return ModuleName
}

// OnEvent implements app.Observer.
func (m *EventLoggerModule) OnEvent(_ context.Context, event cloudevents.Event) error {
	args := []any{"type", event.Type(), "source", event.Source(), "id", event.ID()}
	if m.config.IncludeData && len(event.Data()) > 0 {
		args = append(args, "data", string(event.Data()))
	}

	if m.config.LogLevel == "INFO" {
		m.logger.Info("Event", args...)
	} else {
		m.logger.Debug("Event", args...)
	}
	m.logged.Add(1)
	return nil
}

// Logged reports how many events have been written.
func (m *EventLoggerModule) Logged() int64 {
	return m.logged.Load()
}
