package app

import (
	"context"
	"slices"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// Observer is notified of CloudEvents emitted through a Subject.
type Observer interface {
	// OnEvent handles a single event. It should return quickly.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID returns a unique identifier for this observer.
	ObserverID() string
}

// Subject fans events out to registered observers.
type Subject interface {
	// RegisterObserver adds an observer. With no eventTypes the observer
	// receives every event. Registering the same ID again replaces the
	// previous registration.
	RegisterObserver(observer Observer, eventTypes ...string) error

	// UnregisterObserver removes an observer. Unknown observers are ignored.
	UnregisterObserver(observer Observer) error

	// NotifyObservers delivers event to every interested observer.
	NotifyObservers(ctx context.Context, event cloudevents.Event) error

	// GetObservers describes the current registrations.
	GetObservers() []ObserverInfo
}

// ObserverInfo describes a registered observer.
type ObserverInfo struct {
	ID           string    `json:"id"`
	EventTypes   []string  `json:"eventTypes"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Event types emitted by the application itself.
const (
	EventTypeModuleInitialized = "com.fibonacci.module.initialized"
	EventTypeModuleStarted     = "com.fibonacci.module.started"
	EventTypeModuleStopped     = "com.fibonacci.module.stopped"
	EventTypeConfigLoaded      = "com.fibonacci.config.loaded"
	EventTypeApplicationFailed = "com.fibonacci.application.failed"
)

// EventSourceApplication is the CloudEvents source of application events.
const EventSourceApplication = "fibonacci.application"

// FunctionalObserver adapts a function to the Observer interface.
type FunctionalObserver struct {
	id      string
	handler func(ctx context.Context, event cloudevents.Event) error
}

// NewFunctionalObserver creates an observer that calls handler for each event.
func NewFunctionalObserver(id string, handler func(ctx context.Context, event cloudevents.Event) error) Observer {
	return &FunctionalObserver{id: id, handler: handler}
}

// OnEvent implements Observer.
func (f *FunctionalObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return f.handler(ctx, event)
}

// ObserverID implements Observer.
func (f *FunctionalObserver) ObserverID() string {
	return f.id
}

type observerRegistration struct {
	observer     Observer
	eventTypes   []string
	registeredAt time.Time
}

func (r observerRegistration) wants(eventType string) bool {
	return len(r.eventTypes) == 0 || slices.Contains(r.eventTypes, eventType)
}

// StdSubject is the in-process Subject used by StdApplication.
// Delivery is synchronous, in registration order. Observer errors are
// logged and do not stop delivery to the remaining observers.
type StdSubject struct {
	mu     sync.RWMutex
	order  []string
	regs   map[string]observerRegistration
	logger Logger
}

// NewStdSubject creates an empty subject.
func NewStdSubject(logger Logger) *StdSubject {
	return &StdSubject{
		regs:   make(map[string]observerRegistration),
		logger: logger,
	}
}

// RegisterObserver implements Subject.
func (s *StdSubject) RegisterObserver(observer Observer, eventTypes ...string) error {
	if observer == nil {
		return ErrObserverNil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := observer.ObserverID()
	if _, exists := s.regs[id]; !exists {
		s.order = append(s.order, id)
	}
	s.regs[id] = observerRegistration{
		observer:     observer,
		eventTypes:   slices.Clone(eventTypes),
		registeredAt: time.Now(),
	}
	return nil
}

// UnregisterObserver implements Subject.
func (s *StdSubject) UnregisterObserver(observer Observer) error {
	if observer == nil {
		return ErrObserverNil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := observer.ObserverID()
	if _, exists := s.regs[id]; !exists {
		return nil
	}
	delete(s.regs, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

// NotifyObservers implements Subject.
func (s *StdSubject) NotifyObservers(ctx context.Context, event cloudevents.Event) error {
	s.mu.RLock()
	targets := make([]Observer, 0, len(s.order))
	for _, id := range s.order {
		if reg := s.regs[id]; reg.wants(event.Type()) {
			targets = append(targets, reg.observer)
		}
	}
	s.mu.RUnlock()

	for _, observer := range targets {
		if err := observer.OnEvent(ctx, event); err != nil {
			s.logger.Warn("Observer failed to handle event",
				"observer", observer.ObserverID(), "eventType", event.Type(), "error", err)
		}
	}
	return nil
}

// GetObservers implements Subject.
func (s *StdSubject) GetObservers() []ObserverInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]ObserverInfo, 0, len(s.order))
	for _, id := range s.order {
		reg := s.regs[id]
		infos = append(infos, ObserverInfo{
			ID:           id,
			EventTypes:   slices.Clone(reg.eventTypes),
			RegisteredAt: reg.registeredAt,
		})
	}
	return infos
}

// NewCloudEvent creates a CloudEvent with a time-ordered ID, the current
// time and JSON data.
func NewCloudEvent(eventType, source string, data any, extensions map[string]any) cloudevents.Event {
	event := cloudevents.NewEvent()
	event.SetID(generateEventID())
	event.SetSource(source)
	event.SetType(eventType)
	event.SetTime(time.Now())
	event.SetSpecVersion(cloudevents.VersionV1)

	if data != nil {
		_ = event.SetData(cloudevents.ApplicationJSON, data)
	}
	for key, value := range extensions {
		event.SetExtension(key, value)
	}
	return event
}

// generateEventID returns a UUIDv7, falling back to v4.
func generateEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}
