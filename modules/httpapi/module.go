// Package httpapi serves the Fibonacci computer over HTTP.
//
// Routes, relative to the configured base path:
//
//	GET /fib/{n}            {"index":n,"term":"..."}; ?big=true lifts the uint64 limit
//	GET /fib?from=a&to=b    {"from":a,"to":b,"terms":["...", ...]}
//	GET /health             aggregated application health
//	GET /metrics            Prometheus exposition
//
// Negative indices, bad integers and reversed ranges answer 400, terms
// beyond F(93), or beyond maxBigIndex with ?big=true, answer 422.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/GoCodeAlone/fibonacci"
	"github.com/GoCodeAlone/fibonacci/app"
	"github.com/GoCodeAlone/fibonacci/modules/computer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ModuleName is the name of this module
const ModuleName = "httpapi"

// Option configures the module.
type Option func(*HTTPAPIModule)

// WithGatherer sets the registry exposed on /metrics. The default is
// prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(m *HTTPAPIModule) {
		m.gatherer = g
	}
}

// HTTPAPIModule exposes the computer service over HTTP.
type HTTPAPIModule struct {
	config   *HTTPAPIConfig
	logger   app.Logger
	subject  app.Subject
	app      app.Application
	computer fibonacci.Computer
	gatherer prometheus.Gatherer
	router   *chi.Mux

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	done     chan struct{}
}

// NewModule creates a new instance of the httpapi module
func NewModule(opts ...Option) *HTTPAPIModule {
	m := &HTTPAPIModule{gatherer: prometheus.DefaultGatherer}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the name of the module
func (m *HTTPAPIModule) Name() string {
	return ModuleName
}

// Dependencies returns the names of modules this module depends on
func (m *HTTPAPIModule) Dependencies() []string {
	return []string{computer.ModuleName}
}

// RegisterConfig registers the module's configuration structure
func (m *HTTPAPIModule) RegisterConfig(application app.Application) error {
	application.RegisterConfigSection(ModuleName, app.NewStdConfigProvider(&HTTPAPIConfig{}))
	return nil
}

// Init looks up the computer service and builds the router.
func (m *HTTPAPIModule) Init(application app.Application) error {
	cfg, err := application.GetConfigSection(ModuleName)
	if err != nil {
		return err
	}
	config, ok := cfg.GetConfig().(*HTTPAPIConfig)
	if !ok {
		return fmt.Errorf("%w: %T", ErrInvalidConfig, cfg.GetConfig())
	}
	m.config = config
	m.app = application
	m.logger = application.Logger()
	m.subject = application.Subject()

	if err := application.GetService(computer.ServiceName, &m.computer); err != nil {
		return fmt.Errorf("httpapi requires the computer service: %w", err)
	}

	m.router = m.newRouter()
	m.logger.Debug("Created HTTP router", "basePath", m.config.BasePath)
	return nil
}

// Handler returns the router, for tests and for embedding in another server.
func (m *HTTPAPIModule) Handler() http.Handler {
	return m.router
}

// Start binds the listener and serves in the background. Bind failures are
// returned synchronously.
func (m *HTTPAPIModule) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.server != nil {
		return ErrAlreadyStarted
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", m.config.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", m.config.Address, err)
	}

	server := &http.Server{
		Handler:      m.router,
		ReadTimeout:  m.config.ReadTimeout,
		WriteTimeout: m.config.WriteTimeout,
		IdleTimeout:  m.config.IdleTimeout,
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.logger.Info("Starting HTTP server", "address", listener.Addr().String())
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	m.server, m.listener, m.done = server, listener, done
	m.emit(ctx, EventTypeServerStarted, map[string]any{"address": listener.Addr().String()})
	return nil
}

// Stop shuts the server down gracefully within ShutdownTimeout.
func (m *HTTPAPIModule) Stop(ctx context.Context) error {
	m.mu.Lock()
	server, done := m.server, m.done
	m.server, m.listener, m.done = nil, nil, nil
	m.mu.Unlock()
	if server == nil {
		return nil
	}

	m.logger.Info("Stopping HTTP server")
	shutdownCtx := ctx
	if m.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, m.config.ShutdownTimeout)
		defer cancel()
	}
	err := server.Shutdown(shutdownCtx)
	<-done
	m.emit(ctx, EventTypeServerStopped, nil)
	return err
}

// Addr returns the bound address while the server is running.
func (m *HTTPAPIModule) Addr() net.Addr {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener == nil {
		return nil
	}
	return m.listener.Addr()
}

func (m *HTTPAPIModule) newRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(m.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(m.cors)

	routes := func(r chi.Router) {
		r.Get("/fib/{n}", m.handleTerm)
		r.Get("/fib", m.handleSequence)
		r.Get("/health", m.handleHealth)
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
	}
	if m.config.BasePath == "" {
		routes(r)
	} else {
		r.Route(m.config.BasePath, routes)
	}
	return r
}

func (m *HTTPAPIModule) emit(ctx context.Context, eventType string, data map[string]any) {
	if m.subject == nil {
		return
	}
	if err := m.subject.NotifyObservers(ctx, app.NewCloudEvent(eventType, EventSource, data, nil)); err != nil {
		m.logger.Debug("Failed to emit httpapi event", "type", eventType, "error", err)
	}
}
