// Package app is the lifecycle container that hosts the fibonacci modules.
//
// An application is composed of modules. Each module implements Module and
// may implement Configurable, DependencyAware, ServiceAware, Startable,
// Stoppable and HealthProvider. Init registers and loads configuration,
// resolves dependency order and initialises every module; Start and Stop
// walk the same order forwards and backwards.
//
// Basic usage:
//
//	application := app.NewStdApplication(app.NewStdConfigProvider(&cfg), logger)
//	application.RegisterModule(computer.NewModule())
//	if err := application.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
package app

import "context"

// Module represents a registrable component in the application.
type Module interface {
	// Name returns the unique identifier for this module. It doubles as the
	// name of the module's config section.
	Name() string

	// Init initializes the module. Modules are initialised in dependency
	// order, after every config section has been loaded.
	Init(app Application) error
}

// Configurable is implemented by modules that own a config section.
type Configurable interface {
	// RegisterConfig registers the module's config section, usually a
	// StdConfigProvider wrapping a struct with default tags.
	RegisterConfig(app Application) error
}

// DependencyAware is implemented by modules that must be initialised after
// other modules.
type DependencyAware interface {
	// Dependencies returns the names of the modules this module depends on.
	Dependencies() []string
}

// ServiceProvider describes a service a module makes available.
type ServiceProvider struct {
	Name        string
	Description string
	Instance    any
}

// ServiceAware is implemented by modules that publish services. Services
// are registered right after the module's Init returns, so dependants can
// look them up in their own Init.
type ServiceAware interface {
	ProvidesServices() []ServiceProvider
}

// Startable is implemented by modules with background work.
type Startable interface {
	Start(ctx context.Context) error
}

// Stoppable is implemented by modules that need to release resources.
type Stoppable interface {
	Stop(ctx context.Context) error
}
