package cache

import (
	"errors"
)

// Error definitions
var (
	// ErrCacheFull is returned when the memory cache is full and cannot store new terms
	ErrCacheFull = errors.New("cache is full")

	// ErrNotConnected is returned when an operation is attempted on an engine that is not connected
	ErrNotConnected = errors.New("cache not connected")

	// ErrUnknownEngine is returned for an engine name other than memory or redis
	ErrUnknownEngine = errors.New("unknown cache engine")

	// ErrInvalidConfig is returned when the cache section fails validation
	ErrInvalidConfig = errors.New("invalid cache configuration")

	// ErrCorruptTerm is returned when a stored value cannot be parsed back into a term
	ErrCorruptTerm = errors.New("corrupt cached term")
)
