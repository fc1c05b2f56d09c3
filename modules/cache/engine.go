package cache

import (
	"context"

	"github.com/GoCodeAlone/fibonacci"
)

// CacheEngine is a term store with a connection lifecycle.
type CacheEngine interface {
	fibonacci.MemoStore

	// Connect prepares the engine. Memory engines start their cleanup
	// loop; Redis engines ping the server.
	Connect(ctx context.Context) error

	// Close releases the engine's resources.
	Close(ctx context.Context) error

	// Flush drops every cached term.
	Flush(ctx context.Context) error

	// Len reports how many terms are cached.
	Len(ctx context.Context) (int, error)

	// Ping checks the engine is usable.
	Ping(ctx context.Context) error
}
