// Package fibonacci computes terms of the Fibonacci sequence
// F(0)=0, F(1)=1, F(n)=F(n-1)+F(n-2).
//
// Terms are uint64, which holds every term up to F(93). Larger indices
// fail with ErrOverflow; use ComputeBig for arbitrary precision.
// Negative indices fail with ErrInvalidArgument.
//
// Basic usage:
//
//	c := fibonacci.NewComputer(fibonacci.StrategyIterative)
//	term, err := c.Compute(30) // 832040
package fibonacci

import (
	"context"
)

// MaxIndex is the largest index whose term fits in a uint64.
// F(93) = 12200160415121876738, F(94) overflows.
const MaxIndex = 93

// Computer computes single terms of the sequence.
// Implementations are safe for concurrent use and have no observable
// side effects: the same index always yields the same term.
type Computer interface {
	// Compute returns F(n).
	Compute(n int) (uint64, error)

	// ComputeContext returns F(n), giving up when ctx is done.
	ComputeContext(ctx context.Context, n int) (uint64, error)

	// Strategy reports the algorithm used by this computer.
	Strategy() Strategy
}

// Option configures a computer created by NewComputer.
type Option func(*options)

type options struct {
	store  MemoStore
	logger Logger
}

// WithMemoStore sets the store used by the memoized strategy.
// Other strategies ignore it.
func WithMemoStore(store MemoStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithLogger sets the logger used to report memo store failures.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewComputer returns a Computer for the given strategy.
// An unrecognised strategy falls back to StrategyIterative;
// use ParseStrategy to reject bad names up front.
func NewComputer(strategy Strategy, opts ...Option) Computer {
	o := &options{logger: NopLogger{}}
	for _, opt := range opts {
		opt(o)
	}

	switch strategy {
	case StrategyRecursive:
		return &recursiveComputer{}
	case StrategyMemoized:
		store := o.store
		if store == nil {
			store = NewMapStore()
		}
		return &memoizedComputer{store: store, logger: o.logger}
	default:
		return &iterativeComputer{}
	}
}

// Compute returns F(n) using the linear-time iterative strategy.
func Compute(n int) (uint64, error) {
	return iterative(n)
}
