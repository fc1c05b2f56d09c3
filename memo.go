package fibonacci

import (
	"context"
	"sync"
)

// MemoStore caches computed terms by index.
// Implementations must be safe for concurrent use.
type MemoStore interface {
	// Load returns the cached term for n and whether it was present.
	Load(ctx context.Context, n int) (uint64, bool, error)

	// Store caches term as F(n).
	Store(ctx context.Context, n int, term uint64) error
}

// MapStore is an in-process MemoStore backed by a map.
type MapStore struct {
	mu    sync.RWMutex
	terms map[int]uint64
}

// NewMapStore returns an empty MapStore.
func NewMapStore() *MapStore {
	return &MapStore{terms: make(map[int]uint64)}
}

// Load implements MemoStore.
func (s *MapStore) Load(_ context.Context, n int) (uint64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	term, ok := s.terms[n]
	return term, ok, nil
}

// Store implements MemoStore.
func (s *MapStore) Store(_ context.Context, n int, term uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terms[n] = term
	return nil
}

// Len reports how many terms are cached.
func (s *MapStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.terms)
}

// memoizedComputer recurses through a MemoStore. Each call also keeps the
// terms it computes in a local map, so a failing store costs one round trip
// per index and never makes the recursion exponential. Store failures are
// logged once per call and never change results.
type memoizedComputer struct {
	store  MemoStore
	logger Logger
}

// memoCall is the state of a single ComputeContext call.
type memoCall struct {
	local       map[int]uint64
	storeFailed bool
}

func (c *memoizedComputer) Compute(n int) (uint64, error) {
	return c.ComputeContext(context.Background(), n)
}

func (c *memoizedComputer) ComputeContext(ctx context.Context, n int) (uint64, error) {
	if err := checkIndex(n); err != nil {
		return 0, err
	}
	call := &memoCall{local: make(map[int]uint64, n)}
	return c.memoized(ctx, call, n)
}

func (c *memoizedComputer) Strategy() Strategy {
	return StrategyMemoized
}

func (c *memoizedComputer) memoized(ctx context.Context, call *memoCall, n int) (uint64, error) {
	if n < 2 {
		return uint64(n), nil
	}
	if term, ok := call.local[n]; ok {
		return term, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	term, ok, err := c.store.Load(ctx, n)
	if err != nil {
		c.storeFailure(call, "Memo store load failed", n, err)
	} else if ok {
		call.local[n] = term
		return term, nil
	}

	a, err := c.memoized(ctx, call, n-1)
	if err != nil {
		return 0, err
	}
	b, err := c.memoized(ctx, call, n-2)
	if err != nil {
		return 0, err
	}
	term, err = add(n, a, b)
	if err != nil {
		return 0, err
	}
	call.local[n] = term

	if err := c.store.Store(ctx, n, term); err != nil {
		c.storeFailure(call, "Memo store write failed", n, err)
	}
	return term, nil
}

func (c *memoizedComputer) storeFailure(call *memoCall, msg string, n int, err error) {
	if call.storeFailed {
		return
	}
	call.storeFailed = true
	c.logger.Warn(msg, "index", n, "error", err)
}
