package fibonacci

import (
	"context"
	"fmt"
	"math/bits"
	"strings"
)

// Strategy names an algorithm for computing terms.
type Strategy string

const (
	// StrategyRecursive is naive recursion. It recomputes overlapping
	// subproblems and runs in exponential time.
	StrategyRecursive Strategy = "recursive"

	// StrategyIterative walks the sequence once in linear time.
	StrategyIterative Strategy = "iterative"

	// StrategyMemoized recurses but caches every term in a MemoStore.
	StrategyMemoized Strategy = "memoized"
)

// Strategies lists every supported strategy.
func Strategies() []Strategy {
	return []Strategy{StrategyRecursive, StrategyIterative, StrategyMemoized}
}

func (s Strategy) String() string {
	return string(s)
}

// ParseStrategy converts a case-insensitive name to a Strategy.
// The empty string selects StrategyIterative.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(name))) {
	case "", StrategyIterative:
		return StrategyIterative, nil
	case StrategyRecursive:
		return StrategyRecursive, nil
	case StrategyMemoized:
		return StrategyMemoized, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// add returns a+b, failing with ErrOverflow on carry.
func add(n int, a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, wrapOverflow(n)
	}
	return sum, nil
}

type iterativeComputer struct{}

func (c *iterativeComputer) Compute(n int) (uint64, error) {
	return iterative(n)
}

func (c *iterativeComputer) ComputeContext(ctx context.Context, n int) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return iterative(n)
}

func (c *iterativeComputer) Strategy() Strategy {
	return StrategyIterative
}

func iterative(n int) (uint64, error) {
	if err := checkIndex(n); err != nil {
		return 0, err
	}
	if n < 2 {
		return uint64(n), nil
	}

	var prev, curr uint64 = 0, 1
	for i := 2; i <= n; i++ {
		next, err := add(i, prev, curr)
		if err != nil {
			return 0, err
		}
		prev, curr = curr, next
	}
	return curr, nil
}

// ctxCheckFloor is the smallest index at which recursive calls poll the
// context. Subtrees below it finish in microseconds.
const ctxCheckFloor = 25

type recursiveComputer struct{}

func (c *recursiveComputer) Compute(n int) (uint64, error) {
	return c.ComputeContext(context.Background(), n)
}

func (c *recursiveComputer) ComputeContext(ctx context.Context, n int) (uint64, error) {
	if err := checkIndex(n); err != nil {
		return 0, err
	}
	return recursive(ctx, n)
}

func (c *recursiveComputer) Strategy() Strategy {
	return StrategyRecursive
}

func recursive(ctx context.Context, n int) (uint64, error) {
	if n < 2 {
		return uint64(n), nil
	}
	if n >= ctxCheckFloor {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
	}

	a, err := recursive(ctx, n-1)
	if err != nil {
		return 0, err
	}
	b, err := recursive(ctx, n-2)
	if err != nil {
		return 0, err
	}
	return add(n, a, b)
}
