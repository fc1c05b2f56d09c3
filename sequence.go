package fibonacci

import (
	"context"
	"fmt"
	"math/big"
)

// bigCtxCheckMask sets how often ComputeBigContext polls its context:
// once every 4096 additions.
const bigCtxCheckMask = 1<<12 - 1

// ComputeBig returns F(n) with arbitrary precision.
func ComputeBig(n int) (*big.Int, error) {
	return ComputeBigContext(context.Background(), n)
}

// ComputeBigContext returns F(n) with arbitrary precision, giving up when
// ctx is done. The cost grows quadratically with n, so callers serving
// untrusted input should bound n.
func ComputeBigContext(ctx context.Context, n int) (*big.Int, error) {
	if n < 0 {
		return nil, wrapInvalidArgument(n)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prev, curr := big.NewInt(0), big.NewInt(1)
	if n == 0 {
		return prev, nil
	}
	for i := 2; i <= n; i++ {
		if i&bigCtxCheckMask == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		prev.Add(prev, curr)
		prev, curr = curr, prev
	}
	return curr, nil
}

// Sequence returns F(from) through F(to) inclusive using c.
func Sequence(ctx context.Context, c Computer, from, to int) ([]uint64, error) {
	if from > to {
		return nil, fmt.Errorf("%w: from %d is greater than to %d", ErrInvalidRange, from, to)
	}
	if err := checkIndex(from); err != nil {
		return nil, err
	}
	if err := checkIndex(to); err != nil {
		return nil, err
	}

	terms := make([]uint64, 0, to-from+1)
	for n := from; n <= to; n++ {
		term, err := c.ComputeContext(ctx, n)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, nil
}
