package fibonacci

import (
	"errors"
	"fmt"
)

// Computation errors
var (
	// ErrInvalidArgument is returned for negative indices.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOverflow is returned when a term does not fit in a uint64.
	ErrOverflow = errors.New("term overflows uint64")

	// ErrInvalidRange is returned by Sequence when from > to.
	ErrInvalidRange = errors.New("invalid range")

	// ErrUnknownStrategy is returned when a strategy name cannot be parsed.
	ErrUnknownStrategy = errors.New("unknown strategy")
)

func wrapInvalidArgument(n int) error {
	return fmt.Errorf("%w: index %d is negative", ErrInvalidArgument, n)
}

func wrapOverflow(n int) error {
	return fmt.Errorf("%w: index %d exceeds max index %d", ErrOverflow, n, MaxIndex)
}

// checkIndex validates n against the uint64 term width.
func checkIndex(n int) error {
	if n < 0 {
		return wrapInvalidArgument(n)
	}
	if n > MaxIndex {
		return wrapOverflow(n)
	}
	return nil
}
