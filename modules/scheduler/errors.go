package scheduler

import "errors"

var (
	// ErrInvalidSchedule is returned when warmupSchedule cannot be parsed.
	ErrInvalidSchedule = errors.New("invalid warm-up schedule")

	// ErrInvalidConfig is returned when the scheduler section fails validation.
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
