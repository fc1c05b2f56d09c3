package httpapi

import "errors"

var (
	// ErrInvalidConfig is returned when the httpapi section fails validation.
	ErrInvalidConfig = errors.New("invalid httpapi configuration")

	// ErrAlreadyStarted is returned by Start when the server is running.
	ErrAlreadyStarted = errors.New("http server already started")

	// ErrMissingParameter is returned for a range request without from or to.
	ErrMissingParameter = errors.New("missing query parameter")

	// ErrIndexTooLarge is returned for ?big=true requests above MaxBigIndex.
	ErrIndexTooLarge = errors.New("index too large")

	// ErrBadInteger is returned when an index cannot be parsed.
	ErrBadInteger = errors.New("not an integer")
)
