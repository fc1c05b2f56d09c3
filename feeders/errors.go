package feeders

import (
	"errors"
)

// Feeder errors
var (
	ErrInvalidStructure = errors.New("target must be a non-nil pointer to a struct")
	ErrUnsupportedType  = errors.New("unsupported field type")
	ErrFieldCannotBeSet = errors.New("field cannot be set")
	ErrReadFile         = errors.New("failed to read config file")

	ErrInvalidDotEnvLine = errors.New("invalid .env line")
)
