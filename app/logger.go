package app

import "github.com/GoCodeAlone/fibonacci"

// Logger is the structured logger shared by the application and its modules.
type Logger = fibonacci.Logger
