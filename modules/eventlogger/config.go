package eventlogger

import (
	"fmt"
	"strings"
)

// EventLoggerConfig holds configuration for the event logger module.
type EventLoggerConfig struct {
	// Disabled turns event logging off.
	Disabled bool `yaml:"disabled" toml:"disabled" json:"disabled" env:"DISABLED" desc:"Disable event logging"`

	// LogLevel is the level events are logged at: DEBUG or INFO.
	LogLevel string `yaml:"logLevel" toml:"logLevel" json:"logLevel" env:"LOG_LEVEL" default:"DEBUG" desc:"Level events are logged at (DEBUG, INFO)"`

	// EventTypeFilters limits logging to the listed types. Empty logs all events.
	EventTypeFilters []string `yaml:"eventTypeFilters" toml:"eventTypeFilters" json:"eventTypeFilters" env:"EVENT_TYPE_FILTERS" desc:"Event types to log (empty = all events)"`

	// IncludeData adds the event payload to each entry.
	IncludeData bool `yaml:"includeData" toml:"includeData" json:"includeData" env:"INCLUDE_DATA" desc:"Include event data in log entries"`
}

// Validate implements app.ConfigValidator.
func (c *EventLoggerConfig) Validate() error {
	c.LogLevel = strings.ToUpper(c.LogLevel)
	switch c.LogLevel {
	case "DEBUG", "INFO":
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
}
