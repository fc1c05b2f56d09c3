package configwatcher

import (
	"fmt"
	"time"
)

// WatcherConfig configures the config file watcher.
type WatcherConfig struct {
	// Paths are the files to watch, in addition to those passed to NewModule.
	Paths []string `yaml:"paths" toml:"paths" json:"paths" env:"PATHS" desc:"Config files to watch"`

	// Debounce collapses bursts of writes into a single change.
	Debounce time.Duration `yaml:"debounce" toml:"debounce" json:"debounce" env:"DEBOUNCE" default:"250ms" desc:"Quiet period before a change is reported"`
}

// Validate implements app.ConfigValidator.
func (c *WatcherConfig) Validate() error {
	if c.Debounce < 0 {
		return fmt.Errorf("%w: debounce must not be negative", ErrInvalidConfig)
	}
	return nil
}
