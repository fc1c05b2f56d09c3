package app

import (
	"fmt"
	"sort"
)

// ConfigProvider defines the interface for providing configuration objects
type ConfigProvider interface {
	// GetConfig returns the configuration object
	GetConfig() any
}

// StdConfigProvider provides a standard implementation of ConfigProvider
type StdConfigProvider struct {
	cfg any
}

// GetConfig returns the configuration object
func (s *StdConfigProvider) GetConfig() any {
	return s.cfg
}

// NewStdConfigProvider creates a new standard configuration provider
func NewStdConfigProvider(cfg any) *StdConfigProvider {
	return &StdConfigProvider{cfg: cfg}
}

// Feeder populates a whole configuration struct.
type Feeder interface {
	Feed(target any) error
}

// ComplexFeeder can also populate a single named section.
type ComplexFeeder interface {
	Feeder
	FeedKey(key string, target any) error
}

// loadConfig feeds the main config and every section, then applies
// defaults and validation. Sections are processed in name order so
// failures are reported deterministically.
func loadConfig(feeders []Feeder, main ConfigProvider, sections map[string]ConfigProvider) error {
	if main != nil && main.GetConfig() != nil {
		for _, f := range feeders {
			if err := f.Feed(main.GetConfig()); err != nil {
				return fmt.Errorf("%w: main config: %w", ErrConfigFeederError, err)
			}
		}
		if err := ValidateConfig(main.GetConfig()); err != nil {
			return fmt.Errorf("main config: %w", err)
		}
	}

	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cfg := sections[name].GetConfig()
		if cfg == nil {
			continue
		}
		for _, f := range feeders {
			cf, ok := f.(ComplexFeeder)
			if !ok {
				continue
			}
			if err := cf.FeedKey(name, cfg); err != nil {
				return fmt.Errorf("%w: section %s: %w", ErrConfigFeederError, name, err)
			}
		}
		if err := ValidateConfig(cfg); err != nil {
			return fmt.Errorf("config validation error for %s: %w", name, err)
		}
	}
	return nil
}
