package computer

import (
	"fmt"

	"github.com/GoCodeAlone/fibonacci"
)

// ComputerConfig selects the strategy served by the computer module.
type ComputerConfig struct {
	// Strategy is one of recursive, iterative or memoized.
	Strategy string `yaml:"strategy" toml:"strategy" json:"strategy" env:"STRATEGY" default:"iterative" desc:"Computation strategy (recursive, iterative, memoized)"`

	// MemoService names the service used as the memo store by the memoized
	// strategy. When no such service is registered an in-process map is used.
	MemoService string `yaml:"memoService" toml:"memoService" json:"memoService" env:"MEMO_SERVICE" default:"fibonacci.memo" desc:"Service providing the memo store"`
}

// Validate implements app.ConfigValidator.
func (c *ComputerConfig) Validate() error {
	if _, err := fibonacci.ParseStrategy(c.Strategy); err != nil {
		return fmt.Errorf("computer config: %w", err)
	}
	return nil
}
