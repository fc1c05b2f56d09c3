package scheduler

import (
	"fmt"

	"github.com/GoCodeAlone/fibonacci"
	"github.com/robfig/cron/v3"
)

// SchedulerConfig configures the memo warm-up job.
type SchedulerConfig struct {
	// WarmupSchedule is a cron expression or descriptor such as "@every 1h".
	WarmupSchedule string `yaml:"warmupSchedule" toml:"warmupSchedule" json:"warmupSchedule" env:"WARMUP_SCHEDULE" default:"@every 1h" desc:"Cron schedule of the memo warm-up"`

	// WarmupUpTo is the highest index the warm-up computes. It is a pointer
	// so that 0 can be configured.
	WarmupUpTo *int `yaml:"warmupUpTo" toml:"warmupUpTo" json:"warmupUpTo" env:"WARMUP_UP_TO" default:"93" desc:"Highest index computed by the warm-up"`

	// SkipInitialWarmup disables the warm-up that otherwise runs on Start.
	SkipInitialWarmup bool `yaml:"skipInitialWarmup" toml:"skipInitialWarmup" json:"skipInitialWarmup" env:"SKIP_INITIAL_WARMUP" desc:"Do not warm the memo store on start"`
}

// Validate implements app.ConfigValidator.
func (c *SchedulerConfig) Validate() error {
	if _, err := cron.ParseStandard(c.WarmupSchedule); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, c.WarmupSchedule, err)
	}
	if upTo := c.upTo(); upTo < 0 || upTo > fibonacci.MaxIndex {
		return fmt.Errorf("%w: warmupUpTo must be within [0, %d], got %d", ErrInvalidConfig, fibonacci.MaxIndex, upTo)
	}
	return nil
}

// upTo returns WarmupUpTo, or MaxIndex when it is unset.
func (c *SchedulerConfig) upTo() int {
	if c.WarmupUpTo == nil {
		return fibonacci.MaxIndex
	}
	return *c.WarmupUpTo
}
