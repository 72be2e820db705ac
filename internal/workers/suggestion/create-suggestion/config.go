package createsuggestion

import (
	"time"

	"lead-triage/internal/common/errors"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var problems []string
	if c.Timeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		problems = append(problems, "max_jobs_active must be positive")
	}
	if len(problems) > 0 {
		return errors.NewValidationFailedError(problems)
	}
	return nil
}
