package scheduler

import (
	"time"

	"github.com/lodgeops/lodgeops/internal/config"
)

// Config controls scheduler cadence and job selection.
type Config struct {
	RunInterval time.Duration
	JobTimeout  time.Duration
	EnabledJobs []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Hour,
		JobTimeout:  30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		RunInterval: cfg.SchedulerRunInterval,
		JobTimeout:  cfg.SchedulerJobTimeout,
		EnabledJobs: cfg.SchedulerEnabledJobs,
	}.withDefaults()
}
