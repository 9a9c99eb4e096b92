// Package worker runs the periodic ingest job and its Pub/Sub triggers.
package worker

import (
	"time"
)

// JobConfig holds configuration for the ingest job.
type JobConfig struct {
	// Interval is how often a scheduled run starts.
	// Default: 5 minutes
	Interval time.Duration

	// RunTimeout bounds one full run across all stations.
	// Default: 2 minutes
	RunTimeout time.Duration

	// RunOnStart triggers a run immediately when the loop starts, before
	// the first tick.
	RunOnStart bool
}

// DefaultJobConfig returns the default job configuration.
func DefaultJobConfig() JobConfig {
	return JobConfig{
		Interval:   5 * time.Minute,
		RunTimeout: 2 * time.Minute,
		RunOnStart: true,
	}
}

func (c JobConfig) withDefaults() JobConfig {
	if c.Interval <= 0 {
		c.Interval = 5 * time.Minute
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = 2 * time.Minute
	}
	return c
}
