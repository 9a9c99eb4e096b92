package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/togstats/togstats/internal/ingest"
)

// ErrRunInProgress is returned when a run is requested while another is
// still going. Runs never overlap: the store sees one writer at a time.
var ErrRunInProgress = errors.New("ingest run already in progress")

// IngestJob executes ingest runs on a schedule and on demand.
type IngestJob struct {
	config   JobConfig
	pipeline *ingest.Pipeline
	logger   zerolog.Logger

	running atomic.Bool
	metrics *JobMetrics
}

// JobMetrics tracks ingest job statistics.
type JobMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRuns      int64
	SuccessfulRuns int64
	FailedRuns     int64
	SkippedRuns    int64

	// Totals across runs
	Observations int64
	MergedKeys   int64
	FailedKeys   int64

	// Timings
	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// IngestJobConfig holds configuration for creating an IngestJob.
type IngestJobConfig struct {
	Config   JobConfig
	Pipeline *ingest.Pipeline
	Logger   zerolog.Logger
}

// NewIngestJob creates a new ingest job.
func NewIngestJob(cfg IngestJobConfig) *IngestJob {
	return &IngestJob{
		config:   cfg.Config.withDefaults(),
		pipeline: cfg.Pipeline,
		logger:   cfg.Logger.With().Str("component", "ingest_job").Logger(),
		metrics:  &JobMetrics{},
	}
}

// Start runs the job on the configured interval until ctx is cancelled.
func (j *IngestJob) Start(ctx context.Context) error {
	j.logger.Info().
		Dur("interval", j.config.Interval).
		Dur("run_timeout", j.config.RunTimeout).
		Msg("starting ingest loop")

	if j.config.RunOnStart {
		j.runScheduled(ctx)
	}

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("ingest loop stopped")
			return ctx.Err()
		case <-ticker.C:
			j.runScheduled(ctx)
		}
	}
}

func (j *IngestJob) runScheduled(ctx context.Context) {
	if _, err := j.RunOnce(ctx); err != nil && !errors.Is(err, ErrRunInProgress) {
		j.logger.Error().Err(err).Msg("scheduled ingest run failed")
	}
}

// RunOnce executes a single ingest run. If a run is already in progress
// it returns ErrRunInProgress without starting another.
func (j *IngestJob) RunOnce(ctx context.Context) (*ingest.RunResult, error) {
	if !j.running.CompareAndSwap(false, true) {
		j.recordSkipped()
		return nil, ErrRunInProgress
	}
	defer j.running.Store(false)

	runCtx, cancel := context.WithTimeout(ctx, j.config.RunTimeout)
	defer cancel()

	result, err := j.pipeline.Run(runCtx)
	j.updateMetrics(result, err)
	return result, err
}

func (j *IngestJob) recordSkipped() {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()
	j.metrics.SkippedRuns++
}

func (j *IngestJob) updateMetrics(result *ingest.RunResult, err error) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	if err != nil {
		j.metrics.FailedRuns++
	} else {
		j.metrics.SuccessfulRuns++
	}
	if result != nil {
		j.metrics.Observations += int64(result.Observations)
		j.metrics.MergedKeys += int64(result.MergedKeys)
		j.metrics.FailedKeys += int64(result.FailedKeys)
		j.metrics.LastRunAt = result.StartedAt
		j.metrics.LastRunDuration = result.Duration
		j.metrics.TotalDuration += result.Duration
	}
}

// GetMetrics returns a copy of the current metrics.
func (j *IngestJob) GetMetrics() JobMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return JobMetrics{
		TotalRuns:       j.metrics.TotalRuns,
		SuccessfulRuns:  j.metrics.SuccessfulRuns,
		FailedRuns:      j.metrics.FailedRuns,
		SkippedRuns:     j.metrics.SkippedRuns,
		Observations:    j.metrics.Observations,
		MergedKeys:      j.metrics.MergedKeys,
		FailedKeys:      j.metrics.FailedKeys,
		LastRunAt:       j.metrics.LastRunAt,
		LastRunDuration: j.metrics.LastRunDuration,
		TotalDuration:   j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *IngestJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":        m.TotalRuns,
		"successful_runs":   m.SuccessfulRuns,
		"failed_runs":       m.FailedRuns,
		"skipped_runs":      m.SkippedRuns,
		"observations":      m.Observations,
		"merged_keys":       m.MergedKeys,
		"failed_keys":       m.FailedKeys,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
		"total_duration":    m.TotalDuration.String(),
	}
}
