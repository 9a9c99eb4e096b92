// Package ingest runs one fetch, normalize, aggregate, merge cycle over the
// region's stations.
package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/togstats/togstats/internal/delay"
	"github.com/togstats/togstats/internal/departure"
	"github.com/togstats/togstats/internal/region"
	"github.com/togstats/togstats/internal/stats"
)

// BoardFetcher fetches the departure board for one stop place.
type BoardFetcher interface {
	Departures(ctx context.Context, stopPlaceID string, n int) (delay.StopBoard, error)
	Name() string
}

// Source produces ready-made observations, independent of the station loop.
type Source interface {
	Observations(ctx context.Context, reg *region.Region, now time.Time) ([]delay.Observation, error)
	Name() string
}

// Config wires a pipeline.
type Config struct {
	Region *region.Region

	// Boards is the per-station departure board fetcher.
	Boards BoardFetcher

	// Sources are additional observation feeds merged into the same batch.
	Sources []Source

	// Stats receives the aggregated batch.
	Stats *stats.Service

	// Departures receives the raw audit records. Optional; writes are best
	// effort and never fail the run.
	Departures departure.Repository

	// DeparturesPerStop is how many calls each station query asks for.
	DeparturesPerStop int

	Logger zerolog.Logger

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Pipeline executes ingest runs.
type Pipeline struct {
	cfg    Config
	logger zerolog.Logger
	now    func() time.Time
}

// ErrNoObservations is returned when a run produced nothing at all.
var ErrNoObservations = errors.New("no station or source produced observations")

// NewPipeline creates a pipeline from the config.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if cfg.Region == nil {
		return nil, errors.New("region is required")
	}
	if cfg.Boards == nil && len(cfg.Sources) == 0 {
		return nil, errors.New("at least one data source is required")
	}
	if cfg.Stats == nil {
		return nil, errors.New("stats service is required")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Pipeline{
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "ingest").Logger(),
		now:    now,
	}, nil
}

// RunResult summarizes one ingest run.
type RunResult struct {
	StartedAt       time.Time
	Duration        time.Duration
	StationsQueried int
	StationsFailed  int
	SourcesFailed   int
	Observations    int
	MergedKeys      int
	FailedKeys      int
}

// Run executes one full cycle. Station and source failures are isolated:
// they are logged, counted and skipped. Run returns an error only when the
// cycle produced no observations at all.
//
// Observations are deduplicated by (trip, station) within the run. Across
// runs no deduplication happens: a call still pending at the next run is
// counted again.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	now := p.now()
	result := &RunResult{StartedAt: now}

	var all []delay.Observation

	if p.cfg.Boards != nil {
		for _, stationID := range p.cfg.Region.StationIDs() {
			board, err := p.cfg.Boards.Departures(ctx, stationID, p.cfg.DeparturesPerStop)
			if err != nil {
				p.logger.Warn().Err(err).Str("station", stationID).Str("source", p.cfg.Boards.Name()).
					Msg("station query failed, skipping")
				result.StationsFailed++
				continue
			}
			result.StationsQueried++
			all = append(all, delay.Normalize(board, p.cfg.Region, now)...)
		}
	}

	for _, src := range p.cfg.Sources {
		obs, err := src.Observations(ctx, p.cfg.Region, now)
		if err != nil {
			p.logger.Warn().Err(err).Str("source", src.Name()).Msg("source failed, skipping")
			result.SourcesFailed++
			continue
		}
		all = append(all, obs...)
	}

	all = dedupe(all)
	result.Observations = len(all)

	if len(all) == 0 {
		result.Duration = time.Since(now)
		if result.StationsFailed > 0 || result.SourcesFailed > 0 {
			return result, ErrNoObservations
		}
		p.logger.Info().Msg("no departures observed this run")
		return result, nil
	}

	if p.cfg.Departures != nil {
		records := make([]*departure.Record, len(all))
		for i, o := range all {
			records[i] = departure.FromObservation(o, now)
		}
		if err := p.cfg.Departures.InsertBatch(ctx, records); err != nil {
			p.logger.Error().Err(err).Int("records", len(records)).
				Msg("writing departure audit records failed")
		}
	}

	outcome := p.cfg.Stats.MergeBatch(ctx, stats.Collect(all))
	result.MergedKeys = outcome.Merged()
	result.FailedKeys = outcome.FailedKeys
	result.Duration = time.Since(now)

	p.logger.Info().
		Int("stations_ok", result.StationsQueried).
		Int("stations_failed", result.StationsFailed).
		Int("observations", result.Observations).
		Int("merged_keys", result.MergedKeys).
		Int("failed_keys", result.FailedKeys).
		Dur("duration", result.Duration).
		Msg("ingest run finished")

	return result, nil
}

// dedupe drops repeated (trip, station) observations within one run,
// keeping the first. Observations without a trip id are kept as-is.
func dedupe(obs []delay.Observation) []delay.Observation {
	type key struct {
		tripID string
		stopID string
	}
	seen := make(map[key]bool, len(obs))
	out := obs[:0]
	for _, o := range obs {
		if o.TripID != "" {
			k := key{tripID: o.TripID, stopID: o.FromStopID}
			if seen[k] {
				continue
			}
			seen[k] = true
		}
		out = append(out, o)
	}
	return out
}
