package stats

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// List page size bounds for the read queries.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// ErrInvalidDate is returned when a date filter is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date, want YYYY-MM-DD")

// Service owns the merge cycle and the read queries over the aggregates.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new stats service.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "stats_service").Logger(),
	}
}

// MergeOutcome reports how one batch merge went, per granularity.
type MergeOutcome struct {
	PairsMerged  int
	RoutesMerged int
	HoursMerged  int
	FailedKeys   int
}

// Merged returns the total number of keys merged across granularities.
func (o MergeOutcome) Merged() int {
	return o.PairsMerged + o.RoutesMerged + o.HoursMerged
}

// MergeBatch folds a pre-aggregated batch into the persisted rows, key by
// key. Each key is read, merged and written independently; a store failure
// on one key is logged and skipped so the remaining keys still land.
func (s *Service) MergeBatch(ctx context.Context, batch Batch) MergeOutcome {
	var out MergeOutcome

	for key, incoming := range batch.Pairs {
		row := incoming
		existing, err := s.repo.GetStationPairDay(ctx, key)
		switch {
		case errors.Is(err, ErrNotFound):
			// first observation for this key, insert as-is
		case err != nil:
			s.logger.Error().Err(err).Str("date", key.Date).Str("from", key.FromStop).Str("to", key.ToStop).
				Msg("reading station pair day failed")
			out.FailedKeys++
			continue
		default:
			row = MergeStationPairDay(existing, incoming)
		}
		if err := s.repo.UpsertStationPairDay(ctx, row); err != nil {
			s.logger.Error().Err(err).Str("date", key.Date).Str("from", key.FromStop).Str("to", key.ToStop).
				Msg("writing station pair day failed")
			out.FailedKeys++
			continue
		}
		out.PairsMerged++
	}

	for key, incoming := range batch.Routes {
		row := incoming
		existing, err := s.repo.GetRouteDay(ctx, key)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			s.logger.Error().Err(err).Str("date", key.Date).Str("route", key.RouteID).
				Msg("reading route day failed")
			out.FailedKeys++
			continue
		default:
			row = MergeRouteDay(existing, incoming)
		}
		if err := s.repo.UpsertRouteDay(ctx, row); err != nil {
			s.logger.Error().Err(err).Str("date", key.Date).Str("route", key.RouteID).
				Msg("writing route day failed")
			out.FailedKeys++
			continue
		}
		out.RoutesMerged++
	}

	for key, incoming := range batch.PairHours {
		row := incoming
		existing, err := s.repo.GetStationPairHour(ctx, key)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			s.logger.Error().Err(err).Str("date", key.Date).Int("hour", key.Hour).
				Str("from", key.FromStop).Str("to", key.ToStop).
				Msg("reading station pair hour failed")
			out.FailedKeys++
			continue
		default:
			row = MergeStationPairHour(existing, incoming)
		}
		if err := s.repo.UpsertStationPairHour(ctx, row); err != nil {
			s.logger.Error().Err(err).Str("date", key.Date).Int("hour", key.Hour).
				Str("from", key.FromStop).Str("to", key.ToStop).
				Msg("writing station pair hour failed")
			out.FailedKeys++
			continue
		}
		out.HoursMerged++
	}

	return out
}

// StationPairDays lists daily pair rows with date >= since, newest first.
func (s *Service) StationPairDays(ctx context.Context, since string, limit int) ([]*StationPairDay, error) {
	if err := validateDate(since); err != nil {
		return nil, err
	}
	return s.repo.ListStationPairDays(ctx, since, listLimit(limit))
}

// RouteDays lists daily route rows with date >= since, newest first.
func (s *Service) RouteDays(ctx context.Context, since string, limit int) ([]*RouteDay, error) {
	if err := validateDate(since); err != nil {
		return nil, err
	}
	return s.repo.ListRouteDays(ctx, since, listLimit(limit))
}

// StationPairHours lists hourly pair rows with date >= since, newest first.
func (s *Service) StationPairHours(ctx context.Context, since string, limit int) ([]*StationPairHour, error) {
	if err := validateDate(since); err != nil {
		return nil, err
	}
	return s.repo.ListStationPairHours(ctx, since, listLimit(limit))
}

// SummaryForDate returns the system totals for one day, defaulting to today.
func (s *Service) SummaryForDate(ctx context.Context, date string) (*Summary, error) {
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if err := validateDate(date); err != nil {
		return nil, err
	}
	return s.repo.Summary(ctx, date)
}

func validateDate(date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ErrInvalidDate
	}
	return nil
}
