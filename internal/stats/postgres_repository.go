package stats

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
//
// Upserts overwrite the conflicting row with the supplied values; the merge
// arithmetic has already happened in the service. This keeps replays of a
// failed write safe for the single-writer worker.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL stats repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetStationPairDay retrieves a daily pair row by key.
func (r *PostgresRepository) GetStationPairDay(ctx context.Context, key PairKey) (*StationPairDay, error) {
	query := `
		SELECT
			date, from_stop, to_stop,
			avg_delay_minutes, total_delay_minutes, delay_count,
			total_trips, on_time_trips, is_relevant, updated_at
		FROM daily_stats
		WHERE date = $1 AND from_stop = $2 AND to_stop = $3
	`

	var row StationPairDay
	err := r.pool.QueryRow(ctx, query, key.Date, key.FromStop, key.ToStop).Scan(
		&row.Date,
		&row.FromStop,
		&row.ToStop,
		&row.AvgDelayMinutes,
		&row.TotalDelayMinutes,
		&row.DelayCount,
		&row.TotalTrips,
		&row.OnTimeTrips,
		&row.IsRelevant,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// UpsertStationPairDay writes the full row, replacing any existing row for
// the same key.
func (r *PostgresRepository) UpsertStationPairDay(ctx context.Context, row *StationPairDay) error {
	query := `
		INSERT INTO daily_stats (
			date, from_stop, to_stop,
			avg_delay_minutes, total_delay_minutes, delay_count,
			total_trips, on_time_trips, is_relevant, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (date, from_stop, to_stop) DO UPDATE SET
			avg_delay_minutes = EXCLUDED.avg_delay_minutes,
			total_delay_minutes = EXCLUDED.total_delay_minutes,
			delay_count = EXCLUDED.delay_count,
			total_trips = EXCLUDED.total_trips,
			on_time_trips = EXCLUDED.on_time_trips,
			is_relevant = EXCLUDED.is_relevant,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		row.Date,
		row.FromStop,
		row.ToStop,
		row.AvgDelayMinutes,
		row.TotalDelayMinutes,
		row.DelayCount,
		row.TotalTrips,
		row.OnTimeTrips,
		row.IsRelevant,
		time.Now().UTC(),
	)
	return err
}

// ListStationPairDays returns rows with date >= since, newest date first.
func (r *PostgresRepository) ListStationPairDays(ctx context.Context, since string, limit int) ([]*StationPairDay, error) {
	query := `
		SELECT
			date, from_stop, to_stop,
			avg_delay_minutes, total_delay_minutes, delay_count,
			total_trips, on_time_trips, is_relevant, updated_at
		FROM daily_stats
		WHERE ($1 = '' OR date >= $1)
		ORDER BY date DESC, from_stop, to_stop
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, since, listLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*StationPairDay
	for rows.Next() {
		var row StationPairDay
		err := rows.Scan(
			&row.Date,
			&row.FromStop,
			&row.ToStop,
			&row.AvgDelayMinutes,
			&row.TotalDelayMinutes,
			&row.DelayCount,
			&row.TotalTrips,
			&row.OnTimeTrips,
			&row.IsRelevant,
			&row.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, &row)
	}
	return result, rows.Err()
}

// GetRouteDay retrieves a daily route row by key.
func (r *PostgresRepository) GetRouteDay(ctx context.Context, key RouteKey) (*RouteDay, error) {
	query := `
		SELECT
			date, route_id, route_name,
			avg_delay_minutes, total_delay_minutes, delay_count,
			total_trips, on_time_trips, is_relevant, updated_at
		FROM route_stats
		WHERE date = $1 AND route_id = $2
	`

	var row RouteDay
	err := r.pool.QueryRow(ctx, query, key.Date, key.RouteID).Scan(
		&row.Date,
		&row.RouteID,
		&row.RouteName,
		&row.AvgDelayMinutes,
		&row.TotalDelayMinutes,
		&row.DelayCount,
		&row.TotalTrips,
		&row.OnTimeTrips,
		&row.IsRelevant,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// UpsertRouteDay writes the full row, replacing any existing row for the
// same key.
func (r *PostgresRepository) UpsertRouteDay(ctx context.Context, row *RouteDay) error {
	query := `
		INSERT INTO route_stats (
			date, route_id, route_name,
			avg_delay_minutes, total_delay_minutes, delay_count,
			total_trips, on_time_trips, is_relevant, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (date, route_id) DO UPDATE SET
			route_name = EXCLUDED.route_name,
			avg_delay_minutes = EXCLUDED.avg_delay_minutes,
			total_delay_minutes = EXCLUDED.total_delay_minutes,
			delay_count = EXCLUDED.delay_count,
			total_trips = EXCLUDED.total_trips,
			on_time_trips = EXCLUDED.on_time_trips,
			is_relevant = EXCLUDED.is_relevant,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		row.Date,
		row.RouteID,
		row.RouteName,
		row.AvgDelayMinutes,
		row.TotalDelayMinutes,
		row.DelayCount,
		row.TotalTrips,
		row.OnTimeTrips,
		row.IsRelevant,
		time.Now().UTC(),
	)
	return err
}

// ListRouteDays returns rows with date >= since, newest date first.
func (r *PostgresRepository) ListRouteDays(ctx context.Context, since string, limit int) ([]*RouteDay, error) {
	query := `
		SELECT
			date, route_id, route_name,
			avg_delay_minutes, total_delay_minutes, delay_count,
			total_trips, on_time_trips, is_relevant, updated_at
		FROM route_stats
		WHERE ($1 = '' OR date >= $1)
		ORDER BY date DESC, route_id
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, since, listLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*RouteDay
	for rows.Next() {
		var row RouteDay
		err := rows.Scan(
			&row.Date,
			&row.RouteID,
			&row.RouteName,
			&row.AvgDelayMinutes,
			&row.TotalDelayMinutes,
			&row.DelayCount,
			&row.TotalTrips,
			&row.OnTimeTrips,
			&row.IsRelevant,
			&row.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, &row)
	}
	return result, rows.Err()
}

// GetStationPairHour retrieves an hourly pair row by key.
func (r *PostgresRepository) GetStationPairHour(ctx context.Context, key PairHourKey) (*StationPairHour, error) {
	query := `
		SELECT
			date, hour, from_stop, to_stop,
			avg_delay_minutes, total_delay_minutes, delay_count,
			total_trips, on_time_trips, is_relevant, updated_at
		FROM hourly_stats
		WHERE date = $1 AND hour = $2 AND from_stop = $3 AND to_stop = $4
	`

	var row StationPairHour
	err := r.pool.QueryRow(ctx, query, key.Date, key.Hour, key.FromStop, key.ToStop).Scan(
		&row.Date,
		&row.Hour,
		&row.FromStop,
		&row.ToStop,
		&row.AvgDelayMinutes,
		&row.TotalDelayMinutes,
		&row.DelayCount,
		&row.TotalTrips,
		&row.OnTimeTrips,
		&row.IsRelevant,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// UpsertStationPairHour writes the full row, replacing any existing row for
// the same key.
func (r *PostgresRepository) UpsertStationPairHour(ctx context.Context, row *StationPairHour) error {
	query := `
		INSERT INTO hourly_stats (
			date, hour, from_stop, to_stop,
			avg_delay_minutes, total_delay_minutes, delay_count,
			total_trips, on_time_trips, is_relevant, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (date, hour, from_stop, to_stop) DO UPDATE SET
			avg_delay_minutes = EXCLUDED.avg_delay_minutes,
			total_delay_minutes = EXCLUDED.total_delay_minutes,
			delay_count = EXCLUDED.delay_count,
			total_trips = EXCLUDED.total_trips,
			on_time_trips = EXCLUDED.on_time_trips,
			is_relevant = EXCLUDED.is_relevant,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		row.Date,
		row.Hour,
		row.FromStop,
		row.ToStop,
		row.AvgDelayMinutes,
		row.TotalDelayMinutes,
		row.DelayCount,
		row.TotalTrips,
		row.OnTimeTrips,
		row.IsRelevant,
		time.Now().UTC(),
	)
	return err
}

// ListStationPairHours returns rows with date >= since, newest first.
func (r *PostgresRepository) ListStationPairHours(ctx context.Context, since string, limit int) ([]*StationPairHour, error) {
	query := `
		SELECT
			date, hour, from_stop, to_stop,
			avg_delay_minutes, total_delay_minutes, delay_count,
			total_trips, on_time_trips, is_relevant, updated_at
		FROM hourly_stats
		WHERE ($1 = '' OR date >= $1)
		ORDER BY date DESC, hour DESC, from_stop, to_stop
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, since, listLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*StationPairHour
	for rows.Next() {
		var row StationPairHour
		err := rows.Scan(
			&row.Date,
			&row.Hour,
			&row.FromStop,
			&row.ToStop,
			&row.AvgDelayMinutes,
			&row.TotalDelayMinutes,
			&row.DelayCount,
			&row.TotalTrips,
			&row.OnTimeTrips,
			&row.IsRelevant,
			&row.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, &row)
	}
	return result, rows.Err()
}

// Summary computes the system totals for one day from the daily tables.
func (r *PostgresRepository) Summary(ctx context.Context, date string) (*Summary, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(total_trips), 0),
			COALESCE(SUM(on_time_trips), 0),
			COALESCE(SUM(delay_count), 0),
			COALESCE(SUM(total_delay_minutes), 0),
			(SELECT COUNT(*) FROM route_stats WHERE date = $1)
		FROM daily_stats
		WHERE date = $1
	`

	summary := &Summary{Date: date}
	err := r.pool.QueryRow(ctx, query, date).Scan(
		&summary.PairsTracked,
		&summary.TotalTrips,
		&summary.OnTimeTrips,
		&summary.DelayedTrips,
		&summary.TotalDelayMinutes,
		&summary.RoutesTracked,
	)
	if err != nil {
		return nil, err
	}
	finishSummary(summary)
	return summary, nil
}

// listLimit clamps list page sizes.
func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
