package departure

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL departure repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// InsertBatch writes the records in one round trip.
func (r *PostgresRepository) InsertBatch(ctx context.Context, records []*Record) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO train_departures (
			id, trip_id, route_id, route_name,
			from_stop, to_stop, destination,
			aimed_departure, expected_departure, delay_minutes,
			realtime, quay_id, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(query,
			rec.ID,
			rec.TripID,
			rec.RouteID,
			rec.RouteName,
			rec.FromStop,
			rec.ToStop,
			rec.Destination,
			rec.AimedDeparture,
			rec.ExpectedDeparture,
			rec.DelayMinutes,
			rec.Realtime,
			rec.QuayID,
			rec.RecordedAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// ListRecent returns the newest records by recording time.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]*Record, error) {
	query := `
		SELECT
			id, trip_id, route_id, route_name,
			from_stop, to_stop, destination,
			aimed_departure, expected_departure, delay_minutes,
			realtime, quay_id, recorded_at
		FROM train_departures
		ORDER BY recorded_at DESC
		LIMIT $1
	`

	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var rec Record
		err := rows.Scan(
			&rec.ID,
			&rec.TripID,
			&rec.RouteID,
			&rec.RouteName,
			&rec.FromStop,
			&rec.ToStop,
			&rec.Destination,
			&rec.AimedDeparture,
			&rec.ExpectedDeparture,
			&rec.DelayMinutes,
			&rec.Realtime,
			&rec.QuayID,
			&rec.RecordedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
