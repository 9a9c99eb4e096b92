package departure

import "context"

// Repository persists departure audit records.
type Repository interface {
	// InsertBatch writes one run's records. Records are append-only.
	InsertBatch(ctx context.Context, records []*Record) error

	// ListRecent returns the newest records by recording time.
	ListRecent(ctx context.Context, limit int) ([]*Record, error)
}
