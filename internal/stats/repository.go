package stats

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no aggregate row exists for a key.
var ErrNotFound = errors.New("aggregate row not found")

// Repository persists the three aggregate row shapes.
//
// Get and Upsert back the read-merge-write cycle in Service.MergeBatch; the
// List and Summary methods serve the read API. Upsert writes the full row:
// the merge arithmetic happens in the service, not in SQL.
type Repository interface {
	GetStationPairDay(ctx context.Context, key PairKey) (*StationPairDay, error)
	UpsertStationPairDay(ctx context.Context, row *StationPairDay) error
	ListStationPairDays(ctx context.Context, since string, limit int) ([]*StationPairDay, error)

	GetRouteDay(ctx context.Context, key RouteKey) (*RouteDay, error)
	UpsertRouteDay(ctx context.Context, row *RouteDay) error
	ListRouteDays(ctx context.Context, since string, limit int) ([]*RouteDay, error)

	GetStationPairHour(ctx context.Context, key PairHourKey) (*StationPairHour, error)
	UpsertStationPairHour(ctx context.Context, row *StationPairHour) error
	ListStationPairHours(ctx context.Context, since string, limit int) ([]*StationPairHour, error)

	Summary(ctx context.Context, date string) (*Summary, error)
}
