package stats

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu        sync.RWMutex
	pairs     map[PairKey]*StationPairDay
	routes    map[RouteKey]*RouteDay
	pairHours map[PairHourKey]*StationPairHour
}

// NewInMemoryRepository creates a new in-memory stats repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		pairs:     make(map[PairKey]*StationPairDay),
		routes:    make(map[RouteKey]*RouteDay),
		pairHours: make(map[PairHourKey]*StationPairHour),
	}
}

// GetStationPairDay retrieves a daily pair row by key.
func (r *InMemoryRepository) GetStationPairDay(_ context.Context, key PairKey) (*StationPairDay, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.pairs[key]
	if !ok {
		return nil, ErrNotFound
	}
	cpy := *row
	return &cpy, nil
}

// UpsertStationPairDay stores the full row under its key.
func (r *InMemoryRepository) UpsertStationPairDay(_ context.Context, row *StationPairDay) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *row
	r.pairs[row.Key()] = &cpy
	return nil
}

// ListStationPairDays returns rows with date >= since, newest date first.
func (r *InMemoryRepository) ListStationPairDays(_ context.Context, since string, limit int) ([]*StationPairDay, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rows []*StationPairDay
	for _, row := range r.pairs {
		if since != "" && row.Date < since {
			continue
		}
		cpy := *row
		rows = append(rows, &cpy)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date > rows[j].Date
		}
		if rows[i].FromStop != rows[j].FromStop {
			return rows[i].FromStop < rows[j].FromStop
		}
		return rows[i].ToStop < rows[j].ToStop
	})
	return clip(rows, limit), nil
}

// GetRouteDay retrieves a daily route row by key.
func (r *InMemoryRepository) GetRouteDay(_ context.Context, key RouteKey) (*RouteDay, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.routes[key]
	if !ok {
		return nil, ErrNotFound
	}
	cpy := *row
	return &cpy, nil
}

// UpsertRouteDay stores the full row under its key.
func (r *InMemoryRepository) UpsertRouteDay(_ context.Context, row *RouteDay) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *row
	r.routes[row.Key()] = &cpy
	return nil
}

// ListRouteDays returns rows with date >= since, newest date first.
func (r *InMemoryRepository) ListRouteDays(_ context.Context, since string, limit int) ([]*RouteDay, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rows []*RouteDay
	for _, row := range r.routes {
		if since != "" && row.Date < since {
			continue
		}
		cpy := *row
		rows = append(rows, &cpy)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date > rows[j].Date
		}
		return rows[i].RouteID < rows[j].RouteID
	})
	return clip(rows, limit), nil
}

// GetStationPairHour retrieves an hourly pair row by key.
func (r *InMemoryRepository) GetStationPairHour(_ context.Context, key PairHourKey) (*StationPairHour, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.pairHours[key]
	if !ok {
		return nil, ErrNotFound
	}
	cpy := *row
	return &cpy, nil
}

// UpsertStationPairHour stores the full row under its key.
func (r *InMemoryRepository) UpsertStationPairHour(_ context.Context, row *StationPairHour) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *row
	r.pairHours[row.Key()] = &cpy
	return nil
}

// ListStationPairHours returns rows with date >= since, newest first.
func (r *InMemoryRepository) ListStationPairHours(_ context.Context, since string, limit int) ([]*StationPairHour, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rows []*StationPairHour
	for _, row := range r.pairHours {
		if since != "" && row.Date < since {
			continue
		}
		cpy := *row
		rows = append(rows, &cpy)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date > rows[j].Date
		}
		if rows[i].Hour != rows[j].Hour {
			return rows[i].Hour > rows[j].Hour
		}
		if rows[i].FromStop != rows[j].FromStop {
			return rows[i].FromStop < rows[j].FromStop
		}
		return rows[i].ToStop < rows[j].ToStop
	})
	return clip(rows, limit), nil
}

// Summary computes the system totals for one day over the stored rows.
func (r *InMemoryRepository) Summary(_ context.Context, date string) (*Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summary := &Summary{Date: date}
	for _, row := range r.pairs {
		if row.Date != date {
			continue
		}
		summary.PairsTracked++
		summary.TotalTrips += row.TotalTrips
		summary.OnTimeTrips += row.OnTimeTrips
		summary.DelayedTrips += row.DelayCount
		summary.TotalDelayMinutes += row.TotalDelayMinutes
	}
	for _, row := range r.routes {
		if row.Date == date {
			summary.RoutesTracked++
		}
	}
	finishSummary(summary)
	return summary, nil
}

// finishSummary derives the ratio fields from the summed counters.
func finishSummary(s *Summary) {
	if s.DelayedTrips > 0 {
		s.AvgDelayMinutes = s.TotalDelayMinutes / float64(s.DelayedTrips)
	}
	if s.TotalTrips > 0 {
		s.OnTimePercent = 100 * float64(s.OnTimeTrips) / float64(s.TotalTrips)
	}
}

func clip[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
