package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/togstats/togstats/internal/delay"
)

func newTestService() (*Service, *InMemoryRepository) {
	repo := NewInMemoryRepository()
	return NewService(repo, zerolog.Nop()), repo
}

func TestMergeBatchInsertsNewKeys(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	batch := Collect([]delay.Observation{obs(4, true), obs(0, false)})
	out := svc.MergeBatch(ctx, batch)

	assert.Equal(t, 1, out.PairsMerged)
	assert.Equal(t, 1, out.RoutesMerged)
	assert.Equal(t, 1, out.HoursMerged)
	assert.Zero(t, out.FailedKeys)
	assert.Equal(t, 3, out.Merged())

	row, err := repo.GetStationPairDay(ctx, PairKey{Date: "2025-03-14", FromStop: "Oslo S", ToStop: "Lillestrøm"})
	require.NoError(t, err)
	assert.Equal(t, 2, row.TotalTrips)
	assert.Equal(t, 1, row.OnTimeTrips)
	assert.Equal(t, 1, row.DelayCount)
	assert.InDelta(t, 4.0, row.AvgDelayMinutes, 1e-9)
	assert.True(t, row.IsRelevant)
}

func TestMergeBatchMergesIntoExisting(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	require.NoError(t, repo.UpsertStationPairDay(ctx, &StationPairDay{
		Date: "2025-03-14", FromStop: "Oslo S", ToStop: "Lillestrøm",
		Totals: Totals{TotalTrips: 9, OnTimeTrips: 8, TotalDelayMinutes: 10, DelayCount: 2, AvgDelayMinutes: 5},
	}))

	out := svc.MergeBatch(ctx, Collect([]delay.Observation{obs(4, false)}))
	assert.Zero(t, out.FailedKeys)

	row, err := repo.GetStationPairDay(ctx, PairKey{Date: "2025-03-14", FromStop: "Oslo S", ToStop: "Lillestrøm"})
	require.NoError(t, err)
	assert.Equal(t, 10, row.TotalTrips)
	assert.Equal(t, 8, row.OnTimeTrips)
	assert.Equal(t, 3, row.DelayCount)
	assert.InDelta(t, 14.0, row.TotalDelayMinutes, 1e-9)
	assert.InDelta(t, 14.0/3.0, row.AvgDelayMinutes, 1e-9)
}

func TestMergeBatchInvariantHoldsAcrossRuns(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	for _, d := range []float64{5, 0, 7, -1, 12} {
		svc.MergeBatch(ctx, Collect([]delay.Observation{obs(d, false)}))

		row, err := repo.GetStationPairDay(ctx, PairKey{Date: "2025-03-14", FromStop: "Oslo S", ToStop: "Lillestrøm"})
		require.NoError(t, err)
		if row.DelayCount > 0 {
			assert.InDelta(t, row.TotalDelayMinutes/float64(row.DelayCount), row.AvgDelayMinutes, 1e-9)
		} else {
			assert.Zero(t, row.AvgDelayMinutes)
		}
	}
}

func TestMergeBatchRelevanceSticks(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	svc.MergeBatch(ctx, Collect([]delay.Observation{obs(1, true)}))
	svc.MergeBatch(ctx, Collect([]delay.Observation{obs(1, false)}))

	row, err := repo.GetStationPairDay(ctx, PairKey{Date: "2025-03-14", FromStop: "Oslo S", ToStop: "Lillestrøm"})
	require.NoError(t, err)
	assert.True(t, row.IsRelevant, "relevance is OR'd, a later irrelevant batch cannot clear it")
}

// failingRepository fails pair-day operations to exercise per-key isolation.
type failingRepository struct {
	*InMemoryRepository
}

func (r *failingRepository) GetStationPairDay(context.Context, PairKey) (*StationPairDay, error) {
	return nil, errors.New("store unavailable")
}

func TestMergeBatchKeyFailureIsolation(t *testing.T) {
	repo := &failingRepository{InMemoryRepository: NewInMemoryRepository()}
	svc := NewService(repo, zerolog.Nop())
	ctx := context.Background()

	out := svc.MergeBatch(ctx, Collect([]delay.Observation{obs(4, false)}))

	assert.Equal(t, 1, out.FailedKeys, "pair key failed")
	assert.Equal(t, 0, out.PairsMerged)
	assert.Equal(t, 1, out.RoutesMerged, "route merge unaffected by pair failure")
	assert.Equal(t, 1, out.HoursMerged)

	_, err := repo.GetRouteDay(ctx, RouteKey{Date: "2025-03-14", RouteID: "L1"})
	assert.NoError(t, err)
}

func TestStationPairDaysValidatesSince(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.StationPairDays(context.Background(), "14-03-2025", 10)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = svc.StationPairDays(context.Background(), "", 10)
	assert.NoError(t, err)
}

func TestSummaryForDate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	svc.MergeBatch(ctx, Collect([]delay.Observation{obs(4, true), obs(0, false), obs(8, false)}))

	summary, err := svc.SummaryForDate(ctx, "2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalTrips)
	assert.Equal(t, 1, summary.OnTimeTrips)
	assert.Equal(t, 2, summary.DelayedTrips)
	assert.InDelta(t, 12.0, summary.TotalDelayMinutes, 1e-9)
	assert.InDelta(t, 6.0, summary.AvgDelayMinutes, 1e-9)
	assert.InDelta(t, 100.0/3.0, summary.OnTimePercent, 1e-9)
	assert.Equal(t, 1, summary.PairsTracked)
	assert.Equal(t, 1, summary.RoutesTracked)

	_, err = svc.SummaryForDate(ctx, "bad-date")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
