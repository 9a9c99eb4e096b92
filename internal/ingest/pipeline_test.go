package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/togstats/togstats/internal/delay"
	"github.com/togstats/togstats/internal/departure"
	"github.com/togstats/togstats/internal/region"
	"github.com/togstats/togstats/internal/stats"
)

var testNow = time.Date(2025, 3, 14, 8, 12, 0, 0, time.UTC)

type fakeBoards struct {
	boards map[string]delay.StopBoard
	fail   map[string]bool
	calls  int
}

func (f *fakeBoards) Departures(_ context.Context, stopPlaceID string, _ int) (delay.StopBoard, error) {
	f.calls++
	if f.fail[stopPlaceID] {
		return delay.StopBoard{}, errors.New("upstream unavailable")
	}
	return f.boards[stopPlaceID], nil
}

func (f *fakeBoards) Name() string { return "fake_boards" }

type fakeSource struct {
	obs []delay.Observation
	err error
}

func (f *fakeSource) Observations(_ context.Context, _ *region.Region, _ time.Time) ([]delay.Observation, error) {
	return f.obs, f.err
}

func (f *fakeSource) Name() string { return "fake_source" }

func boardFor(stopID, stopName, tripID string, delayMin int) delay.StopBoard {
	aimed := testNow.Add(5 * time.Minute)
	return delay.StopBoard{
		StopPlaceID:   stopID,
		StopPlaceName: stopName,
		Calls: []delay.EstimatedCall{{
			TripID:             tripID,
			AimedDeparture:     aimed,
			ExpectedDeparture:  aimed.Add(time.Duration(delayMin) * time.Minute),
			Realtime:           true,
			LineID:             "NSB:Line:L1",
			LinePublicCode:     "L1",
			DestinationDisplay: "Lillestrøm",
		}},
	}
}

func newTestPipeline(t *testing.T, cfg Config) (*Pipeline, *stats.InMemoryRepository) {
	t.Helper()

	repo := stats.NewInMemoryRepository()
	cfg.Region = region.Oslo()
	cfg.Stats = stats.NewService(repo, zerolog.Nop())
	cfg.Logger = zerolog.Nop()
	cfg.Now = func() time.Time { return testNow }

	p, err := NewPipeline(cfg)
	require.NoError(t, err)
	return p, repo
}

func TestRunAggregatesBoards(t *testing.T) {
	boards := &fakeBoards{boards: map[string]delay.StopBoard{
		"NSR:StopPlace:337": boardFor("NSR:StopPlace:337", "Oslo S", "trip-1", 4),
	}}
	p, repo := newTestPipeline(t, Config{Boards: boards})

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(region.Oslo().StationIDs()), boards.calls)
	assert.Equal(t, len(region.Oslo().StationIDs()), result.StationsQueried)
	assert.Zero(t, result.StationsFailed)
	assert.Equal(t, 1, result.Observations)
	assert.Equal(t, 3, result.MergedKeys) // pair day, route day, pair hour
	assert.Zero(t, result.FailedKeys)

	rows, err := repo.ListStationPairDays(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].TotalTrips)
	assert.Equal(t, 1, rows[0].DelayCount)
	assert.InDelta(t, 4.0, rows[0].TotalDelayMinutes, 0.001)
}

func TestRunIsolatesStationFailures(t *testing.T) {
	boards := &fakeBoards{
		boards: map[string]delay.StopBoard{
			"NSR:StopPlace:550": boardFor("NSR:StopPlace:550", "Lillestrøm", "trip-2", 0),
		},
		fail: map[string]bool{"NSR:StopPlace:337": true, "NSR:StopPlace:444": true},
	}
	p, _ := newTestPipeline(t, Config{Boards: boards})

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.StationsFailed)
	assert.Equal(t, len(region.Oslo().StationIDs())-2, result.StationsQueried)
	assert.Equal(t, 1, result.Observations)
}

func TestRunDeduplicatesWithinRun(t *testing.T) {
	// The same trip reported twice from the same station counts once.
	obs := delay.Observation{
		Date: "2025-03-14", Hour: 8,
		TripID:     "trip-9",
		FromStopID: "NSR:StopPlace:337", FromStopName: "Oslo S",
		ToStopID: "NSR:StopPlace:550", ToStopName: "Lillestrøm",
		RouteCode: "L1", DelayMinutes: 2, IsOnTime: true,
	}
	src := &fakeSource{obs: []delay.Observation{obs, obs}}
	p, _ := newTestPipeline(t, Config{Sources: []Source{src}})

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Observations)
}

func TestRunMergesSourcesAndBoards(t *testing.T) {
	boards := &fakeBoards{boards: map[string]delay.StopBoard{
		"NSR:StopPlace:337": boardFor("NSR:StopPlace:337", "Oslo S", "trip-1", 4),
	}}
	src := &fakeSource{obs: []delay.Observation{{
		Date: "2025-03-14", Hour: 8,
		TripID:     "trip-2",
		FromStopID: "NSR:StopPlace:444", FromStopName: "Asker",
		ToStopID: "NSR:StopPlace:337", ToStopName: "Oslo S",
		RouteCode: "L1", DelayMinutes: 6,
	}}}
	p, _ := newTestPipeline(t, Config{Boards: boards, Sources: []Source{src}})

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Observations)
}

func TestRunFailedSourceDoesNotFailRun(t *testing.T) {
	boards := &fakeBoards{boards: map[string]delay.StopBoard{
		"NSR:StopPlace:337": boardFor("NSR:StopPlace:337", "Oslo S", "trip-1", 1),
	}}
	src := &fakeSource{err: errors.New("feed down")}
	p, _ := newTestPipeline(t, Config{Boards: boards, Sources: []Source{src}})

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.SourcesFailed)
	assert.Equal(t, 1, result.Observations)
}

func TestRunAllSourcesDownReturnsError(t *testing.T) {
	src := &fakeSource{err: errors.New("feed down")}
	p, _ := newTestPipeline(t, Config{Sources: []Source{src}})

	result, err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoObservations)
	assert.Equal(t, 1, result.SourcesFailed)
}

func TestRunQuietPeriodIsNotAnError(t *testing.T) {
	src := &fakeSource{}
	p, _ := newTestPipeline(t, Config{Sources: []Source{src}})

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Observations)
}

func TestRunWritesDepartureRecords(t *testing.T) {
	boards := &fakeBoards{boards: map[string]delay.StopBoard{
		"NSR:StopPlace:337": boardFor("NSR:StopPlace:337", "Oslo S", "trip-1", 4),
	}}
	depRepo := departure.NewInMemoryRepository()
	p, _ := newTestPipeline(t, Config{Boards: boards, Departures: depRepo})

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	records, err := depRepo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "trip-1", records[0].TripID)
	assert.Equal(t, "Oslo S", records[0].FromStop)
	assert.InDelta(t, 4.0, records[0].DelayMinutes, 0.001)
	assert.Equal(t, testNow, records[0].RecordedAt)
}

func TestNewPipelineValidation(t *testing.T) {
	_, err := NewPipeline(Config{})
	assert.Error(t, err)

	_, err = NewPipeline(Config{Region: region.Oslo()})
	assert.Error(t, err)
}
