package gtfsrt_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/togstats/togstats/internal/entur/gtfsrt"
	"github.com/togstats/togstats/internal/region"
)

var testNow = time.Date(2025, 3, 14, 8, 30, 0, 0, time.UTC)

func tripUpdate(tripID, routeID string, updates ...*gtfs.TripUpdate_StopTimeUpdate) *gtfs.FeedEntity {
	return &gtfs.FeedEntity{
		Id: proto.String(tripID),
		TripUpdate: &gtfs.TripUpdate{
			Trip: &gtfs.TripDescriptor{
				TripId:  proto.String(tripID),
				RouteId: proto.String(routeID),
			},
			StopTimeUpdate: updates,
		},
	}
}

func stopUpdate(stopID string, departureDelay *int32) *gtfs.TripUpdate_StopTimeUpdate {
	stu := &gtfs.TripUpdate_StopTimeUpdate{StopId: proto.String(stopID)}
	if departureDelay != nil {
		stu.Departure = &gtfs.TripUpdate_StopTimeEvent{
			Delay: departureDelay,
			Time:  proto.Int64(testNow.Add(10 * time.Minute).Unix()),
		}
	}
	return stu
}

func serveFeed(t *testing.T, entities ...*gtfs.FeedEntity) *gtfsrt.Client {
	t.Helper()

	feed := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
		},
		Entity: entities,
	}
	body, err := proto.Marshal(feed)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)

	return gtfsrt.NewClient(gtfsrt.ClientConfig{
		ClientName: "togstats-test",
		FeedURL:    server.URL,
		Logger:     zerolog.Nop(),
	})
}

func TestObservations(t *testing.T) {
	client := serveFeed(t,
		tripUpdate("VYG:ServiceJourney:L1-1001", "NSB:Line:L1",
			stopUpdate("NSR:StopPlace:337", proto.Int32(240)),
			stopUpdate("NSR:StopPlace:550", proto.Int32(300)),
		),
	)

	obs, err := client.Observations(context.Background(), region.Oslo(), testNow)
	require.NoError(t, err)
	require.Len(t, obs, 1)

	o := obs[0]
	assert.Equal(t, "2025-03-14", o.Date)
	assert.Equal(t, 8, o.Hour)
	assert.Equal(t, "L1", o.RouteCode)
	assert.Equal(t, "Oslo S", o.FromStopName)
	assert.Equal(t, "Lillestrøm", o.ToStopName)
	assert.InDelta(t, 4.0, o.DelayMinutes, 1e-9)
	assert.False(t, o.IsOnTime)
	assert.True(t, o.IsRelevant)
	assert.True(t, o.Realtime)
}

func TestObservationsSkipsForeignRoutes(t *testing.T) {
	client := serveFeed(t,
		tripUpdate("SJ-1", "SJN:Line:RE6",
			stopUpdate("NSR:StopPlace:337", proto.Int32(600)),
			stopUpdate("NSR:StopPlace:550", proto.Int32(600)),
		),
	)

	obs, err := client.Observations(context.Background(), region.Oslo(), testNow)
	require.NoError(t, err)
	assert.Empty(t, obs)
}

func TestObservationsMissingDelayIsOnTime(t *testing.T) {
	client := serveFeed(t,
		tripUpdate("VYG:ServiceJourney:L1-1002", "NSB:Line:L1",
			stopUpdate("NSR:StopPlace:337", nil),
			stopUpdate("NSR:StopPlace:550", nil),
		),
	)

	obs, err := client.Observations(context.Background(), region.Oslo(), testNow)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Zero(t, obs[0].DelayMinutes)
	assert.True(t, obs[0].IsOnTime)
}

func TestObservationsConsecutivePairs(t *testing.T) {
	client := serveFeed(t,
		tripUpdate("VYG:ServiceJourney:L1-1003", "NSB:Line:L1",
			stopUpdate("NSR:StopPlace:596", proto.Int32(60)),
			stopUpdate("NSR:StopPlace:444", proto.Int32(120)),
			stopUpdate("NSR:StopPlace:337", proto.Int32(120)),
		),
	)

	obs, err := client.Observations(context.Background(), region.Oslo(), testNow)
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, "Spikkestad", obs[0].FromStopName)
	assert.Equal(t, "Asker", obs[0].ToStopName)
	assert.Equal(t, "Asker", obs[1].FromStopName)
	assert.Equal(t, "Oslo S", obs[1].ToStopName)
}

func TestObservationsFeedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	client := gtfsrt.NewClient(gtfsrt.ClientConfig{
		ClientName: "togstats-test",
		FeedURL:    server.URL,
		Logger:     zerolog.Nop(),
	})

	_, err := client.Observations(context.Background(), region.Oslo(), testNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestObservationsMalformedFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not a protobuf"))
	}))
	t.Cleanup(server.Close)

	client := gtfsrt.NewClient(gtfsrt.ClientConfig{
		ClientName: "togstats-test",
		FeedURL:    server.URL,
		Logger:     zerolog.Nop(),
	})

	_, err := client.Observations(context.Background(), region.Oslo(), testNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding feed")
}
