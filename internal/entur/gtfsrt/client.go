// Package gtfsrt reads Entur's GTFS-RT trip-updates feed and turns stop time
// updates for region trains into delay observations. It is the alternate
// ingest source next to the JourneyPlanner station boards.
package gtfsrt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/proto"

	"github.com/togstats/togstats/internal/delay"
	"github.com/togstats/togstats/internal/provider/resilience"
	"github.com/togstats/togstats/internal/region"
	"github.com/togstats/togstats/internal/telemetry"
)

const (
	// ProviderName identifies this upstream for health tracking.
	ProviderName = "entur_gtfsrt"

	// DefaultFeedURL is Entur's aggregated trip-updates feed.
	DefaultFeedURL = "https://api.entur.io/realtime/v1/gtfs-rt/trip-updates"
)

// ClientConfig holds configuration for the GTFS-RT client.
type ClientConfig struct {
	// ClientName is sent as ET-Client-Name, required by Entur's terms of use.
	ClientName string

	// FeedURL overrides the trip-updates feed URL (used in tests).
	FeedURL string

	// HTTPClient is the resilient client to use. A default one is built
	// when nil.
	HTTPClient *resilience.Client

	// Registry receives per-call success/failure records when set.
	Registry *resilience.Registry

	// Metrics receives per-call request metrics when set.
	Metrics *telemetry.ProviderMetrics

	Logger zerolog.Logger
}

// Client fetches and decodes the trip-updates feed.
type Client struct {
	clientName string
	feedURL    string
	httpClient *resilience.Client
	registry   *resilience.Registry
	metrics    *telemetry.ProviderMetrics
	logger     zerolog.Logger
}

// NewClient creates a new GTFS-RT client.
func NewClient(cfg ClientConfig) *Client {
	feedURL := cfg.FeedURL
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.ClientConfig{Name: ProviderName})
	}
	if cfg.Registry != nil {
		cfg.Registry.Register(ProviderName, httpClient)
	}

	return &Client{
		clientName: cfg.ClientName,
		feedURL:    feedURL,
		httpClient: httpClient,
		registry:   cfg.Registry,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Observations fetches the feed and emits one observation per consecutive
// stop pair of every region trip. The departure delay of the leading stop is
// used, falling back to its arrival delay, and zero when neither is present.
func (c *Client) Observations(ctx context.Context, reg *region.Region, now time.Time) ([]delay.Observation, error) {
	start := time.Now()
	feed, err := c.fetchFeed(ctx)
	if c.metrics != nil {
		c.metrics.RecordRequest(ProviderName, "trip_updates", time.Since(start), err)
	}
	if c.registry != nil {
		if err != nil {
			c.registry.RecordFailure(ProviderName, err)
		} else {
			c.registry.RecordSuccess(ProviderName)
		}
	}
	if err != nil {
		return nil, err
	}

	date := now.Format("2006-01-02")
	hour := now.Hour()

	var obs []delay.Observation
	for _, entity := range feed.Entity {
		tu := entity.TripUpdate
		if tu == nil || tu.Trip == nil {
			continue
		}

		routeID := tu.Trip.GetRouteId()
		if !reg.MatchesRoute(routeID) {
			continue
		}
		routeCode := region.ExtractRouteCode(routeID)
		routeName := routeCode
		if rt, ok := reg.RouteByCode(routeCode); ok {
			routeName = rt.Name
		}

		updates := tu.StopTimeUpdate
		for i := 0; i+1 < len(updates); i++ {
			from, to := updates[i], updates[i+1]
			if from.StopId == nil || to.StopId == nil {
				continue
			}

			delaySeconds, aimed := stopDelay(from)
			delayMinutes := float64(delaySeconds) / 60

			fromName := reg.StationName(from.GetStopId())
			toName := reg.StationName(to.GetStopId())

			o := delay.Observation{
				Date:           date,
				Hour:           hour,
				TripID:         tu.Trip.GetTripId(),
				FromStopID:     from.GetStopId(),
				FromStopName:   fromName,
				ToStopID:       to.GetStopId(),
				ToStopName:     toName,
				RouteCode:      routeCode,
				RouteName:      routeName,
				Realtime:       true,
				AimedDeparture: aimed,
				DelayMinutes:   delayMinutes,
				IsOnTime:       delayMinutes <= region.OnTimeThresholdMinutes,
				IsRelevant:     reg.IsRelevantPair(fromName, toName),
			}
			if !aimed.IsZero() {
				o.ExpectedDeparture = aimed.Add(time.Duration(delaySeconds) * time.Second)
			}
			obs = append(obs, o)
		}
	}

	return obs, nil
}

// stopDelay extracts the delay in seconds and the scheduled departure time
// for a stop time update.
func stopDelay(stu *gtfs.TripUpdate_StopTimeUpdate) (int32, time.Time) {
	var aimed time.Time
	if dep := stu.Departure; dep != nil {
		if dep.Time != nil {
			aimed = time.Unix(dep.GetTime(), 0).UTC()
		}
		if dep.Delay != nil {
			return dep.GetDelay(), aimed
		}
	}
	if arr := stu.Arrival; arr != nil && arr.Delay != nil {
		return arr.GetDelay(), aimed
	}
	return 0, aimed
}

func (c *Client) fetchFeed(ctx context.Context) (*gtfs.FeedMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("ET-Client-Name", c.clientName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	feed := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, feed); err != nil {
		return nil, fmt.Errorf("decoding feed: %w", err)
	}
	return feed, nil
}
