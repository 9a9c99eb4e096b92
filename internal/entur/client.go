// Package entur provides a client for the Entur JourneyPlanner GraphQL API,
// the realtime departure source for the ingest pipeline.
package entur

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/togstats/togstats/internal/delay"
	"github.com/togstats/togstats/internal/provider/resilience"
	"github.com/togstats/togstats/internal/telemetry"
)

const (
	// ProviderName identifies this upstream for health tracking.
	ProviderName = "entur_journeyplanner"

	// DefaultBaseURL is the JourneyPlanner v3 GraphQL endpoint.
	DefaultBaseURL = "https://api.entur.io/journey-planner/v3/graphql"

	// DefaultDepartures is how many upcoming calls one station query asks for.
	DefaultDepartures = 20
)

// estimatedCallsQuery fetches the upcoming departures for one stop place.
const estimatedCallsQuery = `query ($id: String!, $n: Int!) {
  stopPlace(id: $id) {
    id
    name
    estimatedCalls(numberOfDepartures: $n) {
      aimedDepartureTime
      expectedDepartureTime
      realtime
      destinationDisplay { frontText }
      quay { id }
      serviceJourney {
        id
        journeyPattern {
          line { id publicCode }
        }
      }
    }
  }
}`

// ClientConfig holds configuration for the Entur client.
type ClientConfig struct {
	// ClientName is sent as ET-Client-Name, required by Entur's terms of use.
	ClientName string

	// BaseURL overrides the GraphQL endpoint (used in tests).
	BaseURL string

	// HTTPClient is the resilient client to use. A default one is built
	// when nil.
	HTTPClient *resilience.Client

	// Registry receives per-call success/failure records when set.
	Registry *resilience.Registry

	// Metrics receives per-call request metrics when set.
	Metrics *telemetry.ProviderMetrics

	Logger zerolog.Logger
}

// Client queries the Entur JourneyPlanner API.
type Client struct {
	clientName string
	baseURL    string
	httpClient *resilience.Client
	registry   *resilience.Registry
	metrics    *telemetry.ProviderMetrics
	logger     zerolog.Logger
}

// NewClient creates a new Entur client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
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
		baseURL:    baseURL,
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

// Departures fetches the next n estimated calls for one stop place and maps
// them to a station board.
func (c *Client) Departures(ctx context.Context, stopPlaceID string, n int) (delay.StopBoard, error) {
	if n <= 0 {
		n = DefaultDepartures
	}

	start := time.Now()
	board, err := c.departures(ctx, stopPlaceID, n)
	if c.metrics != nil {
		c.metrics.RecordRequest(ProviderName, "departures", time.Since(start), err)
	}
	if c.registry != nil {
		if err != nil {
			c.registry.RecordFailure(ProviderName, err)
		} else {
			c.registry.RecordSuccess(ProviderName)
		}
	}
	return board, err
}

func (c *Client) departures(ctx context.Context, stopPlaceID string, n int) (delay.StopBoard, error) {
	body, err := json.Marshal(graphqlRequest{
		Query: estimatedCallsQuery,
		Variables: map[string]any{
			"id": stopPlaceID,
			"n":  n,
		},
	})
	if err != nil {
		return delay.StopBoard{}, fmt.Errorf("encoding query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return delay.StopBoard{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("ET-Client-Name", c.clientName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return delay.StopBoard{}, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return delay.StopBoard{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var gqlResp graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return delay.StopBoard{}, fmt.Errorf("decoding response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return delay.StopBoard{}, fmt.Errorf("graphql error: %s", gqlResp.Errors[0].Message)
	}
	if gqlResp.Data.StopPlace == nil {
		return delay.StopBoard{}, fmt.Errorf("stop place %s not found", stopPlaceID)
	}

	return c.toBoard(gqlResp.Data.StopPlace), nil
}

// toBoard converts the GraphQL stop place payload to a domain board.
func (c *Client) toBoard(sp *stopPlace) delay.StopBoard {
	board := delay.StopBoard{
		StopPlaceID:   sp.ID,
		StopPlaceName: sp.Name,
		Calls:         make([]delay.EstimatedCall, 0, len(sp.EstimatedCalls)),
	}

	for _, ec := range sp.EstimatedCalls {
		call := delay.EstimatedCall{
			TripID:             ec.ServiceJourney.ID,
			Realtime:           ec.Realtime,
			LineID:             ec.ServiceJourney.JourneyPattern.Line.ID,
			LinePublicCode:     ec.ServiceJourney.JourneyPattern.Line.PublicCode,
			DestinationDisplay: ec.DestinationDisplay.FrontText,
			QuayID:             ec.Quay.ID,
		}

		if ec.AimedDepartureTime != "" {
			if parsed, err := time.Parse(time.RFC3339, ec.AimedDepartureTime); err == nil {
				call.AimedDeparture = parsed
			} else {
				c.logger.Warn().Str("stop_place", sp.ID).Str("aimed", ec.AimedDepartureTime).
					Msg("unparseable aimed departure time")
			}
		}
		if ec.ExpectedDepartureTime != "" {
			if parsed, err := time.Parse(time.RFC3339, ec.ExpectedDepartureTime); err == nil {
				call.ExpectedDeparture = parsed
			}
		}

		board.Calls = append(board.Calls, call)
	}

	return board
}

// GraphQL wire structures.

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		StopPlace *stopPlace `json:"stopPlace"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type stopPlace struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	EstimatedCalls []estimatedCall `json:"estimatedCalls"`
}

type estimatedCall struct {
	AimedDepartureTime    string `json:"aimedDepartureTime"`
	ExpectedDepartureTime string `json:"expectedDepartureTime"`
	Realtime              bool   `json:"realtime"`
	DestinationDisplay    struct {
		FrontText string `json:"frontText"`
	} `json:"destinationDisplay"`
	Quay struct {
		ID string `json:"id"`
	} `json:"quay"`
	ServiceJourney struct {
		ID             string `json:"id"`
		JourneyPattern struct {
			Line struct {
				ID         string `json:"id"`
				PublicCode string `json:"publicCode"`
			} `json:"line"`
		} `json:"journeyPattern"`
	} `json:"serviceJourney"`
}
