// Package delay turns upstream departure boards into normalized delay
// observations. It is a pure transform over a board, a region configuration
// and a clock; all I/O lives in the callers.
package delay

import "time"

// EstimatedCall is one upcoming departure from a station board, as reported
// by the upstream realtime API. Zero-value times mean the field was absent.
type EstimatedCall struct {
	TripID             string
	AimedDeparture     time.Time
	ExpectedDeparture  time.Time
	Realtime           bool
	LineID             string
	LinePublicCode     string
	DestinationDisplay string
	QuayID             string
}

// StopBoard is the upstream response for a single station query.
type StopBoard struct {
	StopPlaceID   string
	StopPlaceName string
	Calls         []EstimatedCall
}

// Observation is one normalized delay measurement for a single call at a
// single station. It carries both the aggregation fields and the raw call
// details the audit trail records.
type Observation struct {
	Date string // YYYY-MM-DD, derived from the fetch time
	Hour int    // 0-23, derived from the fetch time

	TripID       string
	FromStopID   string
	FromStopName string
	ToStopID     string // empty when the next stop is not a monitored station
	ToStopName   string
	RouteCode    string
	RouteName    string

	DestinationDisplay string
	AimedDeparture     time.Time
	ExpectedDeparture  time.Time
	Realtime           bool
	QuayID             string

	// DelayMinutes is expected minus aimed departure in minutes. Negative
	// means early; a missing expected time counts as zero delay.
	DelayMinutes float64
	IsOnTime     bool
	IsRelevant   bool
}

// PositiveDelayMinutes is the observation's contribution to accumulated
// delay totals: early and on-time departures contribute zero, never a
// negative amount.
func (o Observation) PositiveDelayMinutes() float64 {
	if o.DelayMinutes > 0 {
		return o.DelayMinutes
	}
	return 0
}
