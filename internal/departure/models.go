// Package departure keeps the raw departure audit trail: one record per
// retained call, written alongside the aggregates so individual delays can
// be inspected after the fact.
package departure

import (
	"time"

	"github.com/google/uuid"

	"github.com/togstats/togstats/internal/delay"
)

// Record is one observed departure.
type Record struct {
	ID          string
	TripID      string
	RouteID     string
	RouteName   string
	FromStop    string
	ToStop      string
	Destination string

	AimedDeparture    time.Time
	ExpectedDeparture *time.Time
	DelayMinutes      float64
	Realtime          bool
	QuayID            string

	RecordedAt time.Time
}

// FromObservation builds an audit record for one observation.
func FromObservation(o delay.Observation, recordedAt time.Time) *Record {
	rec := &Record{
		ID:             uuid.NewString(),
		TripID:         o.TripID,
		RouteID:        o.RouteCode,
		RouteName:      o.RouteName,
		FromStop:       o.FromStopName,
		ToStop:         o.ToStopName,
		Destination:    o.DestinationDisplay,
		AimedDeparture: o.AimedDeparture,
		DelayMinutes:   o.DelayMinutes,
		Realtime:       o.Realtime,
		QuayID:         o.QuayID,
		RecordedAt:     recordedAt,
	}
	if !o.ExpectedDeparture.IsZero() {
		expected := o.ExpectedDeparture
		rec.ExpectedDeparture = &expected
	}
	return rec
}
