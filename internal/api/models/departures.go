package models

import "github.com/togstats/togstats/internal/departure"

// Departure is one recorded departure from the audit trail.
type Departure struct {
	ID                string     `json:"id"`
	TripID            string     `json:"trip_id,omitempty"`
	RouteID           string     `json:"route_id"`
	RouteName         string     `json:"route_name,omitempty"`
	FromStop          string     `json:"from_stop"`
	ToStop            string     `json:"to_stop"`
	Destination       string     `json:"destination,omitempty"`
	AimedDeparture    Timestamp  `json:"aimed_departure"`
	ExpectedDeparture *Timestamp `json:"expected_departure,omitempty"`
	DelayMinutes      float64    `json:"delay_minutes"`
	Realtime          bool       `json:"realtime"`
	RecordedAt        Timestamp  `json:"recorded_at"`
}

// DepartureList is the list envelope for departures.
type DepartureList struct {
	Items []Departure `json:"items"`
}

// NewDeparture maps an audit record to its API shape.
func NewDeparture(rec *departure.Record) Departure {
	d := Departure{
		ID:             rec.ID,
		TripID:         rec.TripID,
		RouteID:        rec.RouteID,
		RouteName:      rec.RouteName,
		FromStop:       rec.FromStop,
		ToStop:         rec.ToStop,
		Destination:    rec.Destination,
		AimedDeparture: Timestamp(rec.AimedDeparture),
		DelayMinutes:   rec.DelayMinutes,
		Realtime:       rec.Realtime,
		RecordedAt:     Timestamp(rec.RecordedAt),
	}
	if rec.ExpectedDeparture != nil {
		expected := Timestamp(*rec.ExpectedDeparture)
		d.ExpectedDeparture = &expected
	}
	return d
}
