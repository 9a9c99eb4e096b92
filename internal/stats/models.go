// Package stats implements the delay aggregation core: observations are
// pre-aggregated per batch at three granularities and merged into the
// persisted totals with the average always recomputed from the sums.
package stats

import "time"

// Totals holds the accumulated punctuality counters shared by all aggregate
// rows.
//
// AvgDelayMinutes is derived and never merged directly: it is recomputed
// from TotalDelayMinutes and DelayCount after every change. Averaging two
// averages would weight small batches like large ones.
type Totals struct {
	AvgDelayMinutes   float64
	TotalDelayMinutes float64
	DelayCount        int
	TotalTrips        int
	OnTimeTrips       int
}

// add accumulates another batch's counters and recomputes the average.
func (t *Totals) add(other Totals) {
	t.TotalTrips += other.TotalTrips
	t.OnTimeTrips += other.OnTimeTrips
	t.TotalDelayMinutes += other.TotalDelayMinutes
	t.DelayCount += other.DelayCount
	t.recompute()
}

// recompute restores the avg = total / count invariant.
func (t *Totals) recompute() {
	if t.DelayCount > 0 {
		t.AvgDelayMinutes = t.TotalDelayMinutes / float64(t.DelayCount)
	} else {
		t.AvgDelayMinutes = 0
	}
}

// PairKey identifies a station pair on one calendar day.
type PairKey struct {
	Date     string // YYYY-MM-DD
	FromStop string // station display name
	ToStop   string
}

// RouteKey identifies a route on one calendar day.
type RouteKey struct {
	Date    string
	RouteID string
}

// PairHourKey identifies a station pair in one hour of one day.
type PairHourKey struct {
	Date     string
	Hour     int
	FromStop string
	ToStop   string
}

// StationPairDay is the persisted daily aggregate for one station pair.
type StationPairDay struct {
	Date     string
	FromStop string
	ToStop   string
	Totals
	IsRelevant bool
	UpdatedAt  time.Time
}

// Key returns the row's composite key.
func (r *StationPairDay) Key() PairKey {
	return PairKey{Date: r.Date, FromStop: r.FromStop, ToStop: r.ToStop}
}

// RouteDay is the persisted daily aggregate for one route.
type RouteDay struct {
	Date      string
	RouteID   string
	RouteName string
	Totals
	IsRelevant bool
	UpdatedAt  time.Time
}

// Key returns the row's composite key.
func (r *RouteDay) Key() RouteKey {
	return RouteKey{Date: r.Date, RouteID: r.RouteID}
}

// StationPairHour is the persisted hourly aggregate for one station pair.
type StationPairHour struct {
	Date     string
	Hour     int
	FromStop string
	ToStop   string
	Totals
	IsRelevant bool
	UpdatedAt  time.Time
}

// Key returns the row's composite key.
func (r *StationPairHour) Key() PairHourKey {
	return PairHourKey{Date: r.Date, Hour: r.Hour, FromStop: r.FromStop, ToStop: r.ToStop}
}

// Summary holds system-wide totals for one day, computed over the persisted
// aggregates on read.
type Summary struct {
	Date              string
	TotalTrips        int
	OnTimeTrips       int
	DelayedTrips      int
	TotalDelayMinutes float64
	AvgDelayMinutes   float64
	OnTimePercent     float64
	RoutesTracked     int
	PairsTracked      int
}
