package stats

import "github.com/togstats/togstats/internal/delay"

// Batch holds one fetch cycle's observations pre-aggregated at the three
// persisted granularities.
type Batch struct {
	Pairs     map[PairKey]*StationPairDay
	Routes    map[RouteKey]*RouteDay
	PairHours map[PairHourKey]*StationPairHour
}

// Size returns the number of distinct keys across all three granularities.
func (b Batch) Size() int {
	return len(b.Pairs) + len(b.Routes) + len(b.PairHours)
}

// Collect groups observations by key and accumulates their counters. Display
// fields come from the first observation of each group; relevance is OR'd
// over the group.
func Collect(obs []delay.Observation) Batch {
	batch := Batch{
		Pairs:     make(map[PairKey]*StationPairDay),
		Routes:    make(map[RouteKey]*RouteDay),
		PairHours: make(map[PairHourKey]*StationPairHour),
	}

	for _, o := range obs {
		pairKey := PairKey{Date: o.Date, FromStop: o.FromStopName, ToStop: o.ToStopName}
		pair, ok := batch.Pairs[pairKey]
		if !ok {
			pair = &StationPairDay{Date: o.Date, FromStop: o.FromStopName, ToStop: o.ToStopName}
			batch.Pairs[pairKey] = pair
		}
		accumulate(&pair.Totals, o)
		pair.IsRelevant = pair.IsRelevant || o.IsRelevant

		routeKey := RouteKey{Date: o.Date, RouteID: o.RouteCode}
		route, ok := batch.Routes[routeKey]
		if !ok {
			route = &RouteDay{Date: o.Date, RouteID: o.RouteCode, RouteName: o.RouteName}
			batch.Routes[routeKey] = route
		}
		accumulate(&route.Totals, o)
		route.IsRelevant = route.IsRelevant || o.IsRelevant

		hourKey := PairHourKey{Date: o.Date, Hour: o.Hour, FromStop: o.FromStopName, ToStop: o.ToStopName}
		hourRow, ok := batch.PairHours[hourKey]
		if !ok {
			hourRow = &StationPairHour{Date: o.Date, Hour: o.Hour, FromStop: o.FromStopName, ToStop: o.ToStopName}
			batch.PairHours[hourKey] = hourRow
		}
		accumulate(&hourRow.Totals, o)
		hourRow.IsRelevant = hourRow.IsRelevant || o.IsRelevant
	}

	return batch
}

// accumulate folds one observation into a totals accumulator. Every
// observation counts as a trip; only positive delays feed the delay sum and
// count.
func accumulate(t *Totals, o delay.Observation) {
	t.TotalTrips++
	if o.IsOnTime {
		t.OnTimeTrips++
	}
	if o.DelayMinutes > 0 {
		t.DelayCount++
		t.TotalDelayMinutes += o.DelayMinutes
	}
	t.recompute()
}

// MergeStationPairDay folds an incoming batch row into the existing
// persisted row. Counters are summed, relevance is OR'd, and the key and
// display fields take the incoming batch's values.
func MergeStationPairDay(existing, incoming *StationPairDay) *StationPairDay {
	merged := *incoming
	merged.Totals = existing.Totals
	merged.Totals.add(incoming.Totals)
	merged.IsRelevant = existing.IsRelevant || incoming.IsRelevant
	return &merged
}

// MergeRouteDay folds an incoming batch row into the existing persisted row.
func MergeRouteDay(existing, incoming *RouteDay) *RouteDay {
	merged := *incoming
	merged.Totals = existing.Totals
	merged.Totals.add(incoming.Totals)
	merged.IsRelevant = existing.IsRelevant || incoming.IsRelevant
	return &merged
}

// MergeStationPairHour folds an incoming batch row into the existing
// persisted row.
func MergeStationPairHour(existing, incoming *StationPairHour) *StationPairHour {
	merged := *incoming
	merged.Totals = existing.Totals
	merged.Totals.add(incoming.Totals)
	merged.IsRelevant = existing.IsRelevant || incoming.IsRelevant
	return &merged
}
