package delay

import (
	"time"

	"github.com/togstats/togstats/internal/region"
)

// Normalize converts one station board into delay observations.
//
// Calls without an aimed departure time or without any line identifier are
// skipped, as are calls whose line does not belong to the region. Every
// retained call yields exactly one observation, including on-time and early
// departures; punctuality percentages need the full trip count, not just
// the delayed ones.
func Normalize(board StopBoard, reg *region.Region, now time.Time) []Observation {
	if len(board.Calls) == 0 {
		return nil
	}

	date := now.Format("2006-01-02")
	hour := now.Hour()
	fromName := reg.StationName(board.StopPlaceID)

	obs := make([]Observation, 0, len(board.Calls))
	for _, call := range board.Calls {
		if call.AimedDeparture.IsZero() {
			continue
		}
		if call.LineID == "" && call.LinePublicCode == "" {
			continue
		}

		routeCode := call.LinePublicCode
		if routeCode == "" {
			routeCode = region.ExtractRouteCode(call.LineID)
		}
		if !reg.MatchesRoute(call.LineID) && !reg.MatchesRoute(routeCode) {
			continue
		}

		var delayMinutes float64
		if !call.ExpectedDeparture.IsZero() {
			delayMinutes = call.ExpectedDeparture.Sub(call.AimedDeparture).Minutes()
		}

		routeName := routeCode
		if rt, ok := reg.RouteByCode(routeCode); ok {
			routeName = rt.Name
		}

		toID := ""
		toName := call.DestinationDisplay
		if next, ok := reg.NextStop(routeCode, board.StopPlaceID, call.DestinationDisplay); ok {
			toID = next.ID
			toName = next.Name
		}

		obs = append(obs, Observation{
			Date:               date,
			Hour:               hour,
			TripID:             call.TripID,
			FromStopID:         board.StopPlaceID,
			FromStopName:       fromName,
			ToStopID:           toID,
			ToStopName:         toName,
			RouteCode:          routeCode,
			RouteName:          routeName,
			DestinationDisplay: call.DestinationDisplay,
			AimedDeparture:     call.AimedDeparture,
			ExpectedDeparture:  call.ExpectedDeparture,
			Realtime:           call.Realtime,
			QuayID:             call.QuayID,
			DelayMinutes:       delayMinutes,
			IsOnTime:           delayMinutes <= region.OnTimeThresholdMinutes,
			IsRelevant:         reg.IsRelevantPair(fromName, toName),
		})
	}
	return obs
}
