// Package region holds the static region configuration: the stations the
// worker polls, the routes whose departures count towards the statistics,
// and the station pairs highlighted on the dashboard.
package region

import "strings"

// OnTimeThresholdMinutes is the Norwegian punctuality standard: a departure
// is on time if it leaves no more than 3 minutes late.
const OnTimeThresholdMinutes = 3

// RouteType classifies a route for display purposes.
type RouteType string

const (
	RouteTypeLocal          RouteType = "local"
	RouteTypeRegional       RouteType = "regional"
	RouteTypeAirportExpress RouteType = "airport_express"
)

// DisplayName returns the Norwegian display name for the route type.
func (t RouteType) DisplayName() string {
	switch t {
	case RouteTypeLocal:
		return "Lokaltog"
	case RouteTypeRegional:
		return "Regiontog"
	case RouteTypeAirportExpress:
		return "Flytoget"
	default:
		return string(t)
	}
}

// Station is a monitored stop place.
type Station struct {
	// ID is the national stop register id, e.g. "NSR:StopPlace:337".
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
}

// Route is a monitored line with its stations in running order.
type Route struct {
	// Code is the short route code, e.g. "L1" or "FLY1".
	Code string
	Name string
	Type RouteType

	// Stations lists station ids in running order. Intermediate stops the
	// region does not monitor are omitted.
	Stations []string

	Description string
}

// Region is an immutable region configuration. Build one with New.
type Region struct {
	ID   string
	Name string

	Stations []Station
	Routes   []Route

	// RouteCodes is the allow list used by MatchesRoute. It may contain
	// entries that are not route codes of Routes (e.g. operator names).
	RouteCodes []string

	// RelevantPairs lists directed (from, to) station name pairs that the
	// dashboard highlights.
	RelevantPairs [][2]string

	stationsByID map[string]Station
	routesByCode map[string]Route
	relevant     map[[2]string]bool
}

// New builds a Region with its lookup indexes populated.
func New(r Region) *Region {
	r.stationsByID = make(map[string]Station, len(r.Stations))
	for _, s := range r.Stations {
		r.stationsByID[s.ID] = s
	}
	r.routesByCode = make(map[string]Route, len(r.Routes))
	for _, rt := range r.Routes {
		r.routesByCode[rt.Code] = rt
	}
	r.relevant = make(map[[2]string]bool, len(r.RelevantPairs))
	for _, p := range r.RelevantPairs {
		r.relevant[p] = true
	}
	return &r
}

// lineIDPrefixes are the operator-qualified line id prefixes accepted by
// MatchesRoute. The realtime feeds mix bare codes ("L1") with qualified ids
// ("NSB:Line:L1"), so matching on the qualified prefix keeps both forms.
var lineIDPrefixes = []string{"NSB:Line:", "VYG:Line:", "FLT:Line:", "GJB:Line:"}

// MatchesRoute reports whether a line id from the realtime feed belongs to
// this region. A line matches when it equals or contains one of the region's
// route codes, or carries one of the known operator prefixes.
func (r *Region) MatchesRoute(lineID string) bool {
	if lineID == "" {
		return false
	}
	for _, code := range r.RouteCodes {
		if lineID == code || strings.Contains(lineID, code) {
			return true
		}
	}
	for _, prefix := range lineIDPrefixes {
		if strings.HasPrefix(lineID, prefix) {
			return true
		}
	}
	return false
}

// ExtractRouteCode reduces a qualified line id to its short code,
// e.g. "FLT:Line:FLY1" to "FLY1". Unqualified ids pass through unchanged.
func ExtractRouteCode(lineID string) string {
	if lineID == "" {
		return lineID
	}
	parts := strings.Split(lineID, ":")
	if last := parts[len(parts)-1]; last != "" {
		return last
	}
	return lineID
}

// Station returns the station with the given id.
func (r *Region) Station(id string) (Station, bool) {
	s, ok := r.stationsByID[id]
	return s, ok
}

// StationName returns the display name for a station id, falling back to the
// last segment of the id when the station is not part of the region.
func (r *Region) StationName(id string) string {
	if s, ok := r.stationsByID[id]; ok {
		return s.Name
	}
	return ExtractRouteCode(id)
}

// StationIDs returns the ids of all monitored stations, in configured order.
func (r *Region) StationIDs() []string {
	ids := make([]string, len(r.Stations))
	for i, s := range r.Stations {
		ids[i] = s.ID
	}
	return ids
}

// RouteByCode returns the route with the given short code.
func (r *Region) RouteByCode(code string) (Route, bool) {
	rt, ok := r.routesByCode[code]
	return rt, ok
}

// IsRelevantPair reports whether the directed (from, to) station name pair
// is one the dashboard highlights.
func (r *Region) IsRelevantPair(fromName, toName string) bool {
	return r.relevant[[2]string{fromName, toName}]
}

// ConsecutivePairs returns the directed consecutive station id pairs of a
// route, in running order. Unknown codes yield nil.
func (r *Region) ConsecutivePairs(routeCode string) [][2]string {
	rt, ok := r.routesByCode[routeCode]
	if !ok {
		return nil
	}
	pairs := make([][2]string, 0, len(rt.Stations))
	for i := 0; i+1 < len(rt.Stations); i++ {
		pairs = append(pairs, [2]string{rt.Stations[i], rt.Stations[i+1]})
	}
	return pairs
}

// NextStop resolves the station a departure is heading to next: the adjacent
// monitored station on the route in the direction of the shown destination.
// It reports false when the route or direction cannot be resolved.
func (r *Region) NextStop(routeCode, stopID, destination string) (Station, bool) {
	rt, ok := r.routesByCode[routeCode]
	if !ok {
		return Station{}, false
	}

	idx := -1
	for i, id := range rt.Stations {
		if id == stopID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Station{}, false
	}

	destIdx := -1
	for i, id := range rt.Stations {
		if id == destination || r.StationName(id) == destination {
			destIdx = i
			break
		}
	}

	switch {
	case destIdx > idx:
		return r.stationsByID[rt.Stations[idx+1]], true
	case destIdx >= 0 && destIdx < idx:
		return r.stationsByID[rt.Stations[idx-1]], true
	case destIdx == idx:
		return r.stationsByID[rt.Stations[idx]], true
	}

	// Destination is outside the monitored stations. From the first stop
	// there is only one way to go; anywhere else the direction is ambiguous.
	if idx == 0 && len(rt.Stations) > 1 {
		return r.stationsByID[rt.Stations[1]], true
	}
	return Station{}, false
}

// NextStation is NextStop reduced to a display name, keeping the destination
// text when the next stop cannot be resolved.
func (r *Region) NextStation(routeCode, stopID, destination string) string {
	if s, ok := r.NextStop(routeCode, stopID, destination); ok {
		return s.Name
	}
	return destination
}
