package models

import (
	"github.com/togstats/togstats/internal/region"
	"github.com/togstats/togstats/pkg/polyline"
)

// Station is one monitored stop place.
type Station struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Route is one monitored line.
type Route struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Stations []string `json:"stations"`

	// Geometry is the polyline-encoded path through the monitored
	// stations, for drawing the route on the dashboard map.
	Geometry string `json:"geometry,omitempty"`
}

// RegionInfo describes the monitored region.
type RegionInfo struct {
	Name     string    `json:"name"`
	Stations []Station `json:"stations"`
	Routes   []Route   `json:"routes"`
}

// NewStation maps a region station to its API shape.
func NewStation(s region.Station) Station {
	return Station{ID: s.ID, Name: s.Name, Lat: s.Latitude, Lon: s.Longitude}
}

// NewRoute maps a region route to its API shape. Station ids are resolved
// to display names and the station path is polyline encoded.
func NewRoute(reg *region.Region, r region.Route) Route {
	names := make([]string, len(r.Stations))
	var coords []polyline.Coordinate
	for i, id := range r.Stations {
		names[i] = reg.StationName(id)
		if s, ok := reg.Station(id); ok {
			coords = append(coords, polyline.Coordinate{Lat: s.Latitude, Lon: s.Longitude})
		}
	}
	return Route{
		Code:     r.Code,
		Name:     r.Name,
		Type:     r.Type.DisplayName(),
		Stations: names,
		Geometry: polyline.Encode(coords),
	}
}
