package models

import (
	"github.com/togstats/togstats/internal/stats"
)

// StationPairDay is one station pair's aggregate for one service date.
type StationPairDay struct {
	Date              string    `json:"date"`
	FromStop          string    `json:"from_stop"`
	ToStop            string    `json:"to_stop"`
	AvgDelayMinutes   float64   `json:"avg_delay_minutes"`
	TotalDelayMinutes float64   `json:"total_delay_minutes"`
	DelayCount        int       `json:"delay_count"`
	TotalTrips        int       `json:"total_trips"`
	OnTimeTrips       int       `json:"on_time_trips"`
	IsRelevant        bool      `json:"is_relevant"`
	UpdatedAt         Timestamp `json:"updated_at"`
}

// RouteDay is one route's aggregate for one service date.
type RouteDay struct {
	Date              string    `json:"date"`
	RouteID           string    `json:"route_id"`
	RouteName         string    `json:"route_name"`
	AvgDelayMinutes   float64   `json:"avg_delay_minutes"`
	TotalDelayMinutes float64   `json:"total_delay_minutes"`
	DelayCount        int       `json:"delay_count"`
	TotalTrips        int       `json:"total_trips"`
	OnTimeTrips       int       `json:"on_time_trips"`
	IsRelevant        bool      `json:"is_relevant"`
	UpdatedAt         Timestamp `json:"updated_at"`
}

// StationPairHour is one station pair's aggregate for one hour of a date.
type StationPairHour struct {
	Date              string    `json:"date"`
	Hour              int       `json:"hour"`
	FromStop          string    `json:"from_stop"`
	ToStop            string    `json:"to_stop"`
	AvgDelayMinutes   float64   `json:"avg_delay_minutes"`
	TotalDelayMinutes float64   `json:"total_delay_minutes"`
	DelayCount        int       `json:"delay_count"`
	TotalTrips        int       `json:"total_trips"`
	OnTimeTrips       int       `json:"on_time_trips"`
	IsRelevant        bool      `json:"is_relevant"`
	UpdatedAt         Timestamp `json:"updated_at"`
}

// StatsSummary is the network-wide view for one service date.
type StatsSummary struct {
	Date              string  `json:"date"`
	TotalTrips        int     `json:"total_trips"`
	OnTimeTrips       int     `json:"on_time_trips"`
	DelayedTrips      int     `json:"delayed_trips"`
	TotalDelayMinutes float64 `json:"total_delay_minutes"`
	AvgDelayMinutes   float64 `json:"avg_delay_minutes"`
	OnTimePercent     float64 `json:"on_time_percent"`
	RoutesTracked     int     `json:"routes_tracked"`
	PairsTracked      int     `json:"pairs_tracked"`
}

// StationPairDayList is the list envelope for station pair days.
type StationPairDayList struct {
	Items []StationPairDay `json:"items"`
}

// RouteDayList is the list envelope for route days.
type RouteDayList struct {
	Items []RouteDay `json:"items"`
}

// StationPairHourList is the list envelope for station pair hours.
type StationPairHourList struct {
	Items []StationPairHour `json:"items"`
}

// NewStationPairDay maps a stored aggregate to its API shape.
func NewStationPairDay(row *stats.StationPairDay) StationPairDay {
	return StationPairDay{
		Date:              row.Date,
		FromStop:          row.FromStop,
		ToStop:            row.ToStop,
		AvgDelayMinutes:   row.AvgDelayMinutes,
		TotalDelayMinutes: row.TotalDelayMinutes,
		DelayCount:        row.DelayCount,
		TotalTrips:        row.TotalTrips,
		OnTimeTrips:       row.OnTimeTrips,
		IsRelevant:        row.IsRelevant,
		UpdatedAt:         Timestamp(row.UpdatedAt),
	}
}

// NewRouteDay maps a stored aggregate to its API shape.
func NewRouteDay(row *stats.RouteDay) RouteDay {
	return RouteDay{
		Date:              row.Date,
		RouteID:           row.RouteID,
		RouteName:         row.RouteName,
		AvgDelayMinutes:   row.AvgDelayMinutes,
		TotalDelayMinutes: row.TotalDelayMinutes,
		DelayCount:        row.DelayCount,
		TotalTrips:        row.TotalTrips,
		OnTimeTrips:       row.OnTimeTrips,
		IsRelevant:        row.IsRelevant,
		UpdatedAt:         Timestamp(row.UpdatedAt),
	}
}

// NewStationPairHour maps a stored aggregate to its API shape.
func NewStationPairHour(row *stats.StationPairHour) StationPairHour {
	return StationPairHour{
		Date:              row.Date,
		Hour:              row.Hour,
		FromStop:          row.FromStop,
		ToStop:            row.ToStop,
		AvgDelayMinutes:   row.AvgDelayMinutes,
		TotalDelayMinutes: row.TotalDelayMinutes,
		DelayCount:        row.DelayCount,
		TotalTrips:        row.TotalTrips,
		OnTimeTrips:       row.OnTimeTrips,
		IsRelevant:        row.IsRelevant,
		UpdatedAt:         Timestamp(row.UpdatedAt),
	}
}

// NewStatsSummary maps a summary to its API shape.
func NewStatsSummary(s *stats.Summary) StatsSummary {
	return StatsSummary{
		Date:              s.Date,
		TotalTrips:        s.TotalTrips,
		OnTimeTrips:       s.OnTimeTrips,
		DelayedTrips:      s.DelayedTrips,
		TotalDelayMinutes: s.TotalDelayMinutes,
		AvgDelayMinutes:   s.AvgDelayMinutes,
		OnTimePercent:     s.OnTimePercent,
		RoutesTracked:     s.RoutesTracked,
		PairsTracked:      s.PairsTracked,
	}
}
