package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/togstats/togstats/internal/api/models"
	"github.com/togstats/togstats/internal/api/response"
	"github.com/togstats/togstats/internal/stats"
)

// StatsHandler serves the aggregated delay statistics.
type StatsHandler struct {
	service *stats.Service
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(service *stats.Service) *StatsHandler {
	return &StatsHandler{service: service}
}

// listParams extracts the shared since/limit query parameters.
// limit 0 lets the service apply its default.
func listParams(r *http.Request) (since string, limit int, errs []models.FieldError) {
	since = r.URL.Query().Get("since")

	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs = append(errs, models.FieldError{
				Field:   "limit",
				Message: "must be a positive integer",
			})
			return since, 0, errs
		}
		limit = n
	}
	return since, limit, nil
}

// ListDaily handles GET /v1/stats/daily - per station pair daily aggregates.
func (h *StatsHandler) ListDaily(w http.ResponseWriter, r *http.Request) {
	since, limit, errs := listParams(r)
	if errs != nil {
		response.BadRequest(w, r, "invalid query parameters", errs)
		return
	}

	rows, err := h.service.StationPairDays(r.Context(), since, limit)
	if err != nil {
		h.writeListError(w, r, err)
		return
	}

	items := make([]models.StationPairDay, len(rows))
	for i, row := range rows {
		items[i] = models.NewStationPairDay(row)
	}
	response.JSON(w, r, http.StatusOK, models.StationPairDayList{Items: items})
}

// ListRoutes handles GET /v1/stats/routes - per route daily aggregates.
func (h *StatsHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	since, limit, errs := listParams(r)
	if errs != nil {
		response.BadRequest(w, r, "invalid query parameters", errs)
		return
	}

	rows, err := h.service.RouteDays(r.Context(), since, limit)
	if err != nil {
		h.writeListError(w, r, err)
		return
	}

	items := make([]models.RouteDay, len(rows))
	for i, row := range rows {
		items[i] = models.NewRouteDay(row)
	}
	response.JSON(w, r, http.StatusOK, models.RouteDayList{Items: items})
}

// ListHourly handles GET /v1/stats/hourly - per station pair hourly aggregates.
func (h *StatsHandler) ListHourly(w http.ResponseWriter, r *http.Request) {
	since, limit, errs := listParams(r)
	if errs != nil {
		response.BadRequest(w, r, "invalid query parameters", errs)
		return
	}

	rows, err := h.service.StationPairHours(r.Context(), since, limit)
	if err != nil {
		h.writeListError(w, r, err)
		return
	}

	items := make([]models.StationPairHour, len(rows))
	for i, row := range rows {
		items[i] = models.NewStationPairHour(row)
	}
	response.JSON(w, r, http.StatusOK, models.StationPairHourList{Items: items})
}

// Summary handles GET /v1/stats/summary - network-wide view for one date.
// The date query parameter defaults to today.
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.SummaryForDate(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.writeListError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewStatsSummary(summary))
}

func (h *StatsHandler) writeListError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, stats.ErrInvalidDate) {
		response.BadRequest(w, r, "date must be formatted YYYY-MM-DD", nil)
		return
	}
	response.InternalError(w, r, "reading statistics failed")
}
