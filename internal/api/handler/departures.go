package handler

import (
	"net/http"
	"strconv"

	"github.com/togstats/togstats/internal/api/models"
	"github.com/togstats/togstats/internal/api/response"
	"github.com/togstats/togstats/internal/departure"
)

// DeparturesHandler serves the raw departure audit trail.
type DeparturesHandler struct {
	repo departure.Repository
}

// NewDeparturesHandler creates a new DeparturesHandler.
func NewDeparturesHandler(repo departure.Repository) *DeparturesHandler {
	return &DeparturesHandler{repo: repo}
}

// ListRecent handles GET /v1/departures/recent - newest recorded departures.
func (h *DeparturesHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.BadRequest(w, r, "invalid query parameters", []models.FieldError{
				{Field: "limit", Message: "must be a positive integer"},
			})
			return
		}
		limit = n
	}

	records, err := h.repo.ListRecent(r.Context(), limit)
	if err != nil {
		response.InternalError(w, r, "reading departures failed")
		return
	}

	items := make([]models.Departure, len(records))
	for i, rec := range records {
		items[i] = models.NewDeparture(rec)
	}
	response.JSON(w, r, http.StatusOK, models.DepartureList{Items: items})
}
