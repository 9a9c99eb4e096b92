package handler

import (
	"net/http"

	"github.com/togstats/togstats/internal/api/models"
	"github.com/togstats/togstats/internal/api/response"
	"github.com/togstats/togstats/internal/region"
)

// RegionHandler serves the static region configuration.
type RegionHandler struct {
	reg *region.Region
}

// NewRegionHandler creates a new RegionHandler.
func NewRegionHandler(reg *region.Region) *RegionHandler {
	return &RegionHandler{reg: reg}
}

// Get handles GET /v1/region - the monitored stations and routes.
func (h *RegionHandler) Get(w http.ResponseWriter, r *http.Request) {
	info := models.RegionInfo{Name: h.reg.Name}

	info.Stations = make([]models.Station, len(h.reg.Stations))
	for i, s := range h.reg.Stations {
		info.Stations[i] = models.NewStation(s)
	}

	info.Routes = make([]models.Route, len(h.reg.Routes))
	for i, rt := range h.reg.Routes {
		info.Routes[i] = models.NewRoute(h.reg, rt)
	}

	response.JSON(w, r, http.StatusOK, info)
}
