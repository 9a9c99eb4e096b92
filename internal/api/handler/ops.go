// Package handler provides HTTP handlers for the togstats API.
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/togstats/togstats/internal/api/models"
	"github.com/togstats/togstats/internal/api/response"
	"github.com/togstats/togstats/internal/provider/resilience"
)

// Pinger checks connectivity to a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	db        Pinger
	registry  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler. db and registry may be nil when
// the deployment does not carry them.
func NewOpsHandler(version, buildTime string, db Pinger, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		db:        db,
		registry:  registry,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			response.ServiceUnavailable(w, r, "database unreachable")
			return
		}
	}

	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - store and upstream status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())
	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   now,
	}

	dbStatus := models.SubsystemStatus{Name: "postgres", Status: models.HealthStatusOK}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			detail := err.Error()
			dbStatus.Status = models.HealthStatusFail
			dbStatus.Detail = &detail
			status.Status = models.HealthStatusDegraded
		}
	}
	status.Subsystems = append(status.Subsystems, dbStatus)

	if h.registry != nil {
		upstreams := h.registry.AllHealth()
		sort.Slice(upstreams, func(i, j int) bool { return upstreams[i].Name < upstreams[j].Name })
		for _, u := range upstreams {
			p := models.ProviderStatus{Provider: u.Name, Status: models.HealthStatusOK}
			switch {
			case u.Degraded():
				p.Status = models.HealthStatusDegraded
				status.Status = models.HealthStatusDegraded
			case !u.Healthy():
				p.Status = models.HealthStatusFail
				status.Status = models.HealthStatusDegraded
			}
			if u.LastSuccessAt != nil {
				ts := models.Timestamp(*u.LastSuccessAt)
				p.LastSuccessAt = &ts
			}
			if u.LastFailureAt != nil {
				ts := models.Timestamp(*u.LastFailureAt)
				p.LastFailureAt = &ts
			}
			if u.LastError != "" {
				msg := u.LastError
				p.Message = &msg
			}
			status.Providers = append(status.Providers, p)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}
