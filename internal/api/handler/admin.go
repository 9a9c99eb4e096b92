package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/togstats/togstats/internal/api/models"
	"github.com/togstats/togstats/internal/api/response"
)

// IngestPublisher queues an ingest run for the worker.
type IngestPublisher interface {
	PublishIngestRun(ctx context.Context, reason string) (string, error)
}

// AdminHandler handles the operator endpoints.
type AdminHandler struct {
	publisher IngestPublisher
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(publisher IngestPublisher) *AdminHandler {
	return &AdminHandler{publisher: publisher}
}

// TriggerIngest handles POST /v1/admin/ingest/run - queue a manual run.
// The body is optional.
func (h *AdminHandler) TriggerIngest(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		response.ServiceUnavailable(w, r, "manual runs are not configured")
		return
	}

	var trigger models.IngestTrigger
	if err := json.NewDecoder(r.Body).Decode(&trigger); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	id, err := h.publisher.PublishIngestRun(r.Context(), trigger.Reason)
	if err != nil {
		response.InternalError(w, r, "queuing ingest run failed")
		return
	}

	response.Accepted(w, r, models.IngestTriggered{
		MessageID: id,
		QueuedAt:  models.Timestamp(time.Now()),
	})
}
