package models

// IngestTrigger is the request body for a manual ingest run.
type IngestTrigger struct {
	Reason string `json:"reason,omitempty"`
}

// IngestTriggered is returned when a manual run has been queued.
type IngestTriggered struct {
	MessageID string    `json:"message_id"`
	QueuedAt  Timestamp `json:"queued_at"`
}
