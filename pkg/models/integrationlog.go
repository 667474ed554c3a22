package models

import "time"

// Integration log statuses. Every webhook delivery is recorded as "pending"
// before any processing so the raw payload survives a downstream failure.
const (
	LogStatusPending = "pending"
	LogStatusSuccess = "success"
	LogStatusFailure = "failure"
)

// Integration log event types
const (
	LogEventIngestAttempt = "INGEST_ATTEMPT"
	LogEventIngestError   = "INGEST_ERROR"
)

// IntegrationLog is the raw marketing webhook audit record.
type IntegrationLog struct {
	ID        string    `json:"id"`
	Platform  string    `json:"platform"`
	EventType string    `json:"event_type"`
	Status    string    `json:"status"`
	Payload   string    `json:"payload,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
