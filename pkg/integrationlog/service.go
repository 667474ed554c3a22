package integrationlog

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nhfg/crm-backend/pkg/domain"
	"github.com/nhfg/crm-backend/pkg/models"
)

// Service records raw marketing webhook events for audit and replay. Every
// delivery is logged before processing, so a failed ingestion still leaves
// the raw payload behind.
type Service struct {
	store domain.IntegrationLogStore
}

// NewService creates a new integration log service
func NewService(store domain.IntegrationLogStore) *Service {
	return &Service{store: store}
}

// RecordAttempt logs an inbound webhook with status "pending" and returns the
// entry ID so the caller can finalize it later.
func (s *Service) RecordAttempt(ctx context.Context, platform string, payload []byte) (string, error) {
	entry := &models.IntegrationLog{
		Platform:  platform,
		EventType: models.LogEventIngestAttempt,
		Status:    models.LogStatusPending,
		Payload:   string(payload),
	}
	if err := s.store.CreateLog(ctx, entry); err != nil {
		return "", fmt.Errorf("failed to record webhook attempt: %w", err)
	}
	return entry.ID, nil
}

// MarkSuccess finalizes a log entry after a successful ingestion.
func (s *Service) MarkSuccess(ctx context.Context, id string) {
	if err := s.store.SetLogStatus(ctx, id, models.LogStatusSuccess, ""); err != nil {
		log.Printf("⚠️  Failed to mark integration log %s success: %v", id, err)
	}
}

// MarkFailure finalizes a log entry after a failed ingestion, preserving the
// error message alongside the raw payload.
func (s *Service) MarkFailure(ctx context.Context, id string, cause error) {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if err := s.store.SetLogStatus(ctx, id, models.LogStatusFailure, msg); err != nil {
		log.Printf("⚠️  Failed to mark integration log %s failure: %v", id, err)
	}
}

// RecordError logs a failure for deliveries that never got a pending entry
// (e.g. the initial write itself failed).
func (s *Service) RecordError(ctx context.Context, platform string, cause error) {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	entry := &models.IntegrationLog{
		Platform:  platform,
		EventType: models.LogEventIngestError,
		Status:    models.LogStatusFailure,
		Error:     msg,
	}
	if err := s.store.CreateLog(ctx, entry); err != nil {
		log.Printf("⚠️  Failed to record webhook error: %v", err)
	}
}

// List returns the most recent log entries.
func (s *Service) List(ctx context.Context, limit int) ([]models.IntegrationLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.store.ListLogs(ctx, limit)
}

// Purge deletes log entries older than the retention window and returns the
// number removed.
func (s *Service) Purge(ctx context.Context, retentionDays int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	return s.store.DeleteLogsOlderThan(ctx, cutoff)
}
