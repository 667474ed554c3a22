package domain

import (
	"context"
	"time"

	"github.com/nhfg/crm-backend/pkg/models"
)

// LeadStore defines data access operations for leads
type LeadStore interface {
	// Create persists a new lead, filling in ID and timestamps.
	Create(ctx context.Context, lead *models.Lead) error
	// GetByID retrieves a single lead.
	GetByID(ctx context.Context, id string) (*models.Lead, error)
	// List returns leads matching the filter, newest first.
	List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, int, error)
	// Snapshot returns all leads in creation order. The dedup matcher relies
	// on this ordering for deterministic first-match resolution.
	Snapshot(ctx context.Context) ([]models.Lead, error)
	// AppendNote appends a note line to a lead's notes field.
	AppendNote(ctx context.Context, id, note string) error
	// UpdateStatus moves a lead through the pipeline.
	UpdateStatus(ctx context.Context, id, status string) error
	// UpdateAnalysis stores the AI analysis summary for a lead.
	UpdateAnalysis(ctx context.Context, id, analysis string) error
}

// IntegrationLogStore defines data access operations for the raw webhook
// audit trail.
type IntegrationLogStore interface {
	CreateLog(ctx context.Context, entry *models.IntegrationLog) error
	SetLogStatus(ctx context.Context, id, status, errMsg string) error
	ListLogs(ctx context.Context, limit int) ([]models.IntegrationLog, error)
	DeleteLogsOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// UserStore defines data access operations for CRM users
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
