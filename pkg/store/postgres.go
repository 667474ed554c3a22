package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nhfg/crm-backend/pkg/domain"
	"github.com/nhfg/crm-backend/pkg/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore is the durable persistence layer for leads, integration logs
// and users.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast when the database
// is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schemaSQL)
	return err
}

// Ping is used by the health endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

const leadColumns = `id, name, email, phone, interest, status, source, score,
	qualification, message, notes, assigned_to, campaign, ad_group, ad_id,
	platform_data, ai_analysis, created_at, updated_at`

// Create persists a new lead. The ID is generated here, at persistence time.
func (p *PostgresStore) Create(ctx context.Context, lead *models.Lead) error {
	lead.ID = uuid.NewString()
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	_, err := p.pool.Exec(ctx, `
		INSERT INTO leads (`+leadColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	`, lead.ID, lead.Name, lead.Email, lead.Phone, lead.Interest, lead.Status,
		lead.Source, lead.Score, lead.Qualification, lead.Message, lead.Notes,
		lead.AssignedTo, lead.Campaign, lead.AdGroup, lead.AdID,
		lead.PlatformData, lead.AIAnalysis, lead.CreatedAt, lead.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	return nil
}

// GetByID retrieves a single lead by ID.
func (p *PostgresStore) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("lead")
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

// List returns leads matching the filter, newest first, with the total count.
func (p *PostgresStore) List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Source != "" {
		args = append(args, filter.Source)
		where += fmt.Sprintf(" AND source = $%d", len(args))
	}
	if filter.Interest != "" {
		args = append(args, filter.Interest)
		where += fmt.Sprintf(" AND interest = $%d", len(args))
	}

	var total int
	if err := p.pool.QueryRow(ctx, "SELECT COUNT(*) FROM leads"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)
	query := fmt.Sprintf("SELECT "+leadColumns+" FROM leads%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args))

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	leads, err := collectLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// Snapshot returns every lead in creation order. The dedup matcher depends on
// this ordering for deterministic first-match resolution.
func (p *PostgresStore) Snapshot(ctx context.Context) ([]models.Lead, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query lead snapshot: %w", err)
	}
	defer rows.Close()
	return collectLeads(rows)
}

// AppendNote appends a note to a lead's notes field, newline separated.
func (p *PostgresStore) AppendNote(ctx context.Context, id, note string) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE leads
		SET notes = CASE WHEN notes = '' THEN $2 ELSE notes || E'\n' || $2 END,
		    updated_at = now()
		WHERE id = $1
	`, id, note)
	if err != nil {
		return fmt.Errorf("failed to append note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("lead")
	}
	return nil
}

// UpdateStatus moves a lead through the pipeline.
func (p *PostgresStore) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE leads SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update lead status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("lead")
	}
	return nil
}

// UpdateAnalysis stores the AI analysis summary for a lead.
func (p *PostgresStore) UpdateAnalysis(ctx context.Context, id, analysis string) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE leads SET ai_analysis = $2, updated_at = now() WHERE id = $1`, id, analysis)
	if err != nil {
		return fmt.Errorf("failed to update lead analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("lead")
	}
	return nil
}

// CreateLog records a raw webhook event.
func (p *PostgresStore) CreateLog(ctx context.Context, entry *models.IntegrationLog) error {
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()

	_, err := p.pool.Exec(ctx, `
		INSERT INTO integration_logs (id, platform, event_type, status, payload, error, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, entry.ID, entry.Platform, entry.EventType, entry.Status, entry.Payload, entry.Error, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert integration log: %w", err)
	}
	return nil
}

// SetLogStatus finalizes an integration log entry.
func (p *PostgresStore) SetLogStatus(ctx context.Context, id, status, errMsg string) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE integration_logs SET status = $2, error = $3 WHERE id = $1`, id, status, errMsg)
	if err != nil {
		return fmt.Errorf("failed to update integration log: %w", err)
	}
	return nil
}

// ListLogs returns the most recent integration log entries.
func (p *PostgresStore) ListLogs(ctx context.Context, limit int) ([]models.IntegrationLog, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, platform, event_type, status, payload, error, created_at
		FROM integration_logs ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query integration logs: %w", err)
	}
	defer rows.Close()

	var logs []models.IntegrationLog
	for rows.Next() {
		var l models.IntegrationLog
		if err := rows.Scan(&l.ID, &l.Platform, &l.EventType, &l.Status, &l.Payload, &l.Error, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan integration log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// DeleteLogsOlderThan purges integration logs past the retention window.
func (p *PostgresStore) DeleteLogsOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM integration_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge integration logs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// CreateUser persists a new user.
func (p *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()

	_, err := p.pool.Exec(ctx, `
		INSERT INTO users (id, email, name, role, password_hash, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, user.ID, user.Email, user.Name, user.Role, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by email.
func (p *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, email, name, role, password_hash, created_at
		FROM users WHERE lower(email) = lower($1)
	`, email)
	return scanUser(row)
}

// GetUserByID retrieves a user by ID.
func (p *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, email, name, role, password_hash, created_at
		FROM users WHERE id = $1
	`, id)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("user")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func scanLead(row pgx.Row) (*models.Lead, error) {
	var l models.Lead
	err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Interest, &l.Status,
		&l.Source, &l.Score, &l.Qualification, &l.Message, &l.Notes,
		&l.AssignedTo, &l.Campaign, &l.AdGroup, &l.AdID, &l.PlatformData,
		&l.AIAnalysis, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func collectLeads(rows pgx.Rows) ([]models.Lead, error) {
	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}
