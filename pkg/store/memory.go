package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhfg/crm-backend/pkg/domain"
	"github.com/nhfg/crm-backend/pkg/models"
)

// MemoryStore is an in-process store used when no DATABASE_URL is configured
// (local development) and in tests. It mirrors the PostgresStore contract,
// including creation-order snapshots.
type MemoryStore struct {
	mu    sync.RWMutex
	leads []models.Lead
	logs  []models.IntegrationLog
	users map[string]models.User
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]models.User),
	}
}

// Ping always succeeds for the in-memory store.
func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() {}

// Create persists a new lead, generating its ID.
func (m *MemoryStore) Create(ctx context.Context, lead *models.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lead.ID = uuid.NewString()
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	m.leads = append(m.leads, *lead)
	return nil
}

// GetByID retrieves a single lead.
func (m *MemoryStore) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.leads {
		if m.leads[i].ID == id {
			lead := m.leads[i]
			return &lead, nil
		}
	}
	return nil, domain.NewNotFoundError("lead")
}

// List returns leads matching the filter, newest first.
func (m *MemoryStore) List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []models.Lead
	for _, l := range m.leads {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.Source != "" && l.Source != filter.Source {
			continue
		}
		if filter.Interest != "" && l.Interest != filter.Interest {
			continue
		}
		matched = append(matched, l)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	offset := (filter.Page - 1) * filter.Limit
	if offset >= total {
		return []models.Lead{}, total, nil
	}
	end := offset + filter.Limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// Snapshot returns all leads in creation order.
func (m *MemoryStore) Snapshot(ctx context.Context) ([]models.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Lead, len(m.leads))
	copy(out, m.leads)
	return out, nil
}

// AppendNote appends a note line to a lead's notes field.
func (m *MemoryStore) AppendNote(ctx context.Context, id, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.leads {
		if m.leads[i].ID == id {
			if m.leads[i].Notes == "" {
				m.leads[i].Notes = note
			} else {
				m.leads[i].Notes += "\n" + note
			}
			m.leads[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return domain.NewNotFoundError("lead")
}

// UpdateStatus moves a lead through the pipeline.
func (m *MemoryStore) UpdateStatus(ctx context.Context, id, status string) error {
	return m.updateLead(id, func(l *models.Lead) { l.Status = status })
}

// UpdateAnalysis stores the AI analysis summary for a lead.
func (m *MemoryStore) UpdateAnalysis(ctx context.Context, id, analysis string) error {
	return m.updateLead(id, func(l *models.Lead) { l.AIAnalysis = analysis })
}

func (m *MemoryStore) updateLead(id string, apply func(*models.Lead)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.leads {
		if m.leads[i].ID == id {
			apply(&m.leads[i])
			m.leads[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return domain.NewNotFoundError("lead")
}

// CreateLog records a raw webhook event.
func (m *MemoryStore) CreateLog(ctx context.Context, entry *models.IntegrationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()
	m.logs = append(m.logs, *entry)
	return nil
}

// SetLogStatus finalizes an integration log entry.
func (m *MemoryStore) SetLogStatus(ctx context.Context, id, status, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.logs {
		if m.logs[i].ID == id {
			m.logs[i].Status = status
			m.logs[i].Error = errMsg
			return nil
		}
	}
	return domain.NewNotFoundError("integration log")
}

// ListLogs returns the most recent integration log entries.
func (m *MemoryStore) ListLogs(ctx context.Context, limit int) ([]models.IntegrationLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.IntegrationLog, len(m.logs))
	copy(out, m.logs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteLogsOlderThan purges integration logs past the retention window.
func (m *MemoryStore) DeleteLogsOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.logs[:0]
	deleted := 0
	for _, l := range m.logs {
		if l.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, l)
	}
	m.logs = kept
	return deleted, nil
}

// CreateUser persists a new user.
func (m *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := m.users[key]; exists {
		return domain.NewValidationError("email already registered")
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	m.users[key] = *user
	return nil
}

// GetUserByEmail retrieves a user by email.
func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if u, ok := m.users[strings.ToLower(email)]; ok {
		return &u, nil
	}
	return nil, domain.NewNotFoundError("user")
}

// GetUserByID retrieves a user by ID.
func (m *MemoryStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, domain.NewNotFoundError("user")
}
