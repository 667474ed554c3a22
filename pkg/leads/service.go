package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nhfg/crm-backend/pkg/cache"
	"github.com/nhfg/crm-backend/pkg/domain"
	"github.com/nhfg/crm-backend/pkg/ingestion"
	"github.com/nhfg/crm-backend/pkg/models"
)

// Service handles lead business logic
type Service struct {
	store domain.LeadStore
	cache *cache.Client
}

// NewService creates a new lead service. The cache is optional; a nil cache
// disables list caching.
func NewService(store domain.LeadStore, cache *cache.Client) *Service {
	return &Service{
		store: store,
		cache: cache,
	}
}

// CreateFromIngestion persists a fresh lead produced by the ingestion engine.
// The platformData argument is the verbatim raw payload, retained for audit.
func (s *Service) CreateFromIngestion(ctx context.Context, fields *ingestion.NewLeadFields, platformData string) (*models.Lead, error) {
	lead := &models.Lead{
		Name:          fields.Name,
		Email:         fields.Email,
		Phone:         fields.Phone,
		Interest:      fields.Interest,
		Status:        fields.Status,
		Source:        fields.Source,
		Score:         fields.Score,
		Qualification: fields.Qualification,
		Message:       fields.Message,
		Campaign:      fields.Campaign,
		AdGroup:       fields.AdGroup,
		AdID:          fields.AdID,
		PlatformData:  platformData,
	}

	if err := s.store.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.invalidateListCache(ctx)
	return lead, nil
}

// RecordReengagement appends the re-engagement note to an existing lead. The
// engine only produces the note; nothing else on the record changes.
func (s *Service) RecordReengagement(ctx context.Context, leadID, note string) error {
	if err := s.store.AppendNote(ctx, leadID, note); err != nil {
		return fmt.Errorf("failed to record re-engagement: %w", err)
	}
	s.invalidateListCache(ctx)
	return nil
}

// Snapshot returns all leads in creation order, for the dedup matcher.
func (s *Service) Snapshot(ctx context.Context) ([]models.Lead, error) {
	return s.store.Snapshot(ctx)
}

// List returns leads matching the filter with pagination, cached briefly.
func (s *Service) List(ctx context.Context, filter models.LeadFilter) (*models.LeadListResponse, error) {
	// Set defaults
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 50
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	cacheKey := fmt.Sprintf("leads:list:%s:%s:%s:%d:%d",
		filter.Status, filter.Source, filter.Interest, filter.Page, filter.Limit)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var response models.LeadListResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				return &response, nil
			}
		}
	}

	leads, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	totalPages := (total + filter.Limit - 1) / filter.Limit
	response := &models.LeadListResponse{
		Data: leads,
		Pagination: models.PaginationInfo{
			Page:       filter.Page,
			Limit:      filter.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    filter.Page < totalPages,
			HasPrev:    filter.Page > 1,
		},
	}

	if s.cache != nil {
		if responseJSON, err := json.Marshal(response); err == nil {
			_ = s.cache.Set(ctx, cacheKey, responseJSON, 2*time.Minute)
		}
	}

	return response, nil
}

// ListForExport returns leads matching the filter without the interactive
// pagination clamp. Exports read straight from the store, never the cache.
func (s *Service) ListForExport(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error) {
	filter.Page = 1
	leads, _, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads for export: %w", err)
	}
	return leads, nil
}

// GetByID retrieves a single lead by ID
func (s *Service) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	return s.store.GetByID(ctx, id)
}

// AppendNote adds a manual note to a lead.
func (s *Service) AppendNote(ctx context.Context, id, note string) error {
	if err := s.store.AppendNote(ctx, id, note); err != nil {
		return err
	}
	s.invalidateListCache(ctx)
	return nil
}

// UpdateStatus moves a lead through the pipeline.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.invalidateListCache(ctx)
	return nil
}

// UpdateAnalysis stores the AI analysis summary for a lead.
func (s *Service) UpdateAnalysis(ctx context.Context, id, analysis string) error {
	return s.store.UpdateAnalysis(ctx, id, analysis)
}

func (s *Service) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.DeletePattern(ctx, "leads:list:*")
}
