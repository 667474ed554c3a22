package leads

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhfg/crm-backend/pkg/cache"
	"github.com/nhfg/crm-backend/pkg/ingestion"
	"github.com/nhfg/crm-backend/pkg/models"
	"github.com/nhfg/crm-backend/pkg/store"
)

func setupService(t *testing.T) (*Service, *store.MemoryStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient, err := cache.NewClient("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { redisClient.Close() })

	memStore := store.NewMemoryStore()
	return NewService(memStore, redisClient), memStore
}

func TestCreateFromIngestion(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	fields := &ingestion.NewLeadFields{
		Name:          "Ann Kim",
		Email:         "ann@x.com",
		Phone:         "555-0000",
		Interest:      models.ProductIUL,
		Status:        models.StatusNew,
		Source:        "tiktok_ads",
		Score:         85,
		Qualification: models.QualificationHot,
		Message:       "API Ingested Lead from tiktok. Form: F1",
		Campaign:      "42",
	}

	lead, err := svc.CreateFromIngestion(ctx, fields, `{"data":{}}`)
	require.NoError(t, err)

	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, "Ann Kim", lead.Name)
	assert.Equal(t, 85, lead.Score)
	assert.Equal(t, `{"data":{}}`, lead.PlatformData)

	got, err := svc.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, got.Status)
}

func TestRecordReengagement(t *testing.T) {
	svc, memStore := setupService(t)
	ctx := context.Background()

	lead := &models.Lead{Name: "Ann Kim", Email: "ann@x.com"}
	require.NoError(t, memStore.Create(ctx, lead))

	require.NoError(t, svc.RecordReengagement(ctx, lead.ID, "Re-engaged via tiktok campaign 42"))

	got, err := svc.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Re-engaged via tiktok campaign 42", got.Notes)
}

func TestListDefaultsAndPagination(t *testing.T) {
	svc, memStore := setupService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, memStore.Create(ctx, &models.Lead{
			Name:   "Lead",
			Status: models.StatusNew,
			Source: "google_ads",
		}))
	}

	resp, err := svc.List(ctx, models.LeadFilter{})
	require.NoError(t, err)

	assert.Len(t, resp.Data, 3)
	assert.Equal(t, 1, resp.Pagination.Page)
	assert.Equal(t, 50, resp.Pagination.Limit)
	assert.Equal(t, 3, resp.Pagination.Total)
	assert.False(t, resp.Pagination.HasNext)
}

func TestListUsesCache(t *testing.T) {
	svc, memStore := setupService(t)
	ctx := context.Background()

	require.NoError(t, memStore.Create(ctx, &models.Lead{Name: "Cached", Status: models.StatusNew}))

	first, err := svc.List(ctx, models.LeadFilter{})
	require.NoError(t, err)
	require.Len(t, first.Data, 1)

	// A direct store write bypasses invalidation, so the cached response
	// still reflects the first read.
	require.NoError(t, memStore.Create(ctx, &models.Lead{Name: "Uncached", Status: models.StatusNew}))

	second, err := svc.List(ctx, models.LeadFilter{})
	require.NoError(t, err)
	assert.Len(t, second.Data, 1)
}

func TestWriteInvalidatesListCache(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	fields := &ingestion.NewLeadFields{Name: "First", Status: models.StatusNew}
	_, err := svc.CreateFromIngestion(ctx, fields, "{}")
	require.NoError(t, err)

	resp, err := svc.List(ctx, models.LeadFilter{})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)

	_, err = svc.CreateFromIngestion(ctx, &ingestion.NewLeadFields{Name: "Second", Status: models.StatusNew}, "{}")
	require.NoError(t, err)

	resp, err = svc.List(ctx, models.LeadFilter{})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)
}

func TestNilCacheDisablesCaching(t *testing.T) {
	memStore := store.NewMemoryStore()
	svc := NewService(memStore, nil)
	ctx := context.Background()

	require.NoError(t, memStore.Create(ctx, &models.Lead{Name: "Lead", Status: models.StatusNew}))

	resp, err := svc.List(ctx, models.LeadFilter{})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 1)

	require.NoError(t, memStore.Create(ctx, &models.Lead{Name: "Another", Status: models.StatusNew}))

	resp, err = svc.List(ctx, models.LeadFilter{})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)
}

func TestUpdateStatusAndAnalysis(t *testing.T) {
	svc, memStore := setupService(t)
	ctx := context.Background()

	lead := &models.Lead{Name: "Ann", Status: models.StatusNew}
	require.NoError(t, memStore.Create(ctx, lead))

	require.NoError(t, svc.UpdateStatus(ctx, lead.ID, models.StatusContacted))
	require.NoError(t, svc.UpdateAnalysis(ctx, lead.ID, "Strong IUL candidate."))

	got, err := svc.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusContacted, got.Status)
	assert.Equal(t, "Strong IUL candidate.", got.AIAnalysis)
}
