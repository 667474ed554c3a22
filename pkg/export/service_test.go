package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nhfg/crm-backend/pkg/leads"
	"github.com/nhfg/crm-backend/pkg/models"
	"github.com/nhfg/crm-backend/pkg/store"
)

func setupExport(t *testing.T) (*Service, *store.MemoryStore) {
	t.Helper()

	memStore := store.NewMemoryStore()
	leadService := leads.NewService(memStore, nil)
	return NewService(leadService), memStore
}

func seedLeads(t *testing.T, memStore *store.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, memStore.Create(ctx, &models.Lead{
		Name: "Ann Kim", Email: "ann@x.com", Status: models.StatusNew, Source: "tiktok_ads", Score: 85,
	}))
	require.NoError(t, memStore.Create(ctx, &models.Lead{
		Name: "Jane Doe", Email: "jane@x.com", Status: models.StatusContacted, Source: "google_ads", Score: 95,
	}))
}

func TestWriteCSV(t *testing.T) {
	svc, memStore := setupExport(t)
	seedLeads(t, memStore)

	var buf bytes.Buffer
	count, err := svc.WriteCSV(context.Background(), models.LeadFilter{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + 2 rows
	assert.Equal(t, exportHeaders, records[0])
}

func TestWriteCSVWithFilter(t *testing.T) {
	svc, memStore := setupExport(t)
	seedLeads(t, memStore)

	var buf bytes.Buffer
	count, err := svc.WriteCSV(context.Background(), models.LeadFilter{Source: "google_ads"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Jane Doe", records[1][1])
}

func TestWriteExcel(t *testing.T) {
	svc, memStore := setupExport(t)
	seedLeads(t, memStore)

	var buf bytes.Buffer
	count, err := svc.WriteExcel(context.Background(), models.LeadFilter{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Leads")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][1])
}
