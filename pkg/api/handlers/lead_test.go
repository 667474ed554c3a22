package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhfg/crm-backend/pkg/leads"
	"github.com/nhfg/crm-backend/pkg/models"
	"github.com/nhfg/crm-backend/pkg/store"
)

func setupLeadTest(t *testing.T) (*LeadHandler, *store.MemoryStore) {
	t.Helper()

	memStore := store.NewMemoryStore()
	leadService := leads.NewService(memStore, nil)
	return NewLeadHandler(leadService, nil), memStore
}

func TestLeadList(t *testing.T) {
	handler, memStore := setupLeadTest(t)

	require.NoError(t, memStore.Create(t.Context(), &models.Lead{
		Name: "Ann Kim", Status: models.StatusNew, Source: "tiktok_ads",
	}))
	require.NoError(t, memStore.Create(t.Context(), &models.Lead{
		Name: "Jane Doe", Status: models.StatusContacted, Source: "google_ads",
	}))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/leads?status=New", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.LeadListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Ann Kim", resp.Data[0].Name)
	assert.Equal(t, 1, resp.Pagination.Total)
}

func TestLeadGetByIDNotFound(t *testing.T) {
	handler, _ := setupLeadTest(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/leads/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	require.NoError(t, handler.GetByID(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeadUpdateStatus(t *testing.T) {
	handler, memStore := setupLeadTest(t)

	lead := &models.Lead{Name: "Ann Kim", Status: models.StatusNew}
	require.NoError(t, memStore.Create(t.Context(), lead))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/leads/"+lead.ID+"/status",
		strings.NewReader(`{"status":"Contacted"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(lead.ID)

	require.NoError(t, handler.UpdateStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := memStore.GetByID(t.Context(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusContacted, got.Status)
}

func TestLeadUpdateStatusRejectsUnknownValue(t *testing.T) {
	handler, memStore := setupLeadTest(t)

	lead := &models.Lead{Name: "Ann Kim", Status: models.StatusNew}
	require.NoError(t, memStore.Create(t.Context(), lead))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/leads/"+lead.ID+"/status",
		strings.NewReader(`{"status":"Bogus"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(lead.ID)

	require.NoError(t, handler.UpdateStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeadAppendNote(t *testing.T) {
	handler, memStore := setupLeadTest(t)

	lead := &models.Lead{Name: "Ann Kim"}
	require.NoError(t, memStore.Create(t.Context(), lead))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/leads/"+lead.ID+"/notes",
		strings.NewReader(`{"note":"Called, left voicemail"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(lead.ID)

	require.NoError(t, handler.AppendNote(c))
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := memStore.GetByID(t.Context(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Called, left voicemail", got.Notes)
}

func TestLeadAnalyzeUnavailableWithoutKey(t *testing.T) {
	handler, _ := setupLeadTest(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/leads/x/analyze", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("x")

	require.NoError(t, handler.Analyze(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
