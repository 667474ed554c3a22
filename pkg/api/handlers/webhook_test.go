package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhfg/crm-backend/pkg/integrationlog"
	"github.com/nhfg/crm-backend/pkg/leads"
	"github.com/nhfg/crm-backend/pkg/models"
	"github.com/nhfg/crm-backend/pkg/store"
)

const tiktokPayload = `{"data":{"lead_id":"T1","details":{"name":"Ann Kim","email":"ann@x.com","phone":"555-0000"},"campaign_id":42}}`

func setupWebhookTest(t *testing.T, tiktokSecret, googleKey string) (*WebhookHandler, *store.MemoryStore) {
	t.Helper()

	memStore := store.NewMemoryStore()
	leadService := leads.NewService(memStore, nil)
	logService := integrationlog.NewService(memStore)

	handler := NewWebhookHandler(leadService, logService, nil, nil, tiktokSecret, googleKey)
	return handler, memStore
}

func postWebhook(handler *WebhookHandler, platform, body string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/"+platform, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/webhooks/:platform")
	c.SetParamNames("platform")
	c.SetParamValues(platform)
	_ = handler.Receive(c)
	return rec
}

func TestReceiveTikTokCreatesLead(t *testing.T) {
	handler, memStore := setupWebhookTest(t, "", "")

	rec := postWebhook(handler, "tiktok", tiktokPayload, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, true, resp["is_new"])

	snapshot, err := memStore.Snapshot(t.Context())
	require.NoError(t, err)
	require.Len(t, snapshot, 1)

	lead := snapshot[0]
	assert.Equal(t, "Ann Kim", lead.Name)
	assert.Equal(t, "tiktok_ads", lead.Source)
	assert.Equal(t, 85, lead.Score)
	assert.Equal(t, models.QualificationHot, lead.Qualification)
	assert.Equal(t, models.ProductIUL, lead.Interest)
	assert.Equal(t, models.StatusNew, lead.Status)
	assert.Equal(t, "42", lead.Campaign)

	logs, err := memStore.ListLogs(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.LogStatusSuccess, logs[0].Status)
	assert.JSONEq(t, tiktokPayload, logs[0].Payload)
}

func TestReceiveDuplicateMerges(t *testing.T) {
	handler, memStore := setupWebhookTest(t, "", "")

	rec := postWebhook(handler, "tiktok", tiktokPayload, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Same contact info delivered again merges instead of duplicating.
	rec = postWebhook(handler, "tiktok", tiktokPayload, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["is_new"])

	snapshot, err := memStore.Snapshot(t.Context())
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Re-engaged via tiktok campaign 42", snapshot[0].Notes)

	// Re-engagement never changes the existing score.
	assert.Equal(t, 85, snapshot[0].Score)
}

func TestReceiveUnsupportedPlatform(t *testing.T) {
	handler, memStore := setupWebhookTest(t, "", "")

	rec := postWebhook(handler, "linkedin", "{}", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	snapshot, err := memStore.Snapshot(t.Context())
	require.NoError(t, err)
	assert.Empty(t, snapshot)
}

func TestReceiveMalformedBodyLogsFailure(t *testing.T) {
	handler, memStore := setupWebhookTest(t, "", "")

	rec := postWebhook(handler, "tiktok", "{not json", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The raw payload is preserved for replay even though processing failed.
	logs, err := memStore.ListLogs(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.LogStatusFailure, logs[0].Status)
	assert.Equal(t, "{not json", logs[0].Payload)
	assert.NotEmpty(t, logs[0].Error)
}

func TestReceiveGooglePayload(t *testing.T) {
	handler, memStore := setupWebhookTest(t, "", "")

	payload := `{
		"lead_id": "G1",
		"campaign_id": 987654321,
		"form_id": 555,
		"user_column_data": [
			{"column_id": "FULL_NAME", "string_value": "Jane Doe"},
			{"column_id": "EMAIL", "string_value": "jane@x.com"}
		]
	}`

	rec := postWebhook(handler, "google", payload, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	snapshot, err := memStore.Snapshot(t.Context())
	require.NoError(t, err)
	require.Len(t, snapshot, 1)

	lead := snapshot[0]
	assert.Equal(t, "Jane Doe", lead.Name)
	assert.Equal(t, "google_ads", lead.Source)
	assert.Equal(t, 95, lead.Score)
	assert.Equal(t, models.ProductLife, lead.Interest)
	assert.Equal(t, "987654321", lead.Campaign)
}

func TestReceiveTikTokSignature(t *testing.T) {
	secret := "tok-secret"
	handler, _ := setupWebhookTest(t, secret, "")

	// Missing signature rejected.
	rec := postWebhook(handler, "tiktok", tiktokPayload, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid HMAC accepted.
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(tiktokPayload))
	signature := hex.EncodeToString(mac.Sum(nil))

	rec = postWebhook(handler, "tiktok", tiktokPayload, func(req *http.Request) {
		req.Header.Set("X-TikTok-Signature", signature)
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

// failingLogStore rejects the initial pending write but accepts the
// follow-up error entry, like a transient insert failure would.
type failingLogStore struct {
	*store.MemoryStore
}

func (s *failingLogStore) CreateLog(ctx context.Context, entry *models.IntegrationLog) error {
	if entry.Status == models.LogStatusPending {
		return stderrors.New("insert failed")
	}
	return s.MemoryStore.CreateLog(ctx, entry)
}

func TestReceiveAuditWriteFailureStillLogged(t *testing.T) {
	leadStore := store.NewMemoryStore()
	logStore := &failingLogStore{MemoryStore: store.NewMemoryStore()}

	handler := NewWebhookHandler(
		leads.NewService(leadStore, nil),
		integrationlog.NewService(logStore),
		nil, nil, "", "")

	rec := postWebhook(handler, "tiktok", tiktokPayload, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// No lead is created, but the delivery failure itself lands on the
	// audit trail as an error entry.
	snapshot, err := leadStore.Snapshot(t.Context())
	require.NoError(t, err)
	assert.Empty(t, snapshot)

	logs, err := logStore.ListLogs(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.LogEventIngestError, logs[0].EventType)
	assert.Equal(t, models.LogStatusFailure, logs[0].Status)
	assert.NotEmpty(t, logs[0].Error)
}

func TestReceiveGoogleSharedKey(t *testing.T) {
	handler, _ := setupWebhookTest(t, "", "g-key")

	payload := `{"user_column_data":[{"column_id":"EMAIL","string_value":"jane@x.com"}]}`

	rec := postWebhook(handler, "google", payload, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postWebhook(handler, "google", payload, func(req *http.Request) {
		req.Header.Set("X-Goog-Channel-Token", "g-key")
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}
