package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nhfg/crm-backend/pkg/api/errors"
	"github.com/nhfg/crm-backend/pkg/domain"
	"github.com/nhfg/crm-backend/pkg/email"
	"github.com/nhfg/crm-backend/pkg/ingestion"
	"github.com/nhfg/crm-backend/pkg/integrationlog"
	"github.com/nhfg/crm-backend/pkg/leads"
	"github.com/nhfg/crm-backend/pkg/metrics"
	"github.com/nhfg/crm-backend/pkg/models"
	"github.com/nhfg/crm-backend/pkg/normalizer"
)

// WebhookHandler receives lead-generation webhooks from ad platforms
type WebhookHandler struct {
	leadService  *leads.Service
	logService   *integrationlog.Service
	emailService *email.Service
	metrics      *metrics.Metrics

	tiktokSecret string
	googleKey    string
}

// NewWebhookHandler creates a new webhook handler.
// emailService and metrics may be nil.
func NewWebhookHandler(leadService *leads.Service, logService *integrationlog.Service, emailService *email.Service, m *metrics.Metrics, tiktokSecret, googleKey string) *WebhookHandler {
	return &WebhookHandler{
		leadService:  leadService,
		logService:   logService,
		emailService: emailService,
		metrics:      m,
		tiktokSecret: tiktokSecret,
		googleKey:    googleKey,
	}
}

// Receive processes an inbound lead webhook from /api/webhooks/:platform.
// Every delivery is written to the integration log before processing so a
// failed delivery can be replayed from the stored payload.
func (h *WebhookHandler) Receive(c echo.Context) error {
	ctx := c.Request().Context()
	platform := normalizer.Platform(c.Param("platform"))

	if !normalizer.Supported(platform) {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "unsupported_platform",
			Message: "Unknown webhook platform.",
		})
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return errors.ValidationError(c, err)
	}

	if !h.verifySignature(c, platform, body) {
		h.recordOutcome(platform, "rejected")
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid_signature",
			Message: "Webhook signature verification failed.",
		})
	}

	logID, err := h.logService.RecordAttempt(ctx, string(platform), body)
	if err != nil {
		h.logService.RecordError(ctx, string(platform), err)
		h.recordOutcome(platform, "failed")
		return errors.DatabaseError(c, err)
	}

	payload, err := decodePayload(body)
	if err != nil {
		h.logService.MarkFailure(ctx, logID, err)
		h.recordOutcome(platform, "failed")
		return errors.ValidationError(c, err)
	}

	canonical, err := normalizer.Normalize(platform, payload)
	if err != nil {
		h.logService.MarkFailure(ctx, logID, err)
		h.recordOutcome(platform, "failed")
		if domain.IsUnsupportedPlatform(err) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "unsupported_platform",
				Message: "Unknown webhook platform.",
			})
		}
		return errors.ValidationError(c, err)
	}

	existing, err := h.leadService.Snapshot(ctx)
	if err != nil {
		h.logService.MarkFailure(ctx, logID, err)
		h.recordOutcome(platform, "failed")
		return errors.DatabaseError(c, err)
	}

	result := ingestion.Process(canonical, existing)

	if !result.IsNew {
		if err := h.leadService.RecordReengagement(ctx, result.DuplicateID, result.Note); err != nil {
			h.logService.MarkFailure(ctx, logID, err)
			h.recordOutcome(platform, "failed")
			return errors.DatabaseError(c, err)
		}

		h.logService.MarkSuccess(ctx, logID)
		h.recordOutcome(platform, "merged")
		if h.metrics != nil {
			h.metrics.RecordDuplicateMerged(string(platform))
		}
		h.notifyReengagement(result.DuplicateID, string(platform))

		log.Printf("✅ Webhook %s: merged into existing lead %s", platform, result.DuplicateID)
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"is_new":  false,
			"lead_id": result.DuplicateID,
			"message": "Lead re-engagement recorded",
		})
	}

	platformData, _ := json.Marshal(canonical.RawPayload)
	lead, err := h.leadService.CreateFromIngestion(ctx, result.Lead, string(platformData))
	if err != nil {
		h.logService.MarkFailure(ctx, logID, err)
		h.recordOutcome(platform, "failed")
		return errors.DatabaseError(c, err)
	}

	h.logService.MarkSuccess(ctx, logID)
	h.recordOutcome(platform, "created")
	if h.metrics != nil {
		h.metrics.RecordLeadIngested(string(platform))
	}
	h.notifyNewLead(lead)

	log.Printf("✅ Webhook %s: created lead %s (%s)", platform, lead.ID, lead.Name)
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"is_new":  true,
		"lead_id": lead.ID,
		"message": "Lead created",
	})
}

// verifySignature checks the platform-specific webhook credential.
// A platform with no configured secret is accepted as-is.
func (h *WebhookHandler) verifySignature(c echo.Context, platform normalizer.Platform, body []byte) bool {
	switch platform {
	case normalizer.PlatformTikTok:
		if h.tiktokSecret == "" {
			return true
		}
		signature := c.Request().Header.Get("X-TikTok-Signature")
		mac := hmac.New(sha256.New, []byte(h.tiktokSecret))
		mac.Write(body)
		expected := hex.EncodeToString(mac.Sum(nil))
		return hmac.Equal([]byte(signature), []byte(expected))
	case normalizer.PlatformGoogle:
		if h.googleKey == "" {
			return true
		}
		key := c.QueryParam("key")
		if key == "" {
			key = c.Request().Header.Get("X-Goog-Channel-Token")
		}
		return subtle.ConstantTimeCompare([]byte(key), []byte(h.googleKey)) == 1
	default:
		return true
	}
}

// decodePayload parses the raw body with UseNumber so numeric attribution
// IDs survive without float rounding.
func decodePayload(body []byte) (map[string]interface{}, error) {
	payload := make(map[string]interface{})
	if len(bytes.TrimSpace(body)) == 0 {
		return payload, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (h *WebhookHandler) recordOutcome(platform normalizer.Platform, outcome string) {
	if h.metrics != nil {
		h.metrics.RecordWebhook(string(platform), outcome)
	}
}

// notifyNewLead sends the sales alert without blocking the webhook response.
func (h *WebhookHandler) notifyNewLead(lead *models.Lead) {
	if h.emailService == nil {
		return
	}
	go func() {
		if err := h.emailService.SendNewLeadAlert(lead); err != nil {
			log.Printf("⚠️  Failed to send new lead alert: %v", err)
		}
	}()
}

func (h *WebhookHandler) notifyReengagement(leadID, platform string) {
	if h.emailService == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		lead, err := h.leadService.GetByID(ctx, leadID)
		if err != nil {
			log.Printf("⚠️  Failed to load lead for re-engagement alert: %v", err)
			return
		}
		if err := h.emailService.SendReengagementAlert(lead, platform); err != nil {
			log.Printf("⚠️  Failed to send re-engagement alert: %v", err)
		}
	}()
}
