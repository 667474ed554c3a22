package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/nhfg/crm-backend/pkg/ai"
	"github.com/nhfg/crm-backend/pkg/api/errors"
	"github.com/nhfg/crm-backend/pkg/domain"
	"github.com/nhfg/crm-backend/pkg/leads"
	"github.com/nhfg/crm-backend/pkg/models"
)

// LeadHandler handles lead endpoints
type LeadHandler struct {
	leadService *leads.Service
	aiService   *ai.Service
	validator   *validator.Validate
}

// NewLeadHandler creates a new lead handler. aiService may be nil.
func NewLeadHandler(leadService *leads.Service, aiService *ai.Service) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		aiService:   aiService,
		validator:   validator.New(),
	}
}

// List returns leads matching the query filters, newest first.
func (h *LeadHandler) List(c echo.Context) error {
	var filter models.LeadFilter
	if err := c.Bind(&filter); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(filter); err != nil {
		return errors.ValidationError(c, err)
	}

	results, err := h.leadService.List(c.Request().Context(), filter)
	if err != nil {
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, results)
}

// GetByID returns a single lead.
func (h *LeadHandler) GetByID(c echo.Context) error {
	id := c.Param("id")

	lead, err := h.leadService.GetByID(c.Request().Context(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			return errors.NotFoundError(c, "lead")
		}
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, lead)
}

// UpdateStatus moves a lead through the sales pipeline.
func (h *LeadHandler) UpdateStatus(c echo.Context) error {
	id := c.Param("id")

	var req models.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	if err := h.leadService.UpdateStatus(c.Request().Context(), id, req.Status); err != nil {
		if domain.IsNotFound(err) {
			return errors.NotFoundError(c, "lead")
		}
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Lead status updated",
	})
}

// AppendNote adds a manual note to a lead.
func (h *LeadHandler) AppendNote(c echo.Context) error {
	id := c.Param("id")

	var req models.AppendNoteRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	if err := h.leadService.AppendNote(c.Request().Context(), id, req.Note); err != nil {
		if domain.IsNotFound(err) {
			return errors.NotFoundError(c, "lead")
		}
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Note added",
	})
}

// Analyze generates and stores an AI assessment for a lead.
func (h *LeadHandler) Analyze(c echo.Context) error {
	if h.aiService == nil || !h.aiService.Enabled() {
		return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "ai_unavailable",
			Message: "AI analysis is not configured.",
		})
	}

	ctx := c.Request().Context()
	id := c.Param("id")

	lead, err := h.leadService.GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return errors.NotFoundError(c, "lead")
		}
		return errors.DatabaseError(c, err)
	}

	analysis, err := h.aiService.Analyze(ctx, lead)
	if err != nil {
		return errors.InternalError(c, err)
	}

	if err := h.leadService.UpdateAnalysis(ctx, id, analysis); err != nil {
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"analysis": analysis,
	})
}
