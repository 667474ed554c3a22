package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nhfg/crm-backend/pkg/models"
	"github.com/nhfg/crm-backend/pkg/phone"
)

// PhoneHandler handles phone validation endpoints.
type PhoneHandler struct{}

// NewPhoneHandler creates a new phone handler.
func NewPhoneHandler() *PhoneHandler {
	return &PhoneHandler{}
}

// ValidatePhoneRequest represents a phone validation request.
type ValidatePhoneRequest struct {
	Phone       string `json:"phone" validate:"required"`
	CountryCode string `json:"country_code,omitempty"` // Optional, defaults to US
}

// ValidatePhone validates and classifies a phone number.
func (h *PhoneHandler) ValidatePhone(c echo.Context) error {
	var req ValidatePhoneRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if req.Phone == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Phone number is required",
		})
	}

	result, err := phone.ValidatePhone(req.Phone, req.CountryCode)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, result)
}

// NormalizePhoneRequest represents a phone normalization request.
type NormalizePhoneRequest struct {
	Phone       string `json:"phone" validate:"required"`
	CountryCode string `json:"country_code,omitempty"`
}

// NormalizePhone normalizes a phone number to E.164.
func (h *PhoneHandler) NormalizePhone(c echo.Context) error {
	var req NormalizePhoneRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if req.Phone == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Phone number is required",
		})
	}

	normalized, err := phone.NormalizePhone(req.Phone, req.CountryCode)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"phone": normalized,
	})
}
