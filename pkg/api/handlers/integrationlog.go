package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nhfg/crm-backend/pkg/api/errors"
	"github.com/nhfg/crm-backend/pkg/integrationlog"
)

// IntegrationLogHandler exposes the webhook audit trail to administrators
type IntegrationLogHandler struct {
	logService *integrationlog.Service
}

// NewIntegrationLogHandler creates a new integration log handler
func NewIntegrationLogHandler(logService *integrationlog.Service) *IntegrationLogHandler {
	return &IntegrationLogHandler{logService: logService}
}

// List returns the most recent integration log entries, newest first.
func (h *IntegrationLogHandler) List(c echo.Context) error {
	limit := 100
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return errors.ValidationError(c, err)
		}
		limit = parsed
	}

	logs, err := h.logService.List(c.Request().Context(), limit)
	if err != nil {
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  logs,
		"count": len(logs),
	})
}
