package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nhfg/crm-backend/pkg/api/errors"
	"github.com/nhfg/crm-backend/pkg/export"
	"github.com/nhfg/crm-backend/pkg/metrics"
	"github.com/nhfg/crm-backend/pkg/models"
)

// ExportHandler handles lead export endpoints
type ExportHandler struct {
	exportService *export.Service
	metrics       *metrics.Metrics
}

// NewExportHandler creates a new export handler. metrics may be nil.
func NewExportHandler(exportService *export.Service, m *metrics.Metrics) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		metrics:       m,
	}
}

// Download streams the filtered leads as a CSV or XLSX attachment.
// Format comes from the "format" query param and defaults to csv.
func (h *ExportHandler) Download(c echo.Context) error {
	var filter models.LeadFilter
	if err := c.Bind(&filter); err != nil {
		return errors.ValidationError(c, err)
	}

	format := c.QueryParam("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "excel" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Format must be csv or excel.",
		})
	}

	timestamp := time.Now().Format("20060102-150405")

	res := c.Response()
	if format == "csv" {
		res.Header().Set(echo.HeaderContentType, "text/csv")
		res.Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="leads-%s.csv"`, timestamp))
		res.WriteHeader(http.StatusOK)

		if _, err := h.exportService.WriteCSV(c.Request().Context(), filter, res); err != nil {
			return err
		}
	} else {
		res.Header().Set(echo.HeaderContentType,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		res.Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="leads-%s.xlsx"`, timestamp))
		res.WriteHeader(http.StatusOK)

		if _, err := h.exportService.WriteExcel(c.Request().Context(), filter, res); err != nil {
			return err
		}
	}

	if h.metrics != nil {
		h.metrics.RecordExportCreated()
	}
	return nil
}
