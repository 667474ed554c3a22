package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nhfg/crm-backend/pkg/leads"
	"github.com/nhfg/crm-backend/pkg/models"
)

const maxExportLeads = 10000

// Service handles lead export business logic
type Service struct {
	leadService *leads.Service
}

// NewService creates a new export service
func NewService(leadService *leads.Service) *Service {
	return &Service{leadService: leadService}
}

var exportHeaders = []string{
	"ID", "Name", "Email", "Phone", "Interest", "Status", "Source",
	"Score", "Qualification", "Campaign", "Assigned To", "Created At",
}

// WriteCSV streams the filtered leads as CSV to w.
func (s *Service) WriteCSV(ctx context.Context, filter models.LeadFilter, w io.Writer) (int, error) {
	data, err := s.fetchLeads(ctx, filter)
	if err != nil {
		return 0, err
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(exportHeaders); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	for _, lead := range data {
		row := []string{
			lead.ID,
			lead.Name,
			lead.Email,
			lead.Phone,
			lead.Interest,
			lead.Status,
			lead.Source,
			strconv.Itoa(lead.Score),
			lead.Qualification,
			lead.Campaign,
			lead.AssignedTo,
			lead.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return 0, fmt.Errorf("failed to write row: %w", err)
		}
	}

	return len(data), nil
}

// WriteExcel streams the filtered leads as an XLSX workbook to w.
func (s *Service) WriteExcel(ctx context.Context, filter models.LeadFilter, w io.Writer) (int, error) {
	data, err := s.fetchLeads(ctx, filter)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Leads"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return 0, fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create style: %w", err)
	}

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, lead := range data {
		row := rowIdx + 2 // Start from row 2 (after header)
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), lead.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), lead.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), lead.Email)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), lead.Phone)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), lead.Interest)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), lead.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), lead.Source)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), lead.Score)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), lead.Qualification)
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), lead.Campaign)
		f.SetCellValue(sheetName, fmt.Sprintf("K%d", row), lead.AssignedTo)
		f.SetCellValue(sheetName, fmt.Sprintf("L%d", row), lead.CreatedAt.Format(time.RFC3339))
	}

	for i := range exportHeaders {
		col := string(rune('A' + i))
		f.SetColWidth(sheetName, col, col, 18)
	}

	f.SetActiveSheet(index)

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("failed to write workbook: %w", err)
	}

	return len(data), nil
}

func (s *Service) fetchLeads(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error) {
	if filter.Limit == 0 || filter.Limit > maxExportLeads {
		filter.Limit = maxExportLeads
	}
	return s.leadService.ListForExport(ctx, filter)
}
