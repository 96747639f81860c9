package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/constants"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/repositories"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportCSV  ExportFormat = "csv"

	ordersSheet = "Orders"
)

var orderExportHeader = []string{
	"Order Number", "Status", "Customer", "Email", "Total", "Currency",
	"Carrier", "Tracking Number", "Created At", "Updated At",
}

type ExportService struct {
	orderRepo repositories.OrderRepository
}

func NewExportService(orderRepo repositories.OrderRepository) *ExportService {
	return &ExportService{orderRepo: orderRepo}
}

func (f ExportFormat) ContentType() string {
	if f == ExportCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(raw) {
	case "", ExportXLSX:
		return ExportXLSX, nil
	case ExportCSV:
		return ExportCSV, nil
	}
	return "", validationError(fmt.Sprintf("Unsupported export format %q", raw), nil)
}

// ExportOrders writes the orders matching status (all when nil) to w.
func (s *ExportService) ExportOrders(ctx context.Context, w io.Writer, format ExportFormat, status *models.OrderStatusType) error {
	orders, err := s.orderRepo.List(ctx, status, constants.MaxExportRows)
	if err != nil {
		return internalError("Failed to load orders for export", err)
	}
	rows := make([][]string, len(orders))
	for i, o := range orders {
		rows[i] = orderExportRow(o)
	}

	if format == ExportCSV {
		return writeCSV(w, orderExportHeader, rows)
	}
	return writeXLSX(w, ordersSheet, orderExportHeader, rows)
}

func orderExportRow(o *models.Order) []string {
	return []string{
		plainCell(o.OrderNumber),
		string(o.Status),
		plainCell(o.CustomerName),
		plainCell(o.CustomerEmail),
		o.Total.StringFixed(2),
		o.Currency,
		plainCell(utils.Val(o.Carrier)),
		plainCell(utils.Val(o.TrackingNumber)),
		o.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		o.UpdatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}

// plainCell stops spreadsheet apps from reading customer-entered text as a
// formula.
func plainCell(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + v
	}
	return v
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func writeXLSX(w io.Writer, sheet string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headerStyleID, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"7A2E4D"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for c, h := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyleID); err != nil {
		return err
	}

	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(header))
	_ = f.SetColWidth(sheet, "A", lastCol, 18)
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}
