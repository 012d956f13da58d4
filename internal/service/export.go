package service

import (
	"context"
	"fmt"
	"io"

	"shareit/internal/models"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Bookings"

var exportHeaders = []string{"ID", "Item", "Booker", "Email", "Start", "End", "Status"}

// ExportForOwner writes the owner's bookings in the given state as an XLSX workbook.
func (s *BookingService) ExportForOwner(ctx context.Context, userID int64, state models.State, w io.Writer) error {
	bookings, err := s.ListForOwner(ctx, userID, state, nil)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeExportHeader(f); err != nil {
		return err
	}

	for i, b := range bookings {
		row := []any{b.ID, b.Item.Name, b.Booker.Name, b.Booker.Email, b.Start.String(), b.End.String(), string(b.Status)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
		if style := statusStyle(f, b.Status); style != 0 {
			end, _ := excelize.CoordinatesToCellName(len(exportHeaders), i+2)
			_ = f.SetCellStyle(exportSheet, cell, end, style)
		}
	}

	_ = f.SetColWidth(exportSheet, "B", "D", 25)
	_ = f.SetColWidth(exportSheet, "E", "F", 20)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info().Int64("owner_id", userID).Str("state", string(state)).Int("rows", len(bookings)).Msg("bookings exported")
	return nil
}

func writeExportHeader(f *excelize.File) error {
	header := make([]any, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	return f.SetCellStyle(exportSheet, "A1", last, style)
}

// statusStyle shades waiting rows yellow and rejected rows red. Zero means no style.
func statusStyle(f *excelize.File, status models.BookingStatus) int {
	var color string
	switch status {
	case models.StatusWaiting:
		color = "#FFF2CC"
	case models.StatusRejected:
		color = "#F8CBAD"
	default:
		return 0
	}
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
	if err != nil {
		return 0
	}
	return style
}
