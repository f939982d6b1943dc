package format

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"pogrn/internal/models"
	"pogrn/internal/store"
)

const (
	ExportCSV  = "csv"
	ExportXLSX = "xlsx"

	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	exportSheet = "Records"
)

// ExportContentType returns the media type and file extension for an export format.
func ExportContentType(format string) (string, string, error) {
	switch format {
	case "", ExportCSV:
		return ContentTypeCSV, ExportCSV, nil
	case ExportXLSX:
		return ContentTypeXLSX, ExportXLSX, nil
	default:
		return "", "", fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteRecords writes records in the given export format.
func WriteRecords(w io.Writer, format string, records []models.PoRecord) error {
	switch format {
	case "", ExportCSV:
		return WriteRecordsCSV(w, records)
	case ExportXLSX:
		return WriteRecordsXLSX(w, records)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteRecordsCSV writes the canonical columns only.
func WriteRecordsCSV(w io.Writer, records []models.PoRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(store.CanonicalColumns()); err != nil {
		return err
	}
	for _, rec := range records {
		if err := writer.Write(exportRow(rec)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteRecordsXLSX writes a single-sheet workbook.
func WriteRecordsXLSX(w io.Writer, records []models.PoRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	header := store.CanonicalColumns()
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return err
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := exportRow(rec)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	return f.Write(w)
}

func exportRow(rec models.PoRecord) []string {
	row := []string{
		models.FormatDate(rec.ReceivedDate),
		rec.PONumber,
		rec.VendorName,
		string(rec.GRNStatus),
		"",
		"",
	}
	if rec.POAttachmentRef != nil {
		row[4] = rec.POAttachmentRef.StoragePath
	}
	if rec.GRNAttachmentRef != nil {
		row[5] = rec.GRNAttachmentRef.StoragePath
	}
	return row
}
