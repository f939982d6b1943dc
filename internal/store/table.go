package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"pogrn/internal/models"
)

// Canonical table columns, in on-disk order.
const (
	ColumnDate        = "Tanggal"
	ColumnPONumber    = "Nomor_PO"
	ColumnVendorName  = "Nama_Vendor"
	ColumnGRNStatus   = "Status_GRN"
	ColumnPOFilePath  = "File_PO_Path"
	ColumnGRNFilePath = "File_GRN_Path"
)

var canonicalColumns = []string{
	ColumnDate,
	ColumnPONumber,
	ColumnVendorName,
	ColumnGRNStatus,
	ColumnPOFilePath,
	ColumnGRNFilePath,
}

// CanonicalColumns returns the fixed header of the table.
func CanonicalColumns() []string {
	out := make([]string, len(canonicalColumns))
	copy(out, canonicalColumns)
	return out
}

const utf8BOM = "\ufeff"

// extraColumn is a non-canonical column. header is written back exactly as read.
type extraColumn struct {
	header string
	key    string
	pos    int
}

type table struct {
	extras  []extraColumn
	records []models.PoRecord

	// statusFixups counts rows whose status cell disagreed with the GRN path.
	statusFixups int
}

func (t *table) header() []string {
	out := CanonicalColumns()
	for _, col := range t.extras {
		out = append(out, col.header)
	}
	return out
}

func (t *table) indexOf(poNumber string) int {
	for i := range t.records {
		if t.records[i].PONumber == poNumber {
			return i
		}
	}
	return -1
}

type rowError struct {
	line int
	err  error
}

func (e *rowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.line, e.err)
}

func (e *rowError) Unwrap() error {
	return e.err
}

// decodeTable parses a CSV table. Missing canonical columns read as empty cells and
// every other column is carried by position in PoRecord.ExtraCells.
func decodeTable(r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	t := &table{}
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return t, nil
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	positions := map[string]int{}
	canonical := map[string]struct{}{}
	for _, col := range canonicalColumns {
		canonical[col] = struct{}{}
	}
	keys := map[string]struct{}{}
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if _, ok := canonical[name]; ok {
			if _, seen := positions[name]; !seen {
				positions[name] = i
				continue
			}
		}
		// Blank and repeated names stay in the file verbatim; only the display key
		// is made unique.
		key := name
		if _, taken := keys[key]; taken || key == "" {
			key = fmt.Sprintf("column_%d", i+1)
		}
		keys[key] = struct{}{}
		t.extras = append(t.extras, extraColumn{header: raw, key: key, pos: i})
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		if len(row) > len(header) {
			return nil, &rowError{line: line, err: fmt.Errorf("row has %d fields, header has %d", len(row), len(header))}
		}

		cell := func(col string) string {
			pos, ok := positions[col]
			if !ok || pos >= len(row) {
				return ""
			}
			return row[pos]
		}

		rec, fixed, err := recordFromCells(cell)
		if err != nil {
			return nil, &rowError{line: line, err: err}
		}
		if fixed {
			t.statusFixups++
		}
		if len(t.extras) > 0 {
			rec.Extra = make(map[string]string, len(t.extras))
			rec.ExtraCells = make([]string, len(t.extras))
			for i, col := range t.extras {
				if col.pos < len(row) {
					rec.ExtraCells[i] = row[col.pos]
				}
				rec.Extra[col.key] = rec.ExtraCells[i]
			}
		}
		t.records = append(t.records, rec)
	}

	return t, nil
}

func recordFromCells(cell func(string) string) (models.PoRecord, bool, error) {
	var rec models.PoRecord

	date, err := models.ParseDate(cell(ColumnDate))
	if err != nil {
		return rec, false, err
	}
	status, err := models.ParseGRNStatus(cell(ColumnGRNStatus))
	if err != nil {
		return rec, false, err
	}

	poNumber := strings.TrimSpace(cell(ColumnPONumber))
	rec = models.PoRecord{
		ReceivedDate:     date,
		PONumber:         poNumber,
		VendorName:       strings.TrimSpace(cell(ColumnVendorName)),
		POAttachmentRef:  models.AttachmentRefFromPath(poNumber, models.AttachmentKindPO, cell(ColumnPOFilePath)),
		GRNAttachmentRef: models.AttachmentRefFromPath(poNumber, models.AttachmentKindGRN, cell(ColumnGRNFilePath)),
	}

	// Completed holds exactly when a GRN document is recorded.
	rec.GRNStatus = models.GRNStatusPending
	if rec.GRNAttachmentRef != nil {
		rec.GRNStatus = models.GRNStatusCompleted
	}
	return rec, rec.GRNStatus != status, nil
}

func encodeTable(w io.Writer, t *table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.header()); err != nil {
		return err
	}
	for _, rec := range t.records {
		row := []string{
			models.FormatDate(rec.ReceivedDate),
			rec.PONumber,
			rec.VendorName,
			string(rec.GRNStatus),
			refPath(rec.POAttachmentRef),
			refPath(rec.GRNAttachmentRef),
		}
		for i := range t.extras {
			value := ""
			if i < len(rec.ExtraCells) {
				value = rec.ExtraCells[i]
			}
			row = append(row, value)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func refPath(ref *models.AttachmentRef) string {
	if ref == nil {
		return ""
	}
	return ref.StoragePath
}
