package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pogrn/internal/models"
)

func storeWithContent(t *testing.T, content string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write table: %v", err)
	}
	st, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return st
}

func TestLoadLegacyStatusValues(t *testing.T) {
	st := storeWithContent(t, strings.Join([]string{
		"Tanggal,Nomor_PO,Nama_Vendor,Status_GRN,File_PO_Path,File_GRN_Path",
		"2023-11-20,1001,PT Maju,Belum Dibuat,uploaded_po/1001_po.pdf,",
		"2023-11-21,1002,CV Sinar,Sudah Dibuat,,uploaded_grn/1002_grn.jpg",
		"",
	}, "\n"))

	records, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].GRNStatus != models.GRNStatusPending {
		t.Fatalf("expected pending, got %q", records[0].GRNStatus)
	}
	if records[0].POAttachmentRef == nil || records[0].POAttachmentRef.OriginalFilename != "po.pdf" {
		t.Fatalf("unexpected po ref %#v", records[0].POAttachmentRef)
	}
	if records[1].GRNStatus != models.GRNStatusCompleted {
		t.Fatalf("expected completed, got %q", records[1].GRNStatus)
	}
}

func TestLoadDerivesStatusFromGRNPath(t *testing.T) {
	st := storeWithContent(t, strings.Join([]string{
		"Tanggal,Nomor_PO,Nama_Vendor,Status_GRN,File_PO_Path,File_GRN_Path",
		"2023-11-20,1,A,Completed,,",
		"2023-11-20,2,B,Pending,,uploaded_grn/2_g.pdf",
		"",
	}, "\n"))

	records, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if records[0].GRNStatus != models.GRNStatusPending {
		t.Fatalf("expected pending without grn path, got %q", records[0].GRNStatus)
	}
	if records[1].GRNStatus != models.GRNStatusCompleted {
		t.Fatalf("expected completed with grn path, got %q", records[1].GRNStatus)
	}
}

func TestLoadReconcilesHeader(t *testing.T) {
	st := storeWithContent(t, strings.Join([]string{
		utf8BOM + "Nama_Vendor,Nomor_PO,Catatan",
		"PT Maju,0099,urgent",
		"CV Sinar,0100",
		"",
	}, "\n"))
	ctx := context.Background()

	records, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].PONumber != "0099" || records[0].VendorName != "PT Maju" {
		t.Fatalf("unexpected first record %#v", records[0])
	}
	if !records[0].ReceivedDate.IsZero() || records[0].POAttachmentRef != nil {
		t.Fatalf("expected missing columns to read empty, got %#v", records[0])
	}
	if records[0].Extra["Catatan"] != "urgent" {
		t.Fatalf("expected extra column preserved, got %#v", records[0].Extra)
	}
	if records[1].Extra["Catatan"] != "" {
		t.Fatalf("expected short row padded, got %#v", records[1].Extra)
	}

	mustAppend(t, st, "0101", "PT Baru")
	data := readFile(t, st.Path())
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	wantHeader := "Tanggal,Nomor_PO,Nama_Vendor,Status_GRN,File_PO_Path,File_GRN_Path,Catatan"
	if lines[0] != wantHeader {
		t.Fatalf("expected canonical header with extras, got %q", lines[0])
	}
	if lines[1] != ",0099,PT Maju,Pending,,,urgent" {
		t.Fatalf("unexpected rewritten row %q", lines[1])
	}
}

func TestRewriteKeepsRepeatedAndBlankColumns(t *testing.T) {
	header := "Tanggal,Nomor_PO,Nama_Vendor,Status_GRN,File_PO_Path,File_GRN_Path,Note,Note,,Nomor_PO"
	row := "2024-01-01,5,Acme,Pending,,,first,second,third,legacy-5"
	st := storeWithContent(t, header+"\n"+row+"\n")
	ctx := context.Background()

	records, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := map[string]string{"Note": "first", "column_8": "second", "column_9": "third", "Nomor_PO": "legacy-5"}
	for key, value := range want {
		if records[0].Extra[key] != value {
			t.Fatalf("expected %s=%q, got %#v", key, value, records[0].Extra)
		}
	}
	if records[0].PONumber != "5" {
		t.Fatalf("expected first Nomor_PO column to be the key, got %q", records[0].PONumber)
	}

	mustAppend(t, st, "6", "Baru")
	if err := st.UpdateGRN(ctx, "5", models.AttachmentRef{Kind: models.AttachmentKindGRN, StoragePath: "uploaded_grn/5_g.pdf"}); err != nil {
		t.Fatalf("update grn: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(readFile(t, st.Path()))), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", lines)
	}
	if lines[0] != header {
		t.Fatalf("expected header written back verbatim, got %q", lines[0])
	}
	if lines[1] != "2024-01-01,5,Acme,Completed,,uploaded_grn/5_g.pdf,first,second,third,legacy-5" {
		t.Fatalf("expected every extra cell kept, got %q", lines[1])
	}
	if lines[2] != "2024-05-02,6,Baru,Pending,,,,,," {
		t.Fatalf("expected empty extra cells for new record, got %q", lines[2])
	}
}

func TestLoadMalformedTable(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
	}{
		{
			name:    "too many fields",
			content: "Tanggal,Nomor_PO\n2024-01-01,1\n2024-01-02,2,extra\n",
			line:    3,
		},
		{
			name:    "bad date",
			content: "Tanggal,Nomor_PO\nyesterday,1\n",
			line:    2,
		},
		{
			name:    "bad status",
			content: "Nomor_PO,Status_GRN\n1,Maybe\n",
			line:    2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := storeWithContent(t, tt.content)
			records, err := st.Load(context.Background())
			var readErr *StorageReadError
			if !errors.As(err, &readErr) {
				t.Fatalf("expected storage read error, got %v", err)
			}
			if readErr.Line != tt.line {
				t.Fatalf("expected line %d, got %d", tt.line, readErr.Line)
			}
			if records == nil || len(records) != 0 {
				t.Fatalf("expected empty non-nil slice, got %#v", records)
			}
		})
	}
}

func TestMalformedTableRejectsMutations(t *testing.T) {
	content := "Tanggal,Nomor_PO\nyesterday,1\n"
	st := storeWithContent(t, content)

	err := st.Append(context.Background(), models.NewPoRecord(time.Time{}, "2", "B"))
	var readErr *StorageReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected storage read error, got %v", err)
	}
	if got := string(readFile(t, st.Path())); got != content {
		t.Fatalf("expected malformed table untouched, got %q", got)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	st := storeWithContent(t, "")
	records, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestLoadQuotedCells(t *testing.T) {
	st := storeWithContent(t, "Nomor_PO,Nama_Vendor\n5,\"PT Maju, Tbk\"\n")
	records, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if records[0].VendorName != "PT Maju, Tbk" {
		t.Fatalf("unexpected vendor %q", records[0].VendorName)
	}
}
