package main

import (
	"reflect"
	"testing"

	"pogrn/internal/api"
)

func TestFormatRecordLine(t *testing.T) {
	pending := api.RecordResponse{ReceivedDate: "2024-05-02", PONumber: "0012", VendorName: "PT Maju", GRNStatus: "Pending"}
	if got := formatRecordLine(pending); got != "○ 2024-05-02 0012 - PT Maju" {
		t.Fatalf("unexpected pending line %q", got)
	}

	done := api.RecordResponse{PONumber: "7", VendorName: "CV Sinar", GRNStatus: "Completed"}
	if got := formatRecordLine(done); got != "● ---------- 7 - CV Sinar" {
		t.Fatalf("unexpected completed line %q", got)
	}
}

func TestRecordDetailLines(t *testing.T) {
	rec := api.RecordResponse{
		ReceivedDate: "2024-05-02",
		PONumber:     "12",
		VendorName:   "Acme",
		GRNStatus:    "Completed",
		GRNFile:      &api.AttachmentResponse{Kind: "grn", StoragePath: "uploaded_grn/12_grn.pdf"},
		Extra:        map[string]string{"Catatan": "urgent", "Approver": "rina"},
	}

	want := []string{
		"po_number: 12",
		"vendor_name: Acme",
		"received_date: 2024-05-02",
		"grn_status: Completed",
		"grn_file: uploaded_grn/12_grn.pdf",
		"Approver: rina",
		"Catatan: urgent",
	}
	if got := recordDetailLines(rec); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected lines\n got: %v\nwant: %v", got, want)
	}
}
