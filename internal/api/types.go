package api

import "time"

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// AttachmentResponse describes a stored PO or GRN document.
type AttachmentResponse struct {
	Kind             string `json:"kind"`
	StoragePath      string `json:"storage_path"`
	OriginalFilename string `json:"original_filename,omitempty"`
}

// RecordResponse is one ledger row.
type RecordResponse struct {
	ReceivedDate string              `json:"received_date,omitempty"`
	PONumber     string              `json:"po_number"`
	VendorName   string              `json:"vendor_name"`
	GRNStatus    string              `json:"grn_status"`
	POFile       *AttachmentResponse `json:"po_file,omitempty"`
	GRNFile      *AttachmentResponse `json:"grn_file,omitempty"`
	Extra        map[string]string   `json:"extra,omitempty"`
}

// InfoResponse reports where data lives and how many records exist.
type InfoResponse struct {
	TablePath            string   `json:"table_path"`
	PODir                string   `json:"po_dir"`
	GRNDir               string   `json:"grn_dir"`
	AllowedExtensions    []string `json:"allowed_extensions"`
	HistorySchemaVersion int      `json:"history_schema_version,omitempty"`
	TotalRecords         int      `json:"total_records"`
	PendingRecords       int      `json:"pending_records"`
	CompletedRecords     int      `json:"completed_records"`
}

// DedupeResponse reports record counts around a dedupe run.
type DedupeResponse struct {
	Before  int `json:"before"`
	After   int `json:"after"`
	Removed int `json:"removed"`
}

// HistoryEventResponse is one activity journal entry.
type HistoryEventResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	PONumber  string    `json:"po_number,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
