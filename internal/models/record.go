package models

import "time"

// PoRecord is one row of the PO/GRN table.
type PoRecord struct {
	ReceivedDate     time.Time      `json:"received_date"`
	PONumber         string         `json:"po_number"`
	VendorName       string         `json:"vendor_name"`
	GRNStatus        GRNStatus      `json:"grn_status"`
	POAttachmentRef  *AttachmentRef `json:"po_attachment_ref,omitempty"`
	GRNAttachmentRef *AttachmentRef `json:"grn_attachment_ref,omitempty"`

	// Extra maps non-canonical column names to their cells, for display.
	Extra map[string]string `json:"-"`
	// ExtraCells holds the same cells by position so a rewrite keeps every column,
	// including repeated or blank header names.
	ExtraCells []string `json:"-"`
}

// NewPoRecord returns a pending record with no attachments.
func NewPoRecord(receivedDate time.Time, poNumber, vendorName string) PoRecord {
	return PoRecord{
		ReceivedDate: receivedDate,
		PONumber:     poNumber,
		VendorName:   vendorName,
		GRNStatus:    GRNStatusPending,
	}
}

// AttachGRN records the GRN document and completes the record.
func (r *PoRecord) AttachGRN(ref AttachmentRef) {
	r.GRNAttachmentRef = &ref
	r.GRNStatus = GRNStatusCompleted
}

// Completed reports whether a GRN document has been recorded.
func (r PoRecord) Completed() bool {
	return r.GRNStatus == GRNStatusCompleted && r.GRNAttachmentRef != nil
}

// Attachment returns the reference of the given kind, if any.
func (r PoRecord) Attachment(kind AttachmentKind) *AttachmentRef {
	switch kind {
	case AttachmentKindPO:
		return r.POAttachmentRef
	case AttachmentKindGRN:
		return r.GRNAttachmentRef
	default:
		return nil
	}
}
