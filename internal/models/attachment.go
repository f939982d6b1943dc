package models

import (
	"fmt"
	"strings"
)

// AttachmentKind says which side of the PO lifecycle a document belongs to.
type AttachmentKind string

const (
	AttachmentKindPO  AttachmentKind = "PO"
	AttachmentKindGRN AttachmentKind = "GRN"
)

// AttachmentRef points at a stored document owned by exactly one record.
type AttachmentRef struct {
	OwningPONumber   string         `json:"owning_po_number"`
	Kind             AttachmentKind `json:"kind"`
	StoragePath      string         `json:"storage_path"`
	OriginalFilename string         `json:"original_filename"`
}

func ParseAttachmentKind(raw string) (AttachmentKind, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	switch AttachmentKind(value) {
	case AttachmentKindPO, AttachmentKindGRN:
		return AttachmentKind(value), nil
	case "":
		return "", fmt.Errorf("attachment kind is required")
	default:
		return "", fmt.Errorf("invalid attachment kind: %s", raw)
	}
}

// StoredFilename composes the on-disk name of a document.
func StoredFilename(poNumber, originalFilename string) string {
	return poNumber + "_" + originalFilename
}

// AttachmentRefFromPath rebuilds a reference from a table cell. Empty paths yield nil.
func AttachmentRefFromPath(poNumber string, kind AttachmentKind, storagePath string) *AttachmentRef {
	storagePath = strings.TrimSpace(storagePath)
	if storagePath == "" {
		return nil
	}
	base := storagePath
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	return &AttachmentRef{
		OwningPONumber:   poNumber,
		Kind:             kind,
		StoragePath:      storagePath,
		OriginalFilename: strings.TrimPrefix(base, poNumber+"_"),
	}
}
