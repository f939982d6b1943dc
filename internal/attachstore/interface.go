package attachstore

import (
	"context"
	"io"

	"pogrn/internal/models"
)

// DocumentStore is the byte-storage abstraction used for PO and GRN documents.
type DocumentStore interface {
	Store(ctx context.Context, owningPONumber string, kind models.AttachmentKind, originalFilename string, content io.Reader) (models.AttachmentRef, error)
	Resolve(ctx context.Context, ref models.AttachmentRef) ([]byte, bool)
	Open(ctx context.Context, ref models.AttachmentRef) (io.ReadCloser, error)
	Remove(ctx context.Context, ref models.AttachmentRef) error
}

var _ DocumentStore = (*LocalDir)(nil)
