package store

import (
	"context"
	"iter"

	"pogrn/internal/models"
)

// RecordStore abstracts the PO/GRN table.
type RecordStore interface {
	Load(ctx context.Context) ([]models.PoRecord, error)
	Get(ctx context.Context, poNumber string) (models.PoRecord, error)
	Search(ctx context.Context, poQuery, vendorQuery string) (iter.Seq[models.PoRecord], error)
	Append(ctx context.Context, rec models.PoRecord) error
	AppendWith(ctx context.Context, rec models.PoRecord, attach AttachFunc) (models.PoRecord, error)
	UpdateGRN(ctx context.Context, poNumber string, ref models.AttachmentRef) error
	UpdateGRNWith(ctx context.Context, poNumber string, attach AttachFunc) (models.PoRecord, error)
	Dedupe(ctx context.Context) (int, int, error)
	Stats(ctx context.Context) (Stats, error)
}

var _ RecordStore = (*Store)(nil)
