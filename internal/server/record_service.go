package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"pogrn/internal/attachstore"
	"pogrn/internal/history"
	"pogrn/internal/models"
	"pogrn/internal/store"
)

// Journal is the activity history the service appends to after each mutation.
type Journal interface {
	Record(ctx context.Context, ev history.Event) (history.Event, error)
	List(ctx context.Context, filter history.Filter) ([]history.Event, error)
}

type schemaReporter interface {
	SchemaStatus() (*history.MigrationStatus, error)
}

// Upload is a client-supplied document.
type Upload struct {
	Filename string
	Content  io.Reader
}

// SubmitInput is the PO submission form.
type SubmitInput struct {
	ReceivedDate time.Time
	PONumber     string
	VendorName   string
	File         *Upload
}

// RecordService composes the record store and the document store so that each
// user-facing operation lands as a single unit.
type RecordService struct {
	records store.RecordStore
	docs    attachstore.DocumentStore
	journal Journal
	logger  *slog.Logger
}

func NewRecordService(records store.RecordStore, docs attachstore.DocumentStore, journal Journal, logger *slog.Logger) *RecordService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordService{
		records: records,
		docs:    docs,
		journal: journal,
		logger:  logger.With("component", "record_service"),
	}
}

func (s *RecordService) List(ctx context.Context) ([]models.PoRecord, error) {
	return s.records.Load(ctx)
}

func (s *RecordService) Search(ctx context.Context, poQuery, vendorQuery string) ([]models.PoRecord, error) {
	seq, err := s.records.Search(ctx, poQuery, vendorQuery)
	if err != nil {
		return []models.PoRecord{}, err
	}
	out := []models.PoRecord{}
	for rec := range seq {
		out = append(out, rec)
	}
	return out, nil
}

func (s *RecordService) Get(ctx context.Context, poNumber string) (models.PoRecord, error) {
	return s.records.Get(ctx, poNumber)
}

func (s *RecordService) Stats(ctx context.Context) (store.Stats, error) {
	return s.records.Stats(ctx)
}

// SubmitPO appends a pending record and stores its PO document, if any. Either both
// land or neither does.
func (s *RecordService) SubmitPO(ctx context.Context, in SubmitInput) (models.PoRecord, error) {
	rec := models.NewPoRecord(in.ReceivedDate, strings.TrimSpace(in.PONumber), strings.TrimSpace(in.VendorName))

	var attach store.AttachFunc
	if in.File != nil && in.File.Content != nil {
		attach = s.attachFunc(rec.PONumber, models.AttachmentKindPO, *in.File)
	}

	created, err := s.records.AppendWith(ctx, rec, attach)
	if err != nil {
		return models.PoRecord{}, err
	}

	detail := created.VendorName
	if created.POAttachmentRef != nil {
		detail += " (" + created.POAttachmentRef.OriginalFilename + ")"
	}
	s.recordEvent(ctx, history.EventSubmitted, created.PONumber, detail)
	return created, nil
}

// AdminUpdateGRN stores the GRN document and completes the record as one unit.
func (s *RecordService) AdminUpdateGRN(ctx context.Context, poNumber string, upload Upload) (models.PoRecord, error) {
	if upload.Content == nil {
		return models.PoRecord{}, &store.ValidationError{Field: "file", Reason: "is required"}
	}
	poNumber = strings.TrimSpace(poNumber)

	updated, err := s.records.UpdateGRNWith(ctx, poNumber, s.attachFunc(poNumber, models.AttachmentKindGRN, upload))
	if err != nil {
		return models.PoRecord{}, err
	}

	detail := ""
	if updated.GRNAttachmentRef != nil {
		detail = updated.GRNAttachmentRef.OriginalFilename
	}
	s.recordEvent(ctx, history.EventGRNUploaded, updated.PONumber, detail)
	return updated, nil
}

// Download returns the bytes of a record's document. ok is false when the record has
// no document of that kind or the file can no longer be read.
func (s *RecordService) Download(ctx context.Context, poNumber string, kind models.AttachmentKind) (data []byte, ref models.AttachmentRef, ok bool, err error) {
	rec, err := s.records.Get(ctx, poNumber)
	if err != nil {
		return nil, models.AttachmentRef{}, false, err
	}
	stored := rec.Attachment(kind)
	if stored == nil {
		return nil, models.AttachmentRef{}, false, nil
	}
	data, ok = s.docs.Resolve(ctx, *stored)
	if !ok {
		s.logger.Warn("document unavailable", "po_number", rec.PONumber, "kind", kind, "path", stored.StoragePath)
		return nil, *stored, false, nil
	}
	return data, *stored, true, nil
}

// Dedupe keeps the first record for each po_number.
func (s *RecordService) Dedupe(ctx context.Context) (int, int, error) {
	before, after, err := s.records.Dedupe(ctx)
	if err != nil {
		return before, after, err
	}
	if before != after {
		s.recordEvent(ctx, history.EventDeduped, "", fmt.Sprintf("%d -> %d", before, after))
	}
	return before, after, nil
}

// History lists journal entries, newest first.
func (s *RecordService) History(ctx context.Context, filter history.Filter) ([]history.Event, error) {
	if s.journal == nil {
		return []history.Event{}, nil
	}
	return s.journal.List(ctx, filter)
}

// HistorySchemaVersion reports the applied journal schema version, or 0 when unknown.
func (s *RecordService) HistorySchemaVersion() int {
	reporter, ok := s.journal.(schemaReporter)
	if !ok {
		return 0
	}
	status, err := reporter.SchemaStatus()
	if err != nil {
		s.logger.Warn("history schema status", "error", err)
		return 0
	}
	return status.CurrentVersion
}

func (s *RecordService) attachFunc(poNumber string, kind models.AttachmentKind, upload Upload) store.AttachFunc {
	return func(ctx context.Context) (models.AttachmentRef, func(), error) {
		if s.docs == nil {
			return models.AttachmentRef{}, nil, fmt.Errorf("document store is not configured")
		}
		ref, err := s.docs.Store(ctx, poNumber, kind, upload.Filename, upload.Content)
		if err != nil {
			return models.AttachmentRef{}, nil, err
		}
		undo := func() {
			// The record was not persisted; drop the orphaned document.
			if err := s.docs.Remove(context.WithoutCancel(ctx), ref); err != nil {
				s.logger.Error("remove orphaned document", "path", ref.StoragePath, "error", err)
			}
		}
		return ref, undo, nil
	}
}

// recordEvent journals a committed mutation. The table is already persisted, so a
// journal failure is logged and not returned.
func (s *RecordService) recordEvent(ctx context.Context, evType history.EventType, poNumber, detail string) {
	if s.journal == nil {
		return
	}
	_, err := s.journal.Record(context.WithoutCancel(ctx), history.Event{
		Type:     evType,
		PONumber: poNumber,
		Detail:   detail,
		Actor:    actorFromContext(ctx),
	})
	if err != nil {
		s.logger.Warn("history record failed", "type", evType, "po_number", poNumber, "error", err)
	}
}
