package store

import (
	"context"
	"iter"
	"strings"

	"pogrn/internal/models"
)

// AttachFunc persists a document once a mutation has passed its key checks. The
// returned undo, if non-nil, is called when the table cannot be persisted afterwards.
type AttachFunc func(ctx context.Context) (ref models.AttachmentRef, undo func(), err error)

// Stats summarizes the table.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}

// Load returns every record in table order. On a read failure it returns an empty
// slice together with the error.
func (s *Store) Load(ctx context.Context) ([]models.PoRecord, error) {
	if err := ctx.Err(); err != nil {
		return []models.PoRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.readTable()
	if err != nil {
		return []models.PoRecord{}, err
	}
	return cloneRecords(t.records), nil
}

// Get returns the record with the given key.
func (s *Store) Get(ctx context.Context, poNumber string) (models.PoRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.PoRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.readTable()
	if err != nil {
		return models.PoRecord{}, err
	}
	idx := t.indexOf(strings.TrimSpace(poNumber))
	if idx < 0 {
		return models.PoRecord{}, &NotFoundError{PONumber: poNumber}
	}
	return cloneRecord(t.records[idx]), nil
}

// Search filters by case-insensitive substrings of po_number and vendor_name. An empty
// query matches everything for its field. The returned sequence walks a snapshot taken
// at call time and may be ranged over repeatedly.
func (s *Store) Search(ctx context.Context, poQuery, vendorQuery string) (iter.Seq[models.PoRecord], error) {
	records, err := s.Load(ctx)
	if err != nil {
		return func(func(models.PoRecord) bool) {}, err
	}

	poQuery = strings.ToLower(strings.TrimSpace(poQuery))
	vendorQuery = strings.ToLower(strings.TrimSpace(vendorQuery))

	return func(yield func(models.PoRecord) bool) {
		for _, rec := range records {
			if !containsFold(rec.PONumber, poQuery) || !containsFold(rec.VendorName, vendorQuery) {
				continue
			}
			if !yield(cloneRecord(rec)) {
				return
			}
		}
	}, nil
}

// Append adds a new pending record.
func (s *Store) Append(ctx context.Context, rec models.PoRecord) error {
	_, err := s.AppendWith(ctx, rec, nil)
	return err
}

// AppendWith validates rec and checks its key, then runs attach (if any) and records
// the returned reference as the PO document before persisting.
func (s *Store) AppendWith(ctx context.Context, rec models.PoRecord, attach AttachFunc) (models.PoRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.PoRecord{}, err
	}

	rec.PONumber = strings.TrimSpace(rec.PONumber)
	rec.VendorName = strings.TrimSpace(rec.VendorName)
	if err := validateRecordInput(rec.PONumber, rec.VendorName); err != nil {
		return models.PoRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.readTable()
	if err != nil {
		return models.PoRecord{}, err
	}
	if t.indexOf(rec.PONumber) >= 0 {
		return models.PoRecord{}, &DuplicateKeyError{PONumber: rec.PONumber}
	}

	var undo func()
	if attach != nil {
		ref, undoFn, err := attach(ctx)
		if err != nil {
			return models.PoRecord{}, err
		}
		rec.POAttachmentRef = &ref
		undo = undoFn
	}
	normalizeNewRecord(&rec)

	t.records = append(t.records, rec)
	if err := s.persist(t); err != nil {
		if undo != nil {
			undo()
		}
		return models.PoRecord{}, err
	}
	s.logger.Info("record appended", "po_number", rec.PONumber, "path", s.path)
	return cloneRecord(rec), nil
}

// UpdateGRN records a GRN document on an existing record and marks it completed.
func (s *Store) UpdateGRN(ctx context.Context, poNumber string, ref models.AttachmentRef) error {
	_, err := s.UpdateGRNWith(ctx, poNumber, func(context.Context) (models.AttachmentRef, func(), error) {
		return ref, nil, nil
	})
	return err
}

// UpdateGRNWith locates the record, runs attach to store the GRN document, and
// persists the completed record.
func (s *Store) UpdateGRNWith(ctx context.Context, poNumber string, attach AttachFunc) (models.PoRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.PoRecord{}, err
	}
	poNumber = strings.TrimSpace(poNumber)
	if poNumber == "" {
		return models.PoRecord{}, &ValidationError{Field: "po_number", Reason: "is required"}
	}
	if attach == nil {
		return models.PoRecord{}, &ValidationError{Field: "file", Reason: "is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.readTable()
	if err != nil {
		return models.PoRecord{}, err
	}
	idx := t.indexOf(poNumber)
	if idx < 0 {
		return models.PoRecord{}, &NotFoundError{PONumber: poNumber}
	}

	ref, undo, err := attach(ctx)
	if err != nil {
		return models.PoRecord{}, err
	}
	ref.OwningPONumber = poNumber
	ref.Kind = models.AttachmentKindGRN

	rec := &t.records[idx]
	previous := rec.GRNAttachmentRef
	rec.AttachGRN(ref)
	if err := s.persist(t); err != nil {
		// Same path means the previous document was overwritten and is now the only copy.
		if undo != nil && (previous == nil || previous.StoragePath != ref.StoragePath) {
			undo()
		}
		return models.PoRecord{}, err
	}
	s.logger.Info("grn recorded", "po_number", poNumber, "grn_path", ref.StoragePath)
	return cloneRecord(*rec), nil
}

// Dedupe drops every record after the first one with the same po_number and reports
// the record count before and after.
func (s *Store) Dedupe(ctx context.Context) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.readTable()
	if err != nil {
		return 0, 0, err
	}

	before := len(t.records)
	seen := make(map[string]struct{}, before)
	kept := make([]models.PoRecord, 0, before)
	for _, rec := range t.records {
		if _, ok := seen[rec.PONumber]; ok {
			continue
		}
		seen[rec.PONumber] = struct{}{}
		kept = append(kept, rec)
	}
	after := len(kept)
	if after == before {
		return before, after, nil
	}

	t.records = kept
	if err := s.persist(t); err != nil {
		return before, before, err
	}
	s.logger.Info("duplicates removed", "path", s.path, "before", before, "after", after)
	return before, after, nil
}

// Stats counts records by GRN status.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	records, err := s.Load(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Total: len(records)}
	for _, rec := range records {
		if rec.GRNStatus == models.GRNStatusCompleted {
			stats.Completed++
		} else {
			stats.Pending++
		}
	}
	return stats, nil
}

func normalizeNewRecord(rec *models.PoRecord) {
	if rec.POAttachmentRef != nil {
		rec.POAttachmentRef.OwningPONumber = rec.PONumber
		rec.POAttachmentRef.Kind = models.AttachmentKindPO
	}
	rec.GRNStatus = models.GRNStatusPending
	if rec.GRNAttachmentRef != nil {
		rec.GRNAttachmentRef.OwningPONumber = rec.PONumber
		rec.GRNAttachmentRef.Kind = models.AttachmentKindGRN
		rec.GRNStatus = models.GRNStatusCompleted
	}
}

func containsFold(value, lowerQuery string) bool {
	if lowerQuery == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), lowerQuery)
}

func cloneRecord(rec models.PoRecord) models.PoRecord {
	if rec.POAttachmentRef != nil {
		ref := *rec.POAttachmentRef
		rec.POAttachmentRef = &ref
	}
	if rec.GRNAttachmentRef != nil {
		ref := *rec.GRNAttachmentRef
		rec.GRNAttachmentRef = &ref
	}
	if rec.Extra != nil {
		extra := make(map[string]string, len(rec.Extra))
		for k, v := range rec.Extra {
			extra[k] = v
		}
		rec.Extra = extra
	}
	if rec.ExtraCells != nil {
		rec.ExtraCells = append([]string(nil), rec.ExtraCells...)
	}
	return rec
}

func cloneRecords(records []models.PoRecord) []models.PoRecord {
	out := make([]models.PoRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, cloneRecord(rec))
	}
	return out
}
