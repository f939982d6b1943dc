package attachstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pogrn/internal/models"
)

// DefaultAllowedExtensions mirrors the upload widgets of the original form.
var DefaultAllowedExtensions = []string{"pdf", "jpg", "png"}

// Options configures a LocalDir.
type Options struct {
	PODir             string
	GRNDir            string
	AllowedExtensions []string
	Logger            *slog.Logger
}

// LocalDir stores documents as {dir}/{po_number}_{filename} on the local filesystem.
type LocalDir struct {
	dirs    map[models.AttachmentKind]string
	allowed map[string]struct{}
	logger  *slog.Logger
}

// NewLocalDir creates a document store. Directories are created on first write.
func NewLocalDir(opts Options) (*LocalDir, error) {
	poDir := strings.TrimSpace(opts.PODir)
	grnDir := strings.TrimSpace(opts.GRNDir)
	if poDir == "" || grnDir == "" {
		return nil, fmt.Errorf("po and grn directories are required")
	}

	exts := opts.AllowedExtensions
	if len(exts) == 0 {
		exts = DefaultAllowedExtensions
	}
	allowed := NormalizeExtensions(exts)
	if len(allowed) == 0 {
		return nil, fmt.Errorf("at least one allowed extension is required")
	}
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, ext := range allowed {
		allowedSet[ext] = struct{}{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &LocalDir{
		dirs: map[models.AttachmentKind]string{
			models.AttachmentKindPO:  poDir,
			models.AttachmentKindGRN: grnDir,
		},
		allowed: allowedSet,
		logger:  logger,
	}, nil
}

// AllowedExtensions returns the sorted set of accepted extensions.
func (d *LocalDir) AllowedExtensions() []string {
	out := make([]string, 0, len(d.allowed))
	for ext := range d.allowed {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Store writes content to the computed path for (kind, po, filename), replacing any
// file already there.
func (d *LocalDir) Store(ctx context.Context, owningPONumber string, kind models.AttachmentKind, originalFilename string, content io.Reader) (models.AttachmentRef, error) {
	var zero models.AttachmentRef
	if d == nil {
		return zero, fmt.Errorf("document store is not configured")
	}
	if content == nil {
		return zero, &ValidationError{Field: "file", Reason: "content is required"}
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	owningPONumber = strings.TrimSpace(owningPONumber)
	if owningPONumber == "" || strings.ContainsAny(owningPONumber, `/\`) || strings.Contains(owningPONumber, "..") {
		return zero, &ValidationError{Field: "po_number", Reason: "invalid owning po number"}
	}
	dir, ok := d.dirs[kind]
	if !ok {
		return zero, &ValidationError{Field: "kind", Reason: fmt.Sprintf("invalid attachment kind: %s", kind)}
	}
	filename, err := cleanFilename(originalFilename)
	if err != nil {
		return zero, err
	}
	if err := d.checkExtension(filename); err != nil {
		return zero, err
	}

	dst := filepath.Join(dir, models.StoredFilename(owningPONumber, filename))
	if err := writeFileAtomic(dir, dst, content); err != nil {
		return zero, err
	}

	ref := models.AttachmentRef{
		OwningPONumber:   owningPONumber,
		Kind:             kind,
		StoragePath:      filepath.ToSlash(dst),
		OriginalFilename: filename,
	}
	d.logger.Debug("document stored", "po_number", owningPONumber, "kind", kind, "path", ref.StoragePath)
	return ref, nil
}

// Resolve returns the document bytes, or false when the file is gone or unreadable.
func (d *LocalDir) Resolve(ctx context.Context, ref models.AttachmentRef) ([]byte, bool) {
	if ctx.Err() != nil || strings.TrimSpace(ref.StoragePath) == "" {
		return nil, false
	}
	data, err := os.ReadFile(filepath.FromSlash(ref.StoragePath))
	if err != nil {
		if d != nil && !errors.Is(err, os.ErrNotExist) {
			d.logger.Warn("document unreadable", "path", ref.StoragePath, "error", err)
		}
		return nil, false
	}
	return data, true
}

// Open returns a reader for the document. Missing files surface as os.ErrNotExist.
func (d *LocalDir) Open(ctx context.Context, ref models.AttachmentRef) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(ref.StoragePath) == "" {
		return nil, os.ErrNotExist
	}
	return os.Open(filepath.FromSlash(ref.StoragePath))
}

// Remove deletes a stored document. Missing files are ignored.
func (d *LocalDir) Remove(ctx context.Context, ref models.AttachmentRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(ref.StoragePath) == "" {
		return nil
	}
	if err := os.Remove(filepath.FromSlash(ref.StoragePath)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &IoError{Op: "remove", Path: ref.StoragePath, Err: err}
	}
	return nil
}

func (d *LocalDir) checkExtension(filename string) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if _, ok := d.allowed[ext]; !ok {
		return &ValidationError{
			Field:  "extension",
			Reason: fmt.Sprintf("extension %q is not allowed (allowed: %s)", ext, strings.Join(d.AllowedExtensions(), ", ")),
		}
	}
	return nil
}

func writeFileAtomic(dir, dst string, content io.Reader) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IoError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return &IoError{Op: "create", Path: dir, Err: err}
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := io.Copy(tmp, content); err != nil {
		cleanup()
		return &IoError{Op: "write", Path: dst, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return &IoError{Op: "sync", Path: dst, Err: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &IoError{Op: "close", Path: dst, Err: err}
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return &IoError{Op: "rename", Path: dst, Err: err}
	}
	return nil
}

// cleanFilename keeps only the final path element of a client-supplied name.
func cleanFilename(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "." || name == ".." {
		return "", &ValidationError{Field: "filename", Reason: "filename is required"}
	}
	return name, nil
}

// NormalizeExtensions lowercases, strips dots, drops blanks and duplicates, and sorts.
func NormalizeExtensions(raw []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(raw))
	for _, value := range raw {
		ext := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(value)), ".")
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
