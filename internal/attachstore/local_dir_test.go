package attachstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pogrn/internal/models"
)

func newTestStore(t *testing.T) (*LocalDir, string) {
	t.Helper()
	root := t.TempDir()
	st, err := NewLocalDir(Options{
		PODir:  filepath.Join(root, "uploaded_po"),
		GRNDir: filepath.Join(root, "uploaded_grn"),
	})
	if err != nil {
		t.Fatalf("new local dir: %v", err)
	}
	return st, root
}

func TestLocalDirStoreResolveRoundTrip(t *testing.T) {
	st, root := newTestStore(t)
	ctx := context.Background()
	payload := []byte("%PDF-1.4 purchase order")

	ref, err := st.Store(ctx, "00123", models.AttachmentKindPO, "order.pdf", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	want := filepath.ToSlash(filepath.Join(root, "uploaded_po", "00123_order.pdf"))
	if ref.StoragePath != want {
		t.Fatalf("expected path %q, got %q", want, ref.StoragePath)
	}
	if ref.OriginalFilename != "order.pdf" || ref.OwningPONumber != "00123" || ref.Kind != models.AttachmentKindPO {
		t.Fatalf("unexpected ref %#v", ref)
	}

	got, ok := st.Resolve(ctx, ref)
	if !ok {
		t.Fatal("expected document to resolve")
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("expected identical bytes, got %q", got)
	}

	rc, err := st.Open(ctx, ref)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	streamed, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(streamed, payload) {
		t.Fatalf("expected identical streamed bytes, got %q", streamed)
	}
}

func TestLocalDirResolveMissingIsAbsent(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	ref, err := st.Store(ctx, "77", models.AttachmentKindGRN, "grn.png", strings.NewReader("png"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := os.Remove(filepath.FromSlash(ref.StoragePath)); err != nil {
		t.Fatalf("remove out of band: %v", err)
	}

	if data, ok := st.Resolve(ctx, ref); ok || data != nil {
		t.Fatalf("expected absent document, got ok=%v data=%q", ok, data)
	}
	if _, ok := st.Resolve(ctx, models.AttachmentRef{}); ok {
		t.Fatal("expected empty ref to be absent")
	}
	if _, err := st.Open(ctx, ref); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist from open, got %v", err)
	}
}

func TestLocalDirRejectsDisallowedExtension(t *testing.T) {
	st, root := newTestStore(t)

	_, err := st.Store(context.Background(), "10", models.AttachmentKindPO, "macro.docx", strings.NewReader("x"))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(root, "uploaded_po")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no directory to be created on rejection, stat err: %v", statErr)
	}
}

func TestLocalDirExtensionCheckIsCaseInsensitive(t *testing.T) {
	st, _ := newTestStore(t)
	if _, err := st.Store(context.Background(), "10", models.AttachmentKindGRN, "SCAN.JPG", strings.NewReader("x")); err != nil {
		t.Fatalf("expected upper-case extension to be accepted: %v", err)
	}
}

func TestLocalDirStripsClientDirectories(t *testing.T) {
	st, root := newTestStore(t)
	ref, err := st.Store(context.Background(), "55", models.AttachmentKindPO, `C:\Users\ops\..\po.pdf`, strings.NewReader("x"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	want := filepath.ToSlash(filepath.Join(root, "uploaded_po", "55_po.pdf"))
	if ref.StoragePath != want {
		t.Fatalf("expected %q, got %q", want, ref.StoragePath)
	}

	for _, name := range []string{"", "  ", "dir/", ".."} {
		if _, err := st.Store(context.Background(), "55", models.AttachmentKindPO, name, strings.NewReader("x")); err == nil {
			t.Fatalf("expected error for filename %q", name)
		}
	}
	if _, err := st.Store(context.Background(), "../55", models.AttachmentKindPO, "po.pdf", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for po number with separators")
	}
}

func TestLocalDirOverwritesSamePath(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	first, err := st.Store(ctx, "9", models.AttachmentKindGRN, "grn.pdf", strings.NewReader("first"))
	if err != nil {
		t.Fatalf("store first: %v", err)
	}
	second, err := st.Store(ctx, "9", models.AttachmentKindGRN, "grn.pdf", strings.NewReader("second"))
	if err != nil {
		t.Fatalf("store second: %v", err)
	}
	if first.StoragePath != second.StoragePath {
		t.Fatalf("expected same path, got %q and %q", first.StoragePath, second.StoragePath)
	}
	got, ok := st.Resolve(ctx, first)
	if !ok || string(got) != "second" {
		t.Fatalf("expected overwritten content, got %q (ok=%v)", got, ok)
	}

	entries, err := os.ReadDir(filepath.Dir(filepath.FromSlash(first.StoragePath)))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no leftover temp files, got %d entries", len(entries))
	}
}

func TestLocalDirStoreReportsIoErrorWhenDirIsAFile(t *testing.T) {
	st, root := newTestStore(t)
	poPath := filepath.Join(root, "uploaded_po")
	if err := os.WriteFile(poPath, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	_, err := st.Store(context.Background(), "7", models.AttachmentKindPO, "po.pdf", strings.NewReader("data"))
	var ioErr *IoError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IoError, got %T %v", err, err)
	}
	if ioErr.Op != "mkdir" {
		t.Fatalf("expected mkdir op, got %q", ioErr.Op)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read root: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".upload-") {
			t.Fatalf("expected no temp files, found %s", e.Name())
		}
	}
	data, err := os.ReadFile(poPath)
	if err != nil || string(data) != "not a directory" {
		t.Fatalf("expected blocker untouched, got %q %v", data, err)
	}
}

func TestLocalDirRemove(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	ref, err := st.Store(ctx, "3", models.AttachmentKindPO, "a.pdf", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := st.Remove(ctx, ref); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := st.Remove(ctx, ref); err != nil {
		t.Fatalf("remove missing should be noop: %v", err)
	}
	if _, ok := st.Resolve(ctx, ref); ok {
		t.Fatal("expected removed document to be absent")
	}
}

func TestNormalizeExtensions(t *testing.T) {
	got := NormalizeExtensions([]string{" .PDF", "png", "", "pdf", "Jpg"})
	want := []string{"jpg", "pdf", "png"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
