package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is the sole authority over the PO/GRN table file.
//
// Every operation runs its load-mutate-persist cycle under one mutex, and persists
// by writing a sibling temp file and renaming it over the live table.
type Store struct {
	path   string
	logger *slog.Logger

	mu sync.Mutex

	// rename is swapped in tests to simulate a crash before the table is replaced.
	rename func(oldpath, newpath string) error
}

// Open returns a store for the table at path, creating an empty table if absent.
func Open(path string, logger *slog.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("table path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		path:   path,
		logger: logger,
		rename: os.Rename,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.persist(&table{}); err != nil {
			return nil, err
		}
		logger.Info("created empty table", "path", path)
	} else if err != nil {
		return nil, &StorageReadError{Path: path, Err: err}
	}
	return s, nil
}

// Path returns the table location.
func (s *Store) Path() string {
	return s.path
}

// readTable loads the table, recreating it when it has been removed. Callers hold mu.
func (s *Store) readTable() (*table, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		t := &table{}
		if err := s.persist(t); err != nil {
			return nil, err
		}
		s.logger.Info("created empty table", "path", s.path)
		return t, nil
	}
	if err != nil {
		return nil, &StorageReadError{Path: s.path, Err: err}
	}
	defer f.Close()

	t, err := decodeTable(f)
	if err != nil {
		readErr := &StorageReadError{Path: s.path, Err: err}
		var rowErr *rowError
		if errors.As(err, &rowErr) {
			readErr.Line = rowErr.line
			readErr.Err = rowErr.err
		}
		s.logger.Error("table unreadable", "path", s.path, "error", readErr)
		return nil, readErr
	}
	if t.statusFixups > 0 {
		s.logger.Warn("grn status derived from grn file path", "path", s.path, "rows", t.statusFixups)
	}
	return t, nil
}

// persist atomically replaces the live table with t. Callers hold mu.
func (s *Store) persist(t *table) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StorageWriteError{Path: s.path, Op: "mkdir", Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return &StorageWriteError{Path: s.path, Op: "create temp", Err: err}
	}
	tmpPath := tmp.Name()
	fail := func(op string, err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		s.logger.Error("table persist failed", "path", s.path, "op", op, "error", err)
		return &StorageWriteError{Path: s.path, Op: op, Err: err}
	}

	if err := encodeTable(tmp, t); err != nil {
		return fail("encode", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail("chmod", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		return fail("close", err)
	}
	if err := s.rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		s.logger.Error("table persist failed", "path", s.path, "op", "rename", "error", err)
		return &StorageWriteError{Path: s.path, Op: "rename", Err: err}
	}
	return nil
}
