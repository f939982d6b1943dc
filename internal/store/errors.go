package store

import "fmt"

// ValidationError rejects malformed input; the table is not touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// DuplicateKeyError rejects an append whose po_number already exists.
type DuplicateKeyError struct {
	PONumber string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("po_number %s already exists", e.PONumber)
}

// NotFoundError reports a lookup by a po_number that is not in the table.
type NotFoundError struct {
	PONumber string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("po_number %s not found", e.PONumber)
}

// StorageReadError reports a table that exists but cannot be read or parsed.
type StorageReadError struct {
	Path string
	Line int
	Err  error
}

func (e *StorageReadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("read table %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("read table %s: %v", e.Path, e.Err)
}

func (e *StorageReadError) Unwrap() error {
	return e.Err
}

// StorageWriteError reports a persist that did not replace the live table.
type StorageWriteError struct {
	Path string
	Op   string
	Err  error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("write table %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}
