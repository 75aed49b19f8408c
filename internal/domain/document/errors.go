package document

import (
	"errors"
	"fmt"

	"passportdesk/internal/domain/application"
)

var (
	ErrEmptyFile   = errors.New("file is empty")
	ErrNotFound    = errors.New("no managed document stored in this slot")
	ErrInvalidSlot = errors.New("unknown document slot")
)

// ValidationError rejects an upload before any storage I/O. It names the
// violated constraint and the observed value so the console can display both.
type ValidationError struct {
	Constraint string // "mime_type" or "max_size"
	Observed   string
	Allowed    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s=%s (allowed: %s)", e.Constraint, e.Observed, e.Allowed)
}

// StorageError wraps a failed object-store call. The pointer field is never
// touched when one of these is returned.
type StorageError struct {
	Op  string // "put" or "remove"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// DanglingPointerError means storage removal succeeded but the pointer-clear
// write did not: the record now points at a missing object. This is never
// retried automatically; an operator has to resolve it.
type DanglingPointerError struct {
	ApplicationID int64
	Slot          application.Slot
	Path          string
	Err           error
}

func (e *DanglingPointerError) Error() string {
	return fmt.Sprintf("dangling pointer: application=%d slot=%s path=%s: %v",
		e.ApplicationID, e.Slot, e.Path, e.Err)
}

func (e *DanglingPointerError) Unwrap() error { return e.Err }
