// Package storage wraps the object store that holds applicant documents.
// The rest of the system only sees the Store interface; nothing here is
// transactional with the record store, and callers are expected to treat a
// storage mutation and the matching pointer update as independently failing
// steps.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrObjectNotFound = errors.New("object not found in store")
	ErrExpiredAccess  = errors.New("timed access credential expired")
	ErrInvalidAccess  = errors.New("timed access credential invalid")
)

// Entry describes one stored object, as returned by List.
type Entry struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Store is the object store surface the document registry and the credential
// cache consume.
type Store interface {
	// Put writes an object at path, overwriting any existing object there.
	Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
	// Remove deletes the given paths. Missing paths are an error so a
	// double delete is visible to the caller rather than silently ok.
	Remove(ctx context.Context, paths ...string) error
	// IssueTimedAccess mints a URL that grants read access to one object
	// until expiresAt, with no further authorization.
	IssueTimedAccess(ctx context.Context, path string, ttl time.Duration) (url string, expiresAt time.Time, err error)
	// List returns the objects under prefix.
	List(ctx context.Context, prefix string) ([]Entry, error)
}
