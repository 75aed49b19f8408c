package document

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"passportdesk/internal/domain/application"
	"passportdesk/internal/domain/audit"
	"passportdesk/internal/metrics"
	"passportdesk/internal/storage"
)

const (
	// MaxFileSize is the upload ceiling, checked before any storage call.
	MaxFileSize = 10 * 1024 * 1024 // 10 MiB

	// bucketPrefix is the fixed pattern every managed pointer URL carries.
	// Delete refuses to touch URLs that do not match it.
	bucketPrefix = "/object/" + storage.DefaultBucket + "/"
)

// AllowedMimeTypes defines which document types are accepted.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"application/pdf": true,
}

// AuditRecorder appends an activity record without ever failing the caller.
type AuditRecorder interface {
	Record(ctx context.Context, e audit.Entry)
}

// Credentials is the slot-credential cache surface the registry needs:
// tracking an application for the scheduled fan-out, and refreshing one slot
// right after its pointer changed so the console never waits for the next
// cycle.
type Credentials interface {
	Track(app *application.Application) map[application.Slot]Credential
	RefreshSlot(ctx context.Context, app *application.Application, slot application.Slot)
}

// Service is the document registry: it validates uploads, keeps the object
// store and the pointer fields coherent, and triggers the audit and
// credential side effects on every successful mutation.
type Service struct {
	apps       application.Repository
	store      storage.Store
	auditor    AuditRecorder
	creds      Credentials
	publicBase string
}

func NewService(
	apps application.Repository,
	store storage.Store,
	auditor AuditRecorder,
	creds Credentials,
	publicBase string,
) *Service {
	return &Service{
		apps:       apps,
		store:      store,
		auditor:    auditor,
		creds:      creds,
		publicBase: strings.TrimSuffix(publicBase, "/"),
	}
}

// Upload validates and stores a document, then commits the slot pointer.
// Storage is written first; the pointer is only updated after the store
// confirms, so a failed put never leaves a live pointer at a missing object.
func (s *Service) Upload(
	ctx context.Context,
	actor audit.Actor,
	appID int64,
	slot application.Slot,
	fileHeader *multipart.FileHeader,
) (string, error) {
	if !slot.Valid() {
		return "", ErrInvalidSlot
	}
	app, err := s.apps.GetByID(ctx, appID)
	if err != nil {
		return "", err
	}
	if fileHeader.Size == 0 {
		return "", ErrEmptyFile
	}
	if fileHeader.Size > MaxFileSize {
		return "", &ValidationError{
			Constraint: "max_size",
			Observed:   fmt.Sprintf("%d bytes", fileHeader.Size),
			Allowed:    fmt.Sprintf("%d bytes", MaxFileSize),
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	// Sniff the real MIME type from the first 512 bytes; the client-sent
	// Content-Type header is not trusted.
	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	if !AllowedMimeTypes[mimeType] {
		return "", &ValidationError{
			Constraint: "mime_type",
			Observed:   mimeType,
			Allowed:    "image/jpeg, image/png, image/gif, application/pdf",
		}
	}
	if seeker, ok := file.(io.Seeker); ok {
		_, _ = seeker.Seek(0, io.SeekStart)
	}

	path := objectPath(app.OwnerID, slot, fileHeader.Filename, mimeType, time.Now())
	if err := s.store.Put(ctx, path, file, fileHeader.Size, mimeType); err != nil {
		return "", &StorageError{Op: "put", Err: err}
	}
	metrics.UploadedBytes.Add(float64(fileHeader.Size))

	url := s.publicBase + bucketPrefix + path
	if err := s.apps.SetDocumentURL(ctx, appID, slot, url); err != nil {
		// The object is now orphaned; the pointer was never written, so
		// the slot still reads as before. Orphans are reaped out of band.
		return "", fmt.Errorf("commit pointer for slot %s: %w", slot, err)
	}

	app.SetDocumentURL(slot, url)
	s.creds.RefreshSlot(ctx, app, slot)
	s.auditor.Record(ctx, audit.Entry{
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Action:    "Uploaded Document",
		SubjectID: strconv.FormatInt(appID, 10),
		Details: map[string]any{
			"slot":      string(slot),
			"path":      path,
			"size":      fileHeader.Size,
			"mime_type": mimeType,
		},
		IsAdmin:   actor.Admin,
		IP:        actor.IP,
		UserAgent: actor.UserAgent,
	})
	return url, nil
}

// Delete removes the stored object for a slot and clears the pointer.
// A pointer URL outside the managed bucket pattern fails with ErrNotFound and
// is left untouched. If removal succeeds but the pointer-clear write fails,
// the resulting dangling pointer is surfaced loudly instead of retried.
func (s *Service) Delete(
	ctx context.Context,
	actor audit.Actor,
	appID int64,
	slot application.Slot,
) error {
	if !slot.Valid() {
		return ErrInvalidSlot
	}
	app, err := s.apps.GetByID(ctx, appID)
	if err != nil {
		return err
	}

	url := strings.TrimSpace(app.DocumentURL(slot))
	if url == "" {
		return ErrNotFound
	}
	path, ok := ExtractStoragePath(url)
	if !ok {
		return ErrNotFound
	}

	if err := s.store.Remove(ctx, path); err != nil {
		return &StorageError{Op: "remove", Err: err}
	}

	// Cleared means empty string, not NULL; both read back as absent.
	if err := s.apps.SetDocumentURL(ctx, appID, slot, ""); err != nil {
		dangling := &DanglingPointerError{ApplicationID: appID, Slot: slot, Path: path, Err: err}
		log.Printf("document_pointer_dangling application=%d slot=%s path=%s error=%q",
			appID, slot, path, err)
		return dangling
	}

	app.SetDocumentURL(slot, "")
	s.creds.RefreshSlot(ctx, app, slot)
	s.auditor.Record(ctx, audit.Entry{
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Action:    "Deleted Document",
		SubjectID: strconv.FormatInt(appID, 10),
		Details: map[string]any{
			"slot": string(slot),
			"path": path,
		},
		IsAdmin:   actor.Admin,
		IP:        actor.IP,
		UserAgent: actor.UserAgent,
	})
	return nil
}

// SlotStatus is one row of the per-application document listing.
type SlotStatus struct {
	Slot        application.Slot `json:"slot"`
	HasDocument bool             `json:"has_document"`
	Access      Credential       `json:"access"`
}

// List reports every slot with its pointer presence and credential state.
func (s *Service) List(ctx context.Context, appID int64) ([]SlotStatus, error) {
	app, err := s.apps.GetByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	creds := s.creds.Track(app)

	statuses := make([]SlotStatus, 0, len(application.Slots))
	for _, slot := range application.Slots {
		statuses = append(statuses, SlotStatus{
			Slot:        slot,
			HasDocument: app.HasDocument(slot),
			Access:      creds[slot],
		})
	}
	return statuses, nil
}

// ExtractStoragePath pulls the object path out of a managed pointer URL.
// Returns false when the URL does not carry the bucket prefix.
func ExtractStoragePath(url string) (string, bool) {
	i := strings.Index(url, bucketPrefix)
	if i < 0 {
		return "", false
	}
	path := url[i+len(bucketPrefix):]
	if path == "" {
		return "", false
	}
	return path, true
}

// UploadedAt derives the authoritative upload time from a storage path.
// The epoch-millis segment of the filename is the only record of it.
func UploadedAt(path string) (time.Time, bool) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	i := strings.LastIndex(base, "_")
	if i < 0 {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(base[i+1:], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}

func objectPath(ownerID int64, slot application.Slot, filename, mimeType string, now time.Time) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = mimeToExt(mimeType)
	}
	return fmt.Sprintf("%d/%s_%d%s", ownerID, slot.DocType(), now.UnixMilli(), ext)
}

func mimeToExt(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}
