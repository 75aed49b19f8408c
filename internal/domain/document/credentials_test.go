package document

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passportdesk/internal/domain/application"
	"passportdesk/internal/storage"
)

// fakeStore issues deterministic credentials and lets tests fail individual
// paths.
type fakeStore struct {
	mu      sync.Mutex
	failing map[string]bool // path -> fail IssueTimedAccess
	issued  atomic.Int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{failing: make(map[string]bool)}
}

func (f *fakeStore) failPath(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[path] = true
}

func (f *fakeStore) Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	return nil
}

func (f *fakeStore) Remove(ctx context.Context, paths ...string) error { return nil }

func (f *fakeStore) IssueTimedAccess(ctx context.Context, path string, ttl time.Duration) (string, time.Time, error) {
	f.mu.Lock()
	failing := f.failing[path]
	f.mu.Unlock()
	if failing {
		return "", time.Time{}, fmt.Errorf("%w: %s", storage.ErrObjectNotFound, path)
	}
	n := f.issued.Add(1)
	return fmt.Sprintf("http://signed.local/%s?n=%d", path, n), time.Now().Add(ttl), nil
}

func (f *fakeStore) List(ctx context.Context, prefix string) ([]storage.Entry, error) {
	return nil, nil
}

type fakeAppRepo struct {
	mu   sync.Mutex
	apps map[int64]*application.Application
}

func newFakeAppRepo(apps ...*application.Application) *fakeAppRepo {
	r := &fakeAppRepo{apps: make(map[int64]*application.Application)}
	for _, a := range apps {
		r.apps[a.ID] = a
	}
	return r
}

func (r *fakeAppRepo) Create(ctx context.Context, a *application.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[a.ID] = a
	return nil
}

func (r *fakeAppRepo) GetByID(ctx context.Context, id int64) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, application.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAppRepo) GetByOwner(ctx context.Context, ownerID int64) ([]*application.Application, error) {
	return nil, nil
}

func (r *fakeAppRepo) SetDocumentURL(ctx context.Context, id int64, slot application.Slot, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return application.ErrNotFound
	}
	a.SetDocumentURL(slot, url)
	return nil
}

func managedURL(ownerID int64, slot application.Slot) string {
	return fmt.Sprintf("http://localhost:8080/object/passport-documents/%d/%s_1700000000000.jpg", ownerID, slot)
}

func testApp() *application.Application {
	app := &application.Application{ID: 7, OwnerID: 101}
	app.SetDocumentURL(application.SlotPhotoID, managedURL(101, application.SlotPhotoID))
	app.SetDocumentURL(application.SlotSignature, managedURL(101, application.SlotSignature))
	return app
}

func TestRefreshAppPopulatesEverySlot(t *testing.T) {
	app := testApp()
	store := newFakeStore()
	cache := NewCache(newFakeAppRepo(app), store, time.Hour, 45*time.Minute)

	cache.refreshApp(context.Background(), app)
	creds := cache.Snapshot(app.ID)

	assert.Equal(t, StateReady, creds[application.SlotPhotoID].State)
	assert.Equal(t, StateReady, creds[application.SlotSignature].State)
	assert.NotEmpty(t, creds[application.SlotPhotoID].URL)
	assert.WithinDuration(t, time.Now().Add(time.Hour), creds[application.SlotPhotoID].ExpiresAt, 5*time.Second)

	// slots without a pointer are absent, not error
	assert.Equal(t, StateAbsent, creds[application.SlotBirthCertificate].State)
	assert.Equal(t, StateAbsent, creds[application.SlotGuardianID].State)
}

func TestOneSlotFailureDoesNotBlockOthers(t *testing.T) {
	app := testApp()
	store := newFakeStore()
	store.failPath(fmt.Sprintf("101/%s_1700000000000.jpg", application.SlotSignature))
	cache := NewCache(newFakeAppRepo(app), store, time.Hour, 45*time.Minute)

	cache.refreshApp(context.Background(), app)
	creds := cache.Snapshot(app.ID)

	assert.Equal(t, StateError, creds[application.SlotSignature].State)
	assert.Equal(t, StateReady, creds[application.SlotPhotoID].State)
}

func TestMalformedPointerIsErrorNotAbsent(t *testing.T) {
	app := &application.Application{ID: 7, OwnerID: 101}
	app.SetDocumentURL(application.SlotPhotoID, "https://elsewhere.example.com/photo.jpg")
	cache := NewCache(newFakeAppRepo(app), newFakeStore(), time.Hour, 45*time.Minute)

	cache.refreshApp(context.Background(), app)
	creds := cache.Snapshot(app.ID)

	assert.Equal(t, StateError, creds[application.SlotPhotoID].State,
		"a malformed pointer needs operator attention and must not read as absent")
	assert.Equal(t, StateAbsent, creds[application.SlotConsentForm].State)
}

func TestTrackReturnsPendingBeforeFirstFanOutCommits(t *testing.T) {
	app := testApp()
	cache := NewCache(newFakeAppRepo(app), newFakeStore(), time.Hour, 45*time.Minute)

	creds := cache.Track(app)
	// the initial fan-out runs in the background; the immediate snapshot
	// may be pending or already ready, never error or absent for a slot
	// with a pointer
	state := creds[application.SlotPhotoID].State
	assert.Contains(t, []CredentialState{StatePending, StateReady}, state)
	assert.Equal(t, StateAbsent, creds[application.SlotConsentForm].State)

	// converges to ready
	require.Eventually(t, func() bool {
		return cache.Snapshot(app.ID)[application.SlotPhotoID].State == StateReady
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRefreshSlotAfterDeleteGoesAbsent(t *testing.T) {
	app := testApp()
	cache := NewCache(newFakeAppRepo(app), newFakeStore(), time.Hour, 45*time.Minute)
	cache.refreshApp(context.Background(), app)

	app.SetDocumentURL(application.SlotPhotoID, "")
	cache.RefreshSlot(context.Background(), app, application.SlotPhotoID)

	creds := cache.Snapshot(app.ID)
	assert.Equal(t, StateAbsent, creds[application.SlotPhotoID].State)
	// other slots untouched
	assert.Equal(t, StateReady, creds[application.SlotSignature].State)
}

func TestRepeatedRefreshIsIdempotentForUnchangedPointer(t *testing.T) {
	app := testApp()
	cache := NewCache(newFakeAppRepo(app), newFakeStore(), time.Hour, 45*time.Minute)

	cache.RefreshSlot(context.Background(), app, application.SlotPhotoID)
	first := cache.Snapshot(app.ID)[application.SlotPhotoID]

	cache.RefreshSlot(context.Background(), app, application.SlotPhotoID)
	second := cache.Snapshot(app.ID)[application.SlotPhotoID]

	// both credentials are valid for the same object; only the issued URL
	// instance and expiry may differ
	assert.Equal(t, StateReady, first.State)
	assert.Equal(t, StateReady, second.State)
	assert.Contains(t, first.URL, "101/photo_id_1700000000000.jpg")
	assert.Contains(t, second.URL, "101/photo_id_1700000000000.jpg")
	assert.False(t, second.ExpiresAt.Before(first.ExpiresAt))
}

func TestRefreshAllReloadsPointerTruth(t *testing.T) {
	app := testApp()
	repo := newFakeAppRepo(app)
	store := newFakeStore()
	cache := NewCache(repo, store, time.Hour, 45*time.Minute)
	cache.refreshApp(context.Background(), app)

	// pointer cleared out of band; the next cycle must converge
	require.NoError(t, repo.SetDocumentURL(context.Background(), app.ID, application.SlotSignature, ""))
	cache.refreshAll(context.Background())

	creds := cache.Snapshot(app.ID)
	assert.Equal(t, StateAbsent, creds[application.SlotSignature].State)
	assert.Equal(t, StateReady, creds[application.SlotPhotoID].State)
}

func TestSnapshotForUnknownApplicationIsAllAbsent(t *testing.T) {
	cache := NewCache(newFakeAppRepo(), newFakeStore(), time.Hour, 45*time.Minute)
	creds := cache.Snapshot(999)
	for _, slot := range application.Slots {
		assert.Equal(t, StateAbsent, creds[slot].State)
	}
}
