package document

import (
	"context"
	"log"
	"sync"
	"time"

	"passportdesk/internal/domain/application"
	"passportdesk/internal/metrics"
	"passportdesk/internal/storage"
)

// CredentialState distinguishes "nothing to show" from "something is broken".
type CredentialState string

const (
	StateAbsent  CredentialState = "absent"  // no object in this slot
	StatePending CredentialState = "pending" // object exists, credential not issued yet
	StateError   CredentialState = "error"   // pointer malformed or store unreachable
	StateReady   CredentialState = "ready"
)

// Credential is the ephemeral per-slot access value. It lives only in the
// cache and is never persisted.
type Credential struct {
	State     CredentialState `json:"state"`
	URL       string          `json:"url,omitempty"`
	ExpiresAt time.Time       `json:"expires_at,omitzero"`
}

const (
	// DefaultTTL is the validity window of an issued credential.
	DefaultTTL = 60 * time.Minute
	// DefaultRefreshInterval is strictly shorter than DefaultTTL so a
	// served credential never passes the halfway point of staleness.
	DefaultRefreshInterval = 45 * time.Minute
)

// Cache holds the most recently issued credential per (application, slot).
// One global refresh ticker re-issues everything instead of managing a timer
// per slot; the slot set is small and fixed, so the redundant calls are
// bounded. Overlapping scheduled and on-demand refreshes are fine: last write
// wins per slot, and both converge to the current pointer.
type Cache struct {
	mu      sync.RWMutex
	entries map[int64]map[application.Slot]Credential

	apps     application.Repository
	store    storage.Store
	ttl      time.Duration
	interval time.Duration
}

func NewCache(apps application.Repository, store storage.Store, ttl, interval time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if interval <= 0 || interval >= ttl {
		interval = DefaultRefreshInterval
	}
	return &Cache{
		entries:  make(map[int64]map[application.Slot]Credential),
		apps:     apps,
		store:    store,
		ttl:      ttl,
		interval: interval,
	}
}

// Track registers an application with the cache and returns the current
// per-slot snapshot. On first sight, slots with a pointer are committed as
// pending and the initial fan-out runs in the background, so early snapshots
// legitimately show pending entries.
func (c *Cache) Track(app *application.Application) map[application.Slot]Credential {
	c.mu.Lock()
	_, known := c.entries[app.ID]
	if !known {
		slots := make(map[application.Slot]Credential, len(application.Slots))
		for _, slot := range application.Slots {
			if app.HasDocument(slot) {
				slots[slot] = Credential{State: StatePending}
			} else {
				slots[slot] = Credential{State: StateAbsent}
			}
		}
		c.entries[app.ID] = slots
	}
	c.mu.Unlock()

	if !known {
		go c.refreshApp(context.Background(), app)
	}
	return c.Snapshot(app.ID)
}

// Snapshot returns a copy of the cached credentials for one application.
func (c *Cache) Snapshot(appID int64) map[application.Slot]Credential {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[application.Slot]Credential, len(application.Slots))
	slots := c.entries[appID]
	for _, slot := range application.Slots {
		// an app can enter via commit (upload before any listing), so a
		// slot without an entry still reads as absent
		cred, found := slots[slot]
		if !found {
			cred = Credential{State: StateAbsent}
		}
		out[slot] = cred
	}
	return out
}

// RefreshSlot re-issues one slot's credential from its current pointer.
// Called synchronously right after an upload or delete.
func (c *Cache) RefreshSlot(ctx context.Context, app *application.Application, slot application.Slot) {
	c.commit(app.ID, slot, c.issue(ctx, app, slot))
}

// refreshApp fans out over every slot concurrently and commits each result
// as it arrives. A slow or failing slot only updates its own entry.
func (c *Cache) refreshApp(ctx context.Context, app *application.Application) {
	var wg sync.WaitGroup
	for _, slot := range application.Slots {
		wg.Add(1)
		go func(slot application.Slot) {
			defer wg.Done()
			c.commit(app.ID, slot, c.issue(ctx, app, slot))
		}(slot)
	}
	wg.Wait()
}

// issue resolves one slot's pointer into a credential. Empty pointer maps to
// absent; an unextractable path or a store failure maps to error, which the
// console must render distinctly from absent.
func (c *Cache) issue(ctx context.Context, app *application.Application, slot application.Slot) Credential {
	if !app.HasDocument(slot) {
		return Credential{State: StateAbsent}
	}
	path, ok := ExtractStoragePath(app.DocumentURL(slot))
	if !ok {
		log.Printf("credential_error application=%d slot=%s reason=malformed_pointer url=%q",
			app.ID, slot, app.DocumentURL(slot))
		metrics.CredentialErrors.Inc()
		return Credential{State: StateError}
	}
	url, expiresAt, err := c.store.IssueTimedAccess(ctx, path, c.ttl)
	if err != nil {
		log.Printf("credential_error application=%d slot=%s path=%s error=%q", app.ID, slot, path, err)
		metrics.CredentialErrors.Inc()
		return Credential{State: StateError}
	}
	return Credential{State: StateReady, URL: url, ExpiresAt: expiresAt}
}

func (c *Cache) commit(appID int64, slot application.Slot, cred Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slots, ok := c.entries[appID]
	if !ok {
		slots = make(map[application.Slot]Credential, len(application.Slots))
		c.entries[appID] = slots
	}
	slots[slot] = cred
}

// Start launches the scheduled full refresh. Every tick reloads each tracked
// application so the fan-out works from the current pointer truth, and
// re-issues every slot unconditionally to preempt expiry. Returns a stop
// channel in the same shape as the other background schedulers here.
func (c *Cache) Start(ctx context.Context) chan struct{} {
	stopCh := make(chan struct{})

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.refreshAll(ctx)
			case <-stopCh:
				log.Println("credential refresh stopped")
				return
			case <-ctx.Done():
				log.Println("credential refresh stopped (context done)")
				return
			}
		}
	}()

	log.Printf("credential refresh started interval=%v ttl=%v", c.interval, c.ttl)
	return stopCh
}

func (c *Cache) refreshAll(ctx context.Context) {
	c.mu.RLock()
	ids := make([]int64, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	c.mu.RUnlock()

	start := time.Now()
	for _, id := range ids {
		app, err := c.apps.GetByID(ctx, id)
		if err != nil {
			log.Printf("credential_refresh_skip application=%d error=%q", id, err)
			continue
		}
		c.refreshApp(ctx, app)
	}
	metrics.CredentialRefreshCycles.Inc()
	log.Printf("credential refresh cycle done applications=%d took=%v", len(ids), time.Since(start))
}
