package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"passportdesk/internal/domain/application"
	"passportdesk/internal/metrics"
)

// applicantNameKey is the reserved details key the writer enriches. A value
// the caller already put there is never overwritten.
const applicantNameKey = "applicant_name"

// enrichmentKeywords: actions whose label contains one of these (case
// insensitive) get the subject's applicant name resolved into the details.
var enrichmentKeywords = []string{"application", "comment", "message", "document"}

// Writer appends immutable audit records, optionally enriched with the
// subject's display name. Appends are single-row inserts; there is no queue.
type Writer struct {
	repo Repository
	apps application.Repository
	feed *Hub // optional live feed, may be nil
}

func NewWriter(repo Repository, apps application.Repository, feed *Hub) *Writer {
	return &Writer{repo: repo, apps: apps, feed: feed}
}

// Append writes one record. Enrichment failures degrade to "Unknown"; only
// the insert itself can fail.
func (w *Writer) Append(ctx context.Context, e Entry) error {
	details := e.Details
	if e.SubjectID != "" && matchesEnrichment(e.Action) {
		if details == nil {
			details = make(map[string]any, 1)
		}
		if _, taken := details[applicantNameKey]; !taken {
			details[applicantNameKey] = w.resolveApplicantName(ctx, e.SubjectID)
		}
	}

	serialized := ""
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("serialize audit details: %w", err)
		}
		serialized = string(raw)
	}

	rec := &Log{
		ID:        uuid.New().String(),
		ActorID:   e.ActorID,
		ActorName: e.ActorName,
		Action:    e.Action,
		SubjectID: e.SubjectID,
		Details:   serialized,
		IsAdmin:   e.IsAdmin,
		IPAddress: e.IP,
		UserAgent: e.UserAgent,
		CreatedAt: time.Now(),
	}
	if err := w.repo.Insert(ctx, rec); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	if w.feed != nil {
		w.feed.Broadcast(rec)
	}
	return nil
}

// Record is the call-site helper: a failed append must never fail the action
// that triggered it, so the error is logged, counted and swallowed here.
func (w *Writer) Record(ctx context.Context, e Entry) {
	if err := w.Append(ctx, e); err != nil {
		metrics.AuditAppendFailures.Inc()
		log.Printf("audit_append_failed action=%q actor=%d error=%q", e.Action, e.ActorID, err)
	}
}

// resolveApplicantName builds "first [middle] last" for the subject record.
// Missing first or last name, a non-numeric subject id, or a failed lookup
// all resolve to exactly "Unknown".
func (w *Writer) resolveApplicantName(ctx context.Context, subjectID string) string {
	id, err := strconv.ParseInt(subjectID, 10, 64)
	if err != nil {
		return "Unknown"
	}
	app, err := w.apps.GetByID(ctx, id)
	if err != nil {
		return "Unknown"
	}
	first := strings.TrimSpace(app.FirstName)
	last := strings.TrimSpace(app.LastName)
	if first == "" || last == "" {
		return "Unknown"
	}
	if middle := strings.TrimSpace(app.MiddleName); middle != "" {
		return first + " " + middle + " " + last
	}
	return first + " " + last
}

func matchesEnrichment(action string) bool {
	lowered := strings.ToLower(action)
	for _, kw := range enrichmentKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// ParseDetails turns a stored details string back into structured form.
// Anything that does not parse is surfaced as the opaque string, not dropped.
func ParseDetails(serialized string) any {
	if serialized == "" {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(serialized), &m); err != nil {
		return serialized
	}
	return m
}
