package audit

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Filter vocabulary. Every filter is optional; they combine conjunctively.
const (
	RangeAll       = "all"
	RangeToday     = "today"
	RangeYesterday = "yesterday"
	RangeThisWeek  = "this-week"
	RangeThisMonth = "this-month"

	ActorAll   = "all"
	ActorAdmin = "admin"
	ActorStaff = "staff"

	CategoryAll      = "all"
	CategoryLogin    = "login"
	CategoryReview   = "review"
	CategoryStatus   = "status"
	CategoryDocument = "document"
	CategorySettings = "settings"
)

// Filters is the read-side filter set for the audit trail.
type Filters struct {
	DateRange string // all | today | yesterday | this-week | this-month
	ActorKind string // all | admin | staff
	Category  string // all | login | review | status | document | settings
	Search    string // free text, OR across actor name / action / subject id
}

// Predicates compiles a filter set into one scope applied to both the count
// and the page query. Keeping this a single pure function is what guarantees
// the two queries can never drift apart. Date bounds are [from, to), resolved
// against midnight in now's location.
func Predicates(f Filters, now time.Time) func(*gorm.DB) *gorm.DB {
	from, to, bounded := dateBounds(f.DateRange, now)

	return func(q *gorm.DB) *gorm.DB {
		if bounded {
			q = q.Where("created_at >= ? AND created_at < ?", from, to)
		}
		switch f.ActorKind {
		case ActorAdmin:
			q = q.Where("is_admin = ?", true)
		case ActorStaff:
			q = q.Where("is_admin = ?", false)
		}
		if f.Category != "" && f.Category != CategoryAll {
			q = q.Where("LOWER(action) LIKE ?", "%"+strings.ToLower(f.Category)+"%")
		}
		if s := strings.TrimSpace(f.Search); s != "" {
			needle := "%" + strings.ToLower(s) + "%"
			q = q.Where(
				"LOWER(actor_name) LIKE ? OR LOWER(action) LIKE ? OR LOWER(subject_id) LIKE ?",
				needle, needle, needle,
			)
		}
		return q
	}
}

// dateBounds resolves a named range to concrete [from, to) bounds. Weeks
// start on Monday; all bounds derive from the caller's notion of midnight.
func dateBounds(dateRange string, now time.Time) (from, to time.Time, bounded bool) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch dateRange {
	case RangeToday:
		return midnight, midnight.AddDate(0, 0, 1), true
	case RangeYesterday:
		return midnight.AddDate(0, 0, -1), midnight, true
	case RangeThisWeek:
		weekday := int(now.Weekday())
		if weekday == 0 { // Sunday
			weekday = 7
		}
		start := midnight.AddDate(0, 0, -(weekday - 1))
		return start, start.AddDate(0, 0, 7), true
	case RangeThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0), true
	default:
		return time.Time{}, time.Time{}, false
	}
}
