package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"passportdesk/internal/database"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	// shared-cache in-memory DB so the pooled connections of the
	// concurrent count+page queries see the same data
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Log{}))
	return db
}

func seedLogs(t *testing.T, db *gorm.DB, logs []Log) {
	t.Helper()
	for i := range logs {
		if logs[i].ID == "" {
			logs[i].ID = fmt.Sprintf("rec-%d", i)
		}
		require.NoError(t, db.Create(&logs[i]).Error)
	}
}

func midnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

/* ==================== DATE BOUNDS ==================== */

func TestDateBounds(t *testing.T) {
	// a Wednesday afternoon
	now := time.Date(2026, 8, 26, 15, 30, 0, 0, time.Local)

	from, to, bounded := dateBounds(RangeToday, now)
	require.True(t, bounded)
	assert.Equal(t, midnight(now), from)
	assert.Equal(t, midnight(now).AddDate(0, 0, 1), to)

	from, to, bounded = dateBounds(RangeYesterday, now)
	require.True(t, bounded)
	assert.Equal(t, midnight(now).AddDate(0, 0, -1), from)
	assert.Equal(t, midnight(now), to)

	from, to, bounded = dateBounds(RangeThisWeek, now)
	require.True(t, bounded)
	assert.Equal(t, time.Monday, from.Weekday())
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.Local), from)
	assert.Equal(t, from.AddDate(0, 0, 7), to)

	from, to, bounded = dateBounds(RangeThisMonth, now)
	require.True(t, bounded)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local), from)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local), to)

	_, _, bounded = dateBounds(RangeAll, now)
	assert.False(t, bounded)
	_, _, bounded = dateBounds("", now)
	assert.False(t, bounded)
}

func TestDateBoundsSundayBelongsToCurrentWeek(t *testing.T) {
	sunday := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	from, to, bounded := dateBounds(RangeThisWeek, sunday)
	require.True(t, bounded)
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.Local), from)
	assert.True(t, sunday.After(from) && sunday.Before(to))
}

/* ==================== QUERY ENGINE ==================== */

func fixtureLogs(now time.Time) []Log {
	return []Log{
		{ActorID: 1, ActorName: "Amina Bekova", Action: "Admin Login", IsAdmin: true,
			CreatedAt: now.Add(-10 * time.Minute)},
		{ActorID: 2, ActorName: "Marat Ospanov", Action: "Staff Login", IsAdmin: false,
			CreatedAt: now.Add(-20 * time.Minute)},
		{ActorID: 1, ActorName: "Amina Bekova", Action: "Reviewed Application", SubjectID: "1042",
			IsAdmin: true, CreatedAt: now.Add(-1 * time.Hour)},
		{ActorID: 1, ActorName: "Amina Bekova", Action: "Changed Application Status", SubjectID: "1038",
			IsAdmin: true, CreatedAt: now.Add(-26 * time.Hour)},
		{ActorID: 2, ActorName: "Marat Ospanov", Action: "Uploaded Document", SubjectID: "1042",
			IsAdmin: false, CreatedAt: now.Add(-30 * time.Hour)},
		{ActorID: 3, ActorName: "Saule Akhmetova", Action: "Updated Notification Settings", IsAdmin: false,
			CreatedAt: now.Add(-10 * 24 * time.Hour)},
	}
}

func TestQueryCountMatchesEnumerationForAllFilterCombos(t *testing.T) {
	db := testDB(t)
	seedLogs(t, db, fixtureLogs(time.Now()))
	repo := NewRepository(db)
	ctx := context.Background()

	ranges := []string{RangeAll, RangeToday, RangeYesterday, RangeThisWeek, RangeThisMonth}
	actors := []string{ActorAll, ActorAdmin, ActorStaff}
	categories := []string{CategoryAll, CategoryLogin, CategoryReview, CategoryStatus, CategoryDocument, CategorySettings}

	for _, dr := range ranges {
		for _, ak := range actors {
			for _, cat := range categories {
				f := Filters{DateRange: dr, ActorKind: ak, Category: cat}
				// enumerate without pagination via an oversized page
				all, total, err := repo.Query(ctx, f, 1, 1000)
				require.NoError(t, err, "filters %+v", f)
				assert.Equal(t, int64(len(all)), total, "filters %+v", f)
			}
		}
	}
}

func TestQueryFiltersCombineConjunctively(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	seedLogs(t, db, fixtureLogs(now))
	repo := NewRepository(db)

	logs, total, err := repo.Query(context.Background(),
		Filters{DateRange: RangeToday, ActorKind: ActorAdmin, Category: CategoryLogin}, 1, 50)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, "Admin Login", logs[0].Action)
	assert.True(t, logs[0].IsAdmin)
	assert.True(t, logs[0].CreatedAt.After(midnight(now)))
}

func TestQueryCategoryIsCaseInsensitiveSubstring(t *testing.T) {
	db := testDB(t)
	seedLogs(t, db, fixtureLogs(time.Now()))
	repo := NewRepository(db)

	logs, total, err := repo.Query(context.Background(), Filters{Category: CategoryLogin}, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, l := range logs {
		assert.Contains(t, []string{"Admin Login", "Staff Login"}, l.Action)
	}
}

func TestQueryFreeTextSearchesNameActionAndSubject(t *testing.T) {
	db := testDB(t)
	seedLogs(t, db, fixtureLogs(time.Now()))
	repo := NewRepository(db)
	ctx := context.Background()

	// matches actor name
	_, total, err := repo.Query(ctx, Filters{Search: "bekova"}, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	// matches action label
	_, total, err = repo.Query(ctx, Filters{Search: "uploaded"}, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// matches subject id, OR across the three fields
	_, total, err = repo.Query(ctx, Filters{Search: "1042"}, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// AND against the other filters
	_, total, err = repo.Query(ctx, Filters{Search: "1042", ActorKind: ActorStaff}, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestQueryPaginationRoundTrip(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	var logs []Log
	for i := 0; i < 23; i++ {
		logs = append(logs, Log{
			ActorID: 1, ActorName: "Amina Bekova", Action: "Reviewed Application",
			SubjectID: fmt.Sprintf("%d", 1000+i), IsAdmin: true,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	seedLogs(t, db, logs)
	repo := NewRepository(db)
	ctx := context.Background()

	const pageSize = 5
	seen := make(map[string]bool)
	var prev time.Time
	first := true

	for page := 1; ; page++ {
		chunk, total, err := repo.Query(ctx, Filters{}, page, pageSize)
		require.NoError(t, err)
		assert.Equal(t, int64(23), total)
		if len(chunk) == 0 {
			break
		}
		for _, rec := range chunk {
			assert.False(t, seen[rec.ID], "duplicate record %s on page %d", rec.ID, page)
			seen[rec.ID] = true
			if !first {
				assert.False(t, rec.CreatedAt.After(prev), "ordering must be time-descending")
			}
			prev = rec.CreatedAt
			first = false
		}
	}
	assert.Len(t, seen, 23, "concatenated pages must reproduce the full set")
}

func TestQueryEmptyEnvironmentServesSampleDataNonAuthoritative(t *testing.T) {
	db := testDB(t)
	svc := NewService(NewRepository(db))

	res, err := svc.Query(context.Background(), Filters{}, 1, 20)
	require.NoError(t, err)
	assert.False(t, res.Authoritative)
	require.NotEmpty(t, res.Records)
	for _, rec := range res.Records {
		assert.Contains(t, rec.ID, "sample-")
	}
}

func TestQueryFiltersThatMatchNothingStayAuthoritative(t *testing.T) {
	db := testDB(t)
	seedLogs(t, db, fixtureLogs(time.Now()))
	svc := NewService(NewRepository(db))

	res, err := svc.Query(context.Background(), Filters{Search: "no-such-actor-anywhere"}, 1, 20)
	require.NoError(t, err)
	assert.True(t, res.Authoritative, "a real, non-empty store must never serve sample data")
	assert.Empty(t, res.Records)
	assert.Zero(t, res.Total)
}

func TestQueryEnrichedRecordSurvivesRoundTrip(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	w := NewWriter(repo, &stubAppRepo{}, nil)
	ctx := context.Background()

	require.NoError(t, w.Append(ctx, Entry{
		ActorID: 1, ActorName: "Amina Bekova", Action: "Reviewed Application", SubjectID: "42",
	}))

	logs, total, err := repo.Query(ctx, Filters{Category: CategoryReview}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)

	parsed, ok := ParseDetails(logs[0].Details).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Unknown", parsed["applicant_name"], "subject 42 does not exist")
}
