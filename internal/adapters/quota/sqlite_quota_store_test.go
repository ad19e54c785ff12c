package quota

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"travel-time-service/internal/domain"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "quota.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// A single connection serializes statements; atomicity still comes from
	// the conditional SQL, not from this setting.
	db.SetMaxOpenConns(1)

	if err := InitSqliteSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	return db
}

func fixedClock(day time.Time) func() time.Time {
	return func() time.Time { return day }
}

func TestReserveCountsMatchSuccessfulAdmissions(t *testing.T) {
	db := openTestDB(t)
	store := NewSqliteQuotaStore(db, 5, time.UTC)

	ctx := context.Background()

	granted := 0
	for i := 0; i < 20; i++ {
		err := store.Reserve(ctx, "transit")
		if err == nil {
			granted++
			continue
		}
		if !domain.IsQuotaExceeded(err) {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
	}

	if granted != 5 {
		t.Fatalf("granted = %d, want 5", granted)
	}

	var count int
	if err := db.QueryRow(`SELECT call_count FROM provider_quota WHERE provider_key = 'transit'`).Scan(&count); err != nil {
		t.Fatalf("read count: %v", err)
	}
	if count != 5 {
		t.Fatalf("persisted count = %d, want 5", count)
	}

	rem, err := store.Remaining(ctx, "transit")
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if rem != 0 {
		t.Fatalf("remaining = %d, want 0", rem)
	}
}

func TestReserveConcurrentNeverExceedsLimit(t *testing.T) {
	db := openTestDB(t)
	store := NewSqliteQuotaStore(db, 30, time.UTC)

	ctx := context.Background()

	const callers = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
		denied  int
	)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Reserve(ctx, "transit")

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				granted++
			case domain.IsQuotaExceeded(err):
				denied++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if granted != 30 {
		t.Fatalf("granted = %d, want 30", granted)
	}
	if denied != callers-30 {
		t.Fatalf("denied = %d, want %d", denied, callers-30)
	}

	var count int
	if err := db.QueryRow(`SELECT call_count FROM provider_quota WHERE provider_key = 'transit'`).Scan(&count); err != nil {
		t.Fatalf("read count: %v", err)
	}
	if count != 30 {
		t.Fatalf("persisted count = %d, want 30", count)
	}
}

func TestReserveFirstOfDayCreatesSingleRow(t *testing.T) {
	db := openTestDB(t)
	store := NewSqliteQuotaStore(db, 100, time.UTC)

	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.Reserve(ctx, "driving")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: %v", i, err)
		}
	}

	var rows, count int
	if err := db.QueryRow(`SELECT COUNT(*), MAX(call_count) FROM provider_quota WHERE provider_key = 'driving'`).Scan(&rows, &count); err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if rows != 1 {
		t.Fatalf("rows = %d, want 1", rows)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestReserveDayIsolation(t *testing.T) {
	db := openTestDB(t)
	store := NewSqliteQuotaStore(db, 2, time.UTC)

	ctx := context.Background()

	dayOne := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = fixedClock(dayOne)

	for i := 0; i < 2; i++ {
		if err := store.Reserve(ctx, "transit"); err != nil {
			t.Fatalf("day one call %d: %v", i, err)
		}
	}
	if err := store.Reserve(ctx, "transit"); !domain.IsQuotaExceeded(err) {
		t.Fatalf("day one exhausted: got %v, want quota exceeded", err)
	}

	// Rollover: a new day produces a new record, the old one is untouched.
	store.now = fixedClock(dayOne.AddDate(0, 0, 1))

	if err := store.Reserve(ctx, "transit"); err != nil {
		t.Fatalf("day two first call: %v", err)
	}

	rem, err := store.Remaining(ctx, "transit")
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if rem != 1 {
		t.Fatalf("day two remaining = %d, want 1", rem)
	}

	var dayOneCount int
	if err := db.QueryRow(
		`SELECT call_count FROM provider_quota WHERE provider_key = 'transit' AND usage_date = '2026-03-01'`,
	).Scan(&dayOneCount); err != nil {
		t.Fatalf("read day one count: %v", err)
	}
	if dayOneCount != 2 {
		t.Fatalf("day one count = %d, want 2", dayOneCount)
	}
}

func TestReserveIsolatesProviders(t *testing.T) {
	db := openTestDB(t)
	store := NewSqliteQuotaStore(db, 1, time.UTC)

	ctx := context.Background()

	if err := store.Reserve(ctx, "transit"); err != nil {
		t.Fatalf("transit: %v", err)
	}
	if err := store.Reserve(ctx, "transit"); !domain.IsQuotaExceeded(err) {
		t.Fatalf("transit exhausted: got %v, want quota exceeded", err)
	}

	// The driving counter is untouched by transit admissions.
	if err := store.Reserve(ctx, "driving"); err != nil {
		t.Fatalf("driving: %v", err)
	}
}

func TestRemainingWithoutRecordReturnsFullLimit(t *testing.T) {
	db := openTestDB(t)
	store := NewSqliteQuotaStore(db, 7, time.UTC)

	rem, err := store.Remaining(context.Background(), "transit")
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if rem != 7 {
		t.Fatalf("remaining = %d, want 7", rem)
	}
}
