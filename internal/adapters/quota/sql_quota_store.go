package quota

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLQuotaStore is the Postgres-backed quota counter, used when multiple
// stateless instances share one database.
type SQLQuotaStore struct {
	DB    *sql.DB
	Limit int
	Loc   *time.Location

	now func() time.Time
}

func NewSQLQuotaStore(db *sql.DB, limit int, loc *time.Location) *SQLQuotaStore {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	if loc == nil {
		loc = time.Local
	}
	return &SQLQuotaStore{DB: db, Limit: limit, Loc: loc, now: time.Now}
}

func (s *SQLQuotaStore) today() string {
	return s.now().In(s.Loc).Format(dayLayout)
}

// Reserve admits one call for today or fails with a quota-exceeded error.
func (s *SQLQuotaStore) Reserve(ctx context.Context, providerKey string) error {
	if s.DB == nil {
		return errors.New("quota store: db is nil")
	}
	if providerKey == "" {
		return errors.New("quota store: provider key must not be empty")
	}

	return admit(ctx, providerKey, s.today(), s.tryIncrement, s.insertFirst)
}

// Remaining returns today's unspent admissions, or the full limit if no row
// exists yet.
func (s *SQLQuotaStore) Remaining(ctx context.Context, providerKey string) (int, error) {
	if s.DB == nil {
		return 0, errors.New("quota store: db is nil")
	}

	q := `
	SELECT call_count
	FROM provider_quota
	WHERE provider_key = $1 AND usage_date = $2;
	`

	var count int
	err := s.DB.QueryRowContext(ctx, q, providerKey, s.today()).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return s.Limit, nil
	}
	if err != nil {
		return 0, fmt.Errorf("quota remaining: query provider_quota: %w", err)
	}

	return remaining(s.Limit, count), nil
}

func (s *SQLQuotaStore) tryIncrement(ctx context.Context, providerKey, usageDate string) (bool, error) {
	q := `
	UPDATE provider_quota
	SET call_count = call_count + 1
	WHERE provider_key = $1 AND usage_date = $2 AND call_count < $3;
	`

	res, err := s.DB.ExecContext(ctx, q, providerKey, usageDate, s.Limit)
	if err != nil {
		return false, fmt.Errorf("quota reserve: conditional increment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("quota reserve: rows affected: %w", err)
	}
	return n == 1, nil
}

// insertFirst creates the day's row with count = 1. A concurrent first
// caller is detected by the conflict target swallowing the insert.
func (s *SQLQuotaStore) insertFirst(ctx context.Context, providerKey, usageDate string) (bool, error) {
	q := `
	INSERT INTO provider_quota (provider_key, usage_date, call_count)
	VALUES ($1, $2, 1)
	ON CONFLICT (provider_key, usage_date) DO NOTHING;
	`

	res, err := s.DB.ExecContext(ctx, q, providerKey, usageDate)
	if err != nil {
		return false, fmt.Errorf("quota reserve: insert first of day: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("quota reserve: rows affected: %w", err)
	}
	return n == 1, nil
}

// Initialize the Postgres quota schema.
func InitSQLSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init quota schema: db is nil")
	}

	q := `
	CREATE TABLE IF NOT EXISTS provider_quota (
		provider_key TEXT NOT NULL,
		usage_date TEXT NOT NULL,
		call_count INTEGER NOT NULL,
		PRIMARY KEY (provider_key, usage_date)
	);
	`

	if _, err := db.Exec(q); err != nil {
		return fmt.Errorf("init quota schema: create provider_quota: %w", err)
	}
	return nil
}
