package quota

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS usage_records (
		account_id TEXT PRIMARY KEY,
		period     TEXT NOT NULL,
		count      INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL
	);
`

// implements Store and Incrementer on an embedded SQLite file, for single-node deployments
type SQLiteStore struct {
	db *sql.DB
}

// opens (and creates) the usage database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create usage db dir: %w", err)
	}

	dsn := path + "?" + url.Values{
		"_pragma": []string{
			"busy_timeout(30000)",
			"journal_mode(WAL)",
			"synchronous(NORMAL)",
		},
	}.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open usage db: %w", err)
	}

	// a single connection serializes writers, which is what makes Increment atomic
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init usage schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, accountID string) (UsageRecord, bool, error) {
	var rec UsageRecord
	var period string

	err := s.db.QueryRowContext(ctx,
		`SELECT period, count FROM usage_records WHERE account_id = ?`, accountID,
	).Scan(&period, &rec.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return UsageRecord{}, false, nil
	}

	if err != nil {
		return UsageRecord{}, false, fmt.Errorf("failed to read usage: %w", err)
	}

	rec.PeriodKey = PeriodKey(period)
	if !rec.Valid() {
		return UsageRecord{}, false, ErrMalformedRecord
	}

	return rec, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, accountID string, rec UsageRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_records (account_id, period, count, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
			period = excluded.period,
			count = excluded.count,
			updated_at = excluded.updated_at`,
		accountID, string(rec.PeriodKey), rec.Count, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write usage: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Increment(ctx context.Context, accountID string, period PeriodKey, delta int64) (UsageRecord, error) {
	var rec UsageRecord
	var p string

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO usage_records (account_id, period, count, updated_at)
		VALUES (?1, ?2, MAX(?3, 0), ?4)
		ON CONFLICT(account_id) DO UPDATE SET
			count = MAX(CASE WHEN usage_records.period = excluded.period THEN usage_records.count ELSE 0 END + ?3, 0),
			period = excluded.period,
			updated_at = excluded.updated_at
		RETURNING period, count`,
		accountID, string(period), delta, time.Now().Unix(),
	).Scan(&p, &rec.Count)
	if err != nil {
		return UsageRecord{}, fmt.Errorf("failed to increment usage: %w", err)
	}

	rec.PeriodKey = PeriodKey(p)
	return rec, nil
}

// closes the underlying database
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}
