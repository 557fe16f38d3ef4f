package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	createUsageTableSQL = `
		CREATE TABLE IF NOT EXISTS usage_records (
			account_id TEXT PRIMARY KEY,
			period TEXT NOT NULL,
			count BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`

	getUsageSQL = `
		SELECT period, count
		FROM usage_records
		WHERE account_id = $1
	`

	setUsageSQL = `
		INSERT INTO usage_records (account_id, period, count)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO UPDATE SET
			period = EXCLUDED.period,
			count = EXCLUDED.count,
			updated_at = NOW()
	`

	// resets a stale period and applies the delta in one statement
	incrementUsageSQL = `
		INSERT INTO usage_records (account_id, period, count)
		VALUES ($1, $2, GREATEST($3::BIGINT, 0))
		ON CONFLICT (account_id) DO UPDATE SET
			count = GREATEST(
				CASE WHEN usage_records.period = EXCLUDED.period THEN usage_records.count ELSE 0 END + $3::BIGINT,
				0
			),
			period = EXCLUDED.period,
			updated_at = NOW()
		RETURNING period, count
	`
)

// implements Store and Incrementer using PostgreSQL
type PostgresStore struct {
	db *pgxpool.Pool
}

// creates a new PostgreSQL usage store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// creates the usage table if it doesn't exist (migrations normally own this)
func (s *PostgresStore) Initialize(ctx context.Context) error {
	_, err := s.db.Exec(ctx, createUsageTableSQL)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, accountID string) (UsageRecord, bool, error) {
	var period string
	var count int64

	err := s.db.QueryRow(ctx, getUsageSQL, accountID).Scan(&period, &count)
	if errors.Is(err, pgx.ErrNoRows) {
		return UsageRecord{}, false, nil
	}

	if err != nil {
		return UsageRecord{}, false, fmt.Errorf("failed to read usage: %w", err)
	}

	rec := UsageRecord{PeriodKey: PeriodKey(period), Count: count}
	if !rec.Valid() {
		return UsageRecord{}, false, ErrMalformedRecord
	}

	return rec, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, accountID string, rec UsageRecord) error {
	if _, err := s.db.Exec(ctx, setUsageSQL, accountID, string(rec.PeriodKey), rec.Count); err != nil {
		return fmt.Errorf("failed to write usage: %w", err)
	}

	return nil
}

func (s *PostgresStore) Increment(ctx context.Context, accountID string, period PeriodKey, delta int64) (UsageRecord, error) {
	var rec UsageRecord
	var p string

	err := s.db.QueryRow(ctx, incrementUsageSQL, accountID, string(period), delta).Scan(&p, &rec.Count)
	if err != nil {
		return UsageRecord{}, fmt.Errorf("failed to increment usage: %w", err)
	}

	rec.PeriodKey = PeriodKey(p)
	return rec, nil
}
