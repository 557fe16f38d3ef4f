package ideas

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"codeberg.org/incdrops/server/internal/generator"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

// creates a new ideas repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db, historyCap: HistoryCap}
}

// records a generation and trims the account's history to the cap
func (r *Repository) AddHistory(
	ctx context.Context,
	accountID string,
	brief generator.Brief,
	ideas []generator.Idea,
	fallback bool,
) (*HistoryEntry, error) {
	now := time.Now().UTC()

	entry := &HistoryEntry{
		ID:        ulid.Make().String(),
		AccountID: accountID,
		Brief:     brief,
		Ideas:     ideas,
		Fallback:  fallback,
		CreatedAt: now,
	}

	briefJSON, err := json.Marshal(brief)
	if err != nil {
		return nil, fmt.Errorf("failed to encode brief: %w", err)
	}

	ideasJSON, err := json.Marshal(ideas)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ideas: %w", err)
	}

	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, queryInsertHistory,
			entry.ID,
			accountID,
			string(briefJSON),
			string(ideasJSON),
			entry.Fallback,
			entry.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert history: %w", err)
		}

		if _, err := tx.Exec(ctx, queryTrimHistory, accountID, r.historyCap); err != nil {
			return fmt.Errorf("failed to trim history: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// lists the account's history, newest first
func (r *Repository) ListHistory(ctx context.Context, accountID string) ([]HistoryEntry, error) {
	rows, err := r.db.Query(ctx, queryListHistory, accountID, r.historyCap)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	defer rows.Close()

	entries := []HistoryEntry{}

	for rows.Next() {
		var entry HistoryEntry

		if err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.Brief,
			&entry.Ideas,
			&entry.Fallback,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// trims every account's history to the cap, returns the number of removed entries
func (r *Repository) PruneHistory(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, queryPruneHistory, r.historyCap)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}

	return tag.RowsAffected(), nil
}

// saves the idea, or removes it when it was already saved. reports whether
// the idea is saved afterwards
func (r *Repository) ToggleSaved(ctx context.Context, accountID string, idea generator.Idea) (bool, error) {
	ideaJSON, err := json.Marshal(idea)
	if err != nil {
		return false, fmt.Errorf("failed to encode idea: %w", err)
	}

	saved := false

	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, queryDeleteSaved, accountID, idea.ID)
		if err != nil {
			return fmt.Errorf("failed to remove saved idea: %w", err)
		}

		if tag.RowsAffected() > 0 {
			return nil
		}

		if _, err := tx.Exec(ctx, queryInsertSaved, accountID, idea.ID, string(ideaJSON)); err != nil {
			return fmt.Errorf("failed to save idea: %w", err)
		}

		saved = true
		return nil
	})

	return saved, err
}

func (r *Repository) RemoveSaved(ctx context.Context, accountID, ideaID string) error {
	tag, err := r.db.Exec(ctx, queryDeleteSaved, accountID, ideaID)
	if err != nil {
		return fmt.Errorf("failed to remove saved idea: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// lists saved ideas in the order they were saved
func (r *Repository) ListSaved(ctx context.Context, accountID string) ([]generator.Idea, error) {
	rows, err := r.db.Query(ctx, queryListSaved, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved ideas: %w", err)
	}

	saved, err := pgx.CollectRows(rows, pgx.RowTo[generator.Idea])
	if err != nil {
		return nil, fmt.Errorf("failed to scan saved ideas: %w", err)
	}

	if saved == nil {
		saved = []generator.Idea{}
	}

	return saved, nil
}
