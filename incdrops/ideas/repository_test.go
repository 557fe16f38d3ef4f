package ideas

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"codeberg.org/incdrops/server/incdrops/accounts"
	"codeberg.org/incdrops/server/internal/generator"
	"codeberg.org/incdrops/server/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runs against a real database when TEST_DATABASE_URL is set
func newTestRepository(t *testing.T) (*Repository, string) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, migrations.Up(dsn))

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	account, err := accounts.NewRepository(pool).FindOrCreateByProvider(ctx,
		"test", fmt.Sprintf("ideas-%d", time.Now().UnixNano()), "ideas@example.com", "Ideas", "")
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM accounts WHERE id = $1`, account.ID)
	})

	return NewRepository(pool), account.ID
}

func TestRepository_HistoryIsCapped(t *testing.T) {
	repo, accountID := newTestRepository(t)
	repo.historyCap = 3
	ctx := context.Background()

	for i := range 5 {
		_, err := repo.AddHistory(ctx, accountID, generator.Brief{Industry: fmt.Sprintf("run-%d", i)},
			[]generator.Idea{{ID: fmt.Sprintf("i-%d", i), Title: "t"}}, false)
		require.NoError(t, err)
	}

	history, err := repo.ListHistory(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "run-4", history[0].Brief.Industry)
	assert.Equal(t, "run-2", history[2].Brief.Industry)
}

func TestRepository_ToggleSaved(t *testing.T) {
	repo, accountID := newTestRepository(t)
	ctx := context.Background()
	idea := generator.Idea{ID: "idea-1", Title: "Keep me", Platforms: []string{"X"}}

	saved, err := repo.ToggleSaved(ctx, accountID, idea)
	require.NoError(t, err)
	assert.True(t, saved)

	list, err := repo.ListSaved(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Keep me", list[0].Title)

	saved, err = repo.ToggleSaved(ctx, accountID, idea)
	require.NoError(t, err)
	assert.False(t, saved)

	assert.ErrorIs(t, repo.RemoveSaved(ctx, accountID, "idea-1"), ErrNotFound)
}
