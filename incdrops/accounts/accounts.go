package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/incdrops/server/internal/quota"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// creates a new account repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// finds an account by OAuth provider or creates a new one on the free tier
func (r *Repository) FindOrCreateByProvider(
	ctx context.Context,
	provider, providerID, email, name, avatarURL string,
) (*Account, error) {
	return scanAccount(r.db.QueryRow(
		ctx,
		queryFindOrCreateByProvider,
		provider,
		providerID,
		email,
		name,
		avatarURL,
	))
}

// finds an account by its ID
func (r *Repository) FindByID(ctx context.Context, accountID string) (*Account, error) {
	return scanAccount(r.db.QueryRow(ctx, queryFindByID, accountID))
}

func (r *Repository) FindByStripeCustomer(ctx context.Context, customerID string) (*Account, error) {
	return scanAccount(r.db.QueryRow(ctx, queryFindByStripeCustomer, customerID))
}

// updates an account's name and avatar URL
func (r *Repository) UpdateProfile(ctx context.Context, accountID, name, avatarURL string) (*Account, error) {
	return scanAccount(r.db.QueryRow(ctx, queryUpdateProfile, name, avatarURL, accountID))
}

// moves an account to tier. the usage counter is left alone so the new
// ceiling applies to the current month's count
func (r *Repository) UpdateTier(ctx context.Context, accountID, tier string) (*Account, error) {
	tier = strings.ToLower(strings.TrimSpace(tier))
	if !quota.ValidTier(tier) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTier, tier)
	}

	return scanAccount(r.db.QueryRow(ctx, queryUpdateTier, tier, accountID))
}

func (r *Repository) SetStripeCustomer(ctx context.Context, accountID, customerID string) (*Account, error) {
	return scanAccount(r.db.QueryRow(ctx, querySetStripeCustomer, customerID, accountID))
}

// sets the tier and, when known, the Stripe customer in one write
func (r *Repository) ApplyTier(ctx context.Context, accountID, tier, customerID string) error {
	tier = strings.ToLower(strings.TrimSpace(tier))
	if !quota.ValidTier(tier) {
		return fmt.Errorf("%w: %q", ErrInvalidTier, tier)
	}

	_, err := scanAccount(r.db.QueryRow(ctx, queryApplyTier, tier, customerID, accountID))
	return err
}

func (r *Repository) AccountIDForCustomer(ctx context.Context, customerID string) (string, error) {
	account, err := r.FindByStripeCustomer(ctx, customerID)
	if err != nil {
		return "", err
	}

	return account.ID, nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	var account Account

	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.Provider,
		&account.ProviderID,
		&account.Name,
		&account.AvatarURL,
		&account.Tier,
		&account.StripeCustomerID,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &account, nil
}
