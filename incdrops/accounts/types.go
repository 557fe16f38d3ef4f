package accounts

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound    = errors.New("account not found")
	ErrInvalidTier = errors.New("invalid tier")
)

// handles account database operations
type Repository struct {
	db *pgxpool.Pool
}

// a signed-in customer and their subscription tier
type Account struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Provider         string    `json:"provider"`
	ProviderID       string    `json:"-"`
	Name             string    `json:"name"`
	AvatarURL        string    `json:"avatar_url"`
	Tier             string    `json:"tier"`
	StripeCustomerID string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// contains data for updating an account's profile
type UpdateProfileRequest struct {
	Name      string `json:"name" binding:"max=200"`
	AvatarURL string `json:"avatar_url" binding:"omitempty,url,max=2048"`
}
