package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/incdrops/server/internal/config"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

var (
	ErrUnknownPrice   = errors.New("unknown price or tier")
	ErrNotConfigured  = errors.New("billing is not configured")
	ErrMissingAccount = errors.New("account id is required")
)

// metadata keys written on sessions and subscriptions. legacyAccountKey is
// still read from subscriptions created before accounts had their own ids
const (
	metadataAccountKey = "account_id"
	legacyAccountKey   = "firebaseUID"
	metadataTierKey    = "tier"
)

type CheckoutRequest struct {
	AccountID string
	Email     string
	// either a tier or a price id; the tier wins when both are set
	Tier    string
	PriceID string
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// creates hosted checkout sessions for tier upgrades
type Service struct {
	prices    Prices
	siteURL   string
	secretKey string

	createCheckoutSession func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// the service carries its own stripe client, the package level stripe.Key is never set
func NewService(cfg config.StripeConfig) *Service {
	s := &Service{
		prices:    NewPrices(cfg.Prices),
		siteURL:   strings.TrimRight(cfg.SiteURL, "/"),
		secretKey: strings.TrimSpace(cfg.SecretKey),
	}

	if s.secretKey != "" {
		s.createCheckoutSession = client.New(s.secretKey, nil).CheckoutSessions.New
	}

	return s
}

func (s *Service) Prices() Prices {
	return s.prices
}

func (s *Service) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if s.secretKey == "" || s.createCheckoutSession == nil {
		return nil, ErrNotConfigured
	}

	if strings.TrimSpace(req.AccountID) == "" {
		return nil, ErrMissingAccount
	}

	priceID, tier, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{
		metadataAccountKey: req.AccountID,
		legacyAccountKey:   req.AccountID,
		metadataTierKey:    tier,
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(s.siteURL + "/#account?payment_success=true"),
		CancelURL:         stripe.String(s.siteURL + "/#pricing"),
		ClientReferenceID: stripe.String(req.AccountID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
		Metadata: metadata,
	}

	if email := strings.TrimSpace(req.Email); email != "" {
		params.CustomerEmail = stripe.String(email)
	}

	session, err := s.createCheckoutSession(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	if session == nil || strings.TrimSpace(session.URL) == "" {
		return nil, fmt.Errorf("stripe returned empty checkout URL")
	}

	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (s *Service) resolve(req CheckoutRequest) (priceID, tier string, err error) {
	if req.Tier != "" {
		priceID, ok := s.prices.PriceForTier(req.Tier)
		if !ok {
			return "", "", fmt.Errorf("%w: %s", ErrUnknownPrice, req.Tier)
		}

		return priceID, strings.ToLower(req.Tier), nil
	}

	tier, ok := s.prices.TierForPrice(req.PriceID)
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownPrice, req.PriceID)
	}

	return req.PriceID, tier, nil
}
