package billing

import (
	"context"
	"time"

	"codeberg.org/incdrops/server/internal/billing"
)

// either tier or priceId is required, tier wins when both are set
type CheckoutRequest struct {
	Tier    string `json:"tier" binding:"omitempty,oneof=basic pro business"`
	PriceID string `json:"priceId" binding:"max=100"`
}

type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, req billing.CheckoutRequest) (*billing.CheckoutSession, error)
}

type WebhookProcessor interface {
	Handle(ctx context.Context, payload []byte, sigHeader string) (billing.WebhookResult, error)
}

// implemented by the metrics package, may be nil
type WebhookObserver interface {
	ObserveWebhook(eventType, status string, d time.Duration)
}

type WebhookResponse struct {
	Received bool `json:"received"`
}
