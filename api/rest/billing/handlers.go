package billing

import (
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"codeberg.org/incdrops/server/internal/auth"
	"codeberg.org/incdrops/server/internal/billing"
	"codeberg.org/incdrops/server/internal/errors"
	"codeberg.org/incdrops/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// CheckoutHandler godoc
// @Summary Start a tier upgrade
// @Description Creates a hosted Stripe checkout session for the tier (or price) and returns its URL
// @Tags billing
// @Accept json
// @Produce json
// @Param request body CheckoutRequest true "Tier or price id"
// @Success 200 {object} billing.CheckoutSession
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/billing/checkout [post]
// @Security BearerAuth
func CheckoutHandler(checkout CheckoutCreator) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		if req.Tier == "" && req.PriceID == "" {
			errors.BadRequest(c, "tier or priceId is required", nil)
			return
		}

		session, err := checkout.CreateCheckoutSession(c.Request.Context(), billing.CheckoutRequest{
			AccountID: accountID,
			Email:     auth.GetUserEmail(c),
			Tier:      req.Tier,
			PriceID:   req.PriceID,
		})
		if err != nil {
			switch {
			case stderrors.Is(err, billing.ErrUnknownPrice):
				errors.BadRequest(c, "unknown tier or price", err)
			case stderrors.Is(err, billing.ErrNotConfigured):
				errors.ServiceUnavailable(c, "billing is not configured")
			default:
				errors.BadGateway(c, "failed to create checkout session", err)
			}

			return
		}

		c.JSON(http.StatusOK, session)
	}
}

// WebhookHandler godoc
// @Summary Stripe webhook
// @Description Receives Stripe events. Verified by the Stripe-Signature header, not by a token
// @Tags billing
// @Accept json
// @Produce json
// @Success 200 {object} WebhookResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/billing/webhook [post]
func WebhookHandler(processor WebhookProcessor, observer WebhookObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, billing.WebhookBodyLimit)

		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			observe(observer, "unknown", "invalid", start)
			errors.BadRequest(c, "failed to read request body", err)
			return
		}

		result, err := processor.Handle(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
		eventType := result.EventType
		if eventType == "" {
			eventType = "unknown"
		}

		if err != nil {
			switch {
			case stderrors.Is(err, billing.ErrWebhookNotConfigured):
				observe(observer, eventType, "not_configured", start)
				errors.ServiceUnavailable(c, "webhook is not configured")
			case stderrors.Is(err, billing.ErrMissingSignature), stderrors.Is(err, billing.ErrInvalidSignature):
				observe(observer, eventType, "invalid", start)
				logger.Warn("rejected stripe webhook", "error", err.Error())
				errors.BadRequest(c, "invalid signature", nil)
			default:
				// a 5xx makes stripe retry the delivery
				observe(observer, eventType, "error", start)
				errors.InternalError(c, "failed to process webhook", err)
			}

			return
		}

		status := "ignored"
		if result.Handled {
			status = "handled"
		}

		observe(observer, eventType, status, start)
		c.JSON(http.StatusOK, WebhookResponse{Received: true})
	}
}

func observe(observer WebhookObserver, eventType, status string, start time.Time) {
	if observer == nil {
		return
	}

	observer.ObserveWebhook(eventType, status, time.Since(start))
}
