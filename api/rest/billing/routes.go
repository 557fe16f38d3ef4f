package billing

import (
	"codeberg.org/incdrops/server/internal/auth"
	"github.com/gin-gonic/gin"
)

// the webhook is authenticated by its signature, checkout by the API token
func RegisterRoutes(router *gin.RouterGroup, tokens *auth.Tokens, checkout CheckoutCreator, processor WebhookProcessor, observer WebhookObserver) {
	billingGroup := router.Group("/billing")
	{
		billingGroup.POST("/checkout", tokens.Middleware(), CheckoutHandler(checkout))
		billingGroup.POST("/webhook", WebhookHandler(processor, observer))
	}
}
