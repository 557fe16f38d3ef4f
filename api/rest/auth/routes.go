package auth

import (
	"codeberg.org/incdrops/server/internal/auth"
	"github.com/gin-gonic/gin"
)

// registers all authentication routes
func RegisterRoutes(router *gin.RouterGroup, tokens *auth.Tokens, accountStore AccountStore) {
	authGroup := router.Group("/auth")
	{
		authGroup.GET("/me", tokens.Middleware(), GetCurrentAccountHandler(accountStore))
		authGroup.PUT("/me", tokens.Middleware(), UpdateProfileHandler(accountStore))
		authGroup.POST("/logout", LogoutHandler())
		authGroup.GET("/:provider", BeginAuthHandler())
		authGroup.GET("/:provider/callback", CallbackHandler(accountStore, tokens))
	}
}
