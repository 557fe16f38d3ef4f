package users

import (
	"codeberg.org/incdrops/server/internal/auth"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(rg *gin.RouterGroup, tokens *auth.Tokens, reader UsageReader) {
	users := rg.Group("/users")
	users.Use(tokens.Middleware()) // all user routes require authentication

	users.GET("/usage", GetUsage(reader))
}
