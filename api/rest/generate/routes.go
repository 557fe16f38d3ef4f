package generate

import (
	"codeberg.org/incdrops/server/internal/auth"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, tokens *auth.Tokens, deps Deps) {
	generateGroup := router.Group("/generate")
	generateGroup.Use(tokens.Middleware())

	if deps.RateLimit != nil {
		generateGroup.Use(deps.RateLimit)
	}

	{
		generateGroup.POST("", Handler(deps))
		generateGroup.POST("/candidates", CandidatesHandler(deps))
	}
}
