package ideas

import (
	"codeberg.org/incdrops/server/internal/auth"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, tokens *auth.Tokens, store Store) {
	ideasGroup := router.Group("/ideas")
	ideasGroup.Use(tokens.Middleware())
	{
		ideasGroup.GET("/history", ListHistoryHandler(store))
		ideasGroup.GET("/stats", StatsHandler(store))
		ideasGroup.GET("/saved", ListSavedHandler(store))
		ideasGroup.POST("/saved", ToggleSavedHandler(store))
		ideasGroup.GET("/saved/export", ExportSavedHandler(store))
		ideasGroup.DELETE("/saved/:id", RemoveSavedHandler(store))
	}
}
