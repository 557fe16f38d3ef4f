package main

import (
	"codeberg.org/incdrops/server/api/rest/auth"
	"codeberg.org/incdrops/server/api/rest/billing"
	"codeberg.org/incdrops/server/api/rest/generate"
	"codeberg.org/incdrops/server/api/rest/health"
	"codeberg.org/incdrops/server/api/rest/ideas"
	"codeberg.org/incdrops/server/api/rest/users"
	"codeberg.org/incdrops/server/api/websocket"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.Use(RequestLogger())
	router.Use(server.metrics.Middleware())
	router.Use(CORSMiddleware(server.config.AllowedOrigins))

	router.GET("/health", health.Handler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	{
		v1.GET("/ping", health.PingHandler)

		auth.RegisterRoutes(v1, server.tokens, server.accountRepo)
		users.RegisterRoutes(v1, server.tokens, server.usage)
		generate.RegisterRoutes(v1, server.tokens, generate.Deps{
			Quota:     server.usage,
			Generator: server.services.Generator,
			History:   server.ideaRepo,
			RateLimit: server.services.RateLimit.Middleware(),
		})
		billing.RegisterRoutes(v1, server.tokens, server.services.Checkout, server.services.Webhook, server.metrics)
		ideas.RegisterRoutes(v1, server.tokens, server.ideaRepo)
		websocket.RegisterRoutes(v1, server.tokens, server.hub, server.usage, server.upgrader)
	}
}
