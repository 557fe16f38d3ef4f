package main

import (
	"codeberg.org/incdrops/server/incdrops/accounts"
	"codeberg.org/incdrops/server/incdrops/ideas"
	"codeberg.org/incdrops/server/incdrops/usage"
	"codeberg.org/incdrops/server/internal/auth"
	"codeberg.org/incdrops/server/internal/billing"
	"codeberg.org/incdrops/server/internal/config"
	"codeberg.org/incdrops/server/internal/generator"
	"codeberg.org/incdrops/server/internal/metrics"
	"codeberg.org/incdrops/server/internal/quota"
	"codeberg.org/incdrops/server/internal/ratelimit"
	"codeberg.org/incdrops/server/internal/storage"
	ws "codeberg.org/incdrops/server/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// holds all dependencies and state for the API server
type Server struct {
	config         *config.Config
	storage        *storage.Client
	metrics        *metrics.Metrics
	tokens         *auth.Tokens
	accountRepo    *accounts.Repository
	ideaRepo       *ideas.Repository
	tracker        *quota.Tracker
	usage          *usage.Service
	services       *Services
	hub            *ws.Hub
	upgrader       *websocket.Upgrader
	cleanupService *ideas.CleanupService
	router         *gin.Engine
}

// holds all external service clients (generation provider, stripe, rate limiter)
type Services struct {
	Generator *generator.Generator
	Checkout  *billing.Service
	Webhook   *billing.Webhook
	RateLimit *ratelimit.Limiter
}
