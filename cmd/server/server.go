package main

import (
	"context"
	"fmt"

	"codeberg.org/incdrops/server/incdrops/accounts"
	"codeberg.org/incdrops/server/incdrops/ideas"
	"codeberg.org/incdrops/server/incdrops/usage"
	"codeberg.org/incdrops/server/internal/auth"
	"codeberg.org/incdrops/server/internal/config"
	"codeberg.org/incdrops/server/internal/logger"
	"codeberg.org/incdrops/server/internal/metrics"
	"codeberg.org/incdrops/server/internal/quota"
	"codeberg.org/incdrops/server/internal/storage"
	ws "codeberg.org/incdrops/server/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	accountRepo := accounts.NewRepository(backend.Pool())
	ideaRepo := ideas.NewRepository(backend.Pool())

	tracker := quota.NewTracker(backend.QuotaStore(),
		quota.WithLimits(cfg.TierLimits),
		quota.WithObserver(m),
	)

	hub := ws.NewHub()
	usageService := usage.NewService(tracker, accountRepo, hub)

	services, err := InitializeServices(cfg, backend.Redis(), accountRepo, hub, m)
	if err != nil {
		backend.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// keeps every account's history at the retention cap
	cleanupService, err := ideas.NewCleanupService(ideaRepo, cfg.HistoryPruneSchedule)
	if err != nil {
		backend.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, err
	}

	upgrader := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     ws.OriginChecker(cfg.AllowedOrigins, cfg.IsProduction()),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	server := &Server{
		config:         cfg,
		storage:        backend,
		metrics:        m,
		tokens:         tokens,
		accountRepo:    accountRepo,
		ideaRepo:       ideaRepo,
		tracker:        tracker,
		usage:          usageService,
		services:       services,
		hub:            hub,
		upgrader:       upgrader,
		cleanupService: cleanupService,
		router:         router,
	}

	RegisterRoutes(router, server)

	logger.Info("server initialized",
		"generator", services.Generator.Provider().Name(),
		"model", services.Generator.Provider().Model(),
		"quota_store", cfg.QuotaStore,
	)

	return server, nil
}
