package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/incdrops/server/internal/auth"
	"codeberg.org/incdrops/server/internal/config"
	"codeberg.org/incdrops/server/internal/logger"
	"codeberg.org/incdrops/server/migrations"
)

// @title Incdrops API
// @version 1.0
// @description AI content idea generation with monthly usage quotas per subscription tier
// @description
// @description Features:
// @description - Content ideas from an industry, audience and services brief
// @description - Monthly generation quotas for free, basic, pro and business tiers
// @description - Stripe checkout and subscription webhooks
// @description - Idea history, saved ideas and export
// @description - Live usage updates via WebSockets

// @contact.name API Support
// @contact.url https://codeberg.org/incdrops/server

// @license.name GPL-3.0
// @license.url https://www.gnu.org/licenses/gpl-3.0.html

// @host api.incdrops.com

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authenticated requests. Format: Bearer {token}

const shutdownTimeout = 10 * time.Second

func main() {
	// load configuration from environment
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.FatalErr(err, "failed to load configuration")
	}

	logger.Configure(cfg.Environment, cfg.LogLevel)
	logger.Info("starting incdrops server", "environment", cfg.Environment)

	if err := migrations.Up(cfg.DatabaseURL); err != nil {
		logger.FatalErr(err, "failed to migrate database")
	}

	// initialize OAuth providers
	if err := auth.InitializeProviders(cfg.Auth); err != nil {
		logger.FatalErr(err, "failed to initialize OAuth providers")
	}

	// create server with all dependencies
	srv, err := NewServer(cfg)
	if err != nil {
		logger.FatalErr(err, "failed to create server")
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           srv.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// generation waits on the provider for up to a minute
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.FatalErr(err, "server failed to start")
		}
	}()

	go srv.hub.Run()

	srv.cleanupService.Start()

	// wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// notify websocket clients and close connections first
	srv.hub.Shutdown()
	if !srv.hub.Wait(5 * time.Second) {
		logger.Warn("websocket hub did not stop in time")
	}

	srv.cleanupService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.ErrorErr(err, "server forced to shutdown")
	}

	// closes the quota store, redis and the database pool
	if err := srv.storage.Close(); err != nil {
		logger.WarnErr(err, "failed to close storage")
	}

	logger.Info("server stopped")
}
