// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the MiniShop server. It loads
// configuration, connects to services, wires handlers and routing, and
// starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"minishop/internal/cache"
	"minishop/internal/config"
	"minishop/internal/database"
	"minishop/internal/handlers"
	"minishop/internal/imaging"
	"minishop/internal/middleware"
	"minishop/internal/router"
	"minishop/internal/session"
	"minishop/internal/storage"
	"minishop/internal/store"
	"minishop/internal/telegram"
)

// How often expired cart reservations are swept back into stock.
const reservationSweepInterval = time.Minute

func main() {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient, !cfg.IsDev())
	catalogCache := cache.NewCatalogCache(valkeyClient, cache.DefaultCatalogTTL)

	products := store.NewProductStore(db)
	categories := store.NewCategoryStore(db)
	orders := store.NewOrderStore(db)
	reservations := store.NewReservationStore(db)
	settings := store.NewSettingStore(db)
	admins := store.NewAdminStore(db)
	cacheLog := store.NewCacheLogStore(db)

	// Object storage is optional; without it the shop runs with no
	// product photos.
	var storageClient *storage.Client
	if cfg.S3Configured() {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize s3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)

		imaging.Startup(runtime.NumCPU())
		defer imaging.Shutdown()
	} else {
		slog.Warn("s3 storage not configured, photo uploads disabled")
	}

	notifier := telegram.NewNotifier(cfg.BotToken, cfg.OrdersChatID)
	if notifier == nil {
		slog.Warn("order notifications disabled, bot token or orders chat not configured")
	}

	shopHandlers := handlers.NewShop(products, categories, settings, catalogCache, storageClient)
	cartHandlers := handlers.NewCart(reservations, shopHandlers, cfg.ReservationTTL)
	orderHandlers := handlers.NewOrders(orders, products, reservations, settings, catalogCache, cacheLog, notifier)
	authHandlers := handlers.NewAuth(sessionStore, admins)
	adminHandlers := handlers.NewAdmin(products, categories, orders, settings, admins, cacheLog, catalogCache, storageClient)

	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer loginLimiter.Stop()

	r := router.New(router.Deps{
		Config:       cfg,
		Sessions:     sessionStore,
		Shop:         shopHandlers,
		Cart:         cartHandlers,
		Orders:       orderHandlers,
		Auth:         authHandlers,
		Admin:        adminHandlers,
		LoginLimiter: loginLimiter,
	})

	// Background sweep releasing stock held by abandoned carts.
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(reservationSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := reservations.PurgeExpired()
				if err != nil {
					slog.Error("reservation sweep failed", "error", err)
					continue
				}
				if n > 0 {
					catalogCache.Invalidate(context.Background())
					slog.Info("expired reservations released", "count", n)
				}
			case <-sweepDone:
				return
			}
		}
	}()
	defer close(sweepDone)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
