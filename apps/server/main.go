package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/vellumcms/vellum/apps/server/internal/content"
	"github.com/vellumcms/vellum/apps/server/internal/platform/telemetry"
	"github.com/vellumcms/vellum/apps/server/internal/platform/validation"
	"github.com/vellumcms/vellum/pkg/backend"
	"github.com/vellumcms/vellum/pkg/cache"
	"github.com/vellumcms/vellum/pkg/config"
	"github.com/vellumcms/vellum/pkg/gitea"
	"github.com/vellumcms/vellum/pkg/logging"
	"github.com/vellumcms/vellum/schemas"
)

func main() {
	log := logging.New()

	// --- Observability ---

	// Default the service name before any OTel init.
	if os.Getenv("OTEL_SERVICE_NAME") == "" {
		os.Setenv("OTEL_SERVICE_NAME", "vellum-server") //nolint:errcheck
	}

	otelEnabled := os.Getenv("OTEL_ENABLED") == "true"
	ctx := context.Background()
	tel, err := telemetry.New(ctx, otelEnabled)
	if err != nil {
		log.Error("telemetry init failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Error("telemetry shutdown failed", "error", err)
		}
	}()

	// --- Configuration ---

	cfg, err := config.Load("")
	if err != nil {
		log.Error("configuration load failed", "error", err)
		os.Exit(1)
	}

	// --- Git host client ---

	client, err := gitea.New(gitea.Options{
		APIRoot:  cfg.APIRoot,
		Repo:     cfg.Repo,
		Branch:   cfg.Branch,
		Token:    cfg.Token,
		PageSize: cfg.PageSize,
		Logger:   log,
	})
	if err != nil {
		log.Error("gitea client init failed", "error", err)
		os.Exit(1)
	}

	// --- Content cache ---

	store, err := newStore(cfg.Cache)
	if err != nil {
		log.Error("cache init failed", "driver", cfg.Cache.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close() //nolint:errcheck

	// --- Backend + HTTP ---

	b := backend.New(client, store, backend.Options{PageSize: cfg.PageSize}, log)

	router := gin.New()

	validator, err := validation.New(schemas.OpenAPISpec)
	if err != nil {
		log.Error("openapi validation middleware init failed", "error", err)
		os.Exit(1)
	}

	router.Use(gin.Recovery(), otelgin.Middleware("vellum-server"), validator)
	content.RegisterRoutes(router, b, log)

	log.Info("starting vellum", "addr", cfg.ListenAddr, "repo", cfg.Repo, "branch", client.Branch(), "cache", cfg.Cache.Driver)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1) //nolint:gocritic // store.Close is best-effort on crash
	}
}

// newStore builds the content cache named by the configuration.
func newStore(cfg config.CacheConfig) (cache.Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return cache.NewMemory(0), nil
	case "badger":
		return cache.NewBadger(cfg.Path)
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr})
		return cache.NewRedis(rdb, cfg.TTL.Std()), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}
