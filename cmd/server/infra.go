package main

import (
	"context"

	"github.com/gin-gonic/gin"
	identityapp "github.com/ledgerly/backend/internal/application/identity"
	"github.com/ledgerly/backend/internal/infrastructure/auth"
	"github.com/ledgerly/backend/internal/infrastructure/config"
	"github.com/ledgerly/backend/internal/infrastructure/printing"
	"github.com/ledgerly/backend/internal/infrastructure/storage"
	"github.com/ledgerly/backend/internal/interfaces/http/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// newTokenBlacklist connects to Redis when configured and falls back to an
// in-process blacklist otherwise. The returned client is nil without Redis.
func newTokenBlacklist(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (*redis.Client, auth.TokenBlacklist, error) {
	if !cfg.Enabled() {
		log.Warn("Redis not configured, token revocations are kept in memory")
		return nil, auth.NewInMemoryTokenBlacklist(), nil
	}
	client, err := auth.NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Redis connected", zap.String("addr", cfg.Addr()))
	return client, auth.NewRedisTokenBlacklist(client), nil
}

// newObjectStorage returns the logo store. Without a bucket the in-memory
// store is returned twice so the caller can mount its /files route.
func newObjectStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (identityapp.ObjectStorage, *storage.MemoryObjectStorage, error) {
	if !cfg.Storage.Enabled() {
		log.Warn("Storage bucket not configured, logos are kept in memory")
		mem := storage.NewMemoryObjectStorage("http://localhost:" + cfg.App.Port)
		return mem, mem, nil
	}
	s3Storage, err := storage.NewS3ObjectStorage(ctx, cfg.Storage, log)
	if err != nil {
		return nil, nil, err
	}
	if err := s3Storage.EnsureBucket(ctx); err != nil {
		return nil, nil, err
	}
	log.Info("Object storage ready", zap.String("bucket", cfg.Storage.Bucket))
	return s3Storage, nil, nil
}

// newInvoicePrinter builds the invoice printer. PDF output needs headless
// Chrome and is only wired when printing is enabled.
func newInvoicePrinter(cfg config.PrintingConfig, log *zap.Logger) (*printing.InvoicePrinter, func(), error) {
	tmpl, err := printing.NewInvoiceTemplate(cfg.Locale)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Enabled {
		log.Info("PDF rendering disabled")
		return printing.NewInvoicePrinter(tmpl, nil), func() {}, nil
	}

	renderer := printing.NewChromedpRenderer(cfg, log)
	closeRenderer := func() {
		if err := renderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}
	log.Info("PDF rendering enabled", zap.Int("max_parallel", cfg.MaxParallel))
	return printing.NewInvoicePrinter(tmpl, renderer), closeRenderer, nil
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// authRateLimit throttles the unauthenticated auth endpoints per client IP
func authRateLimit(limiter *middleware.RateLimiter) gin.HandlerFunc {
	limit := middleware.RateLimitByKey(limiter, func(c *gin.Context) string {
		return "auth:" + c.ClientIP()
	})
	return func(c *gin.Context) {
		switch c.FullPath() {
		case "/api/v1/auth/login", "/api/v1/auth/register", "/api/v1/auth/refresh":
			limit(c)
		default:
			c.Next()
		}
	}
}
