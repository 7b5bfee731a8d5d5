package app

import (
	"go-parts-gateway/internal/middleware"
	"go-parts-gateway/internal/pkg/upstream"
	"go-parts-gateway/internal/querycache"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp connects the infrastructure, applies migrations and registers every
// module on router. The returned cleanup closes the connections.
func BuildApp(router *gin.Engine, cfg Config, logger *zap.Logger) (func(), error) {
	// 1. Setup Infrastructure
	db, err := connectDBWithRetry(cfg.DBURL, maxConnectRetries, logger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, cfg.MigrationsPath, logger); err != nil {
		db.Close()
		return nil, err
	}

	redisClient, err := connectRedisWithRetry(cfg.RedisAddr, maxConnectRetries, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	cleanup := func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close failed", zap.Error(err))
		}
		if err := db.Close(); err != nil {
			logger.Warn("database close failed", zap.Error(err))
		}
	}

	// 2. Setup upstream client and query cache
	client, err := upstream.NewClient(upstream.Config{
		BaseURL: cfg.UpstreamBaseURL,
		Timeout: cfg.UpstreamTimeout,
		Logger:  logger,
	})
	if err != nil {
		cleanup()
		return nil, err
	}

	cache := querycache.NewClient(querycache.NewRedisStore(redisClient), querycache.Options{
		StaleTime: cfg.CacheStaleTime,
		Logger:    logger,
	})

	// 3. Register Modules & Routes
	router.Use(middleware.RequestID(), middleware.RequestLogger(logger))
	registerModules(router, infra{db: db, upstream: client, cache: cache}, logger)

	return cleanup, nil
}
