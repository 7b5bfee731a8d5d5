package app

import (
	"context"
	"os/signal"
	"syscall"

	"go-parts-gateway/internal/cart"
	"go-parts-gateway/internal/messaging/kafka/consumer"
	"go-parts-gateway/internal/pkg/upstream"
	"go-parts-gateway/internal/querycache"

	"go.uber.org/zap"
)

// RunConsumer marks cached cart views stale in the shared Redis store when the
// upstream reports cart changes made by other clients.
func RunConsumer(cfg Config, logger *zap.Logger) error {
	logger = logger.Named("consumer")
	logger.Info("starting cart consumer")

	// 1. Connect to Redis
	redisClient, err := connectRedisWithRetry(cfg.RedisAddr, maxConnectRetries, logger)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// 2. Setup cart service
	client, err := upstream.NewClient(upstream.Config{
		BaseURL: cfg.UpstreamBaseURL,
		Timeout: cfg.UpstreamTimeout,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	cache := querycache.NewClient(querycache.NewRedisStore(redisClient), querycache.Options{
		StaleTime: cfg.CacheStaleTime,
		Logger:    logger,
	})
	cartService := cart.NewService(cart.Deps{
		Repo:   cart.NewRepository(client),
		Cache:  cache,
		Logger: logger,
	})

	// 3. Setup Kafka reader
	if err := waitForKafka(cfg.KafkaBroker, maxConnectRetries, logger); err != nil {
		return err
	}
	reader := consumer.NewReader(cfg.KafkaBroker)
	defer reader.Close()

	// 4. Consume until signalled
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer.ConsumeMessages(ctx, reader, cartService, logger)

	logger.Info("consumer stopped")
	return nil
}
