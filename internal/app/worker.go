package app

import (
	"context"
	"os/signal"
	"syscall"

	"go-parts-gateway/internal/messaging/kafka/producer"
	"go-parts-gateway/internal/outbox"

	"go.uber.org/zap"
)

// RunWorker publishes outbox rows to Kafka until the process is signalled.
func RunWorker(cfg Config, logger *zap.Logger) error {
	logger = logger.Named("worker")
	logger.Info("starting outbox processor")

	// 1. Connect to database
	db, err := connectDBWithRetry(cfg.DBURL, maxConnectRetries, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := runMigrations(db, cfg.MigrationsPath, logger); err != nil {
		return err
	}

	// 2. Setup Kafka writer
	if err := waitForKafka(cfg.KafkaBroker, maxConnectRetries, logger); err != nil {
		return err
	}
	writer := producer.NewWriter(cfg.KafkaBroker, producer.TopicOrderEvents)
	defer writer.Close()

	// 3. Start processor
	processor := outbox.NewProcessor(outbox.NewRepository(db), producer.NewPublisher(writer), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	processor.Start(ctx)

	logger.Info("worker stopped")
	return nil
}
