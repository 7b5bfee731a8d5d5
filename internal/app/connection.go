package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	maxConnectRetries = 5
	retryDelay        = 5 * time.Second
)

func connectDBWithRetry(dsn string, maxRetries int, logger *zap.Logger) (*sql.DB, error) {
	var err error
	for i := 1; i <= maxRetries; i++ {
		var db *sql.DB
		db, err = sql.Open("postgres", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				logger.Info("connected to database")
				return db, nil
			}
			db.Close()
		}

		logger.Warn("database connect failed",
			zap.Int("attempt", i),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)
		if i < maxRetries {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("connect database: %w", err)
}

func connectRedisWithRetry(addr string, maxRetries int, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	var err error
	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err = rdb.Ping(ctx).Err()
		cancel()
		if err == nil {
			logger.Info("connected to redis", zap.String("addr", addr))
			return rdb, nil
		}

		logger.Warn("redis connect failed",
			zap.Int("attempt", i),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)
		if i < maxRetries {
			time.Sleep(retryDelay)
		}
	}
	rdb.Close()
	return nil, fmt.Errorf("connect redis: %w", err)
}

// waitForKafka only dials the broker; writers and readers open their own
// connections lazily.
func waitForKafka(broker string, maxRetries int, logger *zap.Logger) error {
	var err error
	for i := 1; i <= maxRetries; i++ {
		var conn *kafka.Conn
		conn, err = kafka.Dial("tcp", broker)
		if err == nil {
			conn.Close()
			logger.Info("connected to kafka", zap.String("broker", broker))
			return nil
		}

		logger.Warn("kafka connect failed",
			zap.Int("attempt", i),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)
		if i < maxRetries {
			time.Sleep(retryDelay)
		}
	}
	return fmt.Errorf("connect kafka: %w", err)
}
