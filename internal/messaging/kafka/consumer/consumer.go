package consumer

import (
	"context"
	"errors"
	"time"

	"go-parts-gateway/internal/cart"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	TopicCartEvents = "cart.events"
	GroupID         = "parts-gateway-cache"

	maxHandleAttempts = 3
)

// Reader is the subset of *kafka.Reader the consumer loop needs.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

func NewReader(broker string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{broker},
		Topic:    TopicCartEvents,
		GroupID:  GroupID,
		MaxBytes: 1e6,
	})
}

// ConsumeMessages invalidates cached cart views whenever another client
// changes the cart upstream. It returns when ctx is cancelled.
func ConsumeMessages(ctx context.Context, reader Reader, cartService cart.Service, logger *zap.Logger) {
	consumeMessages(ctx, reader, cartService, logger, 200*time.Millisecond)
}

func consumeMessages(ctx context.Context, reader Reader, cartService cart.Service, logger *zap.Logger, backoff time.Duration) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("consumer")
	logger.Info("started consuming messages", zap.String("topic", TopicCartEvents))

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			logger.Warn("fetch message failed", zap.Error(err))
			continue
		}

		eventType := eventTypeOf(msg)
		msgLogger := logger.With(zap.String("event_type", eventType), zap.Int64("offset", msg.Offset))

		switch eventType {
		case EventCartChanged, EventCartCleared:
			err := withRetry(ctx, backoff, func() error {
				return handleCartEvent(ctx, msg.Value, cartService, msgLogger)
			})
			if err != nil {
				// stale entries still expire after the cache stale time
				msgLogger.Error("handle cart event failed", zap.Error(err))
			}
		default:
			msgLogger.Debug("skipping unknown event")
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return
			}
			msgLogger.Warn("commit failed", zap.Error(err))
		}
	}
}

// withRetry gives up early on malformed events; only invalidation failures
// are retried.
func withRetry(ctx context.Context, backoff time.Duration, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxHandleAttempts; attempt++ {
		err = fn()
		if err == nil || errors.Is(err, errMalformedEvent) {
			return err
		}
		if attempt == maxHandleAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff * time.Duration(attempt)):
		}
	}
	return err
}

const headerEventType = "event_type"

// eventTypeOf reads the event_type header; the first occurrence wins.
func eventTypeOf(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == headerEventType {
			return string(h.Value)
		}
	}
	return ""
}
