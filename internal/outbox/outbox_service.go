package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultBatchSize    = 10
)

// Publisher delivers one outbox event to the message broker.
//
//go:generate mockgen -source=outbox_service.go -destination=../mock/outbox/outbox_service_mock.go -package=mock
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Processor struct {
	repo      Repository
	publisher Publisher
	logger    *zap.Logger
	interval  time.Duration
	batch     int32
}

func NewProcessor(repo Repository, publisher Publisher, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		logger:    logger.Named("outbox"),
		interval:  defaultPollInterval,
		batch:     defaultBatchSize,
	}
}

// Start polls the outbox until ctx is cancelled.
func (p *Processor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("outbox processor started", zap.Duration("interval", p.interval))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.ProcessPending(ctx); err != nil {
				p.logger.Error("outbox batch failed", zap.Error(err))
			}
		}
	}
}

// ProcessPending publishes one batch and returns how many events were delivered.
func (p *Processor) ProcessPending(ctx context.Context) (int, error) {
	events, err := p.repo.ListPending(ctx, p.batch)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	p.logger.Debug("processing outbox batch", zap.Int("count", len(events)))

	sent := 0
	for _, e := range events {
		logger := p.logger.With(
			zap.String("event_id", e.ID.String()),
			zap.String("event_type", e.EventType),
		)

		if err := p.publisher.Publish(ctx, e); err != nil {
			logger.Warn("publish failed", zap.Error(err))
			if err := p.repo.MarkFailed(ctx, e.ID); err != nil {
				logger.Error("mark failed", zap.Error(err))
			}
			continue
		}

		if err := p.repo.MarkSent(ctx, e.ID); err != nil {
			// delivered but will be published again on the next tick
			logger.Error("mark sent failed", zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}
