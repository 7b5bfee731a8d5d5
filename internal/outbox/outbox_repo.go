package outbox

import (
	"context"
	"fmt"

	"go-parts-gateway/internal/shared/database"

	"github.com/google/uuid"
)

//go:generate mockgen -source=outbox_repo.go -destination=../mock/outbox/outbox_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx database.DBTX) Repository
	CreateOutboxEvent(ctx context.Context, e Event) error
	ListPending(ctx context.Context, limit int32) ([]Event, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
}

type outboxRepository struct {
	db database.DBTX
}

func NewRepository(db database.DBTX) Repository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) WithTx(tx database.DBTX) Repository {
	return &outboxRepository{db: tx}
}

const createOutboxEvent = `INSERT INTO outbox_events (id, aggregate_type, aggregate_id, event_type, payload, status, created_at)
VALUES ($1, $2, $3, $4, $5, 'PENDING', NOW())`

func (r *outboxRepository) CreateOutboxEvent(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx, createOutboxEvent,
		e.ID,
		e.AggregateType,
		e.AggregateID,
		e.EventType,
		e.Payload,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

// Failed rows are retried with the pending ones, oldest first.
const listPendingOutbox = `SELECT id, aggregate_type, aggregate_id, event_type, payload, status, created_at
FROM outbox_events
WHERE status IN ('PENDING', 'FAILED')
ORDER BY created_at
LIMIT $1`

func (r *outboxRepository) ListPending(ctx context.Context, limit int32) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, listPendingOutbox, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending outbox: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID,
			&e.AggregateType,
			&e.AggregateID,
			&e.EventType,
			&e.Payload,
			&e.Status,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

const markOutboxStatus = `UPDATE outbox_events SET status = $2, processed_at = NOW() WHERE id = $1`

func (r *outboxRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, markOutboxStatus, id, StatusSent)
	return err
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, markOutboxStatus, id, StatusFailed)
	return err
}
