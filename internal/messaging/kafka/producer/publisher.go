package producer

import (
	"context"

	"go-parts-gateway/internal/outbox"

	"github.com/segmentio/kafka-go"
)

const (
	HeaderEventType     = "event_type"
	HeaderAggregateType = "aggregate_type"
	HeaderEventID       = "event_id"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher writes outbox events to Kafka, keyed by aggregate id so every
// event of one user lands on the same partition.
type Publisher struct {
	writer messageWriter
}

var _ outbox.Publisher = (*Publisher)(nil)

func NewPublisher(writer messageWriter) *Publisher {
	return &Publisher{writer: writer}
}

func (p *Publisher) Publish(ctx context.Context, e outbox.Event) error {
	return p.writer.WriteMessages(ctx, toMessage(e))
}

func toMessage(e outbox.Event) kafka.Message {
	return kafka.Message{
		Key:   []byte(e.AggregateID),
		Value: e.Payload,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(e.EventType)},
			{Key: HeaderAggregateType, Value: []byte(e.AggregateType)},
			{Key: HeaderEventID, Value: []byte(e.ID.String())},
		},
	}
}
