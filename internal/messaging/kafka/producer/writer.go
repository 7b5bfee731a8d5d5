package producer

import (
	"time"

	"github.com/segmentio/kafka-go"
)

const TopicOrderEvents = "order.events"

// NewWriter builds the writer used by the outbox worker. Writes are
// synchronous so a failed publish is reported back to the processor.
func NewWriter(broker, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
}
