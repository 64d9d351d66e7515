package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/corebank/platform/pkg/domain/events"
	"github.com/corebank/platform/pkg/eventbus"
)

// KafkaEventBus publishes events as JSON messages to a Kafka topic.
// Consumers (fraud monitoring, reporting) attach out of process with their own
// group readers, so Subscribe is a no-op here.
type KafkaEventBus struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafka creates a Kafka-backed publisher for the given brokers and topic.
func NewKafka(brokers []string, topic string, logger *slog.Logger) *KafkaEventBus {
	return &KafkaEventBus{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
		logger: logger,
	}
}

// Publish implements eventbus.EventBus. Messages are keyed by transaction
// reference so all events for one movement land in one partition.
func (b *KafkaEventBus) Publish(ctx context.Context, e eventbus.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	key := []byte(e.EventType())
	if tc, ok := e.(events.TransactionCompleted); ok {
		key = []byte(tc.Reference)
	}
	if err := b.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: payload}); err != nil {
		b.logger.Error("kafka publish failed", "event", e.EventType(), "error", err)
		return err
	}
	return nil
}

// Subscribe implements eventbus.EventBus. Kafka consumers run out of process.
func (b *KafkaEventBus) Subscribe(string, eventbus.HandlerFunc) {}

// Close flushes and closes the underlying writer.
func (b *KafkaEventBus) Close() error {
	return b.writer.Close()
}
