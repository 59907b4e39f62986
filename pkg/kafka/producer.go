package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer publishes CloudEvents to Kafka topics.
type Producer struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// NewProducer creates a Producer writing to the given brokers.
func NewProducer(brokers []string, logger *zap.Logger) *Producer {
	return &Producer{
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(brokers...),
			Balancer:               &kafkago.Hash{},
			RequiredAcks:           kafkago.RequireOne,
			BatchTimeout:           10 * time.Millisecond,
			WriteTimeout:           10 * time.Second,
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

// PublishEvent writes event to topic, keyed by its subject so events for one
// entity stay on one partition.
func (p *Producer) PublishEvent(ctx context.Context, topic string, event CloudEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal cloud event: %w", err)
	}

	key := event.Subject
	if key == "" {
		key = event.ID
	}

	msg := kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "ce_type", Value: []byte(event.Type)},
			{Key: "ce_source", Value: []byte(event.Source)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to %s: %w", topic, err)
	}

	p.logger.Debug("event published",
		zap.String("topic", topic),
		zap.String("event_type", event.Type),
		zap.String("event_id", event.ID),
	)
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
