package kafka

import (
	"context"
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	handlerAttempts = 3
	handlerBackoff  = 500 * time.Millisecond
)

// MessageHandler processes one Kafka message. Returning an error makes the
// consumer retry the message a bounded number of times.
type MessageHandler func(ctx context.Context, msg kafkago.Message) error

// Consumer reads a topic as part of a consumer group.
type Consumer struct {
	reader *kafkago.Reader
	logger *zap.Logger
}

// NewConsumer creates a Consumer for topic within groupID.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:     brokers,
			GroupID:     groupID,
			Topic:       topic,
			MinBytes:    1,
			MaxBytes:    10e6,
			MaxWait:     time.Second,
			StartOffset: kafkago.FirstOffset,
		}),
		logger: logger.With(zap.String("topic", topic), zap.String("group_id", groupID)),
	}
}

// Consume blocks, dispatching messages to handler until ctx is cancelled.
// A message is committed once handled or once its retries are exhausted.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, context.Canceled) {
				return err
			}
			c.logger.Error("failed to fetch message", zap.Error(err))
			continue
		}

		c.handleWithRetry(ctx, handler, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("failed to commit message",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

func (c *Consumer) handleWithRetry(ctx context.Context, handler MessageHandler, msg kafkago.Message) {
	for attempt := 1; attempt <= handlerAttempts; attempt++ {
		err := handler(ctx, msg)
		if err == nil {
			return
		}
		c.logger.Warn("message handler failed",
			zap.Int("attempt", attempt),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		if attempt == handlerAttempts {
			c.logger.Error("giving up on message", zap.Int64("offset", msg.Offset))
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(handlerBackoff * time.Duration(attempt)):
		}
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
