package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/SwiftWash/service-booking/pkg/domain"
	"github.com/SwiftWash/service-booking/pkg/kafka"
)

// PaymentRecorder marks a booking as paid.
type PaymentRecorder interface {
	MarkPaid(ctx context.Context, bookingID uuid.UUID, reference string) error
}

// PaymentEventConsumer listens to payment events and records captured payments.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	recorder PaymentRecorder
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	recorder PaymentRecorder,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		recorder: recorder,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("dropping malformed payment event",
			zap.Error(err),
			zap.Int64("offset", msg.Offset),
		)
		return nil
	}

	switch cloudEvent.Type {
	case PaymentCaptured:
		return c.handlePaymentCaptured(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentCaptured(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt PaymentCapturedEvent
	if err := cloudEvent.ParseData(&evt); err != nil || evt.BookingID == uuid.Nil {
		c.logger.Error("dropping payment.captured without a booking",
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		return nil
	}

	c.logger.Info("processing payment captured event",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("payment_id", evt.PaymentID.String()),
	)

	if err := c.recorder.MarkPaid(ctx, evt.BookingID, evt.Reference); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.logger.Warn("payment captured for unknown booking",
				zap.String("booking_id", evt.BookingID.String()),
			)
			return nil
		}
		c.logger.Error("failed to mark booking paid",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
