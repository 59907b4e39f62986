package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	bookingDomain "github.com/SwiftWash/service-booking/internal/domain/booking"
	workerDomain "github.com/SwiftWash/service-booking/internal/domain/worker"
	"github.com/SwiftWash/service-booking/internal/events"
	"github.com/SwiftWash/service-booking/internal/notification"
	"github.com/SwiftWash/service-booking/pkg/domain"
)

// workerTargets are the statuses a worker may move their own booking into.
var workerTargets = map[bookingDomain.BookingStatus]bool{
	bookingDomain.StatusStartedCleaning: true,
	bookingDomain.StatusDone:            true,
	bookingDomain.StatusDelivered:       true,
}

// TransitionStatus moves a booking to target. The write is conditioned on the
// status the booking was read in, so of two concurrent requests for the same
// move exactly one applies it and runs the side effects. Requesting the
// status the booking already has is a successful no-op.
func (s *BookingService) TransitionStatus(
	ctx context.Context,
	bookingID uuid.UUID,
	target bookingDomain.BookingStatus,
	reason string,
	actor bookingDomain.Actor,
) (*BookingDTO, error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.TransitionStatus", trace.WithAttributes(
		attribute.String("booking.id", bookingID.String()),
		attribute.String("booking.target_status", string(target)),
		attribute.String("actor", actor.String()),
	))
	defer span.End()

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := authorizeTransition(bk, target, actor); err != nil {
		return nil, err
	}

	if bk.Status() == target {
		span.SetAttributes(attribute.Bool("booking.noop", true))
		result := toBookingDTO(bk)
		return &result, nil
	}

	change, err := bk.TransitionTo(target, reason, actor)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, bk, *change); err != nil {
		if !errors.Is(err, domain.ErrStaleState) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "status update failed")
			return nil, err
		}
		// Lost the race. If the winner moved it where we wanted, report success
		// without repeating its side effects.
		current, findErr := s.repo.FindByID(ctx, bookingID)
		if findErr == nil && current.Status() == target {
			span.SetAttributes(attribute.Bool("booking.noop", true))
			result := toBookingDTO(current)
			return &result, nil
		}
		s.logger.Info("status transition lost a concurrent update",
			zap.String("booking_id", bookingID.String()),
			zap.String("from", string(change.From)),
			zap.String("to", string(target)),
		)
		return nil, err
	}
	bk.IncrementVersion()

	s.logger.Info("booking status changed",
		zap.String("booking_id", bk.ID().String()),
		zap.String("from", string(change.From)),
		zap.String("to", string(change.To)),
		zap.String("actor", actor.String()),
	)

	s.afterTransition(ctx, bk, *change)

	result := toBookingDTO(bk)
	return &result, nil
}

// authorizeTransition limits workers to forward moves on bookings assigned to
// them. Admins and supervisors may apply any legal transition; customers only
// reach this through CustomerCancel.
func authorizeTransition(bk *bookingDomain.Booking, target bookingDomain.BookingStatus, actor bookingDomain.Actor) error {
	if actor.Kind != bookingDomain.ActorWorker {
		return nil
	}
	assigned := bk.AssignedWorkerID()
	if assigned == nil || assigned.String() != actor.ID {
		return domain.NewForbiddenError("booking is not assigned to this worker")
	}
	if !workerTargets[target] {
		return domain.NewForbiddenError(fmt.Sprintf("workers cannot set status %s", target))
	}
	return nil
}

// afterTransition runs the side effects of a committed transition. Earnings
// and the worker's current booking are written before returning; the
// notification, event and live-feed broadcast are fire-and-forget.
func (s *BookingService) afterTransition(ctx context.Context, bk *bookingDomain.Booking, change bookingDomain.StatusChange) {
	workerID := bk.AssignedWorkerID()

	if change.To == bookingDomain.StatusDone && workerID != nil {
		s.creditWorker(ctx, bk, *workerID, change.At)
	}
	if change.To.ReleasesWorker() && workerID != nil {
		if err := s.workers.ClearCurrentBooking(ctx, *workerID, bk.ID()); err != nil {
			s.logger.Warn("failed to release worker",
				zap.String("worker_id", workerID.String()),
				zap.String("booking_id", bk.ID().String()),
				zap.Error(err),
			)
		}
	}

	if msg, ok := notification.StatusMessage(bk, change.To); ok {
		to := bk.Phone()
		bookingID := bk.ID().String()
		s.runBackground(ctx, func(ctx context.Context) {
			if res := s.notifier.Send(ctx, to, msg); !res.Success {
				s.logger.Warn("customer notification not delivered",
					zap.String("booking_id", bookingID),
					zap.String("status", string(change.To)),
				)
			}
		})
	}

	evt := events.BookingStatusChangedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		From:          string(change.From),
		To:            string(change.To),
		Reason:        change.Reason,
		Actor:         change.Actor.String(),
		WorkerID:      workerID,
		OccurredAt:    change.At,
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingStatusChanged, bk.ID().String(), evt)
	s.broadcast(events.BookingStatusChanged, evt)
}

// creditWorker adds the worker's share of the booking price to their ledger.
// The status change is already committed, so a failure here is logged for
// reconciliation rather than returned.
func (s *BookingService) creditWorker(ctx context.Context, bk *bookingDomain.Booking, workerID uuid.UUID, at time.Time) {
	amount := workerDomain.EarningsFor(bk.Price())
	date := at.Format(bookingDomain.DateLayout)

	if err := s.workers.CreditEarnings(ctx, workerID, amount, date); err != nil {
		s.logger.Error("failed to credit worker earnings",
			zap.String("worker_id", workerID.String()),
			zap.String("booking_id", bk.ID().String()),
			zap.Int64("amount", amount),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("worker earnings credited",
		zap.String("worker_id", workerID.String()),
		zap.String("booking_id", bk.ID().String()),
		zap.Int64("amount", amount),
	)

	evt := events.WorkerEarningsCreditedEvent{
		WorkerID:   workerID,
		BookingID:  bk.ID(),
		Amount:     amount,
		Currency:   domain.CurrencyKES,
		Date:       date,
		OccurredAt: at,
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.WorkerEarningsCredited, workerID.String(), evt)
	s.broadcast(events.WorkerEarningsCredited, evt)
}
