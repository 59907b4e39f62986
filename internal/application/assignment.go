package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	bookingDomain "github.com/SwiftWash/service-booking/internal/domain/booking"
	"github.com/SwiftWash/service-booking/internal/events"
)

// AssignWorker binds an active worker to a booking, replacing any previous
// assignment. The booking's status is neither checked nor changed. An
// inactive worker is refused before anything is written.
func (s *BookingService) AssignWorker(ctx context.Context, bookingID, workerID uuid.UUID, actor bookingDomain.Actor) (*BookingDTO, error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.AssignWorker", trace.WithAttributes(
		attribute.String("booking.id", bookingID.String()),
		attribute.String("worker.id", workerID.String()),
	))
	defer span.End()

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	w, err := s.workers.FindByID(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if err := w.EnsureAssignable(); err != nil {
		return nil, err
	}

	previous, err := bk.AssignWorker(workerID, actor)
	if err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	if !bk.Status().ReleasesWorker() {
		if err := s.workers.SetCurrentBooking(ctx, workerID, bk.ID()); err != nil {
			s.logger.Warn("failed to set worker current booking",
				zap.String("worker_id", workerID.String()),
				zap.String("booking_id", bk.ID().String()),
				zap.Error(err),
			)
		}
	}
	if previous != nil && *previous != workerID {
		if err := s.workers.ClearCurrentBooking(ctx, *previous, bk.ID()); err != nil {
			s.logger.Warn("failed to release previous worker",
				zap.String("worker_id", previous.String()),
				zap.String("booking_id", bk.ID().String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("worker assigned",
		zap.String("booking_id", bk.ID().String()),
		zap.String("worker_id", workerID.String()),
		zap.String("actor", actor.String()),
	)

	evt := events.BookingAssignedEvent{
		BookingID:        bk.ID(),
		WorkerID:         workerID,
		PreviousWorkerID: previous,
		Actor:            actor.String(),
		OccurredAt:       time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingAssigned, bk.ID().String(), evt)
	s.broadcast(events.BookingAssigned, evt)

	result := toBookingDTO(bk)
	return &result, nil
}
