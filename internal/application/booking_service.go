package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	bookingDomain "github.com/SwiftWash/service-booking/internal/domain/booking"
	workerDomain "github.com/SwiftWash/service-booking/internal/domain/worker"
	"github.com/SwiftWash/service-booking/internal/events"
	"github.com/SwiftWash/service-booking/internal/notification"
	"github.com/SwiftWash/service-booking/pkg/domain"
	"github.com/SwiftWash/service-booking/pkg/kafka"
	"github.com/SwiftWash/service-booking/pkg/phone"
)

const (
	tracerName        = "service-booking/application"
	backgroundTimeout = 10 * time.Second
)

// Notifier delivers a customer SMS. Failures are reported in the Result only.
type Notifier interface {
	Send(ctx context.Context, phone, message string) notification.Result
}

// EventPublisher publishes CloudEvents to a topic.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// Broadcaster pushes a message to live dashboards.
type Broadcaster interface {
	Broadcast(eventType string, payload interface{})
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo        bookingDomain.BookingRepository
	workers     workerDomain.WorkerRepository
	pricing     bookingDomain.PricingStrategy
	notifier    Notifier
	publisher   EventPublisher
	broadcaster Broadcaster
	countryCode string
	logger      *zap.Logger
	tracer      trace.Tracer

	// background tracks fire-and-forget side effects.
	background sync.WaitGroup
}

// NewBookingService creates a new BookingService. publisher and broadcaster
// may be nil.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	workers workerDomain.WorkerRepository,
	pricing bookingDomain.PricingStrategy,
	notifier Notifier,
	publisher EventPublisher,
	broadcaster Broadcaster,
	countryCode string,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:        repo,
		workers:     workers,
		pricing:     pricing,
		notifier:    notifier,
		publisher:   publisher,
		broadcaster: broadcaster,
		countryCode: countryCode,
		logger:      logger,
		tracer:      otel.Tracer(tracerName),
	}
}

// WaitForBackground blocks until every pending side effect has finished.
func (s *BookingService) WaitForBackground() {
	s.background.Wait()
}

// CreateBooking creates a new pending booking priced from the table.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingDTO, error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.CreateBooking")
	defer span.End()

	number, err := phone.Normalize(req.Phone, s.countryCode)
	if err != nil {
		return nil, err
	}
	vehicle, err := bookingDomain.ParseVehicleClass(req.VehicleClass)
	if err != nil {
		return nil, err
	}
	service, err := bookingDomain.ParseServiceType(req.ServiceType)
	if err != nil {
		return nil, err
	}
	date, err := bookingDomain.ParseScheduledDate(req.ScheduledDate)
	if err != nil {
		return nil, err
	}
	if date.Before(today()) {
		return nil, domain.NewValidationError("scheduled date cannot be in the past")
	}
	slot, err := bookingDomain.ParseTimeSlot(req.TimeSlot)
	if err != nil {
		return nil, err
	}

	price, err := s.pricing.Calculate(bookingDomain.PricingParams{VehicleClass: vehicle, ServiceType: service})
	if err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(
		req.CustomerName,
		number.Canonical,
		req.Location,
		vehicle,
		service,
		date,
		slot,
		price,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}
	span.SetAttributes(attribute.String("booking.id", bk.ID().String()))

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("booking_number", bk.BookingNumber()),
		zap.Int64("price", price),
	)

	evt := events.BookingCreatedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		VehicleClass:  string(vehicle),
		ServiceType:   string(service),
		ScheduledDate: date.Format(bookingDomain.DateLayout),
		TimeSlot:      string(slot),
		Price:         price,
		Currency:      domain.CurrencyKES,
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCreated, bk.ID().String(), evt)
	s.broadcast(events.BookingCreated, evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetBookingByNumber retrieves a booking by its SW-XXXXXX reference.
func (s *BookingService) GetBookingByNumber(ctx context.Context, number string) (*BookingDTO, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return nil, domain.NewValidationError("booking number is required")
	}
	bk, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// LookupByPhone returns every booking stored under any form of the phone
// number, with the customer's loyalty points.
func (s *BookingService) LookupByPhone(ctx context.Context, rawPhone string) (*CustomerBookingsDTO, error) {
	number, err := phone.Normalize(rawPhone, s.countryCode)
	if err != nil {
		return nil, err
	}
	bookings, err := s.repo.FindByPhone(ctx, number.Variants)
	if err != nil {
		return nil, fmt.Errorf("failed to look up bookings: %w", err)
	}
	return &CustomerBookingsDTO{
		Phone:         number.Canonical,
		LoyaltyPoints: bookingDomain.LoyaltyPoints(bookings),
		Bookings:      toBookingDTOs(bookings),
	}, nil
}

// ListBookings returns a filtered, paginated list of bookings (admin).
func (s *BookingService) ListBookings(ctx context.Context, filter bookingDomain.ListFilter, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetWorkerBookings returns the bookings assigned to a worker.
func (s *BookingService) GetWorkerBookings(ctx context.Context, workerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByWorkerID(ctx, workerID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list worker bookings: %w", err)
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	byStatus := make(map[string]int64, len(counts))
	for _, st := range bookingDomain.AllStatuses() {
		byStatus[string(st)] = 0
	}
	var total int64
	for status, c := range counts {
		byStatus[status] = c
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      byStatus,
	}, nil
}

// CustomerCancel cancels a booking on behalf of the customer who placed it.
func (s *BookingService) CustomerCancel(ctx context.Context, bookingID uuid.UUID, rawPhone, reason string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !phone.Equal(rawPhone, bk.Phone(), s.countryCode) {
		return nil, domain.NewForbiddenError("phone number does not match this booking")
	}
	return s.TransitionStatus(ctx, bookingID, bookingDomain.StatusCancelled, reason, bookingDomain.Actor{Kind: bookingDomain.ActorCustomer})
}

// Reschedule moves a pending or confirmed booking to another date and slot.
func (s *BookingService) Reschedule(ctx context.Context, bookingID uuid.UUID, req RescheduleRequest, actor bookingDomain.Actor) (*BookingDTO, error) {
	date, err := bookingDomain.ParseScheduledDate(req.ScheduledDate)
	if err != nil {
		return nil, err
	}
	if date.Before(today()) {
		return nil, domain.NewValidationError("scheduled date cannot be in the past")
	}
	slot, err := bookingDomain.ParseTimeSlot(req.TimeSlot)
	if err != nil {
		return nil, err
	}

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := bk.Reschedule(date, slot, req.Reason, actor); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Info("booking rescheduled",
		zap.String("booking_id", bk.ID().String()),
		zap.String("date", req.ScheduledDate),
		zap.String("time_slot", req.TimeSlot),
		zap.String("actor", actor.String()),
	)

	result := toBookingDTO(bk)
	return &result, nil
}

// SubmitFeedback records the customer's rating of a finished booking.
func (s *BookingService) SubmitFeedback(ctx context.Context, bookingID uuid.UUID, req FeedbackRequest) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !phone.Equal(req.Phone, bk.Phone(), s.countryCode) {
		return nil, domain.NewForbiddenError("phone number does not match this booking")
	}
	if err := bk.SubmitFeedback(req.Rating, req.Comment); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// MarkPaid records a captured payment against a booking. Repeated events for
// an already-paid booking are ignored.
func (s *BookingService) MarkPaid(ctx context.Context, bookingID uuid.UUID, reference string) error {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if !bk.MarkPaid(reference, bookingDomain.Actor{Kind: bookingDomain.ActorSystem, ID: "payment"}) {
		return nil
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return err
	}

	s.logger.Info("booking marked paid",
		zap.String("booking_id", bk.ID().String()),
		zap.String("reference", reference),
	)
	return nil
}

// --- Helpers ---

func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// runBackground runs fn on its own goroutine with a context that survives the
// request but not the timeout.
func (s *BookingService) runBackground(ctx context.Context, fn func(ctx context.Context)) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundTimeout)
		defer cancel()
		fn(bgCtx)
	}()
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	if s.publisher == nil {
		return
	}
	cloudEvent, err := kafka.NewCloudEvent(events.Source, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent = cloudEvent.WithSubject(key)

	s.runBackground(ctx, func(ctx context.Context) {
		if err := s.publisher.PublishEvent(ctx, topic, cloudEvent); err != nil {
			s.logger.Error("failed to publish event",
				zap.String("topic", topic),
				zap.String("event_type", eventType),
				zap.Error(err),
			)
		}
	})
}

func (s *BookingService) broadcast(eventType string, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(eventType, payload)
}
