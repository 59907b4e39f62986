package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SwiftWash/service-booking/pkg/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// LoyaltyPointsPerBooking is awarded for every delivered booking.
const LoyaltyPointsPerBooking = 10

// PaymentStatus tracks whether the customer has paid.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	customerName  string
	phone         string
	location      string
	vehicleClass  VehicleClass
	serviceType   ServiceType
	scheduledDate time.Time
	timeSlot      TimeSlot
	status        BookingStatus
	price         int64
	notes         string

	assignedWorkerID *uuid.UUID

	paymentStatus    PaymentStatus
	paymentReference string

	rejectionReason    string
	rejectedBy         *Actor
	rejectedAt         *time.Time
	cancellationReason string
	cancelledBy        *Actor
	cancelledAt        *time.Time
	completedAt        *time.Time
	deliveredAt        *time.Time

	modifications []Modification
	feedback      *Feedback

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// Snapshot is the persisted form of a Booking.
type Snapshot struct {
	ID                 uuid.UUID
	BookingNumber      string
	CustomerName       string
	Phone              string
	Location           string
	VehicleClass       VehicleClass
	ServiceType        ServiceType
	ScheduledDate      time.Time
	TimeSlot           TimeSlot
	Status             BookingStatus
	Price              int64
	Notes              string
	AssignedWorkerID   *uuid.UUID
	PaymentStatus      PaymentStatus
	PaymentReference   string
	RejectionReason    string
	RejectedBy         *Actor
	RejectedAt         *time.Time
	CancellationReason string
	CancelledBy        *Actor
	CancelledAt        *time.Time
	CompletedAt        *time.Time
	DeliveredAt        *time.Time
	Modifications      []Modification
	Feedback           *Feedback
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// generateBookingNumber creates a booking number in the format "SW-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "SW-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=pending. phone must
// already be in canonical form.
func NewBooking(
	customerName string,
	phone string,
	location string,
	vehicleClass VehicleClass,
	serviceType ServiceType,
	scheduledDate time.Time,
	timeSlot TimeSlot,
	price int64,
	notes string,
) (*Booking, error) {
	customerName = strings.TrimSpace(customerName)
	location = strings.TrimSpace(location)

	if customerName == "" {
		return nil, domain.NewValidationError("customer name is required")
	}
	if phone == "" {
		return nil, domain.NewValidationError("phone is required")
	}
	if location == "" {
		return nil, domain.NewValidationError("location is required")
	}
	if !vehicleClass.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid vehicle class: %s", vehicleClass))
	}
	if !serviceType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid service type: %s", serviceType))
	}
	if scheduledDate.IsZero() {
		return nil, domain.NewValidationError("scheduled date is required")
	}
	if !timeSlot.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid time slot: %s", timeSlot))
	}
	if price <= 0 {
		return nil, domain.NewValidationError("price must be positive")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:            uuid.New(),
		bookingNumber: bookingNumber,
		customerName:  customerName,
		phone:         phone,
		location:      location,
		vehicleClass:  vehicleClass,
		serviceType:   serviceType,
		scheduledDate: scheduledDate,
		timeSlot:      timeSlot,
		status:        StatusPending,
		price:         price,
		notes:         strings.TrimSpace(notes),
		paymentStatus: PaymentUnpaid,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(s Snapshot) *Booking {
	return &Booking{
		id:                 s.ID,
		bookingNumber:      s.BookingNumber,
		customerName:       s.CustomerName,
		phone:              s.Phone,
		location:           s.Location,
		vehicleClass:       s.VehicleClass,
		serviceType:        s.ServiceType,
		scheduledDate:      s.ScheduledDate,
		timeSlot:           s.TimeSlot,
		status:             s.Status,
		price:              s.Price,
		notes:              s.Notes,
		assignedWorkerID:   s.AssignedWorkerID,
		paymentStatus:      s.PaymentStatus,
		paymentReference:   s.PaymentReference,
		rejectionReason:    s.RejectionReason,
		rejectedBy:         s.RejectedBy,
		rejectedAt:         s.RejectedAt,
		cancellationReason: s.CancellationReason,
		cancelledBy:        s.CancelledBy,
		cancelledAt:        s.CancelledAt,
		completedAt:        s.CompletedAt,
		deliveredAt:        s.DeliveredAt,
		modifications:      append([]Modification(nil), s.Modifications...),
		feedback:           s.Feedback,
		version:            s.Version,
		createdAt:          s.CreatedAt,
		updatedAt:          s.UpdatedAt,
	}
}

// Snapshot returns a copy of the booking's state for persistence.
func (b *Booking) Snapshot() Snapshot {
	return Snapshot{
		ID:                 b.id,
		BookingNumber:      b.bookingNumber,
		CustomerName:       b.customerName,
		Phone:              b.phone,
		Location:           b.location,
		VehicleClass:       b.vehicleClass,
		ServiceType:        b.serviceType,
		ScheduledDate:      b.scheduledDate,
		TimeSlot:           b.timeSlot,
		Status:             b.status,
		Price:              b.price,
		Notes:              b.notes,
		AssignedWorkerID:   b.assignedWorkerID,
		PaymentStatus:      b.paymentStatus,
		PaymentReference:   b.paymentReference,
		RejectionReason:    b.rejectionReason,
		RejectedBy:         b.rejectedBy,
		RejectedAt:         b.rejectedAt,
		CancellationReason: b.cancellationReason,
		CancelledBy:        b.cancelledBy,
		CancelledAt:        b.cancelledAt,
		CompletedAt:        b.completedAt,
		DeliveredAt:        b.deliveredAt,
		Modifications:      b.Modifications(),
		Feedback:           b.feedback,
		Version:            b.version,
		CreatedAt:          b.createdAt,
		UpdatedAt:          b.updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

func (b *Booking) CustomerName() string         { return b.customerName }
func (b *Booking) Phone() string                { return b.phone }
func (b *Booking) Location() string             { return b.location }
func (b *Booking) VehicleClass() VehicleClass   { return b.vehicleClass }
func (b *Booking) ServiceType() ServiceType     { return b.serviceType }
func (b *Booking) ScheduledDate() time.Time     { return b.scheduledDate }
func (b *Booking) TimeSlot() TimeSlot           { return b.timeSlot }
func (b *Booking) Notes() string                { return b.notes }
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }
func (b *Booking) PaymentReference() string     { return b.paymentReference }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Price returns the price fixed at creation.
func (b *Booking) Price() int64 { return b.price }

// AssignedWorkerID returns the assigned worker's ID, or nil if unassigned.
func (b *Booking) AssignedWorkerID() *uuid.UUID { return b.assignedWorkerID }

func (b *Booking) RejectionReason() string    { return b.rejectionReason }
func (b *Booking) RejectedBy() *Actor         { return b.rejectedBy }
func (b *Booking) RejectedAt() *time.Time     { return b.rejectedAt }
func (b *Booking) CancellationReason() string { return b.cancellationReason }
func (b *Booking) CancelledBy() *Actor        { return b.cancelledBy }
func (b *Booking) CancelledAt() *time.Time    { return b.cancelledAt }

// CompletedAt returns the time the booking reached done.
func (b *Booking) CompletedAt() *time.Time { return b.completedAt }

// DeliveredAt returns the time the booking reached delivered.
func (b *Booking) DeliveredAt() *time.Time { return b.deliveredAt }

// Modifications returns a copy of the audit log.
func (b *Booking) Modifications() []Modification {
	out := make([]Modification, len(b.modifications))
	copy(out, b.modifications)
	return out
}

// Feedback returns the customer's feedback, or nil if none was submitted.
func (b *Booking) Feedback() *Feedback { return b.feedback }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// TransitionTo validates and applies a status change in memory. The returned
// StatusChange must be persisted with a write conditioned on its From status.
func (b *Booking) TransitionTo(target BookingStatus, reason string, actor Actor) (*StatusChange, error) {
	if !target.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid booking status: %s", target))
	}
	if !b.status.CanTransitionTo(target) {
		return nil, domain.NewInvalidStateError(string(b.status), string(target))
	}
	reason = strings.TrimSpace(reason)
	if target.RequiresReason() && reason == "" {
		return nil, domain.NewValidationError(fmt.Sprintf("a reason is required to set status %s", target))
	}

	now := time.Now().UTC()
	from := b.status
	b.status = target

	switch target {
	case StatusDone:
		b.completedAt = &now
	case StatusDelivered:
		b.deliveredAt = &now
	case StatusRejected:
		b.rejectionReason = reason
		b.rejectedBy = &actor
		b.rejectedAt = &now
	case StatusCancelled:
		b.cancellationReason = reason
		b.cancelledBy = &actor
		b.cancelledAt = &now
	}

	mod := Modification{
		Type:      ModificationStatusChange,
		OldValue:  string(from),
		NewValue:  string(target),
		Reason:    reason,
		Actor:     actor,
		Timestamp: now,
	}
	b.modifications = append(b.modifications, mod)
	b.updatedAt = now

	return &StatusChange{
		From:         from,
		To:           target,
		Reason:       reason,
		Actor:        actor,
		At:           now,
		Modification: mod,
	}, nil
}

// AssignWorker binds a worker, overwriting any previous assignment, and
// returns the worker it replaced. The status is not checked or changed.
func (b *Booking) AssignWorker(workerID uuid.UUID, actor Actor) (*uuid.UUID, error) {
	if workerID == uuid.Nil {
		return nil, domain.NewValidationError("worker ID is required")
	}
	previous := b.assignedWorkerID

	oldValue := ""
	if previous != nil {
		oldValue = previous.String()
	}

	now := time.Now().UTC()
	b.assignedWorkerID = &workerID
	b.modifications = append(b.modifications, Modification{
		Type:      ModificationAssignment,
		OldValue:  oldValue,
		NewValue:  workerID.String(),
		Actor:     actor,
		Timestamp: now,
	})
	b.updatedAt = now
	return previous, nil
}

// Reschedule moves a booking that has not started to a new date and slot.
// The price is unchanged.
func (b *Booking) Reschedule(date time.Time, slot TimeSlot, reason string, actor Actor) error {
	if b.status != StatusPending && b.status != StatusConfirmed {
		return domain.NewInvalidOperationError(fmt.Sprintf("booking in status %s cannot be rescheduled", b.status))
	}
	if date.IsZero() {
		return domain.NewValidationError("scheduled date is required")
	}
	if !slot.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid time slot: %s", slot))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.NewValidationError("a reason is required to reschedule")
	}

	now := time.Now().UTC()
	b.modifications = append(b.modifications, Modification{
		Type:      ModificationReschedule,
		OldValue:  b.scheduledDate.Format(DateLayout) + " " + string(b.timeSlot),
		NewValue:  date.Format(DateLayout) + " " + string(slot),
		Reason:    reason,
		Actor:     actor,
		Timestamp: now,
	})
	b.scheduledDate = date
	b.timeSlot = slot
	b.updatedAt = now
	return nil
}

// SubmitFeedback records the customer's rating once the wash is finished.
func (b *Booking) SubmitFeedback(rating int, comment string) error {
	if b.status != StatusDone && b.status != StatusDelivered {
		return domain.NewInvalidOperationError("feedback can only be submitted after the wash is done")
	}
	if b.feedback != nil {
		return domain.NewConflictError("feedback has already been submitted")
	}
	fb, err := NewFeedback(rating, comment, b.assignedWorkerID)
	if err != nil {
		return err
	}
	b.feedback = &fb
	b.updatedAt = fb.SubmittedAt
	return nil
}

// MarkPaid records a captured payment. It returns false if the booking was
// already paid.
func (b *Booking) MarkPaid(reference string, actor Actor) bool {
	if b.paymentStatus == PaymentPaid {
		return false
	}
	now := time.Now().UTC()
	b.modifications = append(b.modifications, Modification{
		Type:      ModificationPayment,
		OldValue:  string(b.paymentStatus),
		NewValue:  string(PaymentPaid),
		Reason:    reference,
		Actor:     actor,
		Timestamp: now,
	})
	b.paymentStatus = PaymentPaid
	b.paymentReference = reference
	b.updatedAt = now
	return true
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

// LoyaltyPoints returns the points earned across the given bookings.
func LoyaltyPoints(bookings []*Booking) int {
	points := 0
	for _, b := range bookings {
		if b.status == StatusDelivered {
			points += LoyaltyPointsPerBooking
		}
	}
	return points
}
