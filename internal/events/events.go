package events

import (
	"time"

	"github.com/google/uuid"
)

// Source is the CloudEvent source for everything this service publishes.
const Source = "service-booking"

// Kafka topics.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// CloudEvent types.
const (
	BookingCreated         = "booking.created"
	BookingStatusChanged   = "booking.status_changed"
	BookingAssigned        = "booking.assigned"
	WorkerEarningsCredited = "worker.earnings_credited"
	PaymentCaptured        = "payment.captured"
)

// BookingCreatedEvent is published when a customer places a booking.
type BookingCreatedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	VehicleClass  string    `json:"vehicle_class"`
	ServiceType   string    `json:"service_type"`
	ScheduledDate string    `json:"scheduled_date"`
	TimeSlot      string    `json:"time_slot"`
	Price         int64     `json:"price"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is published after every committed transition.
type BookingStatusChangedEvent struct {
	BookingID     uuid.UUID  `json:"booking_id"`
	BookingNumber string     `json:"booking_number"`
	From          string     `json:"from"`
	To            string     `json:"to"`
	Reason        string     `json:"reason,omitempty"`
	Actor         string     `json:"actor"`
	WorkerID      *uuid.UUID `json:"worker_id,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// BookingAssignedEvent is published when a worker is bound to a booking.
type BookingAssignedEvent struct {
	BookingID        uuid.UUID  `json:"booking_id"`
	WorkerID         uuid.UUID  `json:"worker_id"`
	PreviousWorkerID *uuid.UUID `json:"previous_worker_id,omitempty"`
	Actor            string     `json:"actor"`
	OccurredAt       time.Time  `json:"occurred_at"`
}

// WorkerEarningsCreditedEvent is published after a worker's ledger is credited.
type WorkerEarningsCreditedEvent struct {
	WorkerID   uuid.UUID `json:"worker_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	Date       string    `json:"date"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentCapturedEvent is consumed from the payment service.
type PaymentCapturedEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	Reference  string    `json:"reference"`
	OccurredAt time.Time `json:"occurred_at"`
}
