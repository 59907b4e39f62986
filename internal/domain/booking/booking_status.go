package booking

import (
	"fmt"

	"github.com/SwiftWash/service-booking/pkg/domain"
)

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending         BookingStatus = "pending"
	StatusConfirmed       BookingStatus = "confirmed"
	StatusStartedCleaning BookingStatus = "started_cleaning"
	StatusDone            BookingStatus = "done"
	StatusDelivered       BookingStatus = "delivered"
	StatusRejected        BookingStatus = "rejected"
	StatusCancelled       BookingStatus = "cancelled"
)

// validTransitions defines the state machine for booking status transitions.
// Forward moves are one step only; reject and cancel are allowed until work starts.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:         {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed:       {StatusStartedCleaning, StatusRejected, StatusCancelled},
	StatusStartedCleaning: {StatusDone},
	StatusDone:            {StatusDelivered},
	StatusDelivered:       {},
	StatusRejected:        {},
	StatusCancelled:       {},
}

// AllStatuses lists every status in lifecycle order.
func AllStatuses() []BookingStatus {
	return []BookingStatus{
		StatusPending,
		StatusConfirmed,
		StatusStartedCleaning,
		StatusDone,
		StatusDelivered,
		StatusRejected,
		StatusCancelled,
	}
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// IsActive reports whether a worker is committed to the booking.
func (s BookingStatus) IsActive() bool {
	return s == StatusConfirmed || s == StatusStartedCleaning
}

// ActiveStatuses lists the statuses for which IsActive is true.
func ActiveStatuses() []BookingStatus {
	return []BookingStatus{StatusConfirmed, StatusStartedCleaning}
}

// RequiresReason reports whether entering this status needs a reason.
func (s BookingStatus) RequiresReason() bool {
	return s == StatusRejected || s == StatusCancelled
}

// ReleasesWorker reports whether the assigned worker is free once the booking enters this status.
func (s BookingStatus) ReleasesWorker() bool {
	return s == StatusDone || s.IsTerminal()
}

// NotifiesCustomer reports whether entering this status sends the customer a message.
func (s BookingStatus) NotifiesCustomer() bool {
	switch s {
	case StatusConfirmed, StatusStartedCleaning, StatusDone, StatusDelivered:
		return true
	}
	return false
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", domain.NewValidationError(fmt.Sprintf("invalid booking status: %s", s))
	}
	return status, nil
}
