package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SwiftWash/service-booking/pkg/domain"
)

// ActorKind identifies who performed an action, for audit attribution only.
type ActorKind string

const (
	ActorAdmin      ActorKind = "admin"
	ActorSupervisor ActorKind = "supervisor"
	ActorWorker     ActorKind = "worker"
	ActorCustomer   ActorKind = "customer"
	ActorSystem     ActorKind = "system"
)

// Actor is the party recorded against a modification.
type Actor struct {
	Kind ActorKind `json:"kind"`
	ID   string    `json:"id,omitempty"`
}

// String renders the actor as "kind" or "kind:id".
func (a Actor) String() string {
	if a.ID == "" {
		return string(a.Kind)
	}
	return string(a.Kind) + ":" + a.ID
}

// ModificationType classifies an audit entry.
type ModificationType string

const (
	ModificationStatusChange ModificationType = "status_change"
	ModificationAssignment   ModificationType = "assignment"
	ModificationReschedule   ModificationType = "reschedule"
	ModificationPayment      ModificationType = "payment"
)

// Modification is one append-only audit entry on a booking.
type Modification struct {
	Type      ModificationType `json:"type"`
	OldValue  string           `json:"old_value"`
	NewValue  string           `json:"new_value"`
	Reason    string           `json:"reason,omitempty"`
	Actor     Actor            `json:"actor"`
	Timestamp time.Time        `json:"timestamp"`
}

// Feedback is the customer's rating of a finished booking.
type Feedback struct {
	Rating      int        `json:"rating"`
	Comment     string     `json:"comment,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
	WorkerID    *uuid.UUID `json:"worker_id,omitempty"`
}

const (
	minRating = 1
	maxRating = 5
)

// NewFeedback validates and builds a Feedback.
func NewFeedback(rating int, comment string, workerID *uuid.UUID) (Feedback, error) {
	if rating < minRating || rating > maxRating {
		return Feedback{}, domain.NewValidationError(fmt.Sprintf("rating must be between %d and %d", minRating, maxRating))
	}
	return Feedback{
		Rating:      rating,
		Comment:     strings.TrimSpace(comment),
		SubmittedAt: time.Now().UTC(),
		WorkerID:    workerID,
	}, nil
}

// StatusChange describes a transition applied in memory and awaiting a
// conditional write keyed on From.
type StatusChange struct {
	From         BookingStatus
	To           BookingStatus
	Reason       string
	Actor        Actor
	At           time.Time
	Modification Modification
}
