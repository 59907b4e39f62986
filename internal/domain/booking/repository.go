package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows an admin booking listing. Nil fields are ignored.
type ListFilter struct {
	Status   *BookingStatus
	Date     *time.Time
	WorkerID *uuid.UUID
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByNumber retrieves a booking by its human-readable booking number.
	FindByNumber(ctx context.Context, number string) (*Booking, error)

	// FindByPhone retrieves every booking stored under any of the given phone variants, newest first.
	FindByPhone(ctx context.Context, phoneVariants []string) ([]*Booking, error)

	// FindByWorkerID retrieves bookings assigned to a worker with pagination.
	FindByWorkerID(ctx context.Context, workerID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// CountActiveByWorker counts the worker's bookings in confirmed or started_cleaning.
	CountActiveByWorker(ctx context.Context, workerID uuid.UUID) (int64, error)

	// List retrieves bookings matching filter with pagination (admin).
	List(ctx context.Context, filter ListFilter, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error

	// UpdateStatus atomically applies change only if the stored status still
	// equals change.From, appending change.Modification to the audit log.
	// It returns a StaleState error when the precondition fails.
	UpdateStatus(ctx context.Context, booking *Booking, change StatusChange) error
}
