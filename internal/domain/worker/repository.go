package worker

import (
	"context"

	"github.com/google/uuid"
)

// WorkerRepository defines the persistence contract for worker aggregates.
//
// Update covers profile fields, activation and job requests. Earnings and the
// current booking are only changed through the dedicated atomic methods so a
// profile write never overwrites a concurrent credit.
type WorkerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Worker, error)
	FindByEmail(ctx context.Context, email string) (*Worker, error)
	List(ctx context.Context, includeInactive bool, page, limit int) ([]*Worker, int64, error)

	// Save persists a new worker.
	Save(ctx context.Context, worker *Worker) error

	// Update persists profile changes with optimistic locking.
	Update(ctx context.Context, worker *Worker) error

	// CreditEarnings adds amount to the total and to the ledger entry for
	// date (YYYY-MM-DD), creating the entry if absent.
	CreditEarnings(ctx context.Context, workerID uuid.UUID, amount int64, date string) error

	// SetCurrentBooking points the worker at bookingID.
	SetCurrentBooking(ctx context.Context, workerID, bookingID uuid.UUID) error

	// ClearCurrentBooking unsets the current booking only if it still equals bookingID.
	ClearCurrentBooking(ctx context.Context, workerID, bookingID uuid.UUID) error
}
