// Package memory holds map-backed repositories for local runs and tests. They
// honor the same conditional-write contracts as the database implementations.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	bookingDomain "github.com/SwiftWash/service-booking/internal/domain/booking"
	"github.com/SwiftWash/service-booking/pkg/domain"
)

// BookingRepository stores booking snapshots in memory.
type BookingRepository struct {
	mu       sync.RWMutex
	bookings map[uuid.UUID]bookingDomain.Snapshot
}

// NewBookingRepository creates an empty BookingRepository.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{bookings: make(map[uuid.UUID]bookingDomain.Snapshot)}
}

// FindByID retrieves a booking by its unique identifier.
func (r *BookingRepository) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return bookingDomain.ReconstructBooking(s), nil
}

// FindByNumber retrieves a booking by its booking number.
func (r *BookingRepository) FindByNumber(_ context.Context, number string) (*bookingDomain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.bookings {
		if s.BookingNumber == number {
			return bookingDomain.ReconstructBooking(s), nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", number)
}

func (r *BookingRepository) matching(keep func(bookingDomain.Snapshot) bool) []bookingDomain.Snapshot {
	out := make([]bookingDomain.Snapshot, 0)
	for _, s := range r.bookings {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// FindByPhone retrieves every booking stored under any of the phone variants.
func (r *BookingRepository) FindByPhone(_ context.Context, phoneVariants []string) ([]*bookingDomain.Booking, error) {
	set := make(map[string]struct{}, len(phoneVariants))
	for _, v := range phoneVariants {
		set[v] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	snaps := r.matching(func(s bookingDomain.Snapshot) bool {
		_, ok := set[s.Phone]
		return ok
	})
	return reconstructAll(snaps), nil
}

// FindByWorkerID retrieves bookings assigned to a worker with pagination.
func (r *BookingRepository) FindByWorkerID(ctx context.Context, workerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.List(ctx, bookingDomain.ListFilter{WorkerID: &workerID}, page, limit)
}

// CountActiveByWorker counts the worker's confirmed and in-progress bookings.
func (r *BookingRepository) CountActiveByWorker(_ context.Context, workerID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, s := range r.bookings {
		if s.AssignedWorkerID != nil && *s.AssignedWorkerID == workerID && s.Status.IsActive() {
			n++
		}
	}
	return n, nil
}

// List retrieves bookings matching filter with pagination.
func (r *BookingRepository) List(_ context.Context, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snaps := r.matching(func(s bookingDomain.Snapshot) bool {
		if filter.Status != nil && s.Status != *filter.Status {
			return false
		}
		if filter.Date != nil && s.ScheduledDate.Format(bookingDomain.DateLayout) != filter.Date.Format(bookingDomain.DateLayout) {
			return false
		}
		if filter.WorkerID != nil && (s.AssignedWorkerID == nil || *s.AssignedWorkerID != *filter.WorkerID) {
			return false
		}
		return true
	})
	total := int64(len(snaps))
	return reconstructAll(paginate(snaps, page, limit)), total, nil
}

// CountByStatus returns booking counts grouped by status.
func (r *BookingRepository) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int64)
	for _, s := range r.bookings {
		counts[string(s.Status)]++
	}
	return counts, nil
}

// Save persists a new booking.
func (r *BookingRepository) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bookings[bk.ID()]; exists {
		return domain.NewConflictError("booking already exists")
	}
	r.bookings[bk.ID()] = bk.Snapshot()
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *BookingRepository) Update(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[bk.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	if stored.Version != bk.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.bookings[bk.ID()] = bk.Snapshot()
	return nil
}

// UpdateStatus applies change only if the stored booking is still in change.From.
func (r *BookingRepository) UpdateStatus(_ context.Context, bk *bookingDomain.Booking, change bookingDomain.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[bk.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	if stored.Status != change.From {
		return domain.NewStaleStateError("Booking", bk.ID().String(), string(change.From))
	}

	next := bk.Snapshot()
	stored.Status = change.To
	stored.RejectionReason = next.RejectionReason
	stored.RejectedBy = next.RejectedBy
	stored.RejectedAt = next.RejectedAt
	stored.CancellationReason = next.CancellationReason
	stored.CancelledBy = next.CancelledBy
	stored.CancelledAt = next.CancelledAt
	stored.CompletedAt = next.CompletedAt
	stored.DeliveredAt = next.DeliveredAt
	stored.Modifications = append(append([]bookingDomain.Modification(nil), stored.Modifications...), change.Modification)
	stored.Version++
	stored.UpdatedAt = change.At
	r.bookings[bk.ID()] = stored
	return nil
}

func reconstructAll(snaps []bookingDomain.Snapshot) []*bookingDomain.Booking {
	out := make([]*bookingDomain.Booking, len(snaps))
	for i, s := range snaps {
		out[i] = bookingDomain.ReconstructBooking(s)
	}
	return out
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	start := (page - 1) * limit
	if start < 0 {
		start = 0
	}
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
