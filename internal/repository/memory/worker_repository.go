package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	workerDomain "github.com/SwiftWash/service-booking/internal/domain/worker"
	"github.com/SwiftWash/service-booking/pkg/domain"
)

// WorkerRepository stores worker snapshots in memory.
type WorkerRepository struct {
	mu      sync.RWMutex
	workers map[uuid.UUID]workerDomain.Snapshot
}

// NewWorkerRepository creates an empty WorkerRepository.
func NewWorkerRepository() *WorkerRepository {
	return &WorkerRepository{workers: make(map[uuid.UUID]workerDomain.Snapshot)}
}

// FindByID retrieves a worker by ID.
func (r *WorkerRepository) FindByID(_ context.Context, id uuid.UUID) (*workerDomain.Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.workers[id]
	if !ok {
		return nil, domain.NewNotFoundError("Worker", id.String())
	}
	return workerDomain.ReconstructWorker(s), nil
}

// FindByEmail retrieves a worker by login email.
func (r *WorkerRepository) FindByEmail(_ context.Context, email string) (*workerDomain.Worker, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.workers {
		if s.Email == email {
			return workerDomain.ReconstructWorker(s), nil
		}
	}
	return nil, domain.NewNotFoundError("Worker", email)
}

// List retrieves workers with pagination, newest first.
func (r *WorkerRepository) List(_ context.Context, includeInactive bool, page, limit int) ([]*workerDomain.Worker, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snaps := make([]workerDomain.Snapshot, 0, len(r.workers))
	for _, s := range r.workers {
		if includeInactive || s.IsActive {
			snaps = append(snaps, s)
		}
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].CreatedAt.After(snaps[j].CreatedAt) })

	total := int64(len(snaps))
	window := paginate(snaps, page, limit)
	out := make([]*workerDomain.Worker, len(window))
	for i, s := range window {
		out[i] = workerDomain.ReconstructWorker(s)
	}
	return out, total, nil
}

// Save persists a new worker.
func (r *WorkerRepository) Save(_ context.Context, w *workerDomain.Worker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.workers {
		if s.Email == w.Email() {
			return domain.NewConflictError(fmt.Sprintf("worker with email %s already exists", w.Email()))
		}
	}
	r.workers[w.ID()] = w.Snapshot()
	return nil
}

// Update persists profile changes with optimistic locking. Earnings and the
// current booking keep their stored values.
func (r *WorkerRepository) Update(_ context.Context, w *workerDomain.Worker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.workers[w.ID()]
	if !ok {
		return domain.NewNotFoundError("Worker", w.ID().String())
	}
	if stored.Version != w.Version()-1 {
		return domain.NewConflictError("worker was modified by another transaction")
	}
	next := w.Snapshot()
	next.TotalEarnings = stored.TotalEarnings
	next.DailyEarnings = stored.DailyEarnings
	next.CurrentBookingID = stored.CurrentBookingID
	r.workers[w.ID()] = next
	return nil
}

// CreditEarnings adds amount to the total and the ledger entry for date.
func (r *WorkerRepository) CreditEarnings(_ context.Context, workerID uuid.UUID, amount int64, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.workers[workerID]
	if !ok {
		return domain.NewNotFoundError("Worker", workerID.String())
	}

	ledger := append([]workerDomain.DailyEarning(nil), s.DailyEarnings...)
	found := false
	for i := range ledger {
		if ledger[i].Date == date {
			ledger[i].Amount += amount
			ledger[i].TasksCompleted++
			found = true
			break
		}
	}
	if !found {
		ledger = append(ledger, workerDomain.DailyEarning{Date: date, Amount: amount, TasksCompleted: 1})
		sort.Slice(ledger, func(i, j int) bool { return ledger[i].Date < ledger[j].Date })
	}

	s.DailyEarnings = ledger
	s.TotalEarnings += amount
	s.UpdatedAt = time.Now().UTC()
	r.workers[workerID] = s
	return nil
}

// SetCurrentBooking points the worker at bookingID.
func (r *WorkerRepository) SetCurrentBooking(_ context.Context, workerID, bookingID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.workers[workerID]
	if !ok {
		return domain.NewNotFoundError("Worker", workerID.String())
	}
	id := bookingID
	s.CurrentBookingID = &id
	r.workers[workerID] = s
	return nil
}

// ClearCurrentBooking unsets the current booking if it still equals bookingID.
func (r *WorkerRepository) ClearCurrentBooking(_ context.Context, workerID, bookingID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.workers[workerID]
	if !ok || s.CurrentBookingID == nil || *s.CurrentBookingID != bookingID {
		return nil
	}
	s.CurrentBookingID = nil
	r.workers[workerID] = s
	return nil
}
