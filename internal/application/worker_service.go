package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/SwiftWash/service-booking/internal/domain/booking"
	workerDomain "github.com/SwiftWash/service-booking/internal/domain/worker"
	"github.com/SwiftWash/service-booking/pkg/auth"
	"github.com/SwiftWash/service-booking/pkg/domain"
	"github.com/SwiftWash/service-booking/pkg/phone"
)

const minPasswordLength = 8

// CreateWorkerRequest holds the data an admin supplies for a new worker.
type CreateWorkerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// WorkerService manages the worker registry.
type WorkerService struct {
	repo        workerDomain.WorkerRepository
	bookings    bookingDomain.BookingRepository
	countryCode string
	logger      *zap.Logger
}

// NewWorkerService creates a new WorkerService.
func NewWorkerService(
	repo workerDomain.WorkerRepository,
	bookings bookingDomain.BookingRepository,
	countryCode string,
	logger *zap.Logger,
) *WorkerService {
	return &WorkerService{
		repo:        repo,
		bookings:    bookings,
		countryCode: countryCode,
		logger:      logger,
	}
}

// CreateWorker registers a new active worker.
func (s *WorkerService) CreateWorker(ctx context.Context, req CreateWorkerRequest) (*WorkerDTO, error) {
	number, err := phone.Normalize(req.Phone, s.countryCode)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLength {
		return nil, domain.NewValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	role := workerDomain.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	if role != "" && !role.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid role: %s", req.Role))
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	w, err := workerDomain.NewWorker(req.Name, req.Email, number.Canonical, hash, role)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, w); err != nil {
		return nil, err
	}

	s.logger.Info("worker created",
		zap.String("worker_id", w.ID().String()),
		zap.String("role", string(w.Role())),
	)

	result := toWorkerDTO(w)
	return &result, nil
}

// GetWorker retrieves a single worker by ID.
func (s *WorkerService) GetWorker(ctx context.Context, workerID uuid.UUID) (*WorkerDTO, error) {
	w, err := s.repo.FindByID(ctx, workerID)
	if err != nil {
		return nil, err
	}
	result := toWorkerDTO(w)
	return &result, nil
}

// ListWorkers returns a paginated list of workers (admin).
func (s *WorkerService) ListWorkers(ctx context.Context, includeInactive bool, page, limit int) (*domain.PaginatedResult[WorkerDTO], error) {
	workers, total, err := s.repo.List(ctx, includeInactive, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	dtos := make([]WorkerDTO, len(workers))
	for i, w := range workers {
		dtos[i] = toWorkerDTO(w)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// SetAvailability records the worker's self-reported status.
func (s *WorkerService) SetAvailability(ctx context.Context, workerID uuid.UUID, status string) (*WorkerDTO, error) {
	availability, err := workerDomain.ParseAvailability(status)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, workerID, func(w *workerDomain.Worker) error {
		return w.SetAvailability(availability)
	})
}

// DeactivateWorker soft-deletes a worker. It is refused while the worker
// still holds confirmed or in-progress bookings.
func (s *WorkerService) DeactivateWorker(ctx context.Context, workerID uuid.UUID) (*WorkerDTO, error) {
	if _, err := s.repo.FindByID(ctx, workerID); err != nil {
		return nil, err
	}
	active, err := s.bookings.CountActiveByWorker(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count active bookings: %w", err)
	}
	if active > 0 {
		return nil, domain.NewWorkerHasActiveBookingsError(workerID.String(), active)
	}
	// The count is only checked at delete time; an assignment confirmed
	// between the count and the write below is not seen.

	dto, err := s.mutate(ctx, workerID, func(w *workerDomain.Worker) error {
		w.Deactivate()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("worker deactivated", zap.String("worker_id", workerID.String()))
	return dto, nil
}

// ActivateWorker restores a deactivated worker.
func (s *WorkerService) ActivateWorker(ctx context.Context, workerID uuid.UUID) (*WorkerDTO, error) {
	return s.mutate(ctx, workerID, func(w *workerDomain.Worker) error {
		w.Activate()
		return nil
	})
}

// SubmitJobRequest appends a pending request from the worker.
func (s *WorkerService) SubmitJobRequest(ctx context.Context, workerID uuid.UUID, message string) (*workerDomain.JobRequest, error) {
	var req workerDomain.JobRequest
	_, err := s.mutate(ctx, workerID, func(w *workerDomain.Worker) error {
		var err error
		req, err = w.SubmitJobRequest(message)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// RespondToJobRequest approves or rejects a worker's pending request.
func (s *WorkerService) RespondToJobRequest(ctx context.Context, workerID, requestID uuid.UUID, approve bool, response string) (*workerDomain.JobRequest, error) {
	var req workerDomain.JobRequest
	_, err := s.mutate(ctx, workerID, func(w *workerDomain.Worker) error {
		var err error
		req, err = w.RespondToJobRequest(requestID, approve, response)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("job request answered",
		zap.String("worker_id", workerID.String()),
		zap.String("request_id", requestID.String()),
		zap.String("status", string(req.Status)),
	)
	return &req, nil
}

// GetEarnings returns the worker's total and daily earnings.
func (s *WorkerService) GetEarnings(ctx context.Context, workerID uuid.UUID) (*EarningsDTO, error) {
	w, err := s.repo.FindByID(ctx, workerID)
	if err != nil {
		return nil, err
	}
	return &EarningsDTO{
		WorkerID:      w.ID(),
		Currency:      domain.CurrencyKES,
		TotalEarnings: w.TotalEarnings(),
		Today:         w.EarningsOn(time.Now().UTC().Format(bookingDomain.DateLayout)),
		Daily:         w.DailyEarnings(),
	}, nil
}

// mutate loads a worker, applies fn and saves it under optimistic locking.
func (s *WorkerService) mutate(ctx context.Context, workerID uuid.UUID, fn func(*workerDomain.Worker) error) (*WorkerDTO, error) {
	w, err := s.repo.FindByID(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if err := fn(w); err != nil {
		return nil, err
	}
	w.IncrementVersion()
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	result := toWorkerDTO(w)
	return &result, nil
}
