package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	workerDomain "github.com/SwiftWash/service-booking/internal/domain/worker"
	"github.com/SwiftWash/service-booking/pkg/domain"
)

// WorkerModel is the GORM model for the workers table.
type WorkerModel struct {
	ID               uuid.UUID                 `gorm:"type:uuid;primaryKey"`
	Name             string                    `gorm:"not null;size:200"`
	Email            string                    `gorm:"uniqueIndex;not null;size:255"`
	Phone            string                    `gorm:"not null;size:20"`
	PasswordHash     string                    `gorm:"not null;size:255"`
	Role             string                    `gorm:"not null;size:20"`
	IsActive         bool                      `gorm:"not null;default:true;index"`
	Availability     string                    `gorm:"not null;size:20;default:'offline'"`
	CurrentBookingID *uuid.UUID                `gorm:"type:uuid"`
	TotalEarnings    int64                     `gorm:"not null;default:0"`
	JobRequests      json.RawMessage           `gorm:"type:jsonb;not null;default:'[]'"`
	DailyEarnings    []WorkerDailyEarningModel `gorm:"foreignKey:WorkerID"`
	Version          int64                     `gorm:"not null;default:1"`
	CreatedAt        time.Time                 `gorm:"not null"`
	UpdatedAt        time.Time                 `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (WorkerModel) TableName() string {
	return "workers"
}

// WorkerDailyEarningModel is one row of a worker's earnings ledger.
type WorkerDailyEarningModel struct {
	WorkerID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	EarnedOn       string    `gorm:"primaryKey;size:10"`
	Amount         int64     `gorm:"not null;default:0"`
	TasksCompleted int       `gorm:"not null;default:0"`
}

// TableName returns the table name for the GORM model.
func (WorkerDailyEarningModel) TableName() string {
	return "worker_daily_earnings"
}

// GormWorkerRepository is the GORM-based implementation of WorkerRepository.
type GormWorkerRepository struct {
	db *gorm.DB
}

// NewGormWorkerRepository creates a new GormWorkerRepository.
func NewGormWorkerRepository(db *gorm.DB) *GormWorkerRepository {
	return &GormWorkerRepository{db: db}
}

func (r *GormWorkerRepository) withLedger(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("DailyEarnings", func(db *gorm.DB) *gorm.DB {
		return db.Order("earned_on ASC")
	})
}

// FindByID retrieves a worker by ID.
func (r *GormWorkerRepository) FindByID(ctx context.Context, id uuid.UUID) (*workerDomain.Worker, error) {
	var model WorkerModel
	if err := r.withLedger(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Worker", id.String())
		}
		return nil, fmt.Errorf("failed to find worker by ID: %w", err)
	}
	return toDomainWorker(&model)
}

// FindByEmail retrieves a worker by login email.
func (r *GormWorkerRepository) FindByEmail(ctx context.Context, email string) (*workerDomain.Worker, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var model WorkerModel
	if err := r.withLedger(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Worker", email)
		}
		return nil, fmt.Errorf("failed to find worker by email: %w", err)
	}
	return toDomainWorker(&model)
}

// List retrieves workers with pagination, newest first.
func (r *GormWorkerRepository) List(ctx context.Context, includeInactive bool, page, limit int) ([]*workerDomain.Worker, int64, error) {
	query := r.db.WithContext(ctx).Model(&WorkerModel{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count workers: %w", err)
	}

	var models []WorkerModel
	offset := (page - 1) * limit
	if err := query.
		Preload("DailyEarnings", func(db *gorm.DB) *gorm.DB { return db.Order("earned_on ASC") }).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list workers: %w", err)
	}

	workers := make([]*workerDomain.Worker, len(models))
	for i := range models {
		w, err := toDomainWorker(&models[i])
		if err != nil {
			return nil, 0, err
		}
		workers[i] = w
	}
	return workers, total, nil
}

// Save persists a new worker.
func (r *GormWorkerRepository) Save(ctx context.Context, w *workerDomain.Worker) error {
	model, err := toWorkerModel(w)
	if err != nil {
		return fmt.Errorf("failed to convert worker to model: %w", err)
	}
	if err := r.db.WithContext(ctx).Omit("DailyEarnings").Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError(fmt.Sprintf("worker with email %s already exists", w.Email()))
		}
		return fmt.Errorf("failed to save worker: %w", err)
	}
	return nil
}

// Update persists profile changes with optimistic locking. Earnings and the
// current booking are left to their atomic methods.
func (r *GormWorkerRepository) Update(ctx context.Context, w *workerDomain.Worker) error {
	model, err := toWorkerModel(w)
	if err != nil {
		return fmt.Errorf("failed to convert worker to model: %w", err)
	}

	expectedVersion := w.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&WorkerModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":         model.Name,
			"phone":        model.Phone,
			"role":         model.Role,
			"is_active":    model.IsActive,
			"availability": model.Availability,
			"job_requests": model.JobRequests,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update worker: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("worker was modified by another transaction")
	}
	return nil
}

// CreditEarnings adds amount to the running total and the day's ledger row in one transaction.
func (r *GormWorkerRepository) CreditEarnings(ctx context.Context, workerID uuid.UUID, amount int64, date string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&WorkerModel{}).
			Where("id = ?", workerID).
			Updates(map[string]interface{}{
				"total_earnings": gorm.Expr("total_earnings + ?", amount),
				"updated_at":     time.Now().UTC(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to credit worker total: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewNotFoundError("Worker", workerID.String())
		}

		entry := WorkerDailyEarningModel{
			WorkerID:       workerID,
			EarnedOn:       date,
			Amount:         amount,
			TasksCompleted: 1,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "worker_id"}, {Name: "earned_on"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"amount":          gorm.Expr("worker_daily_earnings.amount + EXCLUDED.amount"),
				"tasks_completed": gorm.Expr("worker_daily_earnings.tasks_completed + 1"),
			}),
		}).Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to credit daily earnings: %w", err)
		}
		return nil
	})
}

// SetCurrentBooking points the worker at bookingID.
func (r *GormWorkerRepository) SetCurrentBooking(ctx context.Context, workerID, bookingID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&WorkerModel{}).
		Where("id = ?", workerID).
		Update("current_booking_id", bookingID)
	if result.Error != nil {
		return fmt.Errorf("failed to set current booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Worker", workerID.String())
	}
	return nil
}

// ClearCurrentBooking unsets the current booking if it still equals bookingID.
func (r *GormWorkerRepository) ClearCurrentBooking(ctx context.Context, workerID, bookingID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Model(&WorkerModel{}).
		Where("id = ? AND current_booking_id = ?", workerID, bookingID).
		Update("current_booking_id", nil).Error; err != nil {
		return fmt.Errorf("failed to clear current booking: %w", err)
	}
	return nil
}

// --- Conversion Helpers ---

func toWorkerModel(w *workerDomain.Worker) (*WorkerModel, error) {
	s := w.Snapshot()
	requests := s.JobRequests
	if requests == nil {
		requests = []workerDomain.JobRequest{}
	}
	requestsJSON, err := json.Marshal(requests)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job requests: %w", err)
	}

	return &WorkerModel{
		ID:               s.ID,
		Name:             s.Name,
		Email:            s.Email,
		Phone:            s.Phone,
		PasswordHash:     s.PasswordHash,
		Role:             string(s.Role),
		IsActive:         s.IsActive,
		Availability:     string(s.Availability),
		CurrentBookingID: s.CurrentBookingID,
		TotalEarnings:    s.TotalEarnings,
		JobRequests:      requestsJSON,
		Version:          s.Version,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}, nil
}

func toDomainWorker(m *WorkerModel) (*workerDomain.Worker, error) {
	var requests []workerDomain.JobRequest
	if len(m.JobRequests) > 0 {
		if err := json.Unmarshal(m.JobRequests, &requests); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job requests: %w", err)
		}
	}

	ledger := make([]workerDomain.DailyEarning, len(m.DailyEarnings))
	for i, e := range m.DailyEarnings {
		ledger[i] = workerDomain.DailyEarning{
			Date:           e.EarnedOn,
			Amount:         e.Amount,
			TasksCompleted: e.TasksCompleted,
		}
	}

	return workerDomain.ReconstructWorker(workerDomain.Snapshot{
		ID:               m.ID,
		Name:             m.Name,
		Email:            m.Email,
		Phone:            m.Phone,
		PasswordHash:     m.PasswordHash,
		Role:             workerDomain.Role(m.Role),
		IsActive:         m.IsActive,
		Availability:     workerDomain.Availability(m.Availability),
		CurrentBookingID: m.CurrentBookingID,
		TotalEarnings:    m.TotalEarnings,
		DailyEarnings:    ledger,
		JobRequests:      requests,
		Version:          m.Version,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}), nil
}
