package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/SwiftWash/service-booking/internal/domain/booking"
	"github.com/SwiftWash/service-booking/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingNumber      string          `gorm:"uniqueIndex;not null;size:20"`
	CustomerName       string          `gorm:"not null;size:200"`
	Phone              string          `gorm:"not null;size:20;index"`
	Location           string          `gorm:"not null;size:500"`
	VehicleClass       string          `gorm:"not null;size:20"`
	ServiceType        string          `gorm:"not null;size:30"`
	ScheduledDate      time.Time       `gorm:"type:date;not null;index"`
	TimeSlot           string          `gorm:"not null;size:5"`
	Status             string          `gorm:"not null;size:30;index"`
	Price              int64           `gorm:"not null"`
	Notes              string          `gorm:"size:1000"`
	AssignedWorkerID   *uuid.UUID      `gorm:"type:uuid;index"`
	PaymentStatus      string          `gorm:"not null;size:10;default:'unpaid'"`
	PaymentReference   string          `gorm:"size:100"`
	RejectionReason    string          `gorm:"size:500"`
	RejectedBy         json.RawMessage `gorm:"type:jsonb"`
	RejectedAt         *time.Time      `gorm:""`
	CancellationReason string          `gorm:"size:500"`
	CancelledBy        json.RawMessage `gorm:"type:jsonb"`
	CancelledAt        *time.Time      `gorm:""`
	CompletedAt        *time.Time      `gorm:""`
	DeliveredAt        *time.Time      `gorm:""`
	Modifications      json.RawMessage `gorm:"type:jsonb;not null;default:'[]'"`
	Feedback           json.RawMessage `gorm:"type:jsonb"`
	Version            int64           `gorm:"not null;default:1"`
	CreatedAt          time.Time       `gorm:"not null"`
	UpdatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByNumber retrieves a booking by its booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", number)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByPhone retrieves every booking stored under any of the phone variants.
func (r *GormBookingRepository) FindByPhone(ctx context.Context, phoneVariants []string) ([]*bookingDomain.Booking, error) {
	if len(phoneVariants) == 0 {
		return []*bookingDomain.Booking{}, nil
	}
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("phone IN ?", phoneVariants).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings by phone: %w", err)
	}
	return toDomainBookings(models)
}

// FindByWorkerID retrieves bookings assigned to a worker with pagination.
func (r *GormBookingRepository) FindByWorkerID(ctx context.Context, workerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.List(ctx, bookingDomain.ListFilter{WorkerID: &workerID}, page, limit)
}

// CountActiveByWorker counts the worker's confirmed and in-progress bookings.
func (r *GormBookingRepository) CountActiveByWorker(ctx context.Context, workerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("assigned_worker_id = ? AND status IN ?", workerID, statusStrings(bookingDomain.ActiveStatuses())).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count active worker bookings: %w", err)
	}
	return count, nil
}

// List retrieves bookings matching filter with pagination (admin).
func (r *GormBookingRepository) List(ctx context.Context, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.Date != nil {
		query = query.Where("scheduled_date = ?", filter.Date.Format(bookingDomain.DateLayout))
	}
	if filter.WorkerID != nil {
		query = query.Where("assigned_worker_id = ?", *filter.WorkerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	// IncrementVersion has already been called, so the stored row holds Version()-1.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"scheduled_date":      model.ScheduledDate,
			"time_slot":           model.TimeSlot,
			"status":              model.Status,
			"notes":               model.Notes,
			"assigned_worker_id":  model.AssignedWorkerID,
			"payment_status":      model.PaymentStatus,
			"payment_reference":   model.PaymentReference,
			"rejection_reason":    model.RejectionReason,
			"rejected_by":         model.RejectedBy,
			"rejected_at":         model.RejectedAt,
			"cancellation_reason": model.CancellationReason,
			"cancelled_by":        model.CancelledBy,
			"cancelled_at":        model.CancelledAt,
			"completed_at":        model.CompletedAt,
			"delivered_at":        model.DeliveredAt,
			"modifications":       model.Modifications,
			"feedback":            model.Feedback,
			"version":             model.Version,
			"updated_at":          model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// UpdateStatus applies change only if the row is still in change.From.
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, bk *bookingDomain.Booking, change bookingDomain.StatusChange) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}
	entry, err := json.Marshal([]bookingDomain.Modification{change.Modification})
	if err != nil {
		return fmt.Errorf("failed to marshal modification: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND status = ?", model.ID, string(change.From)).
		Updates(map[string]interface{}{
			"status":              string(change.To),
			"rejection_reason":    model.RejectionReason,
			"rejected_by":         model.RejectedBy,
			"rejected_at":         model.RejectedAt,
			"cancellation_reason": model.CancellationReason,
			"cancelled_by":        model.CancelledBy,
			"cancelled_at":        model.CancelledAt,
			"completed_at":        model.CompletedAt,
			"delivered_at":        model.DeliveredAt,
			"modifications":       gorm.Expr("modifications || ?::jsonb", string(entry)),
			"version":             gorm.Expr("version + 1"),
			"updated_at":          change.At,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewStaleStateError("Booking", model.ID.String(), string(change.From))
	}
	return nil
}

// --- Conversion Helpers ---

func statusStrings(statuses []bookingDomain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func marshalOptional(v interface{}, present bool) (json.RawMessage, error) {
	if !present {
		return nil, nil
	}
	return json.Marshal(v)
}

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	s := bk.Snapshot()

	mods := s.Modifications
	if mods == nil {
		mods = []bookingDomain.Modification{}
	}
	modsJSON, err := json.Marshal(mods)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal modifications: %w", err)
	}
	feedbackJSON, err := marshalOptional(s.Feedback, s.Feedback != nil)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal feedback: %w", err)
	}
	rejectedByJSON, err := marshalOptional(s.RejectedBy, s.RejectedBy != nil)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rejected_by: %w", err)
	}
	cancelledByJSON, err := marshalOptional(s.CancelledBy, s.CancelledBy != nil)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cancelled_by: %w", err)
	}

	return &BookingModel{
		ID:                 s.ID,
		BookingNumber:      s.BookingNumber,
		CustomerName:       s.CustomerName,
		Phone:              s.Phone,
		Location:           s.Location,
		VehicleClass:       string(s.VehicleClass),
		ServiceType:        string(s.ServiceType),
		ScheduledDate:      s.ScheduledDate,
		TimeSlot:           string(s.TimeSlot),
		Status:             string(s.Status),
		Price:              s.Price,
		Notes:              s.Notes,
		AssignedWorkerID:   s.AssignedWorkerID,
		PaymentStatus:      string(s.PaymentStatus),
		PaymentReference:   s.PaymentReference,
		RejectionReason:    s.RejectionReason,
		RejectedBy:         rejectedByJSON,
		RejectedAt:         s.RejectedAt,
		CancellationReason: s.CancellationReason,
		CancelledBy:        cancelledByJSON,
		CancelledAt:        s.CancelledAt,
		CompletedAt:        s.CompletedAt,
		DeliveredAt:        s.DeliveredAt,
		Modifications:      modsJSON,
		Feedback:           feedbackJSON,
		Version:            s.Version,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}, nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	var mods []bookingDomain.Modification
	if len(m.Modifications) > 0 {
		if err := json.Unmarshal(m.Modifications, &mods); err != nil {
			return nil, fmt.Errorf("failed to unmarshal modifications: %w", err)
		}
	}

	var feedback *bookingDomain.Feedback
	if len(m.Feedback) > 0 && string(m.Feedback) != "null" {
		var fb bookingDomain.Feedback
		if err := json.Unmarshal(m.Feedback, &fb); err != nil {
			return nil, fmt.Errorf("failed to unmarshal feedback: %w", err)
		}
		feedback = &fb
	}

	rejectedBy, err := unmarshalActor(m.RejectedBy)
	if err != nil {
		return nil, err
	}
	cancelledBy, err := unmarshalActor(m.CancelledBy)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(bookingDomain.Snapshot{
		ID:                 m.ID,
		BookingNumber:      m.BookingNumber,
		CustomerName:       m.CustomerName,
		Phone:              m.Phone,
		Location:           m.Location,
		VehicleClass:       bookingDomain.VehicleClass(m.VehicleClass),
		ServiceType:        bookingDomain.ServiceType(m.ServiceType),
		ScheduledDate:      m.ScheduledDate.UTC(),
		TimeSlot:           bookingDomain.TimeSlot(m.TimeSlot),
		Status:             status,
		Price:              m.Price,
		Notes:              m.Notes,
		AssignedWorkerID:   m.AssignedWorkerID,
		PaymentStatus:      bookingDomain.PaymentStatus(m.PaymentStatus),
		PaymentReference:   m.PaymentReference,
		RejectionReason:    m.RejectionReason,
		RejectedBy:         rejectedBy,
		RejectedAt:         m.RejectedAt,
		CancellationReason: m.CancellationReason,
		CancelledBy:        cancelledBy,
		CancelledAt:        m.CancelledAt,
		CompletedAt:        m.CompletedAt,
		DeliveredAt:        m.DeliveredAt,
		Modifications:      mods,
		Feedback:           feedback,
		Version:            m.Version,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}), nil
}

func unmarshalActor(raw json.RawMessage) (*bookingDomain.Actor, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var a bookingDomain.Actor
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actor: %w", err)
	}
	return &a, nil
}
