package application

import (
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/SwiftWash/service-booking/internal/domain/booking"
	workerDomain "github.com/SwiftWash/service-booking/internal/domain/worker"
	"github.com/SwiftWash/service-booking/pkg/domain"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	Location      string `json:"location" binding:"required"`
	VehicleClass  string `json:"vehicle_class" binding:"required"`
	ServiceType   string `json:"service_type" binding:"required"`
	ScheduledDate string `json:"scheduled_date" binding:"required"`
	TimeSlot      string `json:"time_slot" binding:"required"`
	Notes         string `json:"notes"`
}

// RescheduleRequest moves a booking to another date and slot.
type RescheduleRequest struct {
	ScheduledDate string `json:"scheduled_date" binding:"required"`
	TimeSlot      string `json:"time_slot" binding:"required"`
	Reason        string `json:"reason" binding:"required"`
}

// FeedbackRequest is submitted by the customer after the wash.
type FeedbackRequest struct {
	Phone   string `json:"phone" binding:"required"`
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                 uuid.UUID                    `json:"id"`
	BookingNumber      string                       `json:"booking_number"`
	CustomerName       string                       `json:"customer_name"`
	Phone              string                       `json:"phone"`
	Location           string                       `json:"location"`
	VehicleClass       string                       `json:"vehicle_class"`
	ServiceType        string                       `json:"service_type"`
	ScheduledDate      string                       `json:"scheduled_date"`
	TimeSlot           string                       `json:"time_slot"`
	Status             string                       `json:"status"`
	Price              int64                        `json:"price"`
	Currency           string                       `json:"currency"`
	AssignedWorkerID   *uuid.UUID                   `json:"assigned_worker_id,omitempty"`
	PaymentStatus      string                       `json:"payment_status"`
	PaymentReference   string                       `json:"payment_reference,omitempty"`
	RejectionReason    string                       `json:"rejection_reason,omitempty"`
	RejectedBy         *bookingDomain.Actor         `json:"rejected_by,omitempty"`
	RejectedAt         *time.Time                   `json:"rejected_at,omitempty"`
	CancellationReason string                       `json:"cancellation_reason,omitempty"`
	CancelledBy        *bookingDomain.Actor         `json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time                   `json:"cancelled_at,omitempty"`
	CompletedAt        *time.Time                   `json:"completed_at,omitempty"`
	DeliveredAt        *time.Time                   `json:"delivered_at,omitempty"`
	Modifications      []bookingDomain.Modification `json:"modifications"`
	Feedback           *bookingDomain.Feedback      `json:"feedback,omitempty"`
	Notes              string                       `json:"notes,omitempty"`
	Version            int64                        `json:"version"`
	CreatedAt          time.Time                    `json:"created_at"`
	UpdatedAt          time.Time                    `json:"updated_at"`
}

// CustomerBookingsDTO answers a phone lookup.
type CustomerBookingsDTO struct {
	Phone         string       `json:"phone"`
	LoyaltyPoints int          `json:"loyalty_points"`
	Bookings      []BookingDTO `json:"bookings"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// WorkerDTO is the response representation of a worker. The password hash
// never leaves the service.
type WorkerDTO struct {
	ID               uuid.UUID                 `json:"id"`
	Name             string                    `json:"name"`
	Email            string                    `json:"email"`
	Phone            string                    `json:"phone"`
	Role             string                    `json:"role"`
	IsActive         bool                      `json:"is_active"`
	Status           string                    `json:"status"`
	CurrentBookingID *uuid.UUID                `json:"current_booking_id,omitempty"`
	TotalEarnings    int64                     `json:"total_earnings"`
	JobRequests      []workerDomain.JobRequest `json:"job_requests"`
	Version          int64                     `json:"version"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

// EarningsDTO is a worker's earnings summary.
type EarningsDTO struct {
	WorkerID      uuid.UUID                   `json:"worker_id"`
	Currency      string                      `json:"currency"`
	TotalEarnings int64                       `json:"total_earnings"`
	Today         workerDomain.DailyEarning   `json:"today"`
	Daily         []workerDomain.DailyEarning `json:"daily"`
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:                 bk.ID(),
		BookingNumber:      bk.BookingNumber(),
		CustomerName:       bk.CustomerName(),
		Phone:              bk.Phone(),
		Location:           bk.Location(),
		VehicleClass:       string(bk.VehicleClass()),
		ServiceType:        string(bk.ServiceType()),
		ScheduledDate:      bk.ScheduledDate().Format(bookingDomain.DateLayout),
		TimeSlot:           string(bk.TimeSlot()),
		Status:             string(bk.Status()),
		Price:              bk.Price(),
		Currency:           domain.CurrencyKES,
		AssignedWorkerID:   bk.AssignedWorkerID(),
		PaymentStatus:      string(bk.PaymentStatus()),
		PaymentReference:   bk.PaymentReference(),
		RejectionReason:    bk.RejectionReason(),
		RejectedBy:         bk.RejectedBy(),
		RejectedAt:         bk.RejectedAt(),
		CancellationReason: bk.CancellationReason(),
		CancelledBy:        bk.CancelledBy(),
		CancelledAt:        bk.CancelledAt(),
		CompletedAt:        bk.CompletedAt(),
		DeliveredAt:        bk.DeliveredAt(),
		Modifications:      bk.Modifications(),
		Feedback:           bk.Feedback(),
		Notes:              bk.Notes(),
		Version:            bk.Version(),
		CreatedAt:          bk.CreatedAt(),
		UpdatedAt:          bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func toWorkerDTO(w *workerDomain.Worker) WorkerDTO {
	return WorkerDTO{
		ID:               w.ID(),
		Name:             w.Name(),
		Email:            w.Email(),
		Phone:            w.Phone(),
		Role:             string(w.Role()),
		IsActive:         w.IsActive(),
		Status:           string(w.Availability()),
		CurrentBookingID: w.CurrentBookingID(),
		TotalEarnings:    w.TotalEarnings(),
		JobRequests:      w.JobRequests(),
		Version:          w.Version(),
		CreatedAt:        w.CreatedAt(),
		UpdatedAt:        w.UpdatedAt(),
	}
}
