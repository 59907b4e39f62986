package worker

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SwiftWash/service-booking/pkg/domain"
)

// EarningsShare is the fraction of a booking's price credited to the worker.
const EarningsShare = 0.4

// EarningsFor returns the worker's share of a booking price, rounded to the
// nearest whole unit.
func EarningsFor(price int64) int64 {
	return int64(math.Round(float64(price) * EarningsShare))
}

// Role is the worker's position in the crew.
type Role string

const (
	RoleWorker     Role = "worker"
	RoleSupervisor Role = "supervisor"
)

// IsValid returns true for a known role.
func (r Role) IsValid() bool {
	return r == RoleWorker || r == RoleSupervisor
}

// Availability is self-reported and independent of booking state.
type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityBusy      Availability = "busy"
	AvailabilityOffline   Availability = "offline"
)

// ParseAvailability validates an availability string.
func ParseAvailability(s string) (Availability, error) {
	switch a := Availability(s); a {
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityOffline:
		return a, nil
	}
	return "", domain.NewValidationError(fmt.Sprintf("invalid availability: %s", s))
}

// DailyEarning is one date's entry in the earnings ledger.
type DailyEarning struct {
	Date           string `json:"date"`
	Amount         int64  `json:"amount"`
	TasksCompleted int    `json:"tasks_completed"`
}

// JobRequestStatus is the admin's decision on a job request.
type JobRequestStatus string

const (
	JobRequestPending  JobRequestStatus = "pending"
	JobRequestApproved JobRequestStatus = "approved"
	JobRequestRejected JobRequestStatus = "rejected"
)

// JobRequest is a worker's request to the admin, e.g. for more shifts.
type JobRequest struct {
	ID            uuid.UUID        `json:"id"`
	Message       string           `json:"message"`
	Date          time.Time        `json:"date"`
	Status        JobRequestStatus `json:"status"`
	AdminResponse string           `json:"admin_response,omitempty"`
	RespondedAt   *time.Time       `json:"responded_at,omitempty"`
}

// Worker is the aggregate root for crew members.
type Worker struct {
	id               uuid.UUID
	name             string
	email            string
	phone            string
	passwordHash     string
	role             Role
	isActive         bool
	availability     Availability
	currentBookingID *uuid.UUID
	totalEarnings    int64
	dailyEarnings    []DailyEarning
	jobRequests      []JobRequest
	version          int64
	createdAt        time.Time
	updatedAt        time.Time
}

// Snapshot is the persisted form of a Worker.
type Snapshot struct {
	ID               uuid.UUID
	Name             string
	Email            string
	Phone            string
	PasswordHash     string
	Role             Role
	IsActive         bool
	Availability     Availability
	CurrentBookingID *uuid.UUID
	TotalEarnings    int64
	DailyEarnings    []DailyEarning
	JobRequests      []JobRequest
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewWorker creates an active, offline worker. phone must already be canonical.
func NewWorker(name, email, phone, passwordHash string, role Role) (*Worker, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, domain.NewValidationError("worker name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid email: %s", email))
	}
	if phone == "" {
		return nil, domain.NewValidationError("phone is required")
	}
	if passwordHash == "" {
		return nil, domain.NewValidationError("password is required")
	}
	if role == "" {
		role = RoleWorker
	}
	if !role.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid role: %s", role))
	}

	now := time.Now().UTC()
	return &Worker{
		id:           uuid.New(),
		name:         name,
		email:        email,
		phone:        phone,
		passwordHash: passwordHash,
		role:         role,
		isActive:     true,
		availability: AvailabilityOffline,
		version:      1,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructWorker rebuilds a Worker from persistence data (no validation).
func ReconstructWorker(s Snapshot) *Worker {
	return &Worker{
		id:               s.ID,
		name:             s.Name,
		email:            s.Email,
		phone:            s.Phone,
		passwordHash:     s.PasswordHash,
		role:             s.Role,
		isActive:         s.IsActive,
		availability:     s.Availability,
		currentBookingID: s.CurrentBookingID,
		totalEarnings:    s.TotalEarnings,
		dailyEarnings:    append([]DailyEarning(nil), s.DailyEarnings...),
		jobRequests:      append([]JobRequest(nil), s.JobRequests...),
		version:          s.Version,
		createdAt:        s.CreatedAt,
		updatedAt:        s.UpdatedAt,
	}
}

// Snapshot returns a copy of the worker's state for persistence.
func (w *Worker) Snapshot() Snapshot {
	return Snapshot{
		ID:               w.id,
		Name:             w.name,
		Email:            w.email,
		Phone:            w.phone,
		PasswordHash:     w.passwordHash,
		Role:             w.role,
		IsActive:         w.isActive,
		Availability:     w.availability,
		CurrentBookingID: w.currentBookingID,
		TotalEarnings:    w.totalEarnings,
		DailyEarnings:    w.DailyEarnings(),
		JobRequests:      w.JobRequests(),
		Version:          w.version,
		CreatedAt:        w.createdAt,
		UpdatedAt:        w.updatedAt,
	}
}

func (w *Worker) ID() uuid.UUID                { return w.id }
func (w *Worker) Name() string                 { return w.name }
func (w *Worker) Email() string                { return w.email }
func (w *Worker) Phone() string                { return w.phone }
func (w *Worker) PasswordHash() string         { return w.passwordHash }
func (w *Worker) Role() Role                   { return w.role }
func (w *Worker) IsActive() bool               { return w.isActive }
func (w *Worker) Availability() Availability   { return w.availability }
func (w *Worker) CurrentBookingID() *uuid.UUID { return w.currentBookingID }
func (w *Worker) TotalEarnings() int64         { return w.totalEarnings }
func (w *Worker) Version() int64               { return w.version }
func (w *Worker) CreatedAt() time.Time         { return w.createdAt }
func (w *Worker) UpdatedAt() time.Time         { return w.updatedAt }

// DailyEarnings returns a copy of the ledger, oldest date first.
func (w *Worker) DailyEarnings() []DailyEarning {
	out := make([]DailyEarning, len(w.dailyEarnings))
	copy(out, w.dailyEarnings)
	return out
}

// JobRequests returns a copy of the job request log.
func (w *Worker) JobRequests() []JobRequest {
	out := make([]JobRequest, len(w.jobRequests))
	copy(out, w.jobRequests)
	return out
}

// EarningsOn returns the ledger entry for date, or a zero entry.
func (w *Worker) EarningsOn(date string) DailyEarning {
	for _, e := range w.dailyEarnings {
		if e.Date == date {
			return e
		}
	}
	return DailyEarning{Date: date}
}

// EnsureAssignable returns InactiveWorker if the worker has been deactivated.
func (w *Worker) EnsureAssignable() error {
	if !w.isActive {
		return domain.NewInactiveWorkerError(w.id.String())
	}
	return nil
}

// Deactivate soft-deletes the worker.
func (w *Worker) Deactivate() {
	w.isActive = false
	w.availability = AvailabilityOffline
	w.updatedAt = time.Now().UTC()
}

// Activate restores a deactivated worker.
func (w *Worker) Activate() {
	w.isActive = true
	w.updatedAt = time.Now().UTC()
}

// SetAvailability records the worker's self-reported status.
func (w *Worker) SetAvailability(a Availability) error {
	if !w.isActive {
		return domain.NewInactiveWorkerError(w.id.String())
	}
	w.availability = a
	w.updatedAt = time.Now().UTC()
	return nil
}

// SubmitJobRequest appends a pending job request.
func (w *Worker) SubmitJobRequest(message string) (JobRequest, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return JobRequest{}, domain.NewValidationError("job request message is required")
	}
	now := time.Now().UTC()
	req := JobRequest{
		ID:      uuid.New(),
		Message: message,
		Date:    now,
		Status:  JobRequestPending,
	}
	w.jobRequests = append(w.jobRequests, req)
	w.updatedAt = now
	return req, nil
}

// RespondToJobRequest records the admin's decision on a pending request.
func (w *Worker) RespondToJobRequest(requestID uuid.UUID, approve bool, response string) (JobRequest, error) {
	for i := range w.jobRequests {
		if w.jobRequests[i].ID != requestID {
			continue
		}
		if w.jobRequests[i].Status != JobRequestPending {
			return JobRequest{}, domain.NewInvalidOperationError("job request has already been answered")
		}
		now := time.Now().UTC()
		status := JobRequestRejected
		if approve {
			status = JobRequestApproved
		}
		w.jobRequests[i].Status = status
		w.jobRequests[i].AdminResponse = strings.TrimSpace(response)
		w.jobRequests[i].RespondedAt = &now
		w.updatedAt = now
		return w.jobRequests[i], nil
	}
	return JobRequest{}, domain.NewNotFoundError("JobRequest", requestID.String())
}

// IncrementVersion bumps the version for optimistic locking.
func (w *Worker) IncrementVersion() {
	w.version++
	w.updatedAt = time.Now().UTC()
}
