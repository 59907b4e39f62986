package mongodb

import (
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/SwiftWash/service-booking/internal/domain/booking"
	workerDomain "github.com/SwiftWash/service-booking/internal/domain/worker"
)

type actorDoc struct {
	Kind string `bson:"kind"`
	ID   string `bson:"id,omitempty"`
}

type modificationDoc struct {
	Type      string    `bson:"type"`
	OldValue  string    `bson:"old_value"`
	NewValue  string    `bson:"new_value"`
	Reason    string    `bson:"reason,omitempty"`
	Actor     actorDoc  `bson:"actor"`
	Timestamp time.Time `bson:"timestamp"`
}

type feedbackDoc struct {
	Rating      int       `bson:"rating"`
	Comment     string    `bson:"comment,omitempty"`
	SubmittedAt time.Time `bson:"submitted_at"`
	WorkerID    string    `bson:"worker_id,omitempty"`
}

type bookingDoc struct {
	ID                 string            `bson:"_id"`
	BookingNumber      string            `bson:"booking_number"`
	CustomerName       string            `bson:"customer_name"`
	Phone              string            `bson:"phone"`
	Location           string            `bson:"location"`
	VehicleClass       string            `bson:"vehicle_class"`
	ServiceType        string            `bson:"service_type"`
	ScheduledDate      string            `bson:"scheduled_date"`
	TimeSlot           string            `bson:"time_slot"`
	Status             string            `bson:"status"`
	Price              int64             `bson:"price"`
	Notes              string            `bson:"notes,omitempty"`
	AssignedWorkerID   string            `bson:"assigned_worker_id,omitempty"`
	PaymentStatus      string            `bson:"payment_status"`
	PaymentReference   string            `bson:"payment_reference,omitempty"`
	RejectionReason    string            `bson:"rejection_reason,omitempty"`
	RejectedBy         *actorDoc         `bson:"rejected_by,omitempty"`
	RejectedAt         *time.Time        `bson:"rejected_at,omitempty"`
	CancellationReason string            `bson:"cancellation_reason,omitempty"`
	CancelledBy        *actorDoc         `bson:"cancelled_by,omitempty"`
	CancelledAt        *time.Time        `bson:"cancelled_at,omitempty"`
	CompletedAt        *time.Time        `bson:"completed_at,omitempty"`
	DeliveredAt        *time.Time        `bson:"delivered_at,omitempty"`
	Modifications      []modificationDoc `bson:"modifications"`
	Feedback           *feedbackDoc      `bson:"feedback,omitempty"`
	Version            int64             `bson:"version"`
	CreatedAt          time.Time         `bson:"created_at"`
	UpdatedAt          time.Time         `bson:"updated_at"`
}

type dailyEarningDoc struct {
	Date           string `bson:"date"`
	Amount         int64  `bson:"amount"`
	TasksCompleted int    `bson:"tasks_completed"`
}

type jobRequestDoc struct {
	ID            string     `bson:"id"`
	Message       string     `bson:"message"`
	Date          time.Time  `bson:"date"`
	Status        string     `bson:"status"`
	AdminResponse string     `bson:"admin_response,omitempty"`
	RespondedAt   *time.Time `bson:"responded_at,omitempty"`
}

type workerDoc struct {
	ID               string            `bson:"_id"`
	Name             string            `bson:"name"`
	Email            string            `bson:"email"`
	Phone            string            `bson:"phone"`
	PasswordHash     string            `bson:"password_hash"`
	Role             string            `bson:"role"`
	IsActive         bool              `bson:"is_active"`
	Availability     string            `bson:"availability"`
	CurrentBookingID string            `bson:"current_booking_id,omitempty"`
	TotalEarnings    int64             `bson:"total_earnings"`
	DailyEarnings    []dailyEarningDoc `bson:"daily_earnings"`
	JobRequests      []jobRequestDoc   `bson:"job_requests"`
	Version          int64             `bson:"version"`
	CreatedAt        time.Time         `bson:"created_at"`
	UpdatedAt        time.Time         `bson:"updated_at"`
}

func optionalID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func parseOptionalID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

func toActorDoc(a *bookingDomain.Actor) *actorDoc {
	if a == nil {
		return nil
	}
	return &actorDoc{Kind: string(a.Kind), ID: a.ID}
}

func (d *actorDoc) toDomain() *bookingDomain.Actor {
	if d == nil {
		return nil
	}
	return &bookingDomain.Actor{Kind: bookingDomain.ActorKind(d.Kind), ID: d.ID}
}

func toModificationDoc(m bookingDomain.Modification) modificationDoc {
	return modificationDoc{
		Type:      string(m.Type),
		OldValue:  m.OldValue,
		NewValue:  m.NewValue,
		Reason:    m.Reason,
		Actor:     actorDoc{Kind: string(m.Actor.Kind), ID: m.Actor.ID},
		Timestamp: m.Timestamp,
	}
}

func toBookingDoc(bk *bookingDomain.Booking) bookingDoc {
	s := bk.Snapshot()

	mods := make([]modificationDoc, len(s.Modifications))
	for i, m := range s.Modifications {
		mods[i] = toModificationDoc(m)
	}

	var fb *feedbackDoc
	if s.Feedback != nil {
		fb = &feedbackDoc{
			Rating:      s.Feedback.Rating,
			Comment:     s.Feedback.Comment,
			SubmittedAt: s.Feedback.SubmittedAt,
			WorkerID:    optionalID(s.Feedback.WorkerID),
		}
	}

	return bookingDoc{
		ID:                 s.ID.String(),
		BookingNumber:      s.BookingNumber,
		CustomerName:       s.CustomerName,
		Phone:              s.Phone,
		Location:           s.Location,
		VehicleClass:       string(s.VehicleClass),
		ServiceType:        string(s.ServiceType),
		ScheduledDate:      s.ScheduledDate.Format(bookingDomain.DateLayout),
		TimeSlot:           string(s.TimeSlot),
		Status:             string(s.Status),
		Price:              s.Price,
		Notes:              s.Notes,
		AssignedWorkerID:   optionalID(s.AssignedWorkerID),
		PaymentStatus:      string(s.PaymentStatus),
		PaymentReference:   s.PaymentReference,
		RejectionReason:    s.RejectionReason,
		RejectedBy:         toActorDoc(s.RejectedBy),
		RejectedAt:         s.RejectedAt,
		CancellationReason: s.CancellationReason,
		CancelledBy:        toActorDoc(s.CancelledBy),
		CancelledAt:        s.CancelledAt,
		CompletedAt:        s.CompletedAt,
		DeliveredAt:        s.DeliveredAt,
		Modifications:      mods,
		Feedback:           fb,
		Version:            s.Version,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func (d *bookingDoc) toDomain() (*bookingDomain.Booking, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	status, err := bookingDomain.ParseBookingStatus(d.Status)
	if err != nil {
		return nil, err
	}
	date, err := bookingDomain.ParseScheduledDate(d.ScheduledDate)
	if err != nil {
		return nil, err
	}

	mods := make([]bookingDomain.Modification, len(d.Modifications))
	for i, m := range d.Modifications {
		mods[i] = bookingDomain.Modification{
			Type:      bookingDomain.ModificationType(m.Type),
			OldValue:  m.OldValue,
			NewValue:  m.NewValue,
			Reason:    m.Reason,
			Actor:     bookingDomain.Actor{Kind: bookingDomain.ActorKind(m.Actor.Kind), ID: m.Actor.ID},
			Timestamp: m.Timestamp.UTC(),
		}
	}

	var fb *bookingDomain.Feedback
	if d.Feedback != nil {
		fb = &bookingDomain.Feedback{
			Rating:      d.Feedback.Rating,
			Comment:     d.Feedback.Comment,
			SubmittedAt: d.Feedback.SubmittedAt.UTC(),
			WorkerID:    parseOptionalID(d.Feedback.WorkerID),
		}
	}

	return bookingDomain.ReconstructBooking(bookingDomain.Snapshot{
		ID:                 id,
		BookingNumber:      d.BookingNumber,
		CustomerName:       d.CustomerName,
		Phone:              d.Phone,
		Location:           d.Location,
		VehicleClass:       bookingDomain.VehicleClass(d.VehicleClass),
		ServiceType:        bookingDomain.ServiceType(d.ServiceType),
		ScheduledDate:      date,
		TimeSlot:           bookingDomain.TimeSlot(d.TimeSlot),
		Status:             status,
		Price:              d.Price,
		Notes:              d.Notes,
		AssignedWorkerID:   parseOptionalID(d.AssignedWorkerID),
		PaymentStatus:      bookingDomain.PaymentStatus(d.PaymentStatus),
		PaymentReference:   d.PaymentReference,
		RejectionReason:    d.RejectionReason,
		RejectedBy:         d.RejectedBy.toDomain(),
		RejectedAt:         d.RejectedAt,
		CancellationReason: d.CancellationReason,
		CancelledBy:        d.CancelledBy.toDomain(),
		CancelledAt:        d.CancelledAt,
		CompletedAt:        d.CompletedAt,
		DeliveredAt:        d.DeliveredAt,
		Modifications:      mods,
		Feedback:           fb,
		Version:            d.Version,
		CreatedAt:          d.CreatedAt.UTC(),
		UpdatedAt:          d.UpdatedAt.UTC(),
	}), nil
}

func toWorkerDoc(w *workerDomain.Worker) workerDoc {
	s := w.Snapshot()

	ledger := make([]dailyEarningDoc, len(s.DailyEarnings))
	for i, e := range s.DailyEarnings {
		ledger[i] = dailyEarningDoc{Date: e.Date, Amount: e.Amount, TasksCompleted: e.TasksCompleted}
	}
	requests := make([]jobRequestDoc, len(s.JobRequests))
	for i, r := range s.JobRequests {
		requests[i] = toJobRequestDoc(r)
	}

	return workerDoc{
		ID:               s.ID.String(),
		Name:             s.Name,
		Email:            s.Email,
		Phone:            s.Phone,
		PasswordHash:     s.PasswordHash,
		Role:             string(s.Role),
		IsActive:         s.IsActive,
		Availability:     string(s.Availability),
		CurrentBookingID: optionalID(s.CurrentBookingID),
		TotalEarnings:    s.TotalEarnings,
		DailyEarnings:    ledger,
		JobRequests:      requests,
		Version:          s.Version,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func toJobRequestDoc(r workerDomain.JobRequest) jobRequestDoc {
	return jobRequestDoc{
		ID:            r.ID.String(),
		Message:       r.Message,
		Date:          r.Date,
		Status:        string(r.Status),
		AdminResponse: r.AdminResponse,
		RespondedAt:   r.RespondedAt,
	}
}

func (d *workerDoc) toDomain() (*workerDomain.Worker, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}

	ledger := make([]workerDomain.DailyEarning, len(d.DailyEarnings))
	for i, e := range d.DailyEarnings {
		ledger[i] = workerDomain.DailyEarning{Date: e.Date, Amount: e.Amount, TasksCompleted: e.TasksCompleted}
	}
	requests := make([]workerDomain.JobRequest, 0, len(d.JobRequests))
	for _, r := range d.JobRequests {
		reqID, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, err
		}
		requests = append(requests, workerDomain.JobRequest{
			ID:            reqID,
			Message:       r.Message,
			Date:          r.Date.UTC(),
			Status:        workerDomain.JobRequestStatus(r.Status),
			AdminResponse: r.AdminResponse,
			RespondedAt:   r.RespondedAt,
		})
	}

	return workerDomain.ReconstructWorker(workerDomain.Snapshot{
		ID:               id,
		Name:             d.Name,
		Email:            d.Email,
		Phone:            d.Phone,
		PasswordHash:     d.PasswordHash,
		Role:             workerDomain.Role(d.Role),
		IsActive:         d.IsActive,
		Availability:     workerDomain.Availability(d.Availability),
		CurrentBookingID: parseOptionalID(d.CurrentBookingID),
		TotalEarnings:    d.TotalEarnings,
		DailyEarnings:    ledger,
		JobRequests:      requests,
		Version:          d.Version,
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
	}), nil
}
