package booking

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SwiftWash/service-booking/pkg/domain"
)

var adminActor = Actor{Kind: ActorAdmin, ID: "admin-1"}

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	date, err := ParseScheduledDate("2026-11-02")
	require.NoError(t, err)
	bk, err := NewBooking("Jane Wanjiku", "+254712345678", "Kilimani, Nairobi",
		VehicleSaloon, ServiceBodyWash, date, "09:00", 200, "")
	require.NoError(t, err)
	return bk
}

func TestNewBooking(t *testing.T) {
	bk := newTestBooking(t)
	assert.Equal(t, StatusPending, bk.Status())
	assert.Equal(t, int64(200), bk.Price())
	assert.True(t, strings.HasPrefix(bk.BookingNumber(), "SW-"))
	assert.Len(t, bk.BookingNumber(), 9)
	assert.Equal(t, PaymentUnpaid, bk.PaymentStatus())
	assert.Nil(t, bk.CompletedAt())
	assert.Nil(t, bk.AssignedWorkerID())
	assert.Equal(t, int64(1), bk.Version())
}

func TestNewBooking_Validation(t *testing.T) {
	date := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		build func() (*Booking, error)
	}{
		{"missing name", func() (*Booking, error) {
			return NewBooking(" ", "+254712345678", "Westlands", VehicleSaloon, ServiceBodyWash, date, "09:00", 200, "")
		}},
		{"missing location", func() (*Booking, error) {
			return NewBooking("Jane", "+254712345678", "", VehicleSaloon, ServiceBodyWash, date, "09:00", 200, "")
		}},
		{"bad vehicle", func() (*Booking, error) {
			return NewBooking("Jane", "+254712345678", "Westlands", "bus", ServiceBodyWash, date, "09:00", 200, "")
		}},
		{"bad slot", func() (*Booking, error) {
			return NewBooking("Jane", "+254712345678", "Westlands", VehicleSaloon, ServiceBodyWash, date, "07:00", 200, "")
		}},
		{"zero date", func() (*Booking, error) {
			return NewBooking("Jane", "+254712345678", "Westlands", VehicleSaloon, ServiceBodyWash, time.Time{}, "09:00", 200, "")
		}},
		{"zero price", func() (*Booking, error) {
			return NewBooking("Jane", "+254712345678", "Westlands", VehicleSaloon, ServiceBodyWash, date, "09:00", 0, "")
		}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestTransitionTo_ForwardWalkStampsTimestamps(t *testing.T) {
	bk := newTestBooking(t)

	_, err := bk.TransitionTo(StatusConfirmed, "", adminActor)
	require.NoError(t, err)

	_, err = bk.TransitionTo(StatusDelivered, "", adminActor)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, StatusConfirmed, bk.Status())

	_, err = bk.TransitionTo(StatusStartedCleaning, "", adminActor)
	require.NoError(t, err)
	assert.Nil(t, bk.CompletedAt())

	change, err := bk.TransitionTo(StatusDone, "", adminActor)
	require.NoError(t, err)
	assert.Equal(t, StatusStartedCleaning, change.From)
	assert.Equal(t, StatusDone, change.To)
	require.NotNil(t, bk.CompletedAt())
	assert.Nil(t, bk.DeliveredAt())

	_, err = bk.TransitionTo(StatusDelivered, "", adminActor)
	require.NoError(t, err)
	assert.NotNil(t, bk.CompletedAt())
	assert.NotNil(t, bk.DeliveredAt())

	mods := bk.Modifications()
	require.Len(t, mods, 4)
	assert.Equal(t, ModificationStatusChange, mods[3].Type)
	assert.Equal(t, "done", mods[3].OldValue)
	assert.Equal(t, "delivered", mods[3].NewValue)
}

func TestTransitionTo_RejectRequiresReason(t *testing.T) {
	bk := newTestBooking(t)

	_, err := bk.TransitionTo(StatusRejected, "  ", adminActor)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, StatusPending, bk.Status())
	assert.Empty(t, bk.Modifications())

	_, err = bk.TransitionTo(StatusRejected, "customer unreachable", adminActor)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, bk.Status())
	assert.Equal(t, "customer unreachable", bk.RejectionReason())
	require.NotNil(t, bk.RejectedBy())
	assert.Equal(t, adminActor, *bk.RejectedBy())
	assert.NotNil(t, bk.RejectedAt())
	assert.Nil(t, bk.CompletedAt())
	assert.Nil(t, bk.DeliveredAt())

	for _, s := range AllStatuses() {
		_, err := bk.TransitionTo(s, "again", adminActor)
		assert.Error(t, err, "transition to %s must fail from rejected", s)
	}
}

func TestTransitionTo_CancelStoresActor(t *testing.T) {
	bk := newTestBooking(t)
	customer := Actor{Kind: ActorCustomer, ID: "+254712345678"}

	_, err := bk.TransitionTo(StatusCancelled, "changed plans", customer)
	require.NoError(t, err)
	assert.Equal(t, "changed plans", bk.CancellationReason())
	assert.Equal(t, customer, *bk.CancelledBy())
	assert.NotNil(t, bk.CancelledAt())
}

func TestAssignWorker_OverwritesAndLogs(t *testing.T) {
	bk := newTestBooking(t)
	w1, w2 := uuid.New(), uuid.New()

	prev, err := bk.AssignWorker(w1, adminActor)
	require.NoError(t, err)
	assert.Nil(t, prev)
	assert.Equal(t, StatusPending, bk.Status())

	prev, err = bk.AssignWorker(w2, adminActor)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, w1, *prev)
	assert.Equal(t, w2, *bk.AssignedWorkerID())

	mods := bk.Modifications()
	require.Len(t, mods, 2)
	assert.Equal(t, ModificationAssignment, mods[1].Type)
	assert.Equal(t, w1.String(), mods[1].OldValue)
	assert.Equal(t, w2.String(), mods[1].NewValue)

	_, err = bk.AssignWorker(uuid.Nil, adminActor)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReschedule(t *testing.T) {
	bk := newTestBooking(t)
	newDate := time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC)

	assert.ErrorIs(t, bk.Reschedule(newDate, "10:00", "", adminActor), domain.ErrValidation)
	require.NoError(t, bk.Reschedule(newDate, "10:00", "customer asked", adminActor))
	assert.Equal(t, TimeSlot("10:00"), bk.TimeSlot())
	assert.Equal(t, int64(200), bk.Price())
	mods := bk.Modifications()
	require.Len(t, mods, 1)
	assert.Equal(t, "2026-11-02 09:00", mods[0].OldValue)
	assert.Equal(t, "2026-11-05 10:00", mods[0].NewValue)

	_, err := bk.TransitionTo(StatusConfirmed, "", adminActor)
	require.NoError(t, err)
	_, err = bk.TransitionTo(StatusStartedCleaning, "", adminActor)
	require.NoError(t, err)
	err = bk.Reschedule(newDate, "11:00", "late", adminActor)
	assert.ErrorIs(t, err, &domain.DomainError{Code: domain.CodeInvalidOperation})
}

func TestSubmitFeedback(t *testing.T) {
	bk := newTestBooking(t)
	worker := uuid.New()
	_, err := bk.AssignWorker(worker, adminActor)
	require.NoError(t, err)

	assert.Error(t, bk.SubmitFeedback(5, "great"))

	for _, s := range []BookingStatus{StatusConfirmed, StatusStartedCleaning, StatusDone} {
		_, err := bk.TransitionTo(s, "", adminActor)
		require.NoError(t, err)
	}

	assert.ErrorIs(t, bk.SubmitFeedback(6, ""), domain.ErrValidation)
	require.NoError(t, bk.SubmitFeedback(4, " spotless "))
	require.NotNil(t, bk.Feedback())
	assert.Equal(t, 4, bk.Feedback().Rating)
	assert.Equal(t, "spotless", bk.Feedback().Comment)
	assert.Equal(t, worker, *bk.Feedback().WorkerID)

	assert.ErrorIs(t, bk.SubmitFeedback(3, "again"), domain.ErrConflict)
}

func TestMarkPaid(t *testing.T) {
	bk := newTestBooking(t)
	system := Actor{Kind: ActorSystem}
	assert.True(t, bk.MarkPaid("MPESA-123", system))
	assert.False(t, bk.MarkPaid("MPESA-123", system))
	assert.Equal(t, PaymentPaid, bk.PaymentStatus())
	assert.Equal(t, "MPESA-123", bk.PaymentReference())
	assert.Len(t, bk.Modifications(), 1)
}

func TestSnapshotRoundTrip(t *testing.T) {
	bk := newTestBooking(t)
	_, err := bk.TransitionTo(StatusConfirmed, "", adminActor)
	require.NoError(t, err)

	restored := ReconstructBooking(bk.Snapshot())
	assert.Equal(t, bk.Snapshot(), restored.Snapshot())

	// The audit log is copied, not shared.
	snap := restored.Snapshot()
	snap.Modifications[0].Reason = "tampered"
	assert.Empty(t, restored.Modifications()[0].Reason)
}

func TestLoyaltyPoints(t *testing.T) {
	delivered := newTestBooking(t)
	for _, s := range []BookingStatus{StatusConfirmed, StatusStartedCleaning, StatusDone, StatusDelivered} {
		_, err := delivered.TransitionTo(s, "", adminActor)
		require.NoError(t, err)
	}
	pending := newTestBooking(t)

	assert.Equal(t, LoyaltyPointsPerBooking, LoyaltyPoints([]*Booking{delivered, pending}))
	assert.Equal(t, 0, LoyaltyPoints(nil))
}
