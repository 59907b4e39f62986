//go:build integration

package main_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingDomain "github.com/SwiftWash/service-booking/internal/domain/booking"
	workerDomain "github.com/SwiftWash/service-booking/internal/domain/worker"
	bookingEvents "github.com/SwiftWash/service-booking/internal/events"
	"github.com/SwiftWash/service-booking/internal/repository"
	"github.com/SwiftWash/service-booking/internal/repository/mongodb"
	"github.com/SwiftWash/service-booking/pkg/domain"
)

// TestPaymentCaptured_MarksBookingPaid verifies that a payment.captured event
// on payment.events marks the booking paid and that lifecycle events reach
// booking.events.
func TestPaymentCaptured_MarksBookingPaid(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupServiceStack(t,
		repository.NewGormBookingRepository(infra.DB),
		repository.NewGormWorkerRepository(infra.DB),
		infra.KafkaBrokers,
	)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	bookingID, _ := createConfirmedAssignment(t, stack)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // consumer group join

	evt := bookingEvents.PaymentCapturedEvent{
		PaymentID:  uuid.New(),
		BookingID:  bookingID,
		Amount:     200,
		Currency:   "KES",
		Reference:  "MPESA-QX81K2",
		OccurredAt: time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, bookingEvents.TopicPaymentEvents,
		"service-payment", bookingEvents.PaymentCaptured, bookingID.String(), evt)

	model := waitForPaymentStatus(t, infra.DB, bookingID, "paid", 15*time.Second)
	assert.Equal(t, "MPESA-QX81K2", model.PaymentReference)
	assert.Equal(t, "confirmed", model.Status)

	ce := consumeOneEvent(t, infra.KafkaBrokers, bookingEvents.TopicBookingEvents,
		bookingEvents.BookingAssigned, 15*time.Second)
	var assigned bookingEvents.BookingAssignedEvent
	require.NoError(t, ce.ParseData(&assigned))
	assert.Equal(t, bookingID, assigned.BookingID)
}

// TestPostgres_ConcurrentDoneCreditsOnce races many finishers on one booking
// and expects exactly one earnings credit.
func TestPostgres_ConcurrentDoneCreditsOnce(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	stack := setupServiceStack(t,
		repository.NewGormBookingRepository(db),
		repository.NewGormWorkerRepository(db),
		nil,
	)
	ctx := context.Background()
	bookingID, workerID := createConfirmedAssignment(t, stack)

	_, err := stack.Bookings.TransitionStatus(ctx, bookingID, bookingDomain.StatusStartedCleaning, "", adminActor)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = stack.Bookings.TransitionStatus(ctx, bookingID, bookingDomain.StatusDone, "", adminActor)
		}()
	}
	wg.Wait()

	earnings, err := stack.Workers.GetEarnings(ctx, workerID)
	require.NoError(t, err)
	assert.Equal(t, int64(80), earnings.TotalEarnings)
	assert.Equal(t, int64(80), earnings.Today.Amount)
	assert.Equal(t, 1, earnings.Today.TasksCompleted)

	var ledgerRows int64
	require.NoError(t, db.Model(&repository.WorkerDailyEarningModel{}).
		Where("worker_id = ?", workerID).Count(&ledgerRows).Error)
	assert.Equal(t, int64(1), ledgerRows)

	w, err := stack.Workers.GetWorker(ctx, workerID)
	require.NoError(t, err)
	assert.Nil(t, w.CurrentBookingID)
}

// TestPostgres_StaleStatusUpdate checks the compare-and-set on status.
func TestPostgres_StaleStatusUpdate(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	repo := repository.NewGormBookingRepository(db)
	stack := setupServiceStack(t, repo, repository.NewGormWorkerRepository(db), nil)
	bookingID, _ := createConfirmedAssignment(t, stack)

	bk, err := stack.Bookings.GetBooking(context.Background(), bookingID)
	require.NoError(t, err)
	byNumber, err := stack.Bookings.GetBookingByNumber(context.Background(), bk.BookingNumber)
	require.NoError(t, err)
	assert.Equal(t, bookingID, byNumber.ID)

	assertStaleStatusUpdate(t, repo, bookingID)
}

// TestMongo_StatusAndEarnings runs the same lifecycle on the document store.
func TestMongo_StatusAndEarnings(t *testing.T) {
	db, cleanup := setupMongo(t)
	defer cleanup()

	ctx := context.Background()
	bookingRepo := mongodb.NewBookingRepository(db)
	workerRepo := mongodb.NewWorkerRepository(db)
	require.NoError(t, bookingRepo.EnsureIndexes(ctx))
	require.NoError(t, workerRepo.EnsureIndexes(ctx))

	stack := setupServiceStack(t, bookingRepo, workerRepo, nil)
	bookingID, workerID := createConfirmedAssignment(t, stack)

	found, err := stack.Bookings.LookupByPhone(ctx, "+254712345678")
	require.NoError(t, err)
	require.Len(t, found.Bookings, 1)
	assert.Equal(t, bookingID, found.Bookings[0].ID)

	byNumber, err := stack.Bookings.GetBookingByNumber(ctx, found.Bookings[0].BookingNumber)
	require.NoError(t, err)
	assert.Equal(t, bookingID, byNumber.ID)

	for _, st := range []bookingDomain.BookingStatus{bookingDomain.StatusStartedCleaning, bookingDomain.StatusDone} {
		_, err := stack.Bookings.TransitionStatus(ctx, bookingID, st, "", adminActor)
		require.NoError(t, err)
	}

	earnings, err := stack.Workers.GetEarnings(ctx, workerID)
	require.NoError(t, err)
	assert.Equal(t, workerDomain.EarningsFor(200), earnings.TotalEarnings)

	_, err = stack.Workers.DeactivateWorker(ctx, workerID)
	require.NoError(t, err)

	nextID, _ := createConfirmedAssignment(t, stack)
	_, err = stack.Bookings.AssignWorker(ctx, nextID, workerID, adminActor)
	require.ErrorIs(t, err, domain.ErrInactiveWorker)

	assertStaleStatusUpdate(t, bookingRepo, nextID)
}

func assertStaleStatusUpdate(t *testing.T, repo bookingDomain.BookingRepository, bookingID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	first, err := repo.FindByID(ctx, bookingID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, bookingID)
	require.NoError(t, err)

	change, err := first.TransitionTo(bookingDomain.StatusStartedCleaning, "", adminActor)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, first, *change))

	change, err = second.TransitionTo(bookingDomain.StatusRejected, "late", adminActor)
	require.NoError(t, err)
	err = repo.UpdateStatus(ctx, second, *change)
	assert.ErrorIs(t, err, domain.ErrStaleState)

	stored, err := repo.FindByID(ctx, bookingID)
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusStartedCleaning, stored.Status())
	assert.Empty(t, stored.RejectionReason())
}
