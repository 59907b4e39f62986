package worker

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SwiftWash/service-booking/pkg/domain"
)

func newTestWorker(t *testing.T) *Worker {
	t.Helper()
	w, err := NewWorker("Brian Otieno", "Brian@SwiftWash.co.ke", "+254722000111", "hash", "")
	require.NoError(t, err)
	return w
}

func TestEarningsFor(t *testing.T) {
	assert.Equal(t, int64(80), EarningsFor(200))
	assert.Equal(t, int64(600), EarningsFor(1500))
	assert.Equal(t, int64(100), EarningsFor(250))
	assert.Equal(t, int64(60), EarningsFor(150))
	// 0.4 * 1 = 0.4 rounds down, 0.4 * 4 = 1.6 rounds up.
	assert.Equal(t, int64(0), EarningsFor(1))
	assert.Equal(t, int64(2), EarningsFor(4))
}

func TestNewWorker(t *testing.T) {
	w := newTestWorker(t)
	assert.Equal(t, "brian@swiftwash.co.ke", w.Email())
	assert.Equal(t, RoleWorker, w.Role())
	assert.True(t, w.IsActive())
	assert.Equal(t, AvailabilityOffline, w.Availability())
	assert.NoError(t, w.EnsureAssignable())

	_, err := NewWorker("X", "not-an-email", "+254722000111", "hash", RoleWorker)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = NewWorker("X", "x@y.z", "+254722000111", "hash", "manager")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = NewWorker("", "x@y.z", "+254722000111", "hash", RoleSupervisor)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeactivate(t *testing.T) {
	w := newTestWorker(t)
	w.Deactivate()
	assert.False(t, w.IsActive())
	assert.ErrorIs(t, w.EnsureAssignable(), domain.ErrInactiveWorker)
	assert.ErrorIs(t, w.SetAvailability(AvailabilityAvailable), domain.ErrInactiveWorker)

	w.Activate()
	assert.NoError(t, w.SetAvailability(AvailabilityBusy))
	assert.Equal(t, AvailabilityBusy, w.Availability())
}

func TestParseAvailability(t *testing.T) {
	a, err := ParseAvailability("available")
	require.NoError(t, err)
	assert.Equal(t, AvailabilityAvailable, a)
	_, err = ParseAvailability("sleeping")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestJobRequests(t *testing.T) {
	w := newTestWorker(t)

	_, err := w.SubmitJobRequest("  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	req, err := w.SubmitJobRequest("Can I take the Saturday shift?")
	require.NoError(t, err)
	assert.Equal(t, JobRequestPending, req.Status)

	answered, err := w.RespondToJobRequest(req.ID, true, "Approved")
	require.NoError(t, err)
	assert.Equal(t, JobRequestApproved, answered.Status)
	assert.NotNil(t, answered.RespondedAt)

	_, err = w.RespondToJobRequest(req.ID, false, "changed my mind")
	assert.Error(t, err)

	_, err = w.RespondToJobRequest(uuid.New(), true, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.Len(t, w.JobRequests(), 1)
	assert.Equal(t, "Approved", w.JobRequests()[0].AdminResponse)
}

func TestEarningsOn(t *testing.T) {
	w := ReconstructWorker(Snapshot{
		ID:            uuid.New(),
		IsActive:      true,
		TotalEarnings: 180,
		DailyEarnings: []DailyEarning{{Date: "2026-10-18", Amount: 180, TasksCompleted: 2}},
	})
	assert.Equal(t, int64(180), w.EarningsOn("2026-10-18").Amount)
	assert.Equal(t, DailyEarning{Date: "2026-10-19"}, w.EarningsOn("2026-10-19"))
}
