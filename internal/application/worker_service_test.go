package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	workerDomain "github.com/SwiftWash/service-booking/internal/domain/worker"
	"github.com/SwiftWash/service-booking/pkg/auth"
	"github.com/SwiftWash/service-booking/pkg/domain"
)

func TestCreateWorker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w, err := f.workers.CreateWorker(ctx, CreateWorkerRequest{
		Name:     "Grace Wanjiku",
		Email:    "Grace@SwiftWash.test",
		Phone:    "0722 000 111",
		Password: "long-enough",
		Role:     "Supervisor",
	})
	require.NoError(t, err)
	assert.Equal(t, "grace@swiftwash.test", w.Email)
	assert.Equal(t, "+254722000111", w.Phone)
	assert.Equal(t, "supervisor", w.Role)
	assert.True(t, w.IsActive)

	_, err = f.workers.CreateWorker(ctx, CreateWorkerRequest{
		Name: "Dup", Email: "grace@swiftwash.test", Phone: "0722000112", Password: "long-enough",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.workers.CreateWorker(ctx, CreateWorkerRequest{
		Name: "Short", Email: "short@swiftwash.test", Phone: "0722000113", Password: "short",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.workers.CreateWorker(ctx, CreateWorkerRequest{
		Name: "Chief", Email: "chief@swiftwash.test", Phone: "0722000114", Password: "long-enough", Role: "admin",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWorkerAvailabilityAndActivation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.createWorker(t, "avail@swiftwash.test")

	out, err := f.workers.SetAvailability(ctx, w.ID, "available")
	require.NoError(t, err)
	assert.Equal(t, "available", out.Status)

	_, err = f.workers.SetAvailability(ctx, w.ID, "sleeping")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.workers.DeactivateWorker(ctx, w.ID)
	require.NoError(t, err)
	_, err = f.workers.SetAvailability(ctx, w.ID, "available")
	assert.ErrorIs(t, err, domain.ErrInactiveWorker)

	out, err = f.workers.ActivateWorker(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, out.IsActive)

	_, err = f.workers.DeactivateWorker(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.createWorker(t, "jobs@swiftwash.test")

	_, err := f.workers.SubmitJobRequest(ctx, w.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	req, err := f.workers.SubmitJobRequest(ctx, w.ID, "Can I take weekend shifts?")
	require.NoError(t, err)
	assert.Equal(t, workerDomain.JobRequestPending, req.Status)

	answered, err := f.workers.RespondToJobRequest(ctx, w.ID, req.ID, true, "Yes, from Saturday")
	require.NoError(t, err)
	assert.Equal(t, workerDomain.JobRequestApproved, answered.Status)
	assert.Equal(t, "Yes, from Saturday", answered.AdminResponse)
	assert.NotNil(t, answered.RespondedAt)

	_, err = f.workers.RespondToJobRequest(ctx, w.ID, req.ID, false, "changed my mind")
	de, ok := domain.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeInvalidOperation, de.Code)

	_, err = f.workers.RespondToJobRequest(ctx, w.ID, uuid.New(), true, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stored, err := f.workers.GetWorker(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, stored.JobRequests, 1)
	assert.Equal(t, workerDomain.JobRequestApproved, stored.JobRequests[0].Status)
}

func TestListWorkers_HidesInactiveByDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createWorker(t, "a@swiftwash.test")
	b := f.createWorker(t, "b@swiftwash.test")
	_, err := f.workers.DeactivateWorker(ctx, b.ID)
	require.NoError(t, err)

	active, err := f.workers.ListWorkers(ctx, false, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), active.Total)

	all, err := f.workers.ListWorkers(ctx, true, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
}

func TestGetEarnings_Today(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.createWorker(t, "earner@swiftwash.test")
	today := time.Now().UTC().Format("2006-01-02")
	require.NoError(t, f.workerDB.CreditEarnings(ctx, w.ID, 120, today))

	out, err := f.workers.GetEarnings(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(120), out.TotalEarnings)
	assert.Equal(t, int64(120), out.Today.Amount)
	assert.Equal(t, 1, out.Today.TasksCompleted)
	assert.Equal(t, "KES", out.Currency)
}

func TestAuthService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	jwtManager := auth.NewJWTManager("test-secret", 15*time.Minute, time.Hour)
	adminHash, err := auth.HashPassword("admin-pass")
	require.NoError(t, err)
	svc := NewAuthService(f.workerDB, jwtManager, AdminCredentials{
		Email:        "admin@swiftwash.test",
		PasswordHash: adminHash,
	}, zap.NewNop())

	w := f.createWorker(t, "login@swiftwash.test")

	t.Run("worker login", func(t *testing.T) {
		pair, err := svc.WorkerLogin(ctx, LoginRequest{Email: "LOGIN@swiftwash.test", Password: "s3cret-pass"})
		require.NoError(t, err)
		claims, err := jwtManager.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, w.ID, claims.UserID)
		assert.Equal(t, auth.RoleWorker, claims.Role)
	})

	t.Run("wrong password and unknown email", func(t *testing.T) {
		_, err := svc.WorkerLogin(ctx, LoginRequest{Email: "login@swiftwash.test", Password: "nope"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		_, err = svc.WorkerLogin(ctx, LoginRequest{Email: "ghost@swiftwash.test", Password: "s3cret-pass"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("admin login", func(t *testing.T) {
		pair, err := svc.AdminLogin(ctx, LoginRequest{Email: "Admin@swiftwash.test", Password: "admin-pass"})
		require.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, pair.Role)

		_, err = svc.AdminLogin(ctx, LoginRequest{Email: "admin@swiftwash.test", Password: "wrong"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	workerPair, err := svc.WorkerLogin(ctx, LoginRequest{Email: "login@swiftwash.test", Password: "s3cret-pass"})
	require.NoError(t, err)

	t.Run("refresh issues a new pair", func(t *testing.T) {
		pair, err := svc.Refresh(ctx, workerPair.RefreshToken)
		require.NoError(t, err)
		claims, err := jwtManager.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, w.ID, claims.UserID)
		assert.Equal(t, auth.RoleWorker, claims.Role)

		adminPair, err := svc.AdminLogin(ctx, LoginRequest{Email: "admin@swiftwash.test", Password: "admin-pass"})
		require.NoError(t, err)
		pair, err = svc.Refresh(ctx, adminPair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, pair.Role)
	})

	t.Run("refresh rejects access and unknown-subject tokens", func(t *testing.T) {
		_, err := svc.Refresh(ctx, workerPair.AccessToken)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		ghost, err := jwtManager.GenerateTokenPair(uuid.New(), auth.RoleWorker)
		require.NoError(t, err)
		_, err = svc.Refresh(ctx, ghost.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		forged, err := jwtManager.GenerateTokenPair(uuid.New(), auth.RoleAdmin)
		require.NoError(t, err)
		_, err = svc.Refresh(ctx, forged.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("deactivated worker cannot log in or refresh", func(t *testing.T) {
		_, err := f.workers.DeactivateWorker(ctx, w.ID)
		require.NoError(t, err)
		_, err = svc.WorkerLogin(ctx, LoginRequest{Email: "login@swiftwash.test", Password: "s3cret-pass"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		_, err = svc.Refresh(ctx, workerPair.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
