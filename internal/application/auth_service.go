package application

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	workerDomain "github.com/SwiftWash/service-booking/internal/domain/worker"
	"github.com/SwiftWash/service-booking/pkg/auth"
	"github.com/SwiftWash/service-booking/pkg/domain"
)

// LoginRequest carries staff credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminCredentials is the single configured admin account.
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

// AuthService issues tokens to the admin and to workers.
type AuthService struct {
	workers    workerDomain.WorkerRepository
	jwtManager *auth.JWTManager
	admin      AdminCredentials
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	workers workerDomain.WorkerRepository,
	jwtManager *auth.JWTManager,
	admin AdminCredentials,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		workers:    workers,
		jwtManager: jwtManager,
		admin:      admin,
		logger:     logger,
	}
}

// AdminID is the stable subject used in admin tokens.
func AdminID(email string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("swiftwash:admin:"+strings.ToLower(email)))
}

// AdminLogin checks the configured admin credentials.
func (s *AuthService) AdminLogin(_ context.Context, req LoginRequest) (*auth.TokenPair, error) {
	if s.admin.Email == "" || s.admin.PasswordHash == "" {
		return nil, domain.NewUnauthorizedError("admin login is not configured")
	}
	if !strings.EqualFold(strings.TrimSpace(req.Email), s.admin.Email) ||
		!auth.CheckPassword(req.Password, s.admin.PasswordHash) {
		s.logger.Warn("admin login failed")
		return nil, domain.NewUnauthorizedError("invalid credentials")
	}
	return s.jwtManager.GenerateTokenPair(AdminID(s.admin.Email), auth.RoleAdmin)
}

// WorkerLogin checks a worker's credentials. Deactivated workers cannot log in.
func (s *AuthService) WorkerLogin(ctx context.Context, req LoginRequest) (*auth.TokenPair, error) {
	w, err := s.workers.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewUnauthorizedError("invalid credentials")
		}
		return nil, err
	}
	if !auth.CheckPassword(req.Password, w.PasswordHash()) {
		return nil, domain.NewUnauthorizedError("invalid credentials")
	}
	if !w.IsActive() {
		return nil, domain.NewUnauthorizedError("account is deactivated")
	}

	s.logger.Info("worker logged in", zap.String("worker_id", w.ID().String()))
	return s.jwtManager.GenerateTokenPair(w.ID(), string(w.Role()))
}

// Refresh exchanges a refresh token for a new token pair. The account behind
// the token is checked again, so a deactivated worker cannot keep a session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.NewUnauthorizedError("invalid or expired refresh token")
	}

	if claims.Role == auth.RoleAdmin {
		if s.admin.Email == "" || claims.UserID != AdminID(s.admin.Email) {
			return nil, domain.NewUnauthorizedError("invalid or expired refresh token")
		}
		return s.jwtManager.GenerateTokenPair(claims.UserID, auth.RoleAdmin)
	}

	w, err := s.workers.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewUnauthorizedError("invalid or expired refresh token")
		}
		return nil, err
	}
	if !w.IsActive() {
		return nil, domain.NewUnauthorizedError("account is deactivated")
	}
	return s.jwtManager.GenerateTokenPair(w.ID(), string(w.Role()))
}
