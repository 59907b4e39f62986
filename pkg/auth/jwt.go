package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Staff roles carried in access tokens.
const (
	RoleAdmin      = "admin"
	RoleWorker     = "worker"
	RoleSupervisor = "supervisor"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims are the JWT claims issued by this service.
type Claims struct {
	UserID    uuid.UUID `json:"uid"`
	Role      string    `json:"role"`
	TokenType string    `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is returned by login endpoints.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Role         string `json:"role"`
}

// JWTManager signs and verifies HS256 tokens.
type JWTManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTManager creates a JWTManager.
func NewJWTManager(secret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// GenerateTokenPair issues an access and a refresh token for the user.
func (m *JWTManager) GenerateTokenPair(userID uuid.UUID, role string) (*TokenPair, error) {
	access, err := m.sign(userID, role, tokenTypeAccess, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := m.sign(userID, role, tokenTypeRefresh, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.accessTTL.Seconds()),
		Role:         role,
	}, nil
}

// GenerateAccessToken issues a single access token.
func (m *JWTManager) GenerateAccessToken(userID uuid.UUID, role string) (string, error) {
	return m.sign(userID, role, tokenTypeAccess, m.accessTTL)
}

// ValidateAccessToken verifies signature, expiry and token type.
func (m *JWTManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, errors.New("not an access token")
	}
	return claims, nil
}

// ValidateRefreshToken verifies a refresh token.
func (m *JWTManager) ValidateRefreshToken(tokenString string) (*Claims, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, errors.New("not a refresh token")
	}
	return claims, nil
}

func (m *JWTManager) sign(userID uuid.UUID, role, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (m *JWTManager) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
