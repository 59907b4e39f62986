package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SwiftWash/service-booking/pkg/auth"
)

func newAuthRouter(m *auth.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/admin", AuthMiddleware(m), RequireRole(auth.RoleAdmin), func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.String(http.StatusOK, id.String())
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	m := auth.NewJWTManager("secret", time.Minute, time.Hour)
	r := newAuthRouter(m)
	adminID := uuid.New()

	adminToken, err := m.GenerateAccessToken(adminID, auth.RoleAdmin)
	require.NoError(t, err)
	workerToken, err := m.GenerateAccessToken(uuid.New(), auth.RoleWorker)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"no token", "", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", "", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", "", http.StatusUnauthorized},
		{"wrong role", "Bearer " + workerToken, "", http.StatusForbidden},
		{"admin header", "Bearer " + adminToken, "", http.StatusOK},
		{"admin query", "", "?access_token=" + adminToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			if tt.status == http.StatusOK {
				assert.Equal(t, adminID.String(), w.Body.String())
			}
		})
	}
}
