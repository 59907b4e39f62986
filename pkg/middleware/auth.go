package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SwiftWash/service-booking/pkg/auth"
	"github.com/SwiftWash/service-booking/pkg/response"
)

const (
	ctxUserID   = "user_id"
	ctxUserRole = "user_role"
)

// AuthMiddleware requires a valid bearer access token. Browsers cannot set
// headers on websocket upgrades, so an access_token query parameter is
// accepted when the header is absent.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				response.Unauthorized(c, "malformed authorization header")
				return
			}
			token = strings.TrimSpace(parts[1])
		} else {
			token = c.Query("access_token")
		}
		if token == "" {
			response.Unauthorized(c, "missing bearer token")
			return
		}

		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserRole, claims.Role)
		c.Next()
	}
}

// RequireRole allows the request through only for the listed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			response.Unauthorized(c, "unauthenticated")
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "insufficient role")
	}
}

// GetUserID returns the authenticated user's id.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetUserRole returns the authenticated user's role.
func GetUserRole(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserRole)
	if !ok {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}
