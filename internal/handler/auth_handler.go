package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/SwiftWash/service-booking/internal/application"
	"github.com/SwiftWash/service-booking/pkg/response"
)

// AuthHandler serves token endpoints shared by the admin and worker apps.
type AuthHandler struct {
	auth *application.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *application.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/api/v1/auth/refresh", h.Refresh)
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tokens, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, tokens)
}
