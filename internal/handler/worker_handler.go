package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/SwiftWash/service-booking/internal/application"
	"github.com/SwiftWash/service-booking/pkg/auth"
	"github.com/SwiftWash/service-booking/pkg/middleware"
	"github.com/SwiftWash/service-booking/pkg/response"
)

// WorkerHandler serves the worker app: login and the worker's own profile,
// bookings, earnings and job requests.
type WorkerHandler struct {
	workers  *application.WorkerService
	bookings *application.BookingService
	auth     *application.AuthService
}

// NewWorkerHandler creates a new WorkerHandler.
func NewWorkerHandler(
	workers *application.WorkerService,
	bookings *application.BookingService,
	authService *application.AuthService,
) *WorkerHandler {
	return &WorkerHandler{workers: workers, bookings: bookings, auth: authService}
}

type availabilityRequest struct {
	Status string `json:"status" binding:"required"`
}

type jobRequestBody struct {
	Message string `json:"message" binding:"required"`
}

// RegisterRoutes registers worker routes.
func (h *WorkerHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	r.POST("/api/v1/workers/login", h.Login)

	me := r.Group("/api/v1/workers/me")
	me.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleWorker, auth.RoleSupervisor))
	{
		me.GET("", h.Profile)
		me.PATCH("/status", h.SetAvailability)
		me.GET("/bookings", h.Bookings)
		me.GET("/earnings", h.Earnings)
		me.POST("/job-requests", h.SubmitJobRequest)
	}
}

// Login handles POST /api/v1/workers/login.
func (h *WorkerHandler) Login(c *gin.Context) {
	var req application.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tokens, err := h.auth.WorkerLogin(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, tokens)
}

// Profile handles GET /api/v1/workers/me.
func (h *WorkerHandler) Profile(c *gin.Context) {
	workerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.workers.GetWorker(c.Request.Context(), workerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SetAvailability handles PATCH /api/v1/workers/me/status.
func (h *WorkerHandler) SetAvailability(c *gin.Context) {
	workerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.workers.SetAvailability(c.Request.Context(), workerID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Bookings handles GET /api/v1/workers/me/bookings.
func (h *WorkerHandler) Bookings(c *gin.Context) {
	workerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}
	page, limit := parsePagination(c)

	result, err := h.bookings.GetWorkerBookings(c.Request.Context(), workerID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// Earnings handles GET /api/v1/workers/me/earnings.
func (h *WorkerHandler) Earnings(c *gin.Context) {
	workerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.workers.GetEarnings(c.Request.Context(), workerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SubmitJobRequest handles POST /api/v1/workers/me/job-requests.
func (h *WorkerHandler) SubmitJobRequest(c *gin.Context) {
	workerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req jobRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.workers.SubmitJobRequest(c.Request.Context(), workerID, req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}
