package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SwiftWash/service-booking/internal/application"
	bookingDomain "github.com/SwiftWash/service-booking/internal/domain/booking"
	"github.com/SwiftWash/service-booking/pkg/auth"
	"github.com/SwiftWash/service-booking/pkg/middleware"
	"github.com/SwiftWash/service-booking/pkg/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

type assignWorkerRequest struct {
	WorkerID uuid.UUID `json:"worker_id" binding:"required"`
}

type cancelRequest struct {
	Phone  string `json:"phone" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// RegisterRoutes registers all booking routes on the given router group.
// Customers are anonymous; staff routes require a bearer token.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.LookupByPhone)
		bookings.GET("/number/:number", h.GetBookingByNumber)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.POST("/:id/feedback", h.SubmitFeedback)

		bookings.PATCH("/:id/status", authMW,
			middleware.RequireRole(auth.RoleAdmin, auth.RoleSupervisor, auth.RoleWorker), h.UpdateStatus)
		bookings.PUT("/:id/assign", authMW,
			middleware.RequireRole(auth.RoleAdmin, auth.RoleSupervisor), h.AssignWorker)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// LookupByPhone handles GET /api/v1/bookings?phone=.
func (h *BookingHandler) LookupByPhone(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		response.BadRequest(c, "phone query parameter is required")
		return
	}

	result, err := h.service.LookupByPhone(c.Request.Context(), phone)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, ok := parseID(c, "id", "booking")
	if !ok {
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBookingByNumber handles GET /api/v1/bookings/number/:number.
func (h *BookingHandler) GetBookingByNumber(c *gin.Context) {
	result, err := h.service.GetBookingByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel for customers.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, ok := parseID(c, "id", "booking")
	if !ok {
		return
	}

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CustomerCancel(c.Request.Context(), bookingID, req.Phone, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SubmitFeedback handles POST /api/v1/bookings/:id/feedback.
func (h *BookingHandler) SubmitFeedback(c *gin.Context) {
	bookingID, ok := parseID(c, "id", "booking")
	if !ok {
		return
	}

	var req application.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SubmitFeedback(c.Request.Context(), bookingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateStatus handles PATCH /api/v1/bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	bookingID, ok := parseID(c, "id", "booking")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	target, err := bookingDomain.ParseBookingStatus(req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.TransitionStatus(c.Request.Context(), bookingID, target, req.Reason, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AssignWorker handles PUT /api/v1/bookings/:id/assign.
func (h *BookingHandler) AssignWorker(c *gin.Context) {
	bookingID, ok := parseID(c, "id", "booking")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req assignWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AssignWorker(c.Request.Context(), bookingID, req.WorkerID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
