package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SwiftWash/service-booking/internal/application"
	bookingDomain "github.com/SwiftWash/service-booking/internal/domain/booking"
	workerDomain "github.com/SwiftWash/service-booking/internal/domain/worker"
	"github.com/SwiftWash/service-booking/pkg/auth"
	"github.com/SwiftWash/service-booking/pkg/middleware"
	"github.com/SwiftWash/service-booking/pkg/response"
)

// LiveFeed attaches a websocket connection to the admin event stream.
type LiveFeed interface {
	Serve(w http.ResponseWriter, r *http.Request, userID string) error
}

// AdminHandler handles admin HTTP requests for bookings and the worker registry.
type AdminHandler struct {
	bookings *application.BookingService
	workers  *application.WorkerService
	auth     *application.AuthService
	feed     LiveFeed
}

// NewAdminHandler creates a new AdminHandler. feed may be nil, which disables
// the websocket route.
func NewAdminHandler(
	bookings *application.BookingService,
	workers *application.WorkerService,
	authService *application.AuthService,
	feed LiveFeed,
) *AdminHandler {
	return &AdminHandler{
		bookings: bookings,
		workers:  workers,
		auth:     authService,
		feed:     feed,
	}
}

type respondJobRequest struct {
	Status   string `json:"status" binding:"required,oneof=approved rejected"`
	Response string `json:"response"`
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	r.POST("/api/v1/admin/login", h.Login)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.PATCH("/bookings/:id/schedule", h.RescheduleBooking)

		admin.POST("/workers", h.CreateWorker)
		admin.GET("/workers", h.ListWorkers)
		admin.GET("/workers/:id", h.GetWorker)
		admin.DELETE("/workers/:id", h.DeactivateWorker)
		admin.PATCH("/workers/:id/activate", h.ActivateWorker)
		admin.POST("/workers/:id/job-requests/:requestId/respond", h.RespondToJobRequest)

		if h.feed != nil {
			admin.GET("/ws", h.LiveFeed)
		}
	}
}

// Login handles POST /api/v1/admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req application.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tokens, err := h.auth.AdminLogin(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, tokens)
}

// ListBookings handles GET /api/v1/admin/bookings?status=&date=&worker_id=.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	var filter bookingDomain.ListFilter
	if s := c.Query("status"); s != "" {
		status, err := bookingDomain.ParseBookingStatus(s)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.Status = &status
	}
	if d := c.Query("date"); d != "" {
		date, err := bookingDomain.ParseScheduledDate(d)
		if err != nil {
			response.Error(c, err)
			return
		}
		filter.Date = &date
	}
	if w := c.Query("worker_id"); w != "" {
		workerID, err := uuid.Parse(w)
		if err != nil {
			response.BadRequest(c, "invalid worker ID")
			return
		}
		filter.WorkerID = &workerID
	}

	result, err := h.bookings.ListBookings(c.Request.Context(), filter, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	stats, err := h.bookings.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// RescheduleBooking handles PATCH /api/v1/admin/bookings/:id/schedule.
func (h *AdminHandler) RescheduleBooking(c *gin.Context) {
	bookingID, ok := parseID(c, "id", "booking")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req application.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookings.Reschedule(c.Request.Context(), bookingID, req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateWorker handles POST /api/v1/admin/workers.
func (h *AdminHandler) CreateWorker(c *gin.Context) {
	var req application.CreateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.workers.CreateWorker(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListWorkers handles GET /api/v1/admin/workers?include_inactive=.
func (h *AdminHandler) ListWorkers(c *gin.Context) {
	page, limit := parsePagination(c)
	includeInactive, _ := strconv.ParseBool(c.DefaultQuery("include_inactive", "false"))

	result, err := h.workers.ListWorkers(c.Request.Context(), includeInactive, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetWorker handles GET /api/v1/admin/workers/:id.
func (h *AdminHandler) GetWorker(c *gin.Context) {
	workerID, ok := parseID(c, "id", "worker")
	if !ok {
		return
	}

	result, err := h.workers.GetWorker(c.Request.Context(), workerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeactivateWorker handles DELETE /api/v1/admin/workers/:id. Workers are
// never removed, only deactivated.
func (h *AdminHandler) DeactivateWorker(c *gin.Context) {
	workerID, ok := parseID(c, "id", "worker")
	if !ok {
		return
	}

	result, err := h.workers.DeactivateWorker(c.Request.Context(), workerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ActivateWorker handles PATCH /api/v1/admin/workers/:id/activate.
func (h *AdminHandler) ActivateWorker(c *gin.Context) {
	workerID, ok := parseID(c, "id", "worker")
	if !ok {
		return
	}

	result, err := h.workers.ActivateWorker(c.Request.Context(), workerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RespondToJobRequest handles POST /api/v1/admin/workers/:id/job-requests/:requestId/respond.
func (h *AdminHandler) RespondToJobRequest(c *gin.Context) {
	workerID, ok := parseID(c, "id", "worker")
	if !ok {
		return
	}
	requestID, ok := parseID(c, "requestId", "job request")
	if !ok {
		return
	}

	var req respondJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	approve := workerDomain.JobRequestStatus(req.Status) == workerDomain.JobRequestApproved
	result, err := h.workers.RespondToJobRequest(c.Request.Context(), workerID, requestID, approve, req.Response)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// LiveFeed handles GET /api/v1/admin/ws.
func (h *AdminHandler) LiveFeed(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}
	if err := h.feed.Serve(c.Writer, c.Request, userID.String()); err != nil {
		_ = c.Error(err)
	}
}
