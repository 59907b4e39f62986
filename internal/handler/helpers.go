package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	bookingDomain "github.com/SwiftWash/service-booking/internal/domain/booking"
	"github.com/SwiftWash/service-booking/pkg/auth"
	"github.com/SwiftWash/service-booking/pkg/middleware"
	"github.com/SwiftWash/service-booking/pkg/response"
)

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}

// parseID reads a UUID path parameter, writing a 400 when it is malformed.
func parseID(c *gin.Context, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.BadRequest(c, "invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// actorFrom builds the audit actor for the authenticated staff member.
func actorFrom(c *gin.Context) (bookingDomain.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return bookingDomain.Actor{}, false
	}
	role, _ := middleware.GetUserRole(c)

	kind := bookingDomain.ActorWorker
	switch role {
	case auth.RoleAdmin:
		kind = bookingDomain.ActorAdmin
	case auth.RoleSupervisor:
		kind = bookingDomain.ActorSupervisor
	}
	return bookingDomain.Actor{Kind: kind, ID: userID.String()}, true
}
