package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SwiftWash/service-booking/pkg/domain"
)

// APIResponse is the JSON envelope for every API reply.
type APIResponse struct {
	Success bool            `json:"success"`
	Data    interface{}     `json:"data,omitempty"`
	Error   *APIError       `json:"error,omitempty"`
	Meta    *PaginationMeta `json:"meta,omitempty"`
}

// APIError carries a stable machine-readable code and a human message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PaginationMeta describes a paginated list.
type PaginationMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// Success writes a 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// Created writes a 201 with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// Paginated writes a 200 with items and pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    items,
		Meta: &PaginationMeta{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	})
}

// BadRequest writes a 400 validation error.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, domain.CodeValidation, message)
}

// Unauthorized writes a 401.
func Unauthorized(c *gin.Context, message string) {
	abort(c, http.StatusUnauthorized, domain.CodeUnauthorized, message)
}

// Forbidden writes a 403.
func Forbidden(c *gin.Context, message string) {
	abort(c, http.StatusForbidden, domain.CodeForbidden, message)
}

// Error maps err to a status code. Domain errors keep their code and message;
// anything else becomes an opaque 500.
func Error(c *gin.Context, err error) {
	de, ok := domain.AsDomainError(err)
	if !ok {
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}
	abort(c, StatusFor(de.Kind), de.Code, de.Message)
}

// StatusFor returns the HTTP status code for an error kind.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidState, domain.KindConflict:
		return http.StatusConflict
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
	})
}
