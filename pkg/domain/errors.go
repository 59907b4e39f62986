package domain

import (
	"errors"
	"fmt"
)

// ErrorKind groups error codes by how a caller should react to them.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindInvalidState ErrorKind = "invalid_state"
	KindConflict     ErrorKind = "conflict"
	KindForbidden    ErrorKind = "forbidden"
	KindUnauthorized ErrorKind = "unauthorized"
)

// Stable error codes returned to API clients.
const (
	CodeValidation              = "VALIDATION_ERROR"
	CodeNotFound                = "NOT_FOUND"
	CodeInvalidTransition       = "INVALID_TRANSITION"
	CodeInvalidOperation        = "INVALID_OPERATION"
	CodeStaleState              = "STALE_STATE"
	CodeConflict                = "CONFLICT"
	CodeInactiveWorker          = "INACTIVE_WORKER"
	CodeWorkerHasActiveBookings = "WORKER_HAS_ACTIVE_BOOKINGS"
	CodeForbidden               = "FORBIDDEN"
	CodeUnauthorized            = "UNAUTHORIZED"
)

// DomainError is the error type returned by domain and application code.
// Two DomainErrors match under errors.Is when their codes are equal.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrValidation              = &DomainError{Kind: KindValidation, Code: CodeValidation, Message: "validation failed"}
	ErrNotFound                = &DomainError{Kind: KindNotFound, Code: CodeNotFound, Message: "not found"}
	ErrInvalidTransition       = &DomainError{Kind: KindInvalidState, Code: CodeInvalidTransition, Message: "invalid status transition"}
	ErrStaleState              = &DomainError{Kind: KindConflict, Code: CodeStaleState, Message: "stale state"}
	ErrConflict                = &DomainError{Kind: KindConflict, Code: CodeConflict, Message: "conflict"}
	ErrInactiveWorker          = &DomainError{Kind: KindValidation, Code: CodeInactiveWorker, Message: "worker is inactive"}
	ErrWorkerHasActiveBookings = &DomainError{Kind: KindConflict, Code: CodeWorkerHasActiveBookings, Message: "worker has active bookings"}
	ErrForbidden               = &DomainError{Kind: KindForbidden, Code: CodeForbidden, Message: "forbidden"}
	ErrUnauthorized            = &DomainError{Kind: KindUnauthorized, Code: CodeUnauthorized, Message: "unauthorized"}
)

// NewValidationError creates an error for malformed input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: CodeValidation, Message: message}
}

// NewNotFoundError creates an error for an entity that does not exist.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s not found", entity, id),
	}
}

// NewInvalidStateError creates an error for a status change that the state machine forbids.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{
		Kind:    KindInvalidState,
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewInvalidOperationError creates an error for an action the entity's current state does not allow.
func NewInvalidOperationError(message string) *DomainError {
	return &DomainError{Kind: KindInvalidState, Code: CodeInvalidOperation, Message: message}
}

// NewStaleStateError creates an error for a conditional write whose precondition no longer holds.
func NewStaleStateError(entity, id, expected string) *DomainError {
	return &DomainError{
		Kind:    KindConflict,
		Code:    CodeStaleState,
		Message: fmt.Sprintf("%s %s is no longer in status %s", entity, id, expected),
	}
}

// NewConflictError creates an error for a lost optimistic-locking race.
func NewConflictError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: CodeConflict, Message: message}
}

// NewInactiveWorkerError creates an error for an assignment to a deactivated worker.
func NewInactiveWorkerError(workerID string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    CodeInactiveWorker,
		Message: fmt.Sprintf("worker %s is inactive", workerID),
	}
}

// NewWorkerHasActiveBookingsError creates an error for a blocked worker deactivation.
func NewWorkerHasActiveBookingsError(workerID string, count int64) *DomainError {
	return &DomainError{
		Kind:    KindConflict,
		Code:    CodeWorkerHasActiveBookings,
		Message: fmt.Sprintf("worker %s has %d active booking(s)", workerID, count),
	}
}

// NewForbiddenError creates an error for an actor lacking permission.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Kind: KindForbidden, Code: CodeForbidden, Message: message}
}

// NewUnauthorizedError creates an error for missing or bad credentials.
func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{Kind: KindUnauthorized, Code: CodeUnauthorized, Message: message}
}

// AsDomainError unwraps err into a DomainError if it contains one.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
