package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/reqpool/internal/pool"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Bad request errors
	case errors.Is(err, pool.ErrNilTask),
		errors.Is(err, pool.ErrEmptyEndpoint),
		errors.Is(err, pool.ErrInvalidMethod):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, pool.ErrDuplicateTask):
		return http.StatusConflict

	// Shutdown
	case errors.Is(err, pool.ErrPoolClosed):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, pool.ErrNilTask),
		errors.Is(err, pool.ErrEmptyEndpoint):
		return "Task endpoint is required"

	case errors.Is(err, pool.ErrInvalidMethod):
		return "Task method must be GET or POST"

	case errors.Is(err, pool.ErrDuplicateTask):
		return "A task with this identifier already exists"

	case errors.Is(err, pool.ErrPoolClosed):
		return "The pool is shutting down"

	default:
		return "An unexpected error occurred"
	}
}
