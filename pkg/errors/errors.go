package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError provides a structured error that can be rendered to API consumers.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// Common errors exposed to the rest of the application.
var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Caller identity required",
		StatusCode: http.StatusUnauthorized,
	}

	// ErrNotHost is raised when a non-host attempts a host-only action.
	ErrNotHost = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Only the session host may perform this action",
		StatusCode: http.StatusForbidden,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrInvalidTransition = &AppError{
		Code:       "INVALID_TRANSITION",
		Message:    "Illegal session state transition",
		StatusCode: http.StatusConflict,
	}

	ErrSessionEnded = &AppError{
		Code:       "SESSION_ENDED",
		Message:    "Session has already ended",
		StatusCode: http.StatusGone,
	}

	ErrSessionFull = &AppError{
		Code:       "SESSION_FULL",
		Message:    "Session has reached its participant limit",
		StatusCode: http.StatusConflict,
	}

	ErrInvalidPoll = &AppError{
		Code:       "INVALID_POLL",
		Message:    "Poll requires at least two distinct options",
		StatusCode: http.StatusBadRequest,
	}

	ErrPollClosed = &AppError{
		Code:       "POLL_CLOSED",
		Message:    "Poll is no longer accepting votes",
		StatusCode: http.StatusConflict,
	}

	ErrInvalidOption = &AppError{
		Code:       "INVALID_OPTION",
		Message:    "Vote references an option that does not exist",
		StatusCode: http.StatusBadRequest,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}
)

// New builds a new application error with the provided metadata.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap turns any error into an AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest wraps validation errors with a helpful message.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:       ErrBadRequest.Code,
		Message:    message,
		StatusCode: ErrBadRequest.StatusCode,
	}
}
