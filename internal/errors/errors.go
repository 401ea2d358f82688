package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a fittrack error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrConflict       ErrorCode = "CONFLICT"        // 409
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// FitError represents a structured error with code, status, and details.
type FitError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *FitError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *FitError {
	return &FitError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewGoalNotFound creates a 404 error for an unknown goal id.
func NewGoalNotFound(id string) *FitError {
	return &FitError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("goal not found: %s", id),
		Details: map[string]any{"id": id, "kind": "goal"},
	}
}

// NewActivityNotFound creates a 404 error for an unknown activity id.
func NewActivityNotFound(id string) *FitError {
	return &FitError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("activity not found: %s", id),
		Details: map[string]any{"id": id, "kind": "activity"},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *FitError {
	return &FitError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewConflict creates a 409 error for general conflicts.
func NewConflict(msg string) *FitError {
	return &FitError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *FitError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &FitError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if err is, or wraps, a FitError with the given code.
func Is(err error, code ErrorCode) bool {
	var fErr *FitError
	if stderrors.As(err, &fErr) {
		return fErr.Code == code
	}
	return false
}
