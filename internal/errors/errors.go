package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Quire error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404
	ErrConflict       ErrorCode = "CONFLICT"        // 409
	ErrStorage        ErrorCode = "STORAGE"         // 503
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// QuireError represents a structured error with code, status, and details.
type QuireError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *QuireError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *QuireError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *QuireError {
	return &QuireError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a draft cannot be found.
func NewNotFound(id string) *QuireError {
	return &QuireError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("draft not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *QuireError {
	return &QuireError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewConflict creates a 409 error, e.g. a source id already attached to a draft.
func NewConflict(msg string, details map[string]any) *QuireError {
	return &QuireError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
		Details: details,
	}
}

// NewStorage creates a 503 error wrapping a backend failure.
// Stores never return these to their callers; they are logged and dropped.
func NewStorage(op, key string, err error) *QuireError {
	return &QuireError{
		Code:    ErrStorage,
		Status:  503,
		Message: fmt.Sprintf("storage %s %q failed: %v", op, key, err),
		Details: map[string]any{"op": op, "key": key},
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *QuireError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &QuireError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if err (or anything it wraps) is a QuireError with the given code.
func Is(err error, code ErrorCode) bool {
	var qErr *QuireError
	if stderrors.As(err, &qErr) {
		return qErr.Code == code
	}
	return false
}
