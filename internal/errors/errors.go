// Package errors defines the structured error taxonomy shared by the store,
// the bundle compiler and the API layer.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Base error types
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrRender       = errors.New("render failure")
	ErrPersistence  = errors.New("persistence failure")
	ErrInternal     = errors.New("internal error")
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeConflict    ErrorType = "conflict"
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeRender      ErrorType = "render"
	ErrorTypePersistence ErrorType = "persistence"
	ErrorTypeInternal    ErrorType = "internal"
)

// DocumentError is a structured error for report and bundle operations.
type DocumentError struct {
	Type       ErrorType
	Op         string // Operation that failed (e.g., "get_report", "compile_bundle")
	DocumentID string // Report or certification id, if applicable
	Err        error  // Underlying error
	Timestamp  time.Time
}

func (e *DocumentError) Error() string {
	if e.DocumentID != "" {
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.DocumentID, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is interface
func (e *DocumentError) Is(target error) bool {
	if target == nil {
		return false
	}

	switch target {
	case ErrNotFound:
		return e.Type == ErrorTypeNotFound
	case ErrConflict:
		return e.Type == ErrorTypeConflict
	case ErrInvalidInput:
		return e.Type == ErrorTypeValidation
	case ErrRender:
		return e.Type == ErrorTypeRender
	case ErrPersistence:
		return e.Type == ErrorTypePersistence
	}

	return errors.Is(e.Err, target)
}

// New creates a new DocumentError.
func New(errorType ErrorType, op, documentID string, err error) *DocumentError {
	return &DocumentError{
		Type:       errorType,
		Op:         op,
		DocumentID: documentID,
		Err:        err,
		Timestamp:  time.Now(),
	}
}

// NotFound wraps a missing-record error.
func NotFound(op, documentID string) *DocumentError {
	return New(ErrorTypeNotFound, op, documentID, ErrNotFound)
}

// Conflict wraps a concurrent-operation error.
func Conflict(op, documentID string) *DocumentError {
	return New(ErrorTypeConflict, op, documentID, ErrConflict)
}

// HTTPStatus maps an error to the response status code. Unknown errors map
// to 500.
func HTTPStatus(err error) int {
	var de *DocumentError
	if errors.As(err, &de) {
		switch de.Type {
		case ErrorTypeNotFound:
			return http.StatusNotFound
		case ErrorTypeConflict:
			return http.StatusConflict
		case ErrorTypeValidation:
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Code returns the machine-readable error code for the response envelope.
func Code(err error) string {
	var de *DocumentError
	if errors.As(err, &de) {
		return string(de.Type)
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return string(ErrorTypeNotFound)
	case errors.Is(err, ErrConflict):
		return string(ErrorTypeConflict)
	case errors.Is(err, ErrInvalidInput):
		return string(ErrorTypeValidation)
	}
	return string(ErrorTypeInternal)
}

// Convenience re-exports so callers need a single errors import.
var (
	Is = errors.Is
	As = errors.As
)

// Errorf wraps fmt.Errorf.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
