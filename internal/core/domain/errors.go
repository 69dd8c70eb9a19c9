// Package domain defines the core domain models for rollcall.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
// The code is what clients see on the wire after the "ERR:" prefix.
type DomainError struct {
	Code    string // Error code (e.g., "DuplicateKey")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Wire-visible error codes.
const (
	CodeNotFound        = "NotFound"
	CodeDuplicateKey    = "DuplicateKey"
	CodeDuplicateRecord = "DuplicateRecord"
	CodeInvalidStatus   = "InvalidStatus"
	CodeInvalidDate     = "InvalidDate"
	CodeInvalidArgument = "InvalidArgument"
	CodeStorage         = "StoreError"
	CodeInternal        = "Internal"
)

// ============================================================================
// Record errors
// ============================================================================

var (
	// ErrStudentNotFound indicates no student exists for the given roll.
	ErrStudentNotFound = NewDomainError(CodeNotFound, "student not found")

	// ErrCourseNotFound indicates no course exists for the given code.
	ErrCourseNotFound = NewDomainError(CodeNotFound, "course not found")

	// ErrDuplicateKey indicates a student roll or course code already exists.
	ErrDuplicateKey = NewDomainError(CodeDuplicateKey, "key already exists")

	// ErrDuplicateRecord indicates attendance was already recorded for the day.
	ErrDuplicateRecord = NewDomainError(CodeDuplicateRecord, "attendance already recorded for this day")
)

// ============================================================================
// Argument errors
// ============================================================================

var (
	// ErrInvalidStatus indicates the attendance status is not one of P, A, L.
	ErrInvalidStatus = NewDomainError(CodeInvalidStatus, "invalid attendance status")

	// ErrInvalidDate indicates a date or timestamp could not be parsed.
	ErrInvalidDate = NewDomainError(CodeInvalidDate, "invalid date")

	// ErrInvalidArgument indicates a required field is empty or malformed.
	ErrInvalidArgument = NewDomainError(CodeInvalidArgument, "invalid argument")
)

// ============================================================================
// System errors
// ============================================================================

var (
	// ErrStorage indicates an unexpected persistence failure.
	ErrStorage = NewDomainError(CodeStorage, "storage error")

	// ErrInternal indicates an unexpected server failure.
	ErrInternal = NewDomainError(CodeInternal, "internal error")
)
