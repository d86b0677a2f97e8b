package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for the domain taxonomy. All of these are local, recoverable
// errors; none is process-fatal.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeNotResolved         = "NOT_RESOLVED"
	CodeReopenWindowExpired = "REOPEN_WINDOW_EXPIRED"
	CodeNoAvailableStaff    = "NO_AVAILABLE_STAFF"
	CodeAlreadyAssigned     = "ALREADY_ASSIGNED"
	CodeInvalidPagination   = "INVALID_PAGINATION"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeConflict            = "CONFLICT"
	CodeInternal            = "INTERNAL_ERROR"
)

// DomainError standardizes application errors. Message is human-readable and
// safe to surface; internal store details never leak through it.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, details)
}

func NewInvalidTransition(current, target string) error {
	return NewDomainError(CodeInvalidTransition,
		fmt.Sprintf("cannot move complaint from %s to %s", current, target),
		http.StatusConflict,
		map[string]any{"current_status": current, "target_status": target})
}

func NewNotResolved(current string) error {
	return NewDomainError(CodeNotResolved,
		"only resolved complaints can be reopened",
		http.StatusConflict,
		map[string]any{"current_status": current})
}

func NewReopenWindowExpired(days int) error {
	return NewDomainError(CodeReopenWindowExpired,
		fmt.Sprintf("the %d-day reopen window has expired", days),
		http.StatusConflict, nil)
}

func NewNoAvailableStaff() error {
	return NewDomainError(CodeNoAvailableStaff,
		"no staff member is currently available for assignment",
		http.StatusConflict, nil)
}

func NewAlreadyAssigned(complaintID string) error {
	return NewDomainError(CodeAlreadyAssigned,
		"complaint is already assigned to a worker",
		http.StatusConflict,
		map[string]any{"complaint_id": complaintID})
}

func NewInvalidPagination(message string) error {
	return NewDomainError(CodeInvalidPagination, message, http.StatusBadRequest, nil)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError converts generic errors to the domain error type.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// CodeOf returns the domain error code, "" for nil and INTERNAL_ERROR for
// foreign errors.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	return ToDomainError(err).Code
}
