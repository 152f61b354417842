package services

import (
	"errors"
	"fmt"

	"github.com/upb/conference-portal/repositories"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// Not Found Errors
	ErrUserNotFound       = NewDomainError(ErrorTypeNotFound, "user not found", nil)
	ErrConferenceNotFound = NewDomainError(ErrorTypeNotFound, "conference not found", nil)
	ErrSubmissionNotFound = NewDomainError(ErrorTypeNotFound, "submission not found", nil)
	ErrEvaluationNotFound = NewDomainError(ErrorTypeNotFound, "evaluation not found", nil)

	// Validation Errors
	ErrInvalidInput         = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrInvalidDateRange     = NewDomainError(ErrorTypeValidation, "conference must not end before it starts", nil)
	ErrInvalidStatus        = NewDomainError(ErrorTypeValidation, "invalid status", nil)
	ErrInvalidRole          = NewDomainError(ErrorTypeValidation, "unknown role", nil)
	ErrEmptyRoleSet         = NewDomainError(ErrorTypeValidation, "at least one role is required", nil)
	ErrInvalidScore         = NewDomainError(ErrorTypeValidation, "score must be between 1 and 10", nil)
	ErrSubmissionsClosed    = NewDomainError(ErrorTypeValidation, "conference is not accepting submissions", nil)
	ErrEvaluatorNotEligible = NewDomainError(ErrorTypeValidation, "user is not a panel evaluator", nil)

	// Authorization Errors
	ErrUnauthorized       = NewDomainError(ErrorTypeUnauthorized, "Authentication required", nil)
	ErrInvalidCredentials = NewDomainError(ErrorTypeUnauthorized, "invalid email or password", nil)
	ErrInvalidToken       = NewDomainError(ErrorTypeUnauthorized, "invalid authentication token", nil)
	ErrTokenExpired       = NewDomainError(ErrorTypeUnauthorized, "authentication token expired", nil)

	// Permission Errors
	ErrInsufficientPermissions = NewDomainError(ErrorTypeForbidden, "Insufficient permissions", nil)
	ErrNotAssignedEvaluator    = NewDomainError(ErrorTypeForbidden, "evaluation is assigned to another evaluator", nil)

	// Conflict Errors
	ErrDuplicateEmail    = NewDomainError(ErrorTypeConflict, "email already exists", nil)
	ErrAlreadyRegistered = NewDomainError(ErrorTypeConflict, "already registered for this conference", nil)
	ErrEvaluatorAssigned = NewDomainError(ErrorTypeConflict, "evaluator already assigned to this submission", nil)

	// Internal Errors
	ErrInternal          = NewDomainError(ErrorTypeInternal, "An internal error occurred", nil)
	ErrDatabaseError     = NewDomainError(ErrorTypeInternal, "database error", nil)
	ErrTransactionFailed = NewDomainError(ErrorTypeInternal, "transaction failed", nil)
)

// Error type checking helper functions

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeNotFound
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeValidation
	}
	return false
}

// IsUnauthorizedError checks if an error is an unauthorized error
func IsUnauthorizedError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeUnauthorized
	}
	return false
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeForbidden
	}
	return false
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeConflict
	}
	return false
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeInternal
	}
	return false
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

// FromRepository converts repository sentinels into domain errors. Errors that are
// neither not-found nor conflict are wrapped as internal.
func FromRepository(err error, notFound, conflict *DomainError) error {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrNotFound) && notFound != nil:
		return NewDomainError(notFound.Type, notFound.Message, err)
	case errors.Is(err, repositories.ErrConflict) && conflict != nil:
		return NewDomainError(conflict.Type, conflict.Message, err)
	}
	return WrapInternal(ErrDatabaseError.Message, err)
}
