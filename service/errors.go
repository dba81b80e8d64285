package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain errors so callers can branch without
// matching message strings
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindInsufficientFunds ErrorKind = "insufficient_funds"
	KindConflict          ErrorKind = "conflict"
	KindNotFound          ErrorKind = "not_found"
	KindExternalService   ErrorKind = "external_service"
	KindIntegrity         ErrorKind = "integrity"
)

// Error is a domain error carrying a kind alongside the message
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError reports rejected input
func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewInsufficientFundsError reports a debit the balance cannot cover
func NewInsufficientFundsError(format string, args ...any) *Error {
	return &Error{Kind: KindInsufficientFunds, Message: fmt.Sprintf(format, args...)}
}

// NewConflictError reports an operation invalid in the current state
func NewConflictError(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError reports a missing entity
func NewNotFoundError(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewExternalServiceError reports a gateway failure or timeout
func NewExternalServiceError(message string, err error) *Error {
	return &Error{Kind: KindExternalService, Message: message, Err: err}
}

// NewIntegrityError reports persisted state that violates an invariant
func NewIntegrityError(format string, args ...any) *Error {
	return &Error{Kind: KindIntegrity, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from an error chain, or "" if the error
// is not a domain error
func KindOf(err error) ErrorKind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return ""
}
