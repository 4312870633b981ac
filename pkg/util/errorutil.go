package util

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors across the bot and the
// ops HTTP surface.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
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
func NewDomainError(code, message string, status int, err error) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// NewValidationError marks input the conversation can recover from
// locally with a re-prompt.
func NewValidationError(message string) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, nil)
}

// NewStoreUnavailable marks a failed append or read against the record
// store.
func NewStoreUnavailable(err error) error {
	return NewDomainError("STORE_UNAVAILABLE", "record store unavailable", http.StatusServiceUnavailable, err)
}

// NewNotFound hides both genuine misses and ownership mismatches behind
// the same answer.
func NewNotFound(resource string) error {
	return NewDomainError("NOT_FOUND", fmt.Sprintf("%s not found", resource), http.StatusNotFound, nil)
}

// NewNotifyFailure marks an exhausted notification fan-out. Logged
// only, never surfaced to the filer.
func NewNotifyFailure(ticketID string, err error) error {
	return NewDomainError("NOTIFY_FAILED", fmt.Sprintf("notification delivery failed for %s", ticketID), http.StatusBadGateway, err)
}

// NewCorruptedSession marks an unreachable mode/step combination.
func NewCorruptedSession(message string) error {
	return NewDomainError("CORRUPTED_SESSION", message, http.StatusInternalServerError, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
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
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err carries the given domain code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
