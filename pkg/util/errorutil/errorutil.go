package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors across the purchase workflow.
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
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string) error {
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NewUnauthenticated(message string) error {
	return NewDomainError("UNAUTHENTICATED", message, http.StatusUnauthorized, nil)
}

// NewAlreadyPurchased reports a checkout attempt for an owned guide.
func NewAlreadyPurchased(guideID string) error {
	return NewDomainError("ALREADY_PURCHASED", "guide already purchased",
		http.StatusConflict, map[string]any{"guide_id": guideID})
}

// NewInvalidSignature rejects webhook deliveries that fail verification.
// Malformed or unresolvable event metadata gets the same treatment: the
// payload cannot be trusted, so nothing is written.
func NewInvalidSignature(message string) error {
	return NewDomainError("INVALID_SIGNATURE", message, http.StatusBadRequest, nil)
}

// NewUpstreamError wraps payment gateway call failures.
func NewUpstreamError(err error) error {
	return &DomainError{
		Code:       "UPSTREAM_ERROR",
		Message:    "payment gateway unavailable",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewPersistenceError surfaces data store failures as retryable 500s.
func NewPersistenceError(err error) error {
	return &DomainError{
		Code:       "PERSISTENCE_ERROR",
		Message:    "data store failure",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError without leaking
// internal detail to the caller.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource").(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
