package marketplace

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/BDNK1/sflowg-marketplace/runtime/plugin"
)

// Error codes reported through ErrorCode. The runtime copies them onto
// NodeOperationError so hosts can branch without importing this package.
const (
	CodeValidation             = plugin.ErrorCodeValidation
	CodeAuthenticationRequired = plugin.ErrorCodeAuthenticationRequired
	CodeTransport              = plugin.ErrorCodeTransport
	CodeUnsupportedOperation   = plugin.ErrorCodeUnsupportedOperation
)

// ValidationError reports bad input. It is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) ErrorCode() string {
	return CodeValidation
}

// AuthenticationRequiredError is returned before any network call when an
// operation needs a bearer token and none is configured.
type AuthenticationRequiredError struct {
	Operation Operation
}

func (e *AuthenticationRequiredError) Error() string {
	return "Authentication required: Please configure AI Marketplace API credentials for this operation"
}

func (e *AuthenticationRequiredError) ErrorCode() string {
	return CodeAuthenticationRequired
}

// UnsupportedOperationError means the (resource, action) pair is not in the
// route table, or not offered by the node that received it.
type UnsupportedOperationError struct {
	Resource Resource
	Action   Action
}

func (e *UnsupportedOperationError) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("Unknown operation: %s", e.Action)
	}
	return fmt.Sprintf("Unknown operation: %s/%s", e.Resource, e.Action)
}

func (e *UnsupportedOperationError) ErrorCode() string {
	return CodeUnsupportedOperation
}

// TransportError covers network failures, timeouts and non-2xx responses.
// HTTPStatus is zero when no response was received.
type TransportError struct {
	Method     string
	Path       string
	HTTPStatus int
	Message    string
	RawBody    any
	Attempts   int
	Timeout    bool
	Err        error
}

func (e *TransportError) Error() string {
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("%s %s failed with status %d: %s", e.Method, e.Path, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Method, e.Path, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) ErrorCode() string {
	return CodeTransport
}

// Temporary reports whether the failure is a server-side 5xx.
func (e *TransportError) Temporary() bool {
	return e.HTTPStatus >= http.StatusInternalServerError
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsAuthenticationRequired reports whether err is or wraps an *AuthenticationRequiredError.
func IsAuthenticationRequired(err error) bool {
	var target *AuthenticationRequiredError
	return errors.As(err, &target)
}
