// Package errors provides the unified error type for authkit.
// It implements structured errors with machine-readable codes and HTTP status
// mapping, split along the failure classes the kit distinguishes: setup
// errors (fatal at assembly time), validation errors, denied access, identity
// protocol rejections, and unexpected internal errors.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// --- Constructors for the kit's failure classes ---

// Setup creates an error for a broken plugin assembly, such as a missing required
// capability or invalid configuration. Setup errors are fatal: they surface
// at registration time or as a 500 on the first request that hits them.
func Setup(component, reason string) *AppError {
	return &AppError{
		Code: ErrCodeSetup, Message: fmt.Sprintf("%s: %s", component, reason),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"component": component},
	}
}

// MissingCapability creates a setup error for a gate that needs a capability
// no plugin installed on the request.
func MissingCapability(capability, plugin string) *AppError {
	return &AppError{
		Code:       ErrCodeSetup,
		Message:    fmt.Sprintf("missing %s on request, has the %s plugin been mounted?", capability, plugin),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"capability": capability, "plugin": plugin},
	}
}

// Validation creates an error for an invalid value passed to a specific call.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Unauthorized creates an error for a request with no authenticated user.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return &AppError{
		Code: ErrCodeUnauthorized, Message: reason,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates an error for an authenticated request that lacks the
// required role or permission.
func Forbidden(reason string) *AppError {
	if reason == "" {
		reason = "You don't have permission to perform this action."
	}
	return &AppError{
		Code: ErrCodeForbidden, Message: reason,
		HTTPStatus: http.StatusForbidden,
	}
}

// IdentityProtocol creates an error for an expected, protocol-level rejection
// from an identity provider. These are treated as "authentication failed" and
// redirect to the failure target rather than surfacing a 5xx.
func IdentityProtocol(issuer string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeIdentityProtocol, Message: fmt.Sprintf("issuer %q rejected the authentication attempt", issuer),
		HTTPStatus: http.StatusUnauthorized,
		Details:    map[string]any{"issuer": issuer},
		Cause:      cause,
	}
}

// Internal creates an error for an unexpected failure. These propagate to the
// framework's generic error handling, never masked.
func Internal(message string, cause error) *AppError {
	if message == "" {
		message = "An unexpected error occurred."
	}
	return &AppError{
		Code: ErrCodeInternal, Message: message,
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
