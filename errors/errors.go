package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified error type surfaced by the SDK.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried by the caller.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the status used when the error is rendered by the loopback server.
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

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Login flow constructors ---

// PopupBlocked reports that the login window could not be created.
func PopupBlocked(cause error) *AppError {
	return New(ErrCodePopupBlocked, "unable to open login window", http.StatusInternalServerError).WithCause(cause)
}

// PopupClosedByUser reports that the login window closed without a response.
func PopupClosedByUser() *AppError {
	return New(ErrCodePopupClosedByUser, "popup closed by user", http.StatusBadRequest)
}

// StateMismatch reports a response whose state does not belong to the current attempt.
func StateMismatch() *AppError {
	return New(ErrCodeStateMismatch, "state mismatch", http.StatusBadRequest)
}

// ProviderError carries the provider's error and description.
func ProviderError(code, description string) *AppError {
	return New(ErrCodeProviderError, fmt.Sprintf("%s: %s", code, description), http.StatusBadGateway).
		WithDetail("error", code).
		WithDetail("error_description", description)
}

// ProviderFailure wraps a failed call to a provider endpoint.
func ProviderFailure(provider, operation string, cause error) *AppError {
	return New(ErrCodeProviderError, fmt.Sprintf("error during %s", operation), http.StatusBadGateway).
		WithDetail("provider", provider).
		WithCause(cause)
}

// MissingAccessToken reports a normalized response without an access token.
func MissingAccessToken() *AppError {
	return New(ErrCodeMissingAccessToken, "access token missing", http.StatusBadRequest)
}

// ConfigFetchFailed reports a failed gateway or client-ID lookup.
func ConfigFetchFailed(message string, cause error) *AppError {
	return New(ErrCodeConfigFetchFailed, message, http.StatusBadGateway).WithCause(cause)
}

// KeyReconstructionFailed reports a failed private key request.
func KeyReconstructionFailed(cause error) *AppError {
	return New(ErrCodeKeyReconstructionFailed, "error during getting user key", http.StatusBadGateway).WithCause(cause)
}

// NotAuthenticated reports that no session exists yet.
func NotAuthenticated() *AppError {
	return New(ErrCodeNotAuthenticated, "please login before fetching user info", http.StatusUnauthorized)
}

// --- General constructors ---

// InvalidInput creates an error for an invalid input value.
func InvalidInput(field, reason string) *AppError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("invalid %s: %s", field, reason), http.StatusBadRequest).
		WithDetail("field", field)
}

// Validation creates a validation error with a combined message.
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message, http.StatusBadRequest)
}

// Internal wraps an unexpected error.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "an unexpected error occurred", http.StatusInternalServerError).WithCause(cause)
}

// Storage wraps a failing storage backend.
func Storage(operation string, cause error) *AppError {
	return New(ErrCodeStorage, fmt.Sprintf("storage %s failed", operation), http.StatusInternalServerError).WithCause(cause)
}

// ExternalService wraps a failing collaborator call.
func ExternalService(service string, cause error) *AppError {
	return New(ErrCodeExternalService, fmt.Sprintf("%s request failed", service), http.StatusBadGateway).WithCause(cause)
}

// IsCode reports whether err is an AppError carrying code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }
