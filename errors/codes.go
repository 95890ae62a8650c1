package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Login flow errors. None of them is retried by the SDK.
const (
	// ErrCodePopupBlocked indicates the login window could not be opened.
	ErrCodePopupBlocked ErrorCode = "POPUP_BLOCKED"
	// ErrCodePopupClosedByUser indicates the login window closed before a response arrived.
	ErrCodePopupClosedByUser ErrorCode = "POPUP_CLOSED_BY_USER"
	// ErrCodeStateMismatch indicates the response state does not match the request.
	ErrCodeStateMismatch ErrorCode = "STATE_MISMATCH"
	// ErrCodeProviderError indicates the identity provider returned an error.
	ErrCodeProviderError ErrorCode = "PROVIDER_ERROR"
	// ErrCodeMissingAccessToken indicates the normalized response carries no access token.
	ErrCodeMissingAccessToken ErrorCode = "MISSING_ACCESS_TOKEN"
	// ErrCodeConfigFetchFailed indicates a gateway or client-ID lookup failed.
	ErrCodeConfigFetchFailed ErrorCode = "CONFIG_FETCH_FAILED"
	// ErrCodeKeyReconstructionFailed indicates the key service could not return a key.
	ErrCodeKeyReconstructionFailed ErrorCode = "KEY_RECONSTRUCTION_FAILED"
	// ErrCodeNotAuthenticated indicates a session was required but none exists.
	ErrCodeNotAuthenticated ErrorCode = "NOT_AUTHENTICATED"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeValidation indicates a configuration or struct failed validation.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
)

// Infrastructure errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeExternalService indicates an error from an external service.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	// ErrCodeStorage indicates a storage backend failed.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeExternalService: true,
	ErrCodeStorage:         true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// The SDK itself never retries; the flag is advisory for callers.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
