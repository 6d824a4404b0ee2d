package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates a dependency is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the operation did not finish in time.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeExternalService indicates an analysis script or sidecar failed.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeConflict indicates a conflict with the current state.
	ErrCodeConflict ErrorCode = "CONFLICT"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Processing errors
const (
	// ErrCodeMalformedResponse indicates a dependency answered with a body that
	// could not be decoded.
	ErrCodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
	// ErrCodeCanceled indicates the operation was canceled by the caller.
	ErrCodeCanceled ErrorCode = "CANCELED"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeExternalService:    true,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
