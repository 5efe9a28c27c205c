package explorer

import (
	"errors"
	"fmt"
)

// Error represents an explorer-specific error with a machine-readable code.
type Error struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common error codes
const (
	// ErrCodeInvalidConfig indicates a configuration problem detected at
	// construction time (empty key pool, non-positive rate, bad URL).
	ErrCodeInvalidConfig = "invalid_config"
	// ErrCodeInvalidAddress indicates a malformed account address. Detected
	// locally, before any remote call.
	ErrCodeInvalidAddress = "invalid_address"
	// ErrCodeInvalidTxHash indicates a malformed transaction hash. Detected
	// locally, before any remote call.
	ErrCodeInvalidTxHash = "invalid_tx_hash"
	// ErrCodeAPIError indicates the explorer reported a logical failure.
	ErrCodeAPIError = "api_error"
	// ErrCodeTransport indicates an HTTP-level failure. Eligible for
	// caller-directed retry with backoff; the client itself never retries.
	ErrCodeTransport = "transport_error"
	// ErrCodeDecode indicates the response body could not be decoded.
	ErrCodeDecode = "decode_error"
)

// NewError creates a new explorer error
func NewError(code, message string, details map[string]interface{}) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Errorf creates a new explorer error with a formatted message and no details.
func Errorf(code, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode extracts the code from an explorer error, or "" for any other error.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err is an explorer error carrying the given code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}
