// Package llmerrors defines the error taxonomy for model provider
// failures. Callers that only care about triggering a fallback can
// catch every provider failure through IsProviderError; callers that
// branch on rate limits or authentication use errors.As with the
// specialized types.
package llmerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType categorizes provider failures.
type ErrorType string

const (
	// ErrorTypeRateLimit indicates the provider rejected the call for
	// exceeding its rate limits.
	ErrorTypeRateLimit ErrorType = "rate_limit"

	// ErrorTypeAuth indicates the API key was rejected.
	ErrorTypeAuth ErrorType = "authentication"

	// ErrorTypeTimeout indicates the request deadline was exceeded.
	ErrorTypeTimeout ErrorType = "timeout"

	// ErrorTypeProvider is any other upstream failure.
	ErrorTypeProvider ErrorType = "provider"
)

// ErrToolsUnsupported indicates GenerateWithTools was called on a client
// without tool-calling support.
var ErrToolsUnsupported = errors.New("provider does not support tool calling")

// ProviderError is the generic upstream failure. RateLimitError and
// AuthenticationError embed it, so errors.As against *ProviderError
// matches every provider failure class.
type ProviderError struct {
	Provider   string    `json:"provider"`
	StatusCode int       `json:"status_code"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Type       ErrorType `json:"type"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// RateLimitError is a provider rejection for exceeding rate limits.
type RateLimitError struct {
	ProviderError

	// RetryAfter is the server-suggested wait in seconds, 0 if absent.
	RetryAfter int `json:"retry_after"`
}

// Unwrap exposes the embedded ProviderError so errors.As against
// *ProviderError matches rate-limit failures too.
func (e *RateLimitError) Unwrap() error { return &e.ProviderError }

// AuthenticationError is a provider rejection of the configured credentials.
type AuthenticationError struct {
	ProviderError
}

// Unwrap exposes the embedded ProviderError for errors.As matching.
func (e *AuthenticationError) Unwrap() error { return &e.ProviderError }

// ToolCallError indicates the structured-call path was unsupported or
// the returned call was malformed. The fallback chain treats it like any
// provider failure.
type ToolCallError struct {
	Provider string `json:"provider"`
	Tool     string `json:"tool"`
	Message  string `json:"message"`
}

func (e *ToolCallError) Error() string {
	return fmt.Sprintf("%s tool call %q failed: %s", e.Provider, e.Tool, e.Message)
}

// IsProviderError reports whether err belongs to any provider failure
// class, including tool-call failures. This is the single category the
// fallback chains catch.
func IsProviderError(err error) bool {
	var pe *ProviderError
	var tce *ToolCallError
	return errors.As(err, &pe) || errors.As(err, &tce) || errors.Is(err, ErrToolsUnsupported)
}

// Classify maps an HTTP status code to an error type.
func Classify(statusCode int) ErrorType {
	switch statusCode {
	case http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrorTypeAuth
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ErrorTypeTimeout
	default:
		return ErrorTypeProvider
	}
}

// FromStatus builds the most specific error for an HTTP failure.
func FromStatus(provider string, statusCode int, code, message string) error {
	base := ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Type:       Classify(statusCode),
	}

	switch base.Type {
	case ErrorTypeRateLimit:
		return &RateLimitError{ProviderError: base}
	case ErrorTypeAuth:
		return &AuthenticationError{ProviderError: base}
	default:
		return &base
	}
}
