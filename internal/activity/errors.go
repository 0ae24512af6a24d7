package activity

import (
	"errors"

	"go.temporal.io/sdk/temporal"
)

// ErrMissingState is returned when a round activity receives no search
// state. This is a programming error, never retried.
var ErrMissingState = errors.New("activity received nil search state")

// nonRetryable wraps an error as a Temporal non-retryable application
// error. Used for validation failures and other programming errors
// where a retry would fail identically.
func nonRetryable(tag string, cause error, msg string) error {
	return temporal.NewNonRetryableApplicationError(msg, tag, cause)
}

// retryable wraps an error as a Temporal application error subject to
// the workflow's retry policy. Used for transient upstream failures.
func retryable(tag string, cause error, msg string) error {
	return temporal.NewApplicationErrorWithCause(msg, tag, cause)
}
