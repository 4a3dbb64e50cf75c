package domain

import (
	"errors"
	"fmt"
)

var (
	// Invocation errors
	ErrInvocation       = errors.New("core invocation failed")
	ErrUnknownOperation = errors.New("unknown core operation")
	ErrInvalidParams    = errors.New("invalid request parameters")

	// Upstream errors
	ErrAuthentication      = errors.New("upstream rejected credentials")
	ErrExchangeUnavailable = errors.New("exchange service unavailable")
	ErrRateLimited         = errors.New("rate limited by exchange")
	ErrInvalidResponse     = errors.New("invalid response from exchange")

	// Credential policy errors
	ErrMissingCredentials  = errors.New("client-held policy requires credentials")
	ErrCredentialsRequired = errors.New("per-call policy requires credentials on every call")
	ErrPolicyViolation     = errors.New("call credentials not allowed by credential policy")

	// Archive errors
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// General errors
	ErrInternal = errors.New("internal server error")
)

// InvocationError is the single failure channel of the binding layer.
// It matches both ErrInvocation and the underlying cause with errors.Is.
type InvocationError struct {
	Operation Operation
	Err       error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrInvocation, e.Operation, e.Err)
}

func (e *InvocationError) Unwrap() []error {
	return []error{ErrInvocation, e.Err}
}

// NewInvocationError wraps err as a failed invocation of op
func NewInvocationError(op Operation, err error) *InvocationError {
	return &InvocationError{Operation: op, Err: err}
}

// IsInvocationError checks if the error came out of the binding layer
func IsInvocationError(err error) bool {
	var invErr *InvocationError
	return errors.As(err, &invErr)
}
