package throttle

import (
	"errors"
	"fmt"
	"time"
)

// GenericErrorMessage is shown when the authenticator could not be reached or
// its response could not be understood.
const GenericErrorMessage = "An error occurred. Please try again."

// DefaultRejectionMessage is used when the backend rejects credentials without
// providing a message of its own.
const DefaultRejectionMessage = "Invalid Credentials"

// ErrLocked matches any error returned while the session is locked out.
var ErrLocked = errors.New("login locked out")

// ValidationReason identifies which passcode rule was violated.
type ValidationReason string

const (
	ReasonEmpty      ValidationReason = "empty"
	ReasonTooLong    ValidationReason = "too_long"
	ReasonNotNumeric ValidationReason = "not_numeric"
)

// ValidationError reports a malformed passcode. It never reaches the network
// and never affects failure counting.
type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthenticationFailure is a well-formed credential rejected by the backend.
type AuthenticationFailure struct {
	Status  int
	Message string
}

func (e *AuthenticationFailure) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.DisplayMessage())
}

// DisplayMessage returns the server-provided message, or a default when the
// server sent none.
func (e *AuthenticationFailure) DisplayMessage() string {
	if e == nil || e.Message == "" {
		return DefaultRejectionMessage
	}
	return e.Message
}

// TransportError wraps network, decoding and server-side failures. It does not
// count towards the lockout threshold.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "authentication transport failure"
	}
	return fmt.Sprintf("authentication transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// LockedError is returned by Submit while the session is locked, and by the
// submission that triggered the lockout (Cause then holds the rejection).
type LockedError struct {
	Until     time.Time
	Remaining time.Duration
	Cause     error
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("login locked out, retry in %s", FormatRemaining(e.Remaining))
}

func (e *LockedError) Is(target error) bool {
	return target == ErrLocked
}

func (e *LockedError) Unwrap() error {
	return e.Cause
}
