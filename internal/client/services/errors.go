package services

import "errors"

var (
	ErrServerRejected   = errors.New("rejected by server")
	ErrDigestMismatch   = errors.New("verification digest mismatch")
	ErrOTPExpired       = errors.New("otp expired")
	ErrInvalidState     = errors.New("operation not allowed in current state")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidInput     = errors.New("invalid input")
)

// causeOf returns the internal cause of a user-facing error for logging.
func causeOf(err error) error {
	if u := errors.Unwrap(err); u != nil {
		return u
	}
	return err
}
