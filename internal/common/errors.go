// Package common defines shared constants and sentinel errors used across
// client and stub-server layers of gophlink. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Generic messages shown when the cause must not reach the user.
const (
	MsgUnexpected      = "An unexpected error occurred. Please try again."
	MsgContactAdmin    = "An unexpected error occurred. Please contact system administrator."
	MsgSendOTPFailed   = "Failed to send OTP. Please check your network connection and try again."
	MsgResendOTPFailed = "Failed to resend OTP. Please check your network connection and try again."
	MsgVerifyOTPFailed = "Failed to verify OTP. Please try again."
	MsgRequestFailed   = "Request failed. Please try again."
	MsgOTPExpired      = "OTP has expired. Please request a new one."
	MsgNotSignedIn     = "You are not signed in."
)

// UserError carries a message that is safe to show to the user together with
// the underlying cause. Error returns only the safe message.
type UserError struct {
	Message string
	Err     error
}

// NewUserError wraps err with a user-facing message.
func NewUserError(msg string, err error) *UserError {
	return &UserError{Message: msg, Err: err}
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// UserMessage returns the safe message of err if it carries one, or msg
// otherwise.
func UserMessage(err error, msg string) string {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Message
	}
	return msg
}
