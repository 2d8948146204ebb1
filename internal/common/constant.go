// Package common contains shared constants and sentinel errors used across
// gophlink components.
package common

// Header names of the envelope protocol.
const (
	KeyIDHeaderName         = "sKeyId"
	AuthorizationHeaderName = "Authorization"
	UserNameHeaderName      = "userName"
	RequestIDHeaderName     = "X-Request-ID"
)

// StatusSuccess is the structured sStatus value the backend reports for a
// successful auth or OTP call.
const StatusSuccess = "SUCCESS"

// StatusPasswordChanged is what change-password reports on success.
const StatusPasswordChanged = "200"

// DefaultProductName identifies this client to the backend.
const DefaultProductName = "URL_SHORTENER"

// DefaultOTPSeconds is the logical lifetime of an OTP challenge.
const DefaultOTPSeconds = 120

// EmailTypeSignupOTP is the sEmailType requested for signup verification mails.
const EmailTypeSignupOTP = "EMAIL_OTP_SMS"
