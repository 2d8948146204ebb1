// Package stubserver is an in-memory backend that speaks the gophlink
// envelope protocol: a key endpoint, email/OTP based auth and the URL
// service. It exists for end-to-end tests and local development of the
// client. Nothing it stores survives a restart.
package stubserver
