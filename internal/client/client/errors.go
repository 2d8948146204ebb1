package client

import "errors"

var (
	ErrUnavailable       = errors.New("server unavailable")
	ErrMalformedResponse = errors.New("malformed server response")

	// ErrUnrecognizedResponse is a well-formed answer that is neither a
	// success nor a structured error.
	ErrUnrecognizedResponse = errors.New("response is neither success nor error")
)
