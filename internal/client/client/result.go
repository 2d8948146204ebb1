package client

import "fmt"

// Kind tells the three outcomes of an envelope call apart.
type Kind int

const (
	// KindSuccess: the payload satisfied the endpoint's success rule.
	KindSuccess Kind = iota
	// KindRejected: the server answered with a structured error.
	KindRejected
	// KindUnexpected: transport, decrypt or parse failure, or an answer
	// that is neither a success nor a structured error.
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindRejected:
		return "rejected"
	case KindUnexpected:
		return "unexpected"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Result is the outcome of one envelope call. Payload is set for
// KindSuccess, Message for KindRejected and Err for KindUnexpected.
type Result[T any] struct {
	Kind    Kind
	Payload T
	Message string
	Err     error
}

func success[T any](p T) Result[T] {
	return Result[T]{Kind: KindSuccess, Payload: p}
}

func rejected[T any](msg string) Result[T] {
	return Result[T]{Kind: KindRejected, Message: msg}
}

func unexpected[T any](err error) Result[T] {
	return Result[T]{Kind: KindUnexpected, Err: err}
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.Kind == KindSuccess
}
