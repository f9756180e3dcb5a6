// Package apperr defines the error taxonomy shared by every service:
// a small set of machine-readable kinds plus a human-readable message.
// Transport layers map kinds to status codes; services and repositories
// never convert an error into a success.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a machine-readable error class.
type Kind string

const (
	// KindUnauthorized covers missing identities and role mismatches.
	KindUnauthorized Kind = "UNAUTHORIZED"
	// KindNotFound covers absent users, items, and orders.
	KindNotFound Kind = "NOT_FOUND"
	// KindConflict covers duplicate role requests and cancels on
	// terminal orders.
	KindConflict Kind = "CONFLICT"
	// KindInvalid covers validation failures such as a non-positive
	// order quantity or an adjustment that would drive stock negative.
	KindInvalid Kind = "VALIDATION"
	// KindUnavailable covers transient persistence failures. They are
	// never masked as domain errors.
	KindUnavailable Kind = "UNAVAILABLE"
)

// HTTPStatus maps a kind to its response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalid:
		return http.StatusBadRequest
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a kind, a message, and an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two errors by kind and message so that package-level
// sentinel errors work with errors.Is even after wrapping.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind && e.Msg == other.Msg
}

// New builds a domain error with the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap attaches a cause to a new domain error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Unavailable wraps a transient persistence failure.
func Unavailable(msg string, err error) *Error {
	return &Error{Kind: KindUnavailable, Msg: msg, Err: err}
}

// KindOf extracts the kind from an error chain. Errors outside the
// taxonomy report KindUnavailable so callers fail closed.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnavailable
}
