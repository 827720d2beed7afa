// Package errs is the error taxonomy shared by the domain and application layers.
// Every failure an operation reports to its caller is an *Error carrying a Kind
// and a human readable message; the HTTP layer maps the Kind to a status code.
package errs

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a typed domain failure. Err keeps the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = &Error{Kind: KindNotFound, Message: "not found"}

func BadRequest(msg string) *Error   { return &Error{Kind: KindBadRequest, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func Forbidden(msg string) *Error    { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }

// Internal wraps an unexpected failure. The message is what callers may see.
func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: cause}
}

// KindOf reports the Kind of err. Errors outside the taxonomy are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// HTTPStatus maps err to a response status.
// Conflict is a 403: duplicate registration answers "exists" with Forbidden.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden, KindConflict:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show to a caller.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal server error"
}
