// Package apperror defines the error kinds shared by the directory services.
// Kinds map onto HTTP codes at the controller boundary; everything that is not
// a known kind is reported as an internal error.
package apperror

import (
	"net/http"

	"github.com/pkg/errors"
)

type Kind string

const (
	KindPersistence    Kind = "persistence_error"
	KindTransport      Kind = "transport_error"
	KindMissingProfile Kind = "missing_profile"
	KindInvalidInput   Kind = "invalid_input"
	KindUnauthorized   Kind = "unauthorized"
	KindForbidden      Kind = "forbidden"
	KindNotFound       Kind = "not_found"
)

// Error carries a kind and a user-facing message around an optional cause.
type Error struct {
	kind    Kind
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Kind() Kind { return e.kind }

func (e *Error) Message() string { return e.message }

// Is matches any *Error of the same kind so callers can use sentinel values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.kind == e.kind && (t.message == "" || t.message == e.message)
}

// HTTPCode maps the kind onto a response status.
func (e *Error) HTTPCode() int {
	switch e.kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is checks.
var (
	ErrPersistence    = &Error{kind: KindPersistence}
	ErrTransport      = &Error{kind: KindTransport}
	ErrMissingProfile = &Error{kind: KindMissingProfile}
	ErrInvalidInput   = &Error{kind: KindInvalidInput}
	ErrUnauthorized   = &Error{kind: KindUnauthorized}
	ErrForbidden      = &Error{kind: KindForbidden}
	ErrNotFound       = &Error{kind: KindNotFound}
)

func New(kind Kind, message string) error {
	return &Error{kind: kind, message: message}
}

// Persistence wraps a backing store failure.
func Persistence(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{kind: KindPersistence, message: message, cause: errors.WithStack(err)}
}

// Transport wraps a failure talking to an external API.
func Transport(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{kind: KindTransport, message: message, cause: errors.WithStack(err)}
}

// MissingProfile wraps a failure to resolve the profile behind a payment.
func MissingProfile(err error, message string) error {
	return &Error{kind: KindMissingProfile, message: message, cause: errors.WithStack(err)}
}

func InvalidInput(message string) error {
	return &Error{kind: KindInvalidInput, message: message}
}

// KindOf returns the kind of the first *Error in the chain, or "" if none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.kind
	}
	return ""
}

// HTTPCodeOf returns the status for err, defaulting to 500.
func HTTPCodeOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.HTTPCode()
	}
	return http.StatusInternalServerError
}
