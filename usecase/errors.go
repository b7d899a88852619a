package usecase

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so the HTTP layer can pick a status code.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindInvalidInput      ErrorKind = "invalid_input"
	KindGeofenceViolation ErrorKind = "geofence_violation"
	KindConflict          ErrorKind = "conflict"
	KindUpstream          ErrorKind = "upstream"
	KindUnauthorized      ErrorKind = "unauthorized"
	KindForbidden         ErrorKind = "forbidden"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrGeofenceViolation = &Error{Kind: KindGeofenceViolation, Message: "outside geofence"}
	ErrConflict          = &Error{Kind: KindConflict, Message: "conflict"}
	ErrUpstream          = &Error{Kind: KindUpstream, Message: "upstream failure"}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrForbidden         = &Error{Kind: KindForbidden, Message: "forbidden"}
)

func notFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func invalidInput(msg string) error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

func conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

func unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func upstream(msg string, err error) error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
