// Package apperrors defines the error taxonomy shared by the service and
// HTTP layers. Services return sentinel errors or wrap causes in an Error;
// a single boundary maps Kind to an HTTP status and a uniform envelope.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for status mapping and the response envelope.
type Kind string

const (
	KindValidation     Kind = "VALIDATION"
	KindAuthentication Kind = "AUTHENTICATION"
	KindAuthorization  Kind = "AUTHORIZATION"
	KindNotFound       Kind = "NOT_FOUND"
	KindDatabase       Kind = "DATABASE"
	KindInternal       Kind = "INTERNAL"
)

// Error is a classified application error. Message is safe to render to
// clients; the wrapped cause is for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an Error wrapping cause. The client sees only message.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf returns the Kind of err if it is (or wraps) an Error, else KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
