package domain

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable category of an Error.
type Kind string

const (
	KindValidation            Kind = "validation_error"
	KindInvalidCredentials    Kind = "invalid_credentials"
	KindUnauthenticated       Kind = "unauthenticated"
	KindForbidden             Kind = "forbidden"
	KindNotFound              Kind = "not_found"
	KindTokenExpired          Kind = "token_expired"
	KindTokenInvalid          Kind = "token_invalid"
	KindInternalInconsistency Kind = "internal_inconsistency"
)

// Error is the structured failure returned across service boundaries.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// holds regardless of field or message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrValidation            = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrInvalidCredentials    = &Error{Kind: KindInvalidCredentials, Message: "unable to log in with provided credentials"}
	ErrUnauthenticated       = &Error{Kind: KindUnauthenticated, Message: "authentication credentials were not provided"}
	ErrForbidden             = &Error{Kind: KindForbidden, Message: "you do not have permission to perform this action"}
	ErrNotFound              = &Error{Kind: KindNotFound, Message: "not found"}
	ErrTokenExpired          = &Error{Kind: KindTokenExpired, Message: "token is expired"}
	ErrTokenInvalid          = &Error{Kind: KindTokenInvalid, Message: "token is invalid"}
	ErrInternalInconsistency = &Error{Kind: KindInternalInconsistency, Message: "internal inconsistency"}
)

// NewError builds an Error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// ValidationError reports malformed input on a named field.
func ValidationError(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// KindOf returns the Kind carried by err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
