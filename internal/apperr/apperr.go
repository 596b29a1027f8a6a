// Package apperr defines the error kinds the service layer reports. Handlers
// map kinds to HTTP statuses; everything unexpected is Internal.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure.
type Kind string

const (
	// KindNotFound covers both "does not exist" and "not visible to this
	// caller". Conflating the two keeps other users' records unguessable.
	KindNotFound Kind = "NOT_FOUND"
	// KindValidation is a field-level violation raised by the service itself.
	KindValidation Kind = "VALIDATION_ERROR"
	// KindConflict is a uniqueness violation (duplicate serial opt-in check,
	// duplicate user registration).
	KindConflict Kind = "CONFLICT"
	// KindInternal is an unexpected persistence or programming failure.
	KindInternal Kind = "INTERNAL_ERROR"
)

// Error is a classified failure, optionally naming the offending field.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// NotFound reports a missing or not-owned record.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Validation reports a field-level violation.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// Conflict reports a uniqueness violation.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal wraps an unexpected failure.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: cause}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// FieldOf returns the offending field name, if any.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsValidation reports whether err is a Validation error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsConflict reports whether err is a Conflict error.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }
