// Package apperr defines the error taxonomy shared by all domain services.
// Handlers map each Kind to exactly one HTTP status class so callers can
// distinguish validation faults, conflicts, missing entities, and
// dependency failures.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for HTTP mapping and retry decisions.
type Kind string

const (
	KindValidation Kind = "validation"  // caller's fault, do not retry
	KindConflict   Kind = "conflict"    // overlapping slot or duplicate unique field
	KindNotFound   Kind = "not_found"   // referenced entity absent
	KindDependency Kind = "dependency"  // store or notifier unavailable
)

// Error carries a Kind, a caller-facing message, and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Validation returns a KindValidation error.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict returns a KindConflict error.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a KindNotFound error.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Dependency wraps a store or notifier failure.
func Dependency(cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindDependency, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf returns the Kind of err, or "" if err carries none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsDependency(err error) bool { return KindOf(err) == KindDependency }
