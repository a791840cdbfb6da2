// Package apperrors defines the error kinds returned by the booking services.
//
// Every failure that crosses a service boundary is an *Error carrying a Kind.
// Callers branch on the kind with errors.Is against the package sentinels,
// e.g. errors.Is(err, apperrors.ErrSlotUnavailable).
package apperrors

import "errors"

// Kind classifies an error for the caller.
type Kind string

const (
	Unauthenticated   Kind = "UNAUTHENTICATED"
	Forbidden         Kind = "FORBIDDEN"
	NotFound          Kind = "NOT_FOUND"
	InvalidRange      Kind = "INVALID_RANGE"
	SlotUnavailable   Kind = "SLOT_UNAVAILABLE"
	SlotConsumed      Kind = "SLOT_CONSUMED"
	InvalidTransition Kind = "INVALID_TRANSITION"
	InvalidInput      Kind = "INVALID_INPUT"
	Conflict          Kind = "CONFLICT"
	Internal          Kind = "INTERNAL"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrUnauthenticated   = &Error{Kind: Unauthenticated}
	ErrForbidden         = &Error{Kind: Forbidden}
	ErrNotFound          = &Error{Kind: NotFound}
	ErrInvalidRange      = &Error{Kind: InvalidRange}
	ErrSlotUnavailable   = &Error{Kind: SlotUnavailable}
	ErrSlotConsumed      = &Error{Kind: SlotConsumed}
	ErrInvalidTransition = &Error{Kind: InvalidTransition}
	ErrInvalidInput      = &Error{Kind: InvalidInput}
	ErrConflict          = &Error{Kind: Conflict}
	ErrInternal          = &Error{Kind: Internal}
)

// Error is a classified, caller-safe error. Err holds the underlying cause
// for logging and is never part of Error().
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind that keeps cause for logs.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Storage reports a persistence failure without exposing its details.
func Storage(cause error) *Error {
	return &Error{Kind: Internal, Message: "internal storage error", Err: cause}
}

// KindOf returns the kind of err, or Internal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}
