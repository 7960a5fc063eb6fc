// Package apperrors defines the error taxonomy shared by every layer of the
// service. Errors carry a machine-checkable Kind so callers branch on kinds
// instead of matching message text.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error. Kinds marshal as their string value in API
// payloads.
type Kind string

const (
	KindUnknown           Kind = "unknown"
	KindInvalidInput      Kind = "invalid_input"
	KindConfiguration     Kind = "configuration"
	KindInvalidCredential Kind = "invalid_credential"
	KindNotFound          Kind = "not_found"
	KindCommentsDisabled  Kind = "comments_disabled"
	KindNoComments        Kind = "no_comments"
	KindUpstreamFailure   Kind = "upstream_failure"
	KindMalformedResponse Kind = "malformed_response"
	KindRateLimited       Kind = "rate_limited"
)

// Error is a kind-tagged error. Message is the user-facing text; Err, when
// set, is the underlying cause and surfaces only in logs.
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

// New returns a kind-tagged error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf returns a kind-tagged error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and a user-facing message to an underlying cause.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf resolves the Kind of err, unwrapping as needed. Errors that never
// passed through this package report KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the user-facing message for err. Untagged errors get a
// generic message so internal details never reach a client.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
