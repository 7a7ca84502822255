// Package capkverr defines the error taxonomy shared by every capkv
// component: ConfigurationError, UnknownCaller, NotRegistered,
// PermissionDenied, KeyAbsent and CallbackFailure. All of them are one
// *Error type told apart by its Kind, so callers can branch with
// errors.As (or the Is helper), and each supports wrapping
// via github.com/pkg/errors so internal call sites can attach a stack
// without losing the typed error (errors.Cause unwraps it again).
package capkverr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies which member of the error taxonomy an error is.
type Kind string

const (
	KindConfiguration   Kind = "CONFIGURATION_ERROR"
	KindUnknownCaller   Kind = "UNKNOWN_CALLER"
	KindNotRegistered   Kind = "NOT_REGISTERED"
	KindPermissionDenied Kind = "PERMISSION_DENIED"
	KindKeyAbsent       Kind = "KEY_ABSENT"
	KindCallbackFailure Kind = "CALLBACK_FAILURE"
)

// Error is the concrete type behind every taxonomy member. Message carries
// human-readable context; Cause, when present, is the underlying failure
// (e.g. a panic recovered from a register-callback).
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, capkverr.NotRegistered("")) match any *Error of
// the same Kind regardless of message, mirroring sentinel-style checks.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ConfigurationError reports invalid construction input (empty zone
// roots, a ProtectedCell built without a policy).
func ConfigurationError(format string, args ...interface{}) *Error {
	return newErr(KindConfiguration, format, args...)
}

// UnknownCaller reports that CallerResolver could not match any stack
// frame against a configured zone root.
func UnknownCaller(format string, args ...interface{}) *Error {
	return newErr(KindUnknownCaller, format, args...)
}

// NotRegistered reports that the resolved caller has no credential (or,
// in the router, no private cell).
func NotRegistered(format string, args ...interface{}) *Error {
	return newErr(KindNotRegistered, format, args...)
}

// PermissionDenied reports a policy violation: zone can't escalate to
// admin, credential level doesn't permit the operation, a non-admin
// tried to mutate the shared-admin namespace, or a ProtectedCell
// authorizer rejected the caller.
func PermissionDenied(format string, args ...interface{}) *Error {
	return newErr(KindPermissionDenied, format, args...)
}

// KeyAbsent reports a missing key from an operation that requires one
// to exist (get without a default).
func KeyAbsent(format string, args ...interface{}) *Error {
	return newErr(KindKeyAbsent, format, args...)
}

// CallbackFailure wraps a panic/error recovered from a register
// callback. This taxonomy member is always contained by the registry —
// it is logged, never propagated to the caller of register().
func CallbackFailure(cause error, format string, args ...interface{}) *Error {
	e := newErr(KindCallbackFailure, format, args...)
	e.Cause = cause
	return e
}

// Wrap attaches a stack trace to err via github.com/pkg/errors while
// preserving *Error identity for errors.As/errors.Is at call sites that
// need both the taxonomy and a stack for diagnostics.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, message)
}

// Is reports whether err is a capkverr.Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
