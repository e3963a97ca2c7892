package errors

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures so callers can decide between reporting,
// retrying with different inputs, or degrading.
type Kind string

const (
	KindValidation          Kind = "validation"
	KindProviderUnavailable Kind = "provider_unavailable"
	KindProviderResponse    Kind = "provider_response"
	KindEncodeTimeout       Kind = "encode_timeout"
	KindEncodeFailure       Kind = "encode_failure"
	KindMediaProbe          Kind = "media_probe"
	KindNotFound            Kind = "not_found"
	KindInternal            Kind = "internal"
)

// Error is the pipeline's typed error. Reason is always a concrete,
// user-presentable sentence, never a generic "internal error".
type Error struct {
	Kind   Kind
	Reason string
	// Payload holds raw diagnostic material, e.g. an unrecognized provider
	// response body or captured encoder stderr.
	Payload string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.cause)
	}
	return e.Reason
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches on Kind so sentinel comparisons work across instances.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the Kind of err, or KindInternal when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err (or anything it wraps) has the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Validation reports a caller-actionable input problem (bad extension,
// oversize file, quota exceeded, malformed edit payload).
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Reason: fmt.Sprintf(format, args...)}
}

// ProviderUnavailable reports that the requested backend is not configured
// or not reachable. No substitution happens; the caller picks another.
func ProviderUnavailable(provider, reason string) *Error {
	return &Error{
		Kind:   KindProviderUnavailable,
		Reason: fmt.Sprintf("provider %q unavailable: %s", provider, reason),
	}
}

// ProviderResponse reports that a backend replied in an unrecognized shape.
// The raw payload is preserved for diagnosis.
func ProviderResponse(provider string, payload []byte) *Error {
	return &Error{
		Kind:    KindProviderResponse,
		Reason:  fmt.Sprintf("provider %q returned a response in no recognized format", provider),
		Payload: string(payload),
	}
}

// EncodeTimeout reports that an external encoder run exceeded its preset's
// time budget. Stderr captured up to the kill is attached.
func EncodeTimeout(preset string, stderr string) *Error {
	return &Error{
		Kind:    KindEncodeTimeout,
		Reason:  fmt.Sprintf("encoder timed out at preset %q", preset),
		Payload: stderr,
	}
}

// EncodeFailure reports a non-zero encoder exit with its captured stderr.
func EncodeFailure(preset string, cause error, stderr string) *Error {
	return &Error{
		Kind:    KindEncodeFailure,
		Reason:  fmt.Sprintf("encoder failed at preset %q", preset),
		Payload: stderr,
		cause:   cause,
	}
}

// MediaProbe reports a failed metadata probe. Callers treat this as
// "duration unknown", not as a fatal condition.
func MediaProbe(path string, cause error) *Error {
	return &Error{
		Kind:   KindMediaProbe,
		Reason: fmt.Sprintf("could not probe media file %s", path),
		cause:  cause,
	}
}

// NotFound reports a missing fileId or on-disk artifact.
func NotFound(what, identifier string) *Error {
	return &Error{
		Kind:   KindNotFound,
		Reason: fmt.Sprintf("%s not found: %s", what, identifier),
	}
}

// Internal wraps an unexpected failure with context.
func Internal(reason string, cause error) *Error {
	return &Error{Kind: KindInternal, Reason: reason, cause: cause}
}
