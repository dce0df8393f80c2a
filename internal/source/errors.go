package source

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind is the normalized failure taxonomy shared by all adapters.
type ErrorKind string

const (
	// KindUnavailable covers network failures, non-2xx statuses and open breakers.
	KindUnavailable ErrorKind = "upstream_unavailable"

	KindTimeout ErrorKind = "timeout"

	// KindSchemaMismatch means the payload no longer has the expected shape.
	KindSchemaMismatch ErrorKind = "schema_mismatch"

	KindNotFound ErrorKind = "not_found"

	// KindNotSupported means the adapter lacks the requested capability.
	KindNotSupported ErrorKind = "not_supported"

	// KindRateLimited is the upstream telling us to slow down (HTTP 429).
	KindRateLimited ErrorKind = "upstream_rate_limited"

	// KindInvalidInput means the caller's parameters were rejected before any
	// upstream call.
	KindInvalidInput ErrorKind = "invalid_input"

	KindInternal ErrorKind = "internal"
)

// AdapterError wraps an adapter failure with its normalized kind.
type AdapterError struct {
	Kind       ErrorKind
	Source     string
	Message    string
	Underlying error
	Retryable  bool
}

func (e *AdapterError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("source %s [%s]: %s: %v", e.Source, e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("source %s [%s]: %s", e.Source, e.Kind, e.Message)
}

func (e *AdapterError) Unwrap() error {
	return e.Underlying
}

func NewError(kind ErrorKind, source, message string, underlying error) *AdapterError {
	return &AdapterError{
		Kind:       kind,
		Source:     source,
		Message:    message,
		Underlying: underlying,
		Retryable:  kind == KindTimeout || kind == KindUnavailable || kind == KindRateLimited,
	}
}

// InvalidInput reports a parameter the adapter refuses to forward.
func InvalidInput(source, message string) *AdapterError {
	return NewError(KindInvalidInput, source, message, nil)
}

// NotSupported reports that source has no implementation of op.
func NotSupported(source, op string) *AdapterError {
	return NewError(KindNotSupported, source, op+" is not supported", nil)
}

// KindOf extracts the kind of err. Context deadline errors that escaped an
// adapter unwrapped still count as timeouts.
func KindOf(err error) ErrorKind {
	var ae *AdapterError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindInternal
}

func IsRetryable(err error) bool {
	var ae *AdapterError
	if errors.As(err, &ae) {
		return ae.Retryable
	}
	return false
}
