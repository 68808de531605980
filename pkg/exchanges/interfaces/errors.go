package interfaces

import (
	"errors"
	"fmt"
)

// Kind classifies a RequestError. Every error surfaced by the gateway or the
// streaming session belongs to exactly one kind.
type Kind int

const (
	// KindUnknown is the zero value and never produced by this library.
	KindUnknown Kind = iota

	// KindInvalidRequest covers malformed input rejected before any network
	// call, and application-level errors reported by the exchange (the
	// exchange's own message text is attached when available).
	KindInvalidRequest

	// KindInternal covers local failures: request serialization, response
	// deserialization with no recoverable error envelope, malformed secret.
	KindInternal

	// KindNetwork covers transport-level failures: connection refused,
	// timeout, TLS failure.
	KindNetwork

	// KindNotConnected covers streaming operations attempted while the
	// session is disconnected.
	KindNotConnected
)

// String returns the string representation of an error kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid request"
	case KindInternal:
		return "internal error"
	case KindNetwork:
		return "network error"
	case KindNotConnected:
		return "not connected"
	default:
		return "unknown"
	}
}

// ErrNotConnected is returned when a streaming operation is attempted on a
// session that has not been connected or has been disconnected.
var ErrNotConnected = &RequestError{Kind: KindNotConnected, Message: "streaming session not connected"}

// ErrSessionClosed is returned by ReadNext when the peer closes the
// connection. It signals a graceful end of the frame stream rather than a
// failure; drive loops should exit cleanly on it.
var ErrSessionClosed = errors.New("streaming session closed by peer")

// RequestError is the error type produced by gateway and session operations.
type RequestError struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

// Unwrap returns the underlying error, if any.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a RequestError of the same kind, so that
// errors.Is(err, interfaces.ErrNotConnected) works across wrapping.
func (e *RequestError) Is(target error) bool {
	var other *RequestError
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// NewInvalidRequest reports input rejected before a network call, or an
// exchange-reported application error.
func NewInvalidRequest(message string) error {
	return &RequestError{Kind: KindInvalidRequest, Message: message}
}

// NewInternalError reports a local failure with an optional cause.
func NewInternalError(message string, err error) error {
	return &RequestError{Kind: KindInternal, Message: message, Err: err}
}

// NewNetworkError reports a transport-level failure.
func NewNetworkError(err error) error {
	return &RequestError{Kind: KindNetwork, Err: err}
}

// KindOf returns the kind of err, or KindUnknown for errors that did not
// originate from this library.
func KindOf(err error) Kind {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}
