// Package errors provides the sentinel errors shared by probes and clients,
// wrapping helpers, and the classifier that turns arbitrary probe errors into
// failure kinds.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"gopkg.in/yaml.v3"

	"falcon/internal/core/domain"
)

// Sentinel errors for common failure scenarios
var (
	// ErrTimeout indicates an operation exceeded its time limit
	ErrTimeout = errors.New("operation timed out")

	// ErrRateLimit indicates a rate limit was exceeded
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input was provided
	ErrInvalidInput = errors.New("invalid input")

	// ErrConnectionFailed indicates a connection could not be established
	ErrConnectionFailed = errors.New("connection failed")

	// ErrUnauthorized indicates authentication or authorization failed
	ErrUnauthorized = errors.New("unauthorized")

	// ErrServiceUnavailable indicates a service is temporarily unavailable
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrInvalidResponse indicates a response could not be parsed or was malformed
	ErrInvalidResponse = errors.New("invalid response")

	// ErrCircuitOpen indicates a source was short-circuited after repeated failures
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// wrappedError wraps an error with additional context
type wrappedError struct {
	msg   string
	cause error
}

func (e *wrappedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

func (e *wrappedError) Unwrap() error {
	return e.cause
}

// Wrap wraps an error with additional context message.
// If err is nil, Wrap returns nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{msg: msg, cause: err}
}

// Wrapf wraps an error with a formatted context message.
// If err is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &wrappedError{msg: fmt.Sprintf(format, args...), cause: err}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New creates a new error with the given message.
func New(msg string) error {
	return errors.New(msg)
}

// Errorf creates a new formatted error. It supports %w.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Join combines multiple errors, discarding nils.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// IsUnauthorized reports whether the error is an authentication failure.
func IsUnauthorized(err error) bool {
	return Is(err, ErrUnauthorized)
}

// IsTimeout reports whether the error is a timeout, including context deadlines.
func IsTimeout(err error) bool {
	return Is(err, ErrTimeout) || Is(err, context.DeadlineExceeded)
}

// IsRateLimit reports whether the error is a rate limit error
func IsRateLimit(err error) bool {
	return Is(err, ErrRateLimit)
}

// IsNotFound reports whether the error is a not found error
func IsNotFound(err error) bool {
	return Is(err, ErrNotFound)
}

// IsConnectionFailed reports whether the error is a connection failed error
func IsConnectionFailed(err error) bool {
	return Is(err, ErrConnectionFailed)
}

// IsServiceUnavailable reports whether the error is a service unavailable error
func IsServiceUnavailable(err error) bool {
	return Is(err, ErrServiceUnavailable)
}

// IsInvalidResponse reports whether the error is an invalid response error
func IsInvalidResponse(err error) bool {
	return Is(err, ErrInvalidResponse)
}

// Classify maps an error returned by a probe to a failure kind.
//
// A *domain.ProbeFailure anywhere in the chain keeps its own kind. Context
// deadlines and cancellation become timeouts because a cancelled probe is one
// the run stopped waiting for.
func Classify(err error) domain.FailureKind {
	if err == nil {
		return domain.FailureUnknown
	}

	var pf *domain.ProbeFailure
	if errors.As(err, &pf) && pf.Kind.IsValid() {
		return pf.Kind
	}

	switch {
	case IsTimeout(err), Is(err, context.Canceled):
		return domain.FailureTimeout
	case IsRateLimit(err):
		return domain.FailureRateLimited
	case IsInvalidResponse(err), isDecodeError(err):
		return domain.FailureParse
	case IsConnectionFailed(err), IsServiceUnavailable(err), Is(err, ErrCircuitOpen):
		return domain.FailureNetwork
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return domain.FailureTimeout
		}
		return domain.FailureNetwork
	}

	return domain.FailureUnknown
}

func isDecodeError(err error) bool {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		yamlErr   *yaml.TypeError
	)
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.As(err, &yamlErr)
}

// ToFailure converts any probe error into a *domain.ProbeFailure attributed
// to source, whatever name the probe itself used.
func ToFailure(source string, err error) *domain.ProbeFailure {
	var pf *domain.ProbeFailure
	if errors.As(err, &pf) {
		out := *pf
		out.SourceName = source
		if !out.Kind.IsValid() {
			out.Kind = domain.FailureUnknown
		}
		return &out
	}
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return domain.NewProbeFailure(source, Classify(err), msg)
}
