// Package errors classifies failures in the flow runtime into three
// handling classes (transient, invalid, fatal) and provides the wrap
// helpers that attach component and operation context on the way up.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dhaukoos/CodeNodeIO-sub010/pkg/retry"
)

// ErrorClass tells a caller how to react to a failure.
type ErrorClass int

const (
	// ErrorTransient marks failures worth retrying.
	ErrorTransient ErrorClass = iota
	// ErrorInvalid marks bad input, wiring, or configuration. Retrying
	// cannot help.
	ErrorInvalid
	// ErrorFatal marks failures the runtime cannot recover from.
	ErrorFatal
)

func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Sentinel errors for conditions the runtime produces itself. Callers
// match them with errors.Is.
var (
	// ErrStopTimeout reports that a control job outlived its Stop grace
	// period.
	ErrStopTimeout = errors.New("stop timed out waiting for control job")

	// ErrConduitClosed reports a send into a closed conduit.
	ErrConduitClosed = errors.New("conduit closed")

	// ErrUnwiredPort reports a Start on a runtime whose required port
	// has no conduit attached.
	ErrUnwiredPort = errors.New("port not wired")

	// ErrInvalidCapacity reports a conduit capacity below the unbounded
	// marker.
	ErrInvalidCapacity = errors.New("invalid conduit capacity")

	// ErrNoConnection reports construction of a boundary runtime
	// without a broker connection.
	ErrNoConnection = errors.New("no connection available")

	// ErrInvalidConfig reports a configuration that failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ClassifiedError carries a class alongside the wrapped error so the
// classification survives error chains.
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// classOf extracts the explicit class from an error chain.
func classOf(err error) (ErrorClass, bool) {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class, true
	}
	return ErrorTransient, false
}

func matchesAny(err error, sentinels []error) bool {
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func containsAny(msg string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// Classification of errors that never passed through a Wrap helper
// falls back to sentinel matching and then to message heuristics, so
// that failures from third-party code still land in a useful class.
var (
	transientSentinels = []error{
		ErrNoConnection,
		context.DeadlineExceeded,
		context.Canceled,
	}
	transientPatterns = []string{
		"timeout", "connection", "network", "temporary",
		"unavailable", "busy", "retry",
	}

	fatalSentinels = []error{ErrInvalidConfig}
	fatalPatterns  = []string{
		"fatal", "panic", "corrupted",
		"invalid config", "missing config", "out of memory",
	}

	invalidSentinels = []error{ErrUnwiredPort, ErrInvalidCapacity}
)

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if class, ok := classOf(err); ok {
		return class == ErrorTransient
	}
	return matchesAny(err, transientSentinels) ||
		containsAny(strings.ToLower(err.Error()), transientPatterns)
}

// IsFatal reports whether err should stop processing.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if class, ok := classOf(err); ok {
		return class == ErrorFatal
	}
	return matchesAny(err, fatalSentinels) ||
		containsAny(strings.ToLower(err.Error()), fatalPatterns)
}

// IsInvalid reports whether err stems from bad input or wiring.
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}
	if class, ok := classOf(err); ok {
		return class == ErrorInvalid
	}
	return matchesAny(err, invalidSentinels)
}

// Classify resolves err to a single class. Unknown errors classify as
// transient so callers err on the side of retrying.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorTransient
	}
	if class, ok := classOf(err); ok {
		return class
	}
	switch {
	case IsTransient(err):
		return ErrorTransient
	case IsFatal(err):
		return ErrorFatal
	case IsInvalid(err):
		return ErrorInvalid
	default:
		return ErrorTransient
	}
}

// Wrap attaches call-site context in the form
// "component.method: action failed: <err>". A nil err stays nil.
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

func wrapClassified(class ErrorClass, err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return &ClassifiedError{
		Class:     class,
		Err:       wrapped,
		Message:   wrapped.Error(),
		Component: component,
		Operation: method,
	}
}

// WrapTransient wraps err with context and pins its class to transient.
func WrapTransient(err error, component, method, action string) error {
	return wrapClassified(ErrorTransient, err, component, method, action)
}

// WrapFatal wraps err with context and pins its class to fatal.
func WrapFatal(err error, component, method, action string) error {
	return wrapClassified(ErrorFatal, err, component, method, action)
}

// WrapInvalid wraps err with context and pins its class to invalid.
func WrapInvalid(err error, component, method, action string) error {
	return wrapClassified(ErrorInvalid, err, component, method, action)
}

// RetryConfig expresses a retry policy in classification vocabulary:
// how many extra attempts, how the delay grows, and optionally which
// sentinel errors qualify at all.
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64

	// RetryableErrors narrows retrying to these errors. Empty means
	// every transient error qualifies.
	RetryableErrors []error
}

// DefaultRetryConfig mirrors retry.DefaultConfig expressed in this
// package's terms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
	}
}

// ShouldRetry reports whether a failed attempt should run again.
// attempt counts completed attempts, starting at zero.
func (rc RetryConfig) ShouldRetry(err error, attempt int) bool {
	if err == nil || attempt >= rc.MaxRetries {
		return false
	}
	if !IsTransient(err) {
		return false
	}
	if len(rc.RetryableErrors) > 0 {
		return matchesAny(err, rc.RetryableErrors)
	}
	return true
}

// ToRetryConfig converts the policy for use with retry.Do. MaxRetries
// counts attempts beyond the first, so the total becomes MaxRetries+1,
// and jitter is enabled to spread contending retriers.
func (rc RetryConfig) ToRetryConfig() retry.Config {
	return retry.Config{
		MaxAttempts:  rc.MaxRetries + 1,
		InitialDelay: rc.InitialDelay,
		MaxDelay:     rc.MaxDelay,
		Multiplier:   rc.BackoffFactor,
		AddJitter:    true,
	}
}
