// Package errors provides standardized error handling patterns for the flow
// runtime.
//
// # Overview
//
// The errors package implements a three-class error classification system:
// Transient (temporary, retryable), Invalid (bad input or wiring, non-retryable),
// and Fatal (unrecoverable, stop processing).
//
// This classification enables intelligent error handling strategies throughout
// the runtime, allowing components to make informed decisions about retries,
// graceful degradation, and failure recovery without hardcoded error string
// matching.
//
// # Error Classification
//
// Errors are automatically classified based on their type or content:
//
//   - Transient: Network timeouts, connection issues, temporary unavailability (retry recommended)
//   - Invalid: Malformed input, unwired ports, bad configuration (do not retry)
//   - Fatal: Tick block failures, unrecoverable states (stop processing)
//
// The classification system integrates with Go's standard error handling
// patterns, supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Egress", "publish", "publish value")
//	errors.WrapInvalid(err, "Generator1", "Start", "validate wiring")
//	errors.WrapFatal(err, "Processor1x1", "tick", "apply block")
//
// The generic Wrap() function preserves the original error's classification:
//
//	errors.Wrap(err, "Registry", "StartAll", "start runtime")
//
// # Standard Error Variables
//
// Sentinel variables cover the conditions the runtime itself produces:
//
//   - Runtime lifecycle: ErrStopTimeout
//   - Conduit and wiring: ErrConduitClosed, ErrUnwiredPort, ErrInvalidCapacity
//   - Boundary: ErrNoConnection
//   - Configuration: ErrInvalidConfig
//
// Use these variables instead of creating custom error messages for
// consistency:
//
//	// Good - uses standard variable
//	if g.out == nil {
//	    return errors.ErrUnwiredPort
//	}
//
//	// Avoid - custom error message
//	if g.out == nil {
//	    return errors.New("port not wired")
//	}
//
// # Retry Configuration
//
// RetryConfig expresses a retry policy in classification terms. Use
// ShouldRetry for ad-hoc loops, or convert to the pkg/retry framework
// for the full schedule handling:
//
//	policy := errors.DefaultRetryConfig()
//	err := retry.Do(ctx, policy.ToRetryConfig(), func() error {
//	    err := publish()
//	    if err != nil && !errors.IsTransient(err) {
//	        return retry.NonRetryable(err)
//	    }
//	    return err
//	})
//
// # Context Cancellation
//
// Context errors (context.DeadlineExceeded, context.Canceled) are classified
// as Transient. Note that inside runtime control jobs cancellation is handled
// explicitly before classification ever applies: a cancelled tick is a normal
// shutdown path, not an error.
//
// # Thread Safety
//
// All classification and wrapping operations are thread-safe. Error variables
// are immutable and safe for concurrent access. The ClassifiedError type is
// safe to share across goroutines after creation.
package errors
