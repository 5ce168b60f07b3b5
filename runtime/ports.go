package runtime

import (
	"context"

	"github.com/dhaukoos/CodeNodeIO-sub010/errors"
	"github.com/dhaukoos/CodeNodeIO-sub010/flow"
)

// gather receives the next value from a wired input port. Closure of the
// upstream conduit surfaces as end of stream, which the control job treats
// as a normal shutdown signal.
func gather[T any](ctx context.Context, b *base, c *flow.Conduit[T], port string) (T, error) {
	v, ok, err := c.Receive(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if !ok {
		var zero T
		return zero, errEndOfStream
	}
	if b.metrics != nil {
		b.metrics.RecordValueReceived(b.name, port)
	}
	return v, nil
}

// emit sends a value to an output port. An unwired output drops the value
// and counts the drop; a closed downstream conduit ends the control job
// gracefully via the returned closure error.
func emit[T any](ctx context.Context, b *base, c *flow.Conduit[T], port string, v T) error {
	if c == nil {
		if b.metrics != nil {
			b.metrics.RecordValueDropped(b.name, port)
		}
		return nil
	}
	if err := c.Send(ctx, v); err != nil {
		return err
	}
	if b.metrics != nil {
		b.metrics.RecordValueEmitted(b.name, port)
	}
	return nil
}

// closeConduit closes an output conduit if wired. Close is idempotent, so
// repeated teardown after a restart is safe.
func closeConduit[T any](c *flow.Conduit[T]) {
	if c != nil {
		c.Close()
	}
}

// requireWired returns the validation error for a missing input port.
func requireWired[T any](b *base, c *flow.Conduit[T], port string) error {
	if c == nil {
		return errors.WrapInvalid(errors.ErrUnwiredPort, b.name, "Start", "validate input "+port)
	}
	return nil
}
