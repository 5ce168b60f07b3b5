// Package flow provides typed point-to-point conduits for moving values
// between runtimes.
//
// A conduit connects exactly one producer to exactly one consumer. Capacity
// selects the backpressure behavior: rendezvous (capacity 0), bounded
// buffering (capacity > 0), or elastic buffering (Unbounded). All conduits
// deliver values in FIFO order and deliver every buffered value before the
// consumer observes closure.
package flow

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dhaukoos/CodeNodeIO-sub010/errors"
)

// Unbounded selects an elastic conduit whose sends never block. Elastic
// conduits trade bounded memory for producer progress and must be chosen
// explicitly.
const Unbounded = -1

// Conduit is a typed single-producer single-consumer link between two
// runtimes. The producer side calls Send and Close; the consumer side calls
// Receive. Neither side may be shared across goroutines.
type Conduit[T any] struct {
	capacity int
	ch       chan T
	closed   atomic.Bool

	// Elastic state, nil queue for fixed-capacity conduits.
	mu     sync.Mutex
	queue  []T
	notify chan struct{}

	metrics *conduitMetrics
}

// New creates a conduit with the given capacity.
//
// Capacity 0 creates a rendezvous conduit: Send suspends until Receive is
// ready. Capacity N > 0 creates a bounded conduit holding up to N values.
// Capacity Unbounded creates an elastic conduit whose Send never suspends.
// Any other negative capacity is rejected.
func New[T any](capacity int, options ...Option[T]) (*Conduit[T], error) {
	if capacity < 0 && capacity != Unbounded {
		return nil, errors.WrapInvalid(errors.ErrInvalidCapacity, "Conduit", "New", "validate capacity")
	}

	opts := applyOptions(options...)

	c := &Conduit[T]{capacity: capacity}

	if opts.metricsReg != nil {
		m, err := newConduitMetrics(opts.metricsReg, opts.metricsName)
		if err != nil {
			return nil, errors.Wrap(err, "Conduit", "New", "register metrics")
		}
		c.metrics = m
	}

	if capacity == Unbounded {
		// Delivery channel of size one keeps at most a single value in
		// flight between the elastic queue and the consumer.
		c.ch = make(chan T, 1)
		c.notify = make(chan struct{}, 1)
		go c.pump()
		return c, nil
	}

	c.ch = make(chan T, capacity)
	return c, nil
}

// Send delivers one value to the consumer side. On a rendezvous or bounded
// conduit Send suspends until space is available; on an elastic conduit it
// returns immediately. Send returns ErrConduitClosed after Close, and the
// context error when ctx is cancelled while suspended.
func (c *Conduit[T]) Send(ctx context.Context, v T) error {
	if c.closed.Load() {
		return errors.ErrConduitClosed
	}

	if c.capacity == Unbounded {
		c.mu.Lock()
		c.queue = append(c.queue, v)
		depth := len(c.queue)
		c.mu.Unlock()
		c.signal()
		if c.metrics != nil {
			c.metrics.recordSend(depth + len(c.ch))
		}
		return nil
	}

	select {
	case c.ch <- v:
		if c.metrics != nil {
			c.metrics.recordSend(len(c.ch))
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive returns the next value from the conduit. The second return is
// false once the conduit has been closed and fully drained; callers treat
// that as graceful end of stream, not as an error. Cancellation of ctx while
// suspended returns the context error and may abandon undelivered values.
func (c *Conduit[T]) Receive(ctx context.Context) (T, bool, error) {
	var zero T
	select {
	case v, ok := <-c.ch:
		if !ok {
			return zero, false, nil
		}
		if c.metrics != nil {
			c.metrics.recordReceive(c.Len())
		}
		return v, true, nil
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}

// Close marks the producer side finished. Values already buffered remain
// receivable; the consumer observes closure only after draining them. Close
// is idempotent and must only be called by the producer side.
func (c *Conduit[T]) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	if c.capacity == Unbounded {
		// The pump closes the delivery channel once the queue drains.
		c.signal()
		return
	}
	close(c.ch)
}

// Len reports the number of values currently buffered and undelivered.
func (c *Conduit[T]) Len() int {
	if c.capacity == Unbounded {
		c.mu.Lock()
		n := len(c.queue)
		c.mu.Unlock()
		return n + len(c.ch)
	}
	return len(c.ch)
}

// Cap reports the configured capacity: 0 for rendezvous, N for bounded, or
// Unbounded.
func (c *Conduit[T]) Cap() int {
	return c.capacity
}

// signal wakes the pump without blocking. The channel holds one token, so a
// pending wakeup is never lost and repeat signals coalesce.
func (c *Conduit[T]) signal() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// pump moves values from the elastic queue to the delivery channel. It runs
// for the lifetime of an elastic conduit and closes the delivery channel
// after the queue drains following Close.
func (c *Conduit[T]) pump() {
	defer close(c.ch)
	var zero T
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			// The closed check must happen under the lock: Close follows
			// the producer's final Send, so an empty queue seen here means
			// every sent value has already been delivered.
			if c.closed.Load() {
				c.mu.Unlock()
				return
			}
			c.mu.Unlock()
			<-c.notify
			continue
		}
		v := c.queue[0]
		c.queue[0] = zero
		c.queue = c.queue[1:]
		if len(c.queue) == 0 {
			c.queue = nil
		}
		c.mu.Unlock()
		c.ch <- v
	}
}
