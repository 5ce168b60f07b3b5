// Package flow provides typed point-to-point conduits connecting flow
// runtimes.
//
// # Overview
//
// A conduit is a single-producer single-consumer link carrying values of one
// type from an upstream runtime's output port to a downstream runtime's input
// port. Conduits are the only data path between runtimes: there is no shared
// state, no fan-in, and no fan-out at the conduit level. Splitting or merging
// streams is done by dedicated runtimes with multiple ports.
//
// # Capacity Selection
//
// Capacity is fixed at construction and selects the backpressure behavior:
//
//	c, err := flow.New[int](0)              // rendezvous: send meets receive
//	c, err := flow.New[int](64)             // bounded: up to 64 values buffered
//	c, err := flow.New[int](flow.Unbounded) // elastic: send never suspends
//
// A rendezvous conduit suspends the sender until the receiver is ready,
// giving lockstep transfer. A bounded conduit decouples the two sides up to
// its capacity and then suspends the sender. An elastic conduit never
// suspends the sender; memory grows with the backlog, so it is an explicit
// opt-in for flows where producer progress matters more than bounded memory.
//
// # Ordering and Closure
//
// Values arrive in the order they were sent. Closing a conduit never
// discards buffered values: the consumer sees every value already sent, then
// observes closure.
//
//	v, ok, err := c.Receive(ctx)
//	if err != nil {
//	    return err // cancelled while waiting
//	}
//	if !ok {
//	    return nil // upstream finished, normal end of stream
//	}
//
// Closure is the normal end-of-stream signal, not an error. Only the
// producer side closes a conduit, exactly once logically (Close is
// idempotent).
//
// # Cancellation
//
// Send and Receive take a context. Cancellation interrupts a suspended
// operation and returns the context error; it is the forced-shutdown path
// and may abandon undelivered values. Graceful shutdown goes through Close
// and drain instead.
//
// # Elastic Conduits
//
// An elastic conduit runs a pump goroutine that moves values from an
// internal growable queue to the consumer. The pump exits once the conduit
// is closed and fully drained; an elastic conduit that is closed but never
// drained parks its pump until process exit, so consumers should drain to
// closure.
//
// # Metrics
//
// Conduit activity can be exported as Prometheus metrics:
//
//	c, err := flow.New[int](16, flow.WithMetrics[int](registry, "ticks"))
//
// This registers send/receive counters and a depth gauge labeled with the
// conduit name.
package flow
