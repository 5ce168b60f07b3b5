// Package buffer provides bounded FIFO buffers that decouple producers from
// consumers at flow graph boundaries.
//
// # Role
//
// Conduits inside a graph apply backpressure by design: a send waits until
// the receiver is ready. At the boundary that contract breaks down, because
// the producer is a broker dispatch goroutine that must never block. The
// ingress inbox absorbs that mismatch: arrivals land in a CircularBuffer and
// the drain loop forwards them into the graph at the graph's own pace.
//
// # Usage
//
// The default policy evicts the oldest item when full, which suits an inbox
// that prefers fresh data:
//
//	inbox, err := buffer.NewCircularBuffer[[]byte](256,
//		buffer.WithOverflowPolicy[[]byte](buffer.DropOldest),
//		buffer.WithDropCallback[[]byte](func([]byte) { dropped.Add(1) }),
//	)
//	if err != nil {
//		return err
//	}
//
//	_ = inbox.Write(payload)      // producer side, never blocks
//	batch := inbox.ReadBatch(64)  // consumer side, drains in order
//
// # Overflow policies
//
//   - DropOldest evicts the oldest buffered item to admit the new one.
//   - DropNewest discards the incoming item and keeps the buffer intact.
//   - Block suspends Write until a reader frees space; pair it with
//     WriteWithContext so shutdown can interrupt the wait.
//
// Drop callbacks run outside the buffer lock and see every discarded item,
// from overflow handling and from Clear.
//
// # Observability
//
// Every buffer counts writes, reads, peeks, overflows, and drops; Stats
// exposes the counters plus derived rates, and Summary snapshots them for
// health payloads. WithMetrics additionally exports the counters and an
// occupancy gauge to Prometheus under the flowruntime_buffer namespace,
// labeled by the owning component.
//
// # Lifecycle
//
// Close marks the buffer closed and wakes blocked writers; subsequent
// writes fail with ErrClosed while reads keep draining whatever is
// buffered. Clear discards the contents without closing.
package buffer
