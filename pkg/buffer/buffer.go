// Package buffer provides bounded, thread-safe FIFO buffers for decoupling
// producers from consumers at graph boundaries, with selectable behavior
// when the buffer fills.
//
// The primary use is the ingress inbox: a broker dispatch goroutine writes
// payloads while the ingress drain loop reads them, so neither side ever
// waits on the other unless the Block policy asks for it. Statistics are
// always collected; Prometheus export is optional via WithMetrics.
package buffer

import (
	stderrors "errors"
)

// ErrClosed is returned by writes to a closed buffer.
var ErrClosed = stderrors.New("buffer closed")

// Buffer is the surface consumers hold. Implementations are safe for
// concurrent use by multiple readers and writers.
type Buffer[T any] interface {
	// Write adds an item. When the buffer is full the overflow policy
	// decides between evicting the oldest item, discarding this one, and
	// blocking until space frees up.
	Write(item T) error

	// Read removes and returns the oldest item, reporting false when the
	// buffer is empty.
	Read() (T, bool)

	// ReadBatch removes and returns up to max items in arrival order. An
	// empty buffer yields nil.
	ReadBatch(max int) []T

	// Peek returns the oldest item without removing it, reporting false
	// when the buffer is empty.
	Peek() (T, bool)

	// Size returns the number of buffered items.
	Size() int

	// Capacity returns the fixed capacity.
	Capacity() int

	// IsFull reports whether the buffer is at capacity.
	IsFull() bool

	// IsEmpty reports whether the buffer holds no items.
	IsEmpty() bool

	// Clear discards all buffered items, invoking the drop callback for
	// each.
	Clear()

	// Stats returns the live statistics tracker.
	Stats() *Statistics

	// Close marks the buffer closed and wakes blocked writers. Reads keep
	// working so buffered items can drain.
	Close() error
}

// OverflowPolicy selects what Write does when the buffer is full.
type OverflowPolicy int

const (
	// DropOldest evicts the oldest item to admit the new one. This is the
	// default: an ingress inbox prefers fresh data over stale.
	DropOldest OverflowPolicy = iota

	// DropNewest discards the incoming item, preserving what is buffered.
	DropNewest

	// Block suspends Write until a reader frees space.
	Block
)

// String returns the policy name for logs and errors.
func (p OverflowPolicy) String() string {
	switch p {
	case DropOldest:
		return "DropOldest"
	case DropNewest:
		return "DropNewest"
	case Block:
		return "Block"
	default:
		return "Unknown"
	}
}

// DropCallback observes each item discarded by overflow handling or Clear.
// It runs outside the buffer lock, so it may call back into the buffer.
type DropCallback[T any] func(item T)
