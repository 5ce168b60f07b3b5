package buffer

import (
	"context"
	"sync"

	"github.com/dhaukoos/CodeNodeIO-sub010/errors"
)

// CircularBuffer is a fixed-capacity ring. Write advances head, Read
// advances tail, and the overflow policy arbitrates when they meet.
type CircularBuffer[T any] struct {
	mu       sync.RWMutex
	items    []T
	capacity int
	size     int
	head     int
	tail     int
	closed   bool

	policy       OverflowPolicy
	dropCallback DropCallback[T]

	stats   *Statistics
	metrics *bufferMetrics

	notEmpty *sync.Cond
	notFull  *sync.Cond
}

var _ Buffer[int] = (*CircularBuffer[int])(nil)

// NewCircularBuffer creates a ring buffer holding up to capacity items.
// Capacities below one are raised to one. Construction fails only when
// metrics were requested and registration with the registry fails.
func NewCircularBuffer[T any](capacity int, options ...Option[T]) (*CircularBuffer[T], error) {
	opts := applyOptions(options...)
	if capacity <= 0 {
		capacity = 1
	}

	var metrics *bufferMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newBufferMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "buffer", "NewCircularBuffer", "metrics registration")
		}
	}

	b := &CircularBuffer[T]{
		items:        make([]T, capacity),
		capacity:     capacity,
		policy:       opts.overflowPolicy,
		dropCallback: opts.dropCallback,
		stats:        NewStatistics(),
		metrics:      metrics,
	}
	b.notEmpty = sync.NewCond(&b.mu)
	b.notFull = sync.NewCond(&b.mu)
	return b, nil
}

// evictOldest removes the tail item to make room. Caller holds the lock.
func (b *CircularBuffer[T]) evictOldest() T {
	evicted := b.items[b.tail]
	var zero T
	b.items[b.tail] = zero
	b.tail = (b.tail + 1) % b.capacity
	b.size--

	b.stats.Overflow()
	b.stats.Drop()
	if b.metrics != nil {
		b.metrics.recordOverflow()
		b.metrics.recordDrop()
	}
	return evicted
}

// put appends at head. Caller holds the lock and has ensured space.
func (b *CircularBuffer[T]) put(item T) {
	b.items[b.head] = item
	b.head = (b.head + 1) % b.capacity
	b.size++

	b.stats.Write()
	b.stats.UpdateSize(int64(b.size))
	if b.metrics != nil {
		b.metrics.recordWrite(b.size, b.capacity)
	}
	b.notEmpty.Signal()
}

// Write adds an item according to the overflow policy. The drop callback,
// when one fires, runs after the lock is released.
func (b *CircularBuffer[T]) Write(item T) error {
	b.mu.Lock()

	if b.closed {
		b.mu.Unlock()
		return errors.WrapInvalid(ErrClosed, "buffer", "Write", "write to closed buffer")
	}

	var (
		evicted    T
		hasEvicted bool
	)
	if b.size == b.capacity {
		switch b.policy {
		case DropOldest:
			evicted = b.evictOldest()
			hasEvicted = true

		case DropNewest:
			b.stats.Overflow()
			b.stats.Drop()
			if b.metrics != nil {
				b.metrics.recordOverflow()
				b.metrics.recordDrop()
			}
			b.mu.Unlock()
			if b.dropCallback != nil {
				b.dropCallback(item)
			}
			return nil

		case Block:
			for b.size == b.capacity && !b.closed {
				b.notFull.Wait()
			}
			if b.closed {
				b.mu.Unlock()
				return errors.WrapInvalid(ErrClosed, "buffer", "Write", "closed while blocked")
			}
		}
	}

	b.put(item)
	b.mu.Unlock()

	if hasEvicted && b.dropCallback != nil {
		b.dropCallback(evicted)
	}
	return nil
}

// WriteWithContext is Write with cancellation for the Block policy. Under
// the drop policies it behaves exactly like Write.
func (b *CircularBuffer[T]) WriteWithContext(ctx context.Context, item T) error {
	if b.policy != Block {
		return b.Write(item)
	}

	b.mu.Lock()

	if b.closed {
		b.mu.Unlock()
		return errors.WrapInvalid(ErrClosed, "buffer", "WriteWithContext", "write to closed buffer")
	}
	if err := ctx.Err(); err != nil {
		b.mu.Unlock()
		return err
	}

	// A watcher broadcasts on cancellation so the cond wait below wakes up
	// and can observe ctx.Err. Taking the lock first means the broadcast
	// cannot slip between the waiter's ctx check and its Wait.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			b.notFull.Broadcast()
			b.mu.Unlock()
		case <-watchDone:
		}
	}()

	for b.size == b.capacity && !b.closed {
		if err := ctx.Err(); err != nil {
			b.mu.Unlock()
			return err
		}
		b.notFull.Wait()
		if err := ctx.Err(); err != nil {
			b.mu.Unlock()
			return err
		}
	}
	if b.closed {
		b.mu.Unlock()
		return errors.WrapInvalid(ErrClosed, "buffer", "WriteWithContext", "closed while blocked")
	}

	b.put(item)
	b.mu.Unlock()
	return nil
}

// Read removes and returns the oldest item.
func (b *CircularBuffer[T]) Read() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var zero T
	if b.size == 0 {
		return zero, false
	}

	item := b.items[b.tail]
	b.items[b.tail] = zero
	b.tail = (b.tail + 1) % b.capacity
	b.size--

	b.stats.Read()
	b.stats.UpdateSize(int64(b.size))
	if b.metrics != nil {
		b.metrics.recordRead(b.size, b.capacity)
	}
	b.notFull.Signal()

	return item, true
}

// ReadBatch removes up to max items in arrival order. Draining in batches
// lets the ingress loop amortize lock traffic under bursty arrival.
func (b *CircularBuffer[T]) ReadBatch(max int) []T {
	if max <= 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.size == 0 {
		return nil
	}

	n := max
	if n > b.size {
		n = b.size
	}

	var zero T
	result := make([]T, n)
	for i := 0; i < n; i++ {
		result[i] = b.items[b.tail]
		b.items[b.tail] = zero
		b.tail = (b.tail + 1) % b.capacity
		b.size--
		b.stats.Read()
	}

	b.stats.UpdateSize(int64(b.size))
	if b.metrics != nil {
		b.metrics.updateSize(b.size, b.capacity)
	}
	for i := 0; i < n; i++ {
		b.notFull.Signal()
	}

	return result
}

// Peek returns the oldest item without removing it.
func (b *CircularBuffer[T]) Peek() (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var zero T
	if b.size == 0 {
		return zero, false
	}

	b.stats.Peek()
	if b.metrics != nil {
		b.metrics.recordPeek()
	}
	return b.items[b.tail], true
}

// Size returns the number of buffered items.
func (b *CircularBuffer[T]) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Capacity returns the fixed capacity. Immutable after construction.
func (b *CircularBuffer[T]) Capacity() int {
	return b.capacity
}

// IsFull reports whether the buffer is at capacity.
func (b *CircularBuffer[T]) IsFull() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size == b.capacity
}

// IsEmpty reports whether the buffer holds no items.
func (b *CircularBuffer[T]) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size == 0
}

// Clear discards every buffered item. Drop callbacks run after the lock is
// released, in arrival order.
func (b *CircularBuffer[T]) Clear() {
	b.mu.Lock()

	var discarded []T
	if b.dropCallback != nil && b.size > 0 {
		discarded = make([]T, b.size)
		for i := 0; i < b.size; i++ {
			discarded[i] = b.items[(b.tail+i)%b.capacity]
		}
	}

	var zero T
	for i := range b.items {
		b.items[i] = zero
	}
	b.head = 0
	b.tail = 0
	b.size = 0

	b.stats.UpdateSize(0)
	if b.metrics != nil {
		b.metrics.updateSize(0, b.capacity)
	}
	b.notFull.Broadcast()
	b.mu.Unlock()

	for _, item := range discarded {
		b.dropCallback(item)
	}
}

// Stats returns the live statistics tracker.
func (b *CircularBuffer[T]) Stats() *Statistics {
	return b.stats
}

// Close marks the buffer closed and wakes all blocked writers. Close is
// idempotent. Buffered items stay readable.
func (b *CircularBuffer[T]) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.notEmpty.Broadcast()
	b.notFull.Broadcast()
	return nil
}
