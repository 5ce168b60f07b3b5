package bridge

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/dhaukoos/CodeNodeIO-sub010/errors"
	"github.com/dhaukoos/CodeNodeIO-sub010/flow"
	"github.com/dhaukoos/CodeNodeIO-sub010/pkg/buffer"
	"github.com/dhaukoos/CodeNodeIO-sub010/runtime"
)

// Ingress subscribes a NATS subject and feeds decoded values into a flow
// graph through its output conduit. The subscription handler only buffers
// and signals; decoding and conduit sends happen on the ingress's own
// control job, so a slow graph never stalls the NATS dispatch goroutine.
type Ingress[T any] struct {
	*endpoint

	subject    string
	subscriber Subscriber
	decode     func([]byte) (T, error)

	out    *flow.Conduit[T]
	inbox  buffer.Buffer[[]byte]
	notify chan struct{}

	subscribed bool

	metrics *ingressMetrics

	received  atomic.Int64
	delivered atomic.Int64
	dropped   atomic.Int64
}

var _ runtime.Runtime = (*Ingress[int])(nil)

// NewIngress constructs an ingress for one subject. The default decoder
// unmarshals each message as JSON into T; WithDecoder overrides it. The
// subscription is not established until the first Start.
func NewIngress[T any](name, subject string, subscriber Subscriber, opts ...Option[T]) (*Ingress[T], error) {
	if subscriber == nil {
		return nil, errors.WrapInvalid(errors.ErrNoConnection, "Ingress", "NewIngress", "validate subscriber")
	}
	if subject == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Ingress", "NewIngress", "validate subject")
	}

	o := applyOptions(opts...)

	decode := o.decode
	if decode == nil {
		decode = func(data []byte) (T, error) {
			var v T
			err := json.Unmarshal(data, &v)
			return v, err
		}
	}

	in := &Ingress[T]{
		endpoint:   newEndpoint(name, o.logger, coreMetrics(o.registry)),
		subject:    subject,
		subscriber: subscriber,
		decode:     decode,
		notify:     make(chan struct{}, 1),
		metrics:    newIngressMetrics(o.registry, name),
	}

	bufferOpts := []buffer.Option[[]byte]{
		buffer.WithOverflowPolicy[[]byte](buffer.DropOldest),
		buffer.WithDropCallback[[]byte](func([]byte) {
			in.dropped.Add(1)
			if in.metrics != nil {
				in.metrics.dropped.Inc()
			}
		}),
	}
	if o.registry != nil {
		bufferOpts = append(bufferOpts, buffer.WithMetrics[[]byte](o.registry, "bridge_"+name))
	}
	inbox, err := buffer.NewCircularBuffer(o.inboxCapacity, bufferOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "Ingress", "NewIngress", "create inbox")
	}
	in.inbox = inbox

	return in, nil
}

// SetOutput wires the output conduit. The port may only be reassigned while
// idle.
func (in *Ingress[T]) SetOutput(c *flow.Conduit[T]) {
	if in.wireable("out1") {
		in.out = c
	}
}

// Start subscribes the subject on first use and launches the drain loop.
// Starting a running ingress is a no-op; starting a paused one resumes it.
func (in *Ingress[T]) Start(ctx context.Context) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	switch in.State() {
	case runtime.StateRunning:
		return nil
	case runtime.StatePaused:
		in.resumeLocked()
		return nil
	}

	// One subscription for the lifetime of the ingress. The handler drops
	// arrivals while the loop is idle, so restarts never stack handlers.
	if !in.subscribed {
		if err := in.subscriber.Subscribe(ctx, in.subject, in.onMessage); err != nil {
			return errors.WrapTransient(err, in.name, "Start", "subscribe "+in.subject)
		}
		in.subscribed = true
	}

	jobCtx, cancel, stopCh, done := in.begin(ctx)
	go func() {
		defer cancel()
		in.run(jobCtx, stopCh, done)
	}()

	in.logger.Info("ingress started", "subject", in.subject)
	return nil
}

// Reset stops the ingress and discards any messages still buffered in the
// inbox.
func (in *Ingress[T]) Reset(timeout time.Duration) error {
	if err := in.Stop(timeout); err != nil {
		return err
	}
	in.inbox.Clear()
	in.logger.Debug("ingress reset")
	return nil
}

// Received reports messages accepted into the inbox since construction.
func (in *Ingress[T]) Received() int64 { return in.received.Load() }

// Delivered reports decoded values handed to the output conduit.
func (in *Ingress[T]) Delivered() int64 { return in.delivered.Load() }

// Dropped reports discarded messages: arrivals while stopped, inbox
// overflow, undecodable payloads, and values with no wired output.
func (in *Ingress[T]) Dropped() int64 { return in.dropped.Load() }

// onMessage runs on the NATS dispatch goroutine for every delivery. It must
// not block: it buffers the payload and wakes the drain loop.
func (in *Ingress[T]) onMessage(_ context.Context, data []byte) {
	if in.State() == runtime.StateIdle {
		in.dropped.Add(1)
		if in.metrics != nil {
			in.metrics.dropped.Inc()
		}
		return
	}

	if err := in.inbox.Write(data); err != nil {
		in.dropped.Add(1)
		if in.metrics != nil {
			in.metrics.dropped.Inc()
		}
		return
	}

	in.received.Add(1)
	if in.metrics != nil {
		in.metrics.received.Inc()
	}
	in.signal()
}

// signal wakes the drain loop without blocking. The channel holds one token,
// so repeat signals coalesce.
func (in *Ingress[T]) signal() {
	select {
	case in.notify <- struct{}{}:
	default:
	}
}

// run drains the inbox in batches, honoring the pause gate between values.
// The deferred teardown closes the output conduit so downstream runtimes
// observe end of stream; messages still buffered at that point stay in the
// inbox for the next start, and Reset discards them.
func (in *Ingress[T]) run(ctx context.Context, stopCh, done chan struct{}) {
	defer func() {
		if in.out != nil {
			in.out.Close()
		}
		in.finish(done)
		in.logger.Info("ingress stopped", "delivered", in.delivered.Load(), "dropped", in.dropped.Load())
	}()

	for {
		if err := in.awaitRunnable(ctx, stopCh); err != nil {
			return
		}

		batch := in.inbox.ReadBatch(ingressBatchSize)
		if len(batch) == 0 {
			select {
			case <-in.notify:
			case <-stopCh:
				return
			case <-ctx.Done():
				return
			}
			continue
		}
		if in.metrics != nil {
			in.metrics.batchSize.Observe(float64(len(batch)))
		}

		for _, data := range batch {
			if err := in.awaitRunnable(ctx, stopCh); err != nil {
				return
			}
			if err := in.deliver(ctx, data); err != nil {
				return
			}
		}
	}
}

// deliver decodes one message and forwards it downstream. Decode failures
// and unwired outputs drop the message; only shutdown conditions surface.
func (in *Ingress[T]) deliver(ctx context.Context, data []byte) error {
	v, err := in.decode(data)
	if err != nil {
		in.dropped.Add(1)
		if in.metrics != nil {
			in.metrics.dropped.Inc()
			in.metrics.decodeErrors.Inc()
		}
		in.logger.Warn("dropping undecodable message", "subject", in.subject, "error", err)
		return nil
	}

	if in.out == nil {
		in.dropped.Add(1)
		if in.metrics != nil {
			in.metrics.dropped.Inc()
		}
		return nil
	}

	if err := in.out.Send(ctx, v); err != nil {
		// Closed downstream or cancellation: a shutdown signal, not a fault.
		return err
	}

	in.delivered.Add(1)
	if in.metrics != nil {
		in.metrics.delivered.Inc()
	}
	return nil
}
