package bridge

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/dhaukoos/CodeNodeIO-sub010/errors"
	"github.com/dhaukoos/CodeNodeIO-sub010/flow"
	"github.com/dhaukoos/CodeNodeIO-sub010/pkg/retry"
	"github.com/dhaukoos/CodeNodeIO-sub010/runtime"
)

// Egress receives values from its input conduit and publishes them to a
// NATS subject. A single goroutine carries every value, so publish order
// matches conduit order. Transient publish failures are retried with
// bounded backoff; exhausting the retries faults the egress.
type Egress[T any] struct {
	*endpoint

	subject   string
	publisher Publisher
	encode    func(T) ([]byte, error)
	retryCfg  retry.Config

	in *flow.Conduit[T]

	metrics *egressMetrics

	published atomic.Int64
	dropped   atomic.Int64
}

var _ runtime.Runtime = (*Egress[int])(nil)

// NewEgress constructs an egress for one subject. The default encoder
// marshals each value as JSON; WithEncoder overrides it.
func NewEgress[T any](name, subject string, publisher Publisher, opts ...Option[T]) (*Egress[T], error) {
	if publisher == nil {
		return nil, errors.WrapInvalid(errors.ErrNoConnection, "Egress", "NewEgress", "validate publisher")
	}
	if subject == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Egress", "NewEgress", "validate subject")
	}

	o := applyOptions(opts...)

	encode := o.encode
	if encode == nil {
		encode = func(v T) ([]byte, error) {
			return json.Marshal(v)
		}
	}

	return &Egress[T]{
		endpoint:  newEndpoint(name, o.logger, coreMetrics(o.registry)),
		subject:   subject,
		publisher: publisher,
		encode:    encode,
		retryCfg:  o.retryConfig,
		metrics:   newEgressMetrics(o.registry, name),
	}, nil
}

// SetInput wires the input conduit. The port may only be reassigned while
// idle.
func (e *Egress[T]) SetInput(c *flow.Conduit[T]) {
	if e.wireable("in1") {
		e.in = c
	}
}

// Start launches the publish loop. An egress with no wired input can never
// make progress, so Start reports that as a configuration error. Starting a
// running egress is a no-op; starting a paused one resumes it.
func (e *Egress[T]) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.State() {
	case runtime.StateRunning:
		return nil
	case runtime.StatePaused:
		e.resumeLocked()
		return nil
	}

	if e.in == nil {
		return errors.WrapInvalid(errors.ErrUnwiredPort, e.name, "Start", "validate input in1")
	}

	jobCtx, cancel, stopCh, done := e.begin(ctx)
	go func() {
		defer cancel()
		e.run(jobCtx, stopCh, done)
	}()

	e.logger.Info("egress started", "subject", e.subject)
	return nil
}

// Reset stops the egress. It carries no node-local state beyond its
// counters, which stay monotonic.
func (e *Egress[T]) Reset(timeout time.Duration) error {
	if err := e.Stop(timeout); err != nil {
		return err
	}
	e.logger.Debug("egress reset")
	return nil
}

// Published reports values successfully published since construction.
func (e *Egress[T]) Published() int64 { return e.published.Load() }

// Dropped reports values discarded because encoding failed.
func (e *Egress[T]) Dropped() int64 { return e.dropped.Load() }

// run receives one value at a time and publishes it. Closure of the
// upstream conduit ends the loop cleanly; an exhausted publish retry is a
// fault retained for Err.
func (e *Egress[T]) run(ctx context.Context, stopCh, done chan struct{}) {
	defer func() {
		e.finish(done)
		e.logger.Info("egress stopped", "published", e.published.Load())
	}()

	for {
		if err := e.awaitRunnable(ctx, stopCh); err != nil {
			return
		}

		v, ok, err := e.in.Receive(ctx)
		if err != nil {
			// Cancellation interrupted a suspended receive: forced stop.
			return
		}
		if !ok {
			e.logger.Debug("upstream conduit closed")
			return
		}

		data, err := e.encode(v)
		if err != nil {
			e.dropped.Add(1)
			if e.metrics != nil {
				e.metrics.encodeErrors.Inc()
			}
			e.logger.Warn("dropping unencodable value", "subject", e.subject, "error", err)
			continue
		}

		if err := e.publish(ctx, data); err != nil {
			if isShutdown(err) {
				return
			}
			e.setErr(err)
			if e.core != nil {
				e.core.RecordFault(e.name, errors.Classify(err).String())
			}
			e.logger.Error("publish failed, stopping egress", "subject", e.subject, "error", err)
			return
		}
	}
}

// publish sends one encoded value, retrying transient failures under the
// configured policy. Non-transient failures abort the retry loop
// immediately.
func (e *Egress[T]) publish(ctx context.Context, data []byte) error {
	start := time.Now()

	op := func() error {
		err := e.publisher.Publish(ctx, e.subject, data)
		if err == nil {
			return nil
		}
		if e.metrics != nil {
			e.metrics.publishErrors.Inc()
		}
		if !errors.IsTransient(err) {
			return retry.NonRetryable(err)
		}
		return err
	}

	if err := retry.Do(ctx, e.retryCfg, op); err != nil {
		return errors.Wrap(err, e.name, "run", "publish to "+e.subject)
	}

	e.published.Add(1)
	if e.metrics != nil {
		e.metrics.published.Inc()
		e.metrics.publishLatency.Observe(time.Since(start).Seconds())
	}
	return nil
}
