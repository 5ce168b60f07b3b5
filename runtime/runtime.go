package runtime

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dhaukoos/CodeNodeIO-sub010/errors"
	"github.com/dhaukoos/CodeNodeIO-sub010/metric"
)

// Runtime is the uniform control surface shared by every node runtime
// regardless of arity. Lifecycle calls from illegal states are no-ops so
// that supervisors can broadcast without tracking individual states.
type Runtime interface {
	// Name returns the node identity the runtime was constructed with.
	Name() string

	// State returns the current execution state.
	State() State

	// Start launches the control job. Starting a running runtime is a
	// no-op; starting a paused runtime resumes it. Start fails when a
	// required input port is unwired.
	Start(ctx context.Context) error

	// Stop requests shutdown, cancels suspended channel operations, and
	// waits up to timeout for the control job to exit. The in-flight tick
	// completes and every wired output conduit is closed before the job
	// exits. Stop on an idle runtime is a no-op.
	Stop(timeout time.Duration) error

	// Pause parks the control job at the next iteration boundary. No
	// channel I/O and no tick execution happen while paused; node-local
	// state is preserved.
	Pause()

	// Resume releases a paused control job.
	Resume()

	// Reset stops the runtime and restores node-local state to its
	// construction defaults via the reset hook, when one was supplied.
	Reset(timeout time.Duration) error

	// Done returns a channel closed when the control job has fully exited.
	// Before the first Start the channel is already closed.
	Done() <-chan struct{}

	// Err returns the tick failure that terminated the control job, or nil
	// after a graceful or cancelled exit.
	Err() error
}

// Sentinels used inside control jobs to tell shutdown apart from failure.
var (
	errEndOfStream   = stderrors.New("end of stream")
	errStopRequested = stderrors.New("stop requested")
)

// base carries the lifecycle machinery shared by all runtime shapes. Shapes
// embed it and wire validate/step/closeOut at construction.
type base struct {
	name        string
	description string
	posX, posY  float64
	interval    time.Duration

	logger  *slog.Logger
	metrics *metric.Metrics
	resetFn func()

	validate func() error
	step     func(context.Context) error
	closeOut func()

	mu     sync.Mutex
	state  atomic.Int32
	stopCh chan struct{}
	done   chan struct{}
	cancel context.CancelFunc

	gateMu sync.Mutex
	gate   chan struct{}

	errMu sync.RWMutex
	err   error
}

// newBase constructs lifecycle state for a shape. interval zero selects
// continuous execution.
func newBase(name string, interval time.Duration, opts *options) *base {
	b := &base{
		name:        name,
		description: opts.description,
		posX:        opts.posX,
		posY:        opts.posY,
		interval:    interval,
		logger:      opts.logger.With("runtime", name),
		metrics:     opts.metrics,
		resetFn:     opts.resetFn,
		done:        closedChan(),
	}
	b.state.Store(int32(StateIdle))
	return b
}

// Name returns the node identity.
func (b *base) Name() string { return b.name }

// Description returns the human-readable description, if one was set.
func (b *base) Description() string { return b.description }

// Position returns the editor coordinates carried for observability.
func (b *base) Position() (x, y float64) { return b.posX, b.posY }

// State returns the current execution state.
func (b *base) State() State {
	return State(b.state.Load())
}

// Start launches the control job, or resumes a paused one.
func (b *base) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.State() {
	case StateRunning:
		return nil
	case StatePaused:
		b.resumeLocked()
		return nil
	}

	if b.validate != nil {
		if err := b.validate(); err != nil {
			return err
		}
	}

	jobCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.stopCh = make(chan struct{})
	b.done = make(chan struct{})
	b.gateMu.Lock()
	b.gate = closedChan()
	b.gateMu.Unlock()
	b.setErr(nil)
	b.setState(StateRunning)

	// The job goroutine owns jobCtx and releases it even when the loop
	// exits on its own, without Stop ever being called.
	stopCh, done := b.stopCh, b.done
	go func() {
		defer cancel()
		b.run(jobCtx, stopCh, done)
	}()

	b.logger.Info("runtime started", "interval", b.interval)
	return nil
}

// Stop requests shutdown and waits up to timeout for the control job.
func (b *base) Stop(timeout time.Duration) error {
	b.mu.Lock()
	if b.State() == StateIdle {
		b.mu.Unlock()
		return nil
	}

	select {
	case <-b.stopCh:
	default:
		close(b.stopCh)
	}
	// Cancellation interrupts suspended sends and receives. A tick block
	// already executing runs to completion first.
	if b.cancel != nil {
		b.cancel()
	}
	done := b.done
	b.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return errors.WrapTransient(errors.ErrStopTimeout, b.name, "Stop", "wait for control job")
	}
}

// Pause parks the control job at the next iteration boundary. Pausing a
// runtime that is not running is a no-op.
func (b *base) Pause() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.State() != StateRunning {
		return
	}
	b.gateMu.Lock()
	b.gate = make(chan struct{})
	b.gateMu.Unlock()
	b.setState(StatePaused)
	b.logger.Debug("runtime paused")
}

// Resume releases a paused control job. Resuming a runtime that is not
// paused is a no-op.
func (b *base) Resume() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.State() != StatePaused {
		return
	}
	b.resumeLocked()
}

func (b *base) resumeLocked() {
	b.gateMu.Lock()
	close(b.gate)
	b.gateMu.Unlock()
	b.setState(StateRunning)
	b.logger.Debug("runtime resumed")
}

// Reset stops the runtime and restores node-local state via the reset hook.
func (b *base) Reset(timeout time.Duration) error {
	if err := b.Stop(timeout); err != nil {
		return err
	}
	if b.resetFn != nil {
		b.resetFn()
	}
	b.logger.Debug("runtime reset")
	return nil
}

// Done returns the completion channel of the current control job.
func (b *base) Done() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}

// Err returns the tick failure that terminated the control job, if any.
func (b *base) Err() error {
	b.errMu.RLock()
	defer b.errMu.RUnlock()
	return b.err
}

func (b *base) setErr(err error) {
	b.errMu.Lock()
	b.err = err
	b.errMu.Unlock()
}

func (b *base) setState(s State) {
	b.state.Store(int32(s))
	if b.metrics != nil {
		b.metrics.RecordRuntimeState(b.name, int(s))
	}
}

func (b *base) currentGate() chan struct{} {
	b.gateMu.Lock()
	defer b.gateMu.Unlock()
	return b.gate
}

// wireable reports whether port endpoints may be reassigned. Reassignment is
// only allowed while idle; violations are logged and ignored.
func (b *base) wireable(port string) bool {
	if b.State() != StateIdle {
		b.logger.Warn("port reassignment ignored while active", "port", port)
		return false
	}
	return true
}

// run drives the control job: honor pause and stop at iteration boundaries,
// wait the interval in timed mode, then execute one step. The deferred
// teardown closes outputs before signaling completion so that observers of
// Done always see fully propagated shutdown.
func (b *base) run(ctx context.Context, stopCh, done chan struct{}) {
	defer func() {
		if b.closeOut != nil {
			b.closeOut()
		}
		b.setState(StateIdle)
		close(done)
		b.logger.Info("runtime stopped")
	}()

	for {
		if err := b.awaitRunnable(ctx, stopCh); err != nil {
			return
		}
		if b.interval > 0 {
			if err := b.waitInterval(ctx, stopCh); err != nil {
				return
			}
			// State may have changed during the wait.
			if err := b.awaitRunnable(ctx, stopCh); err != nil {
				return
			}
		}

		start := time.Now()
		err := b.step(ctx)
		if b.metrics != nil {
			b.metrics.RecordTick(b.name)
			b.metrics.RecordTickDuration(b.name, time.Since(start))
		}
		if err == nil {
			continue
		}
		if isShutdown(err) {
			return
		}

		// A tick failure is fatal to this runtime: record it, stop the
		// loop, and let closure propagate downstream. No retry.
		b.setErr(err)
		if b.metrics != nil {
			b.metrics.RecordFault(b.name, errors.Classify(err).String())
		}
		b.logger.Error("tick failed, stopping runtime", "error", err)
		return
	}
}

// awaitRunnable blocks while paused and reports stop or cancellation.
func (b *base) awaitRunnable(ctx context.Context, stopCh chan struct{}) error {
	// Stop wins over a simultaneously open gate.
	select {
	case <-stopCh:
		return errStopRequested
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case <-b.currentGate():
		return nil
	case <-stopCh:
		return errStopRequested
	case <-ctx.Done():
		return ctx.Err()
	}
}

// waitInterval waits one timed-mode interval, honoring stop and cancel.
func (b *base) waitInterval(ctx context.Context, stopCh chan struct{}) error {
	timer := time.NewTimer(b.interval)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-stopCh:
		return errStopRequested
	case <-ctx.Done():
		return ctx.Err()
	}
}

// isShutdown reports whether a step error is a normal shutdown signal
// rather than a tick failure: upstream closure, a closed output, stop, or
// cancellation.
func isShutdown(err error) bool {
	return stderrors.Is(err, errEndOfStream) ||
		stderrors.Is(err, errStopRequested) ||
		stderrors.Is(err, errors.ErrConduitClosed) ||
		stderrors.Is(err, context.Canceled) ||
		stderrors.Is(err, context.DeadlineExceeded)
}

// safeInvoke runs a tick block, converting panics into classified fatal
// errors so one misbehaving node cannot take down the process.
func (b *base) safeInvoke(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.WrapFatal(fmt.Errorf("panic: %v", r), b.name, "tick", "apply block")
		}
	}()
	if err := fn(); err != nil {
		return errors.WrapFatal(err, b.name, "tick", "apply block")
	}
	return nil
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
