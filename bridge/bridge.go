package bridge

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dhaukoos/CodeNodeIO-sub010/errors"
	"github.com/dhaukoos/CodeNodeIO-sub010/metric"
	"github.com/dhaukoos/CodeNodeIO-sub010/runtime"
)

// Publisher is the outbound messaging surface an Egress publishes through.
// natsclient.Client satisfies it; tests substitute in-process stubs.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Subscriber is the inbound messaging surface an Ingress subscribes through.
// natsclient.Client satisfies it; tests substitute in-process stubs.
type Subscriber interface {
	Subscribe(ctx context.Context, subject string, handler func(context.Context, []byte)) error
}

// endpoint carries the lifecycle machinery shared by Ingress and Egress:
// the three-state machine, the pause gate, and stop coordination. It mirrors
// the control-job contract of the runtime package so bridge runtimes behave
// like any other node under a Registry.
type endpoint struct {
	name   string
	logger *slog.Logger
	core   *metric.Metrics

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

func newEndpoint(name string, logger *slog.Logger, core *metric.Metrics) *endpoint {
	e := &endpoint{
		name:   name,
		logger: logger.With("runtime", name),
		core:   core,
		done:   closedChan(),
	}
	e.state.Store(int32(runtime.StateIdle))
	return e
}

// Name returns the node identity.
func (e *endpoint) Name() string { return e.name }

// State returns the current execution state.
func (e *endpoint) State() runtime.State {
	return runtime.State(e.state.Load())
}

// Stop requests shutdown, cancels suspended operations, and waits up to
// timeout for the bridge loop to exit. Stop on an idle endpoint is a no-op.
func (e *endpoint) Stop(timeout time.Duration) error {
	e.mu.Lock()
	if e.State() == runtime.StateIdle {
		e.mu.Unlock()
		return nil
	}

	select {
	case <-e.stopCh:
	default:
		close(e.stopCh)
	}
	if e.cancel != nil {
		e.cancel()
	}
	done := e.done
	e.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return errors.WrapTransient(errors.ErrStopTimeout, e.name, "Stop", "wait for bridge loop")
	}
}

// Pause parks the bridge loop at the next iteration boundary. Pausing an
// endpoint that is not running is a no-op.
func (e *endpoint) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.State() != runtime.StateRunning {
		return
	}
	e.gateMu.Lock()
	e.gate = make(chan struct{})
	e.gateMu.Unlock()
	e.setState(runtime.StatePaused)
	e.logger.Debug("bridge paused")
}

// Resume releases a paused bridge loop. Resuming an endpoint that is not
// paused is a no-op.
func (e *endpoint) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.State() != runtime.StatePaused {
		return
	}
	e.resumeLocked()
}

func (e *endpoint) resumeLocked() {
	e.gateMu.Lock()
	close(e.gate)
	e.gateMu.Unlock()
	e.setState(runtime.StateRunning)
	e.logger.Debug("bridge resumed")
}

// Done returns the completion channel of the current bridge loop.
func (e *endpoint) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

// Err returns the failure that terminated the bridge loop, if any.
func (e *endpoint) Err() error {
	e.errMu.RLock()
	defer e.errMu.RUnlock()
	return e.err
}

func (e *endpoint) setErr(err error) {
	e.errMu.Lock()
	e.err = err
	e.errMu.Unlock()
}

func (e *endpoint) setState(s runtime.State) {
	e.state.Store(int32(s))
	if e.core != nil {
		e.core.RecordRuntimeState(e.name, int(s))
	}
}

func (e *endpoint) currentGate() chan struct{} {
	e.gateMu.Lock()
	defer e.gateMu.Unlock()
	return e.gate
}

// begin transitions to running and hands the caller the job context and
// channels for the loop goroutine. The returned cancel func belongs to the
// loop goroutine, which must release it on exit. Callers hold e.mu.
func (e *endpoint) begin(ctx context.Context) (context.Context, context.CancelFunc, chan struct{}, chan struct{}) {
	jobCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.stopCh = make(chan struct{})
	e.done = make(chan struct{})
	e.gateMu.Lock()
	e.gate = closedChan()
	e.gateMu.Unlock()
	e.setErr(nil)
	e.setState(runtime.StateRunning)
	return jobCtx, cancel, e.stopCh, e.done
}

// finish records the idle transition and signals loop completion.
func (e *endpoint) finish(done chan struct{}) {
	e.setState(runtime.StateIdle)
	close(done)
}

// awaitRunnable blocks while paused and reports stop or cancellation.
func (e *endpoint) awaitRunnable(ctx context.Context, stopCh chan struct{}) error {
	// Stop wins over a simultaneously open gate.
	select {
	case <-stopCh:
		return errStopRequested
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case <-e.currentGate():
		return nil
	case <-stopCh:
		return errStopRequested
	case <-ctx.Done():
		return ctx.Err()
	}
}

// wireable reports whether port endpoints may be reassigned. Reassignment is
// only allowed while idle; violations are logged and ignored.
func (e *endpoint) wireable(port string) bool {
	if e.State() != runtime.StateIdle {
		e.logger.Warn("port reassignment ignored while active", "port", port)
		return false
	}
	return true
}

var errStopRequested = stderrors.New("stop requested")

// isShutdown reports whether a loop error is a normal shutdown signal rather
// than a bridge fault: cancellation, stop, or a closed conduit.
func isShutdown(err error) bool {
	return stderrors.Is(err, errStopRequested) ||
		stderrors.Is(err, errors.ErrConduitClosed) ||
		stderrors.Is(err, context.Canceled) ||
		stderrors.Is(err, context.DeadlineExceeded)
}

func coreMetrics(registry *metric.MetricsRegistry) *metric.Metrics {
	if registry == nil {
		return nil
	}
	return registry.CoreMetrics()
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
