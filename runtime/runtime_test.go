package runtime

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhaukoos/CodeNodeIO-sub010/errors"
	"github.com/dhaukoos/CodeNodeIO-sub010/flow"
)

func waitState(t *testing.T, rt Runtime, want State) {
	t.Helper()
	require.Eventually(t, func() bool {
		return rt.State() == want
	}, 2*time.Second, 5*time.Millisecond, "runtime %s never reached %s", rt.Name(), want)
}

func TestLifecycle_StartPauseResumeStop(t *testing.T) {
	var ticks atomic.Int64
	gen := NewTimedGenerator1("counter", 5*time.Millisecond, func() (int64, error) {
		return ticks.Add(1), nil
	})

	require.Equal(t, StateIdle, gen.State())

	require.NoError(t, gen.Start(context.Background()))
	require.Equal(t, StateRunning, gen.State())

	require.Eventually(t, func() bool {
		return ticks.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	gen.Pause()
	require.Equal(t, StatePaused, gen.State())

	// Ticks settle once the gate closes; the at-most-one in-flight tick may
	// still land.
	time.Sleep(20 * time.Millisecond)
	paused := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, ticks.Load(), paused+1, "paused runtime kept ticking")

	gen.Resume()
	require.Equal(t, StateRunning, gen.State())
	require.Eventually(t, func() bool {
		return ticks.Load() > paused+1
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, gen.Stop(time.Second))
	require.Equal(t, StateIdle, gen.State())
	require.NoError(t, gen.Err())
}

func TestLifecycle_IllegalTransitionsAreNoOps(t *testing.T) {
	gen := NewTimedGenerator1("noop", 5*time.Millisecond, func() (int, error) {
		return 1, nil
	})

	// All of these target an idle runtime.
	gen.Pause()
	require.Equal(t, StateIdle, gen.State())
	gen.Resume()
	require.Equal(t, StateIdle, gen.State())
	require.NoError(t, gen.Stop(time.Second))

	require.NoError(t, gen.Start(context.Background()))
	// Start while running is idempotent.
	require.NoError(t, gen.Start(context.Background()))
	require.Equal(t, StateRunning, gen.State())

	// Resume while running is a no-op.
	gen.Resume()
	require.Equal(t, StateRunning, gen.State())

	require.NoError(t, gen.Stop(time.Second))
	require.NoError(t, gen.Stop(time.Second))
}

func TestLifecycle_StartFromPausedResumes(t *testing.T) {
	gen := NewTimedGenerator1("restart", 5*time.Millisecond, func() (int, error) {
		return 1, nil
	})

	require.NoError(t, gen.Start(context.Background()))
	gen.Pause()
	require.Equal(t, StatePaused, gen.State())

	require.NoError(t, gen.Start(context.Background()))
	require.Equal(t, StateRunning, gen.State())

	require.NoError(t, gen.Stop(time.Second))
}

func TestLifecycle_RestartPreservesAccumulator(t *testing.T) {
	var count atomic.Int64
	gen := NewTimedGenerator1("acc", time.Millisecond, func() (int64, error) {
		return count.Add(1), nil
	}, WithReset(func() { count.Store(0) }))

	require.NoError(t, gen.Start(context.Background()))
	require.Eventually(t, func() bool { return count.Load() >= 3 }, 2*time.Second, time.Millisecond)
	require.NoError(t, gen.Stop(time.Second))

	before := count.Load()
	require.NoError(t, gen.Start(context.Background()))
	require.Eventually(t, func() bool { return count.Load() > before }, 2*time.Second, time.Millisecond)
	require.NoError(t, gen.Stop(time.Second))

	// Reset invokes the hook after stopping.
	require.NoError(t, gen.Reset(time.Second))
	require.Equal(t, int64(0), count.Load())
	require.Equal(t, StateIdle, gen.State())
}

func TestLifecycle_DoneClosedBeforeFirstStart(t *testing.T) {
	gen := NewGenerator1("fresh", func() (int, error) { return 1, nil })

	select {
	case <-gen.Done():
	default:
		t.Fatal("Done should be closed before the first start")
	}
}

func TestLifecycle_StopTimeoutDuringLongTick(t *testing.T) {
	release := make(chan struct{})
	gen := NewGenerator1("slow", func() (int, error) {
		<-release
		return 1, nil
	})

	require.NoError(t, gen.Start(context.Background()))

	// The block is synchronous, so Stop cannot interrupt it mid-tick.
	err := gen.Stop(20 * time.Millisecond)
	require.Error(t, err)
	require.ErrorIs(t, err, errors.ErrStopTimeout)
	assert.True(t, errors.IsTransient(err))

	close(release)
	waitState(t, gen, StateIdle)
}

func TestLifecycle_StartFailsOnUnwiredInput(t *testing.T) {
	sink := NewSink1("orphan", func(int) error { return nil })

	err := sink.Start(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, errors.ErrUnwiredPort)
	assert.True(t, errors.IsInvalid(err))
	require.Equal(t, StateIdle, sink.State())
}

func TestLifecycle_ParentContextCancelStopsRuntime(t *testing.T) {
	out, err := flow.New[int](0)
	require.NoError(t, err)

	gen := NewGenerator1("ctx-bound", func() (int, error) { return 1, nil })
	gen.SetOutput(out)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, gen.Start(ctx))

	// The generator is suspended sending on the rendezvous conduit with no
	// receiver; cancellation must interrupt it.
	cancel()
	waitState(t, gen, StateIdle)
	require.NoError(t, gen.Err(), "cancellation is not a failure")

	// Teardown closed the output.
	_, ok, recvErr := out.Receive(context.Background())
	require.NoError(t, recvErr)
	require.False(t, ok)
}

func TestFault_BlockErrorStopsRuntimeAndRetainsErr(t *testing.T) {
	errBoom := stderrors.New("boom")
	var ticks atomic.Int64
	gen := NewTimedGenerator1("faulty", time.Millisecond, func() (int64, error) {
		if ticks.Add(1) == 3 {
			return 0, errBoom
		}
		return ticks.Load(), nil
	})

	require.NoError(t, gen.Start(context.Background()))
	waitState(t, gen, StateIdle)

	require.Error(t, gen.Err())
	require.ErrorIs(t, gen.Err(), errBoom)
	assert.True(t, errors.IsFatal(gen.Err()))
	require.Equal(t, int64(3), ticks.Load())
}

func TestFault_BlockPanicIsRecovered(t *testing.T) {
	gen := NewGenerator1("panicky", func() (int, error) {
		panic("tick exploded")
	})

	require.NoError(t, gen.Start(context.Background()))
	waitState(t, gen, StateIdle)

	require.Error(t, gen.Err())
	assert.Contains(t, gen.Err().Error(), "tick exploded")
	assert.True(t, errors.IsFatal(gen.Err()))
}

func TestFault_ErrClearedOnRestart(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	gen := NewTimedGenerator1("recovering", time.Millisecond, func() (int, error) {
		if fail.Load() {
			return 0, stderrors.New("transient wiring issue")
		}
		return 1, nil
	})

	require.NoError(t, gen.Start(context.Background()))
	waitState(t, gen, StateIdle)
	require.Error(t, gen.Err())

	fail.Store(false)
	require.NoError(t, gen.Start(context.Background()))
	require.NoError(t, gen.Err())
	require.NoError(t, gen.Stop(time.Second))
}

func TestWiring_PortReassignmentIgnoredWhileRunning(t *testing.T) {
	first, err := flow.New[int](flow.Unbounded)
	require.NoError(t, err)
	second, err := flow.New[int](flow.Unbounded)
	require.NoError(t, err)

	gen := NewTimedGenerator1("rewire", time.Millisecond, func() (int, error) {
		return 1, nil
	})
	gen.SetOutput(first)

	require.NoError(t, gen.Start(context.Background()))
	gen.SetOutput(second)

	require.Eventually(t, func() bool { return first.Len() > 0 }, 2*time.Second, time.Millisecond)
	require.NoError(t, gen.Stop(time.Second))
	assert.Zero(t, second.Len(), "reassignment while running must be ignored")
}

func TestMetadata_DescriptionAndPosition(t *testing.T) {
	gen := NewGenerator1("described", func() (int, error) { return 1, nil },
		WithDescription("emits ones"),
		WithPosition(120, 80),
	)

	assert.Equal(t, "described", gen.Name())
	assert.Equal(t, "emits ones", gen.Description())
	x, y := gen.Position()
	assert.Equal(t, 120.0, x)
	assert.Equal(t, 80.0, y)
}
