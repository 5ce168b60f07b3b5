package runtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhaukoos/CodeNodeIO-sub010/flow"
	"github.com/dhaukoos/CodeNodeIO-sub010/metric"
)

// collector is a test sink target that records received values in order.
type collector[T any] struct {
	mu     sync.Mutex
	values []T
}

func (c *collector[T]) add(v T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = append(c.values, v)
	return nil
}

func (c *collector[T]) snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.values))
	copy(out, c.values)
	return out
}

func (c *collector[T]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}

func TestPipeline_GeneratorProcessorSink(t *testing.T) {
	genOut, err := flow.New[int](0)
	require.NoError(t, err)
	procOut, err := flow.New[int](0)
	require.NoError(t, err)

	n := 0
	gen := NewGenerator1("numbers", func() (int, error) {
		n++
		return n, nil
	})
	gen.SetOutput(genOut)

	double := NewProcessor1x1("doubler", func(v int) (int, error) {
		return v * 2, nil
	})
	double.SetInput(genOut)
	double.SetOutput(procOut)

	got := &collector[int]{}
	sink := NewSink1("collect", got.add)
	sink.SetInput(procOut)

	ctx := context.Background()
	require.NoError(t, sink.Start(ctx))
	require.NoError(t, double.Start(ctx))
	require.NoError(t, gen.Start(ctx))

	require.Eventually(t, func() bool { return got.len() >= 5 }, 2*time.Second, time.Millisecond)

	require.NoError(t, gen.Stop(time.Second))
	waitState(t, double, StateIdle)
	waitState(t, sink, StateIdle)

	values := got.snapshot()
	for i, v := range values[:5] {
		assert.Equal(t, (i+1)*2, v, "values must arrive doubled and in order")
	}
	require.NoError(t, double.Err())
	require.NoError(t, sink.Err())
}

func TestPipeline_ClosurePropagatesThroughBufferedConduits(t *testing.T) {
	genOut, err := flow.New[string](4)
	require.NoError(t, err)
	procOut, err := flow.New[string](4)
	require.NoError(t, err)

	upper := NewProcessor1x1("upper", func(s string) (string, error) {
		return s + "!", nil
	})
	upper.SetInput(genOut)
	upper.SetOutput(procOut)

	got := &collector[string]{}
	sink := NewSink1("collect", got.add)
	sink.SetInput(procOut)

	ctx := context.Background()
	require.NoError(t, sink.Start(ctx))
	require.NoError(t, upper.Start(ctx))

	for _, s := range []string{"a", "b", "c"} {
		require.NoError(t, genOut.Send(ctx, s))
	}
	// Closing the upstream edge must drain buffered values downstream and
	// then wind down the whole chain.
	genOut.Close()

	waitState(t, upper, StateIdle)
	waitState(t, sink, StateIdle)

	assert.Equal(t, []string{"a!", "b!", "c!"}, got.snapshot())
	require.NoError(t, upper.Err())
	require.NoError(t, sink.Err())
}

func TestGenerator2_FansOutPairs(t *testing.T) {
	ticks, err := flow.New[int](flow.Unbounded)
	require.NoError(t, err)
	labels, err := flow.New[string](flow.Unbounded)
	require.NoError(t, err)

	n := 0
	gen := NewTimedGenerator2("pairs", time.Millisecond, func() (int, string, error) {
		n++
		return n, "tick", nil
	})
	gen.SetOutput1(ticks)
	gen.SetOutput2(labels)

	require.NoError(t, gen.Start(context.Background()))
	require.Eventually(t, func() bool { return ticks.Len() >= 3 }, 2*time.Second, time.Millisecond)
	require.NoError(t, gen.Stop(time.Second))

	v, ok, err := ticks.Receive(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	s, ok, err := labels.Receive(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tick", s)
}

func TestProcessor2x1_GathersInPortOrder(t *testing.T) {
	left, err := flow.New[int](1)
	require.NoError(t, err)
	right, err := flow.New[int](1)
	require.NoError(t, err)
	sums, err := flow.New[int](1)
	require.NoError(t, err)

	add := NewProcessor2x1("adder", func(a, b int) (int, error) {
		return a + b, nil
	})
	add.SetInput1(left)
	add.SetInput2(right)
	add.SetOutput(sums)

	ctx := context.Background()
	require.NoError(t, add.Start(ctx))

	require.NoError(t, left.Send(ctx, 40))
	require.NoError(t, right.Send(ctx, 2))

	v, ok, err := sums.Receive(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 42, v)

	// Closing one input ends the join; a value stranded on the other side
	// is discarded with the partial tick.
	require.NoError(t, right.Send(ctx, 99))
	left.Close()

	waitState(t, add, StateIdle)
	require.NoError(t, add.Err())

	_, ok, err = sums.Receive(ctx)
	require.NoError(t, err)
	require.False(t, ok, "join output must close after upstream closure")
}

func TestSink2_ConsumesPairs(t *testing.T) {
	nums, err := flow.New[int](2)
	require.NoError(t, err)
	words, err := flow.New[string](2)
	require.NoError(t, err)

	type pair struct {
		n int
		s string
	}
	got := &collector[pair]{}
	sink := NewSink2("pairs", func(n int, s string) error {
		return got.add(pair{n, s})
	})
	sink.SetInput1(nums)
	sink.SetInput2(words)

	ctx := context.Background()
	require.NoError(t, sink.Start(ctx))

	require.NoError(t, nums.Send(ctx, 1))
	require.NoError(t, words.Send(ctx, "one"))
	require.NoError(t, nums.Send(ctx, 2))
	require.NoError(t, words.Send(ctx, "two"))

	require.Eventually(t, func() bool { return got.len() == 2 }, 2*time.Second, time.Millisecond)

	nums.Close()
	words.Close()
	waitState(t, sink, StateIdle)

	assert.Equal(t, []pair{{1, "one"}, {2, "two"}}, got.snapshot())
}

func TestProcessor1x2_SplitsStreams(t *testing.T) {
	in, err := flow.New[int](4)
	require.NoError(t, err)
	quotients, err := flow.New[int](4)
	require.NoError(t, err)
	remainders, err := flow.New[int](4)
	require.NoError(t, err)

	split := NewProcessor1x2("divmod", func(v int) (int, int, error) {
		return v / 10, v % 10, nil
	})
	split.SetInput(in)
	split.SetOutput1(quotients)
	split.SetOutput2(remainders)

	ctx := context.Background()
	require.NoError(t, split.Start(ctx))

	require.NoError(t, in.Send(ctx, 42))
	in.Close()

	waitState(t, split, StateIdle)

	q, ok, err := quotients.Receive(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, q)

	r, ok, err := remainders.Receive(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, r)
}

func TestFilter_SuppressesRejectedValues(t *testing.T) {
	in, err := flow.New[int](8)
	require.NoError(t, err)
	out, err := flow.New[int](8)
	require.NoError(t, err)

	evens := NewFilter("evens", func(v int) (int, bool, error) {
		return v, v%2 == 0, nil
	})
	evens.SetInput(in)
	evens.SetOutput(out)

	ctx := context.Background()
	require.NoError(t, evens.Start(ctx))

	for i := 1; i <= 6; i++ {
		require.NoError(t, in.Send(ctx, i))
	}
	in.Close()

	waitState(t, evens, StateIdle)

	var got []int
	for {
		v, ok, err := out.Receive(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{2, 4, 6}, got)
	require.NoError(t, evens.Err())
}

func TestTimedGenerator_PacesTicks(t *testing.T) {
	out, err := flow.New[int](flow.Unbounded)
	require.NoError(t, err)

	n := 0
	gen := NewTimedGenerator1("paced", 50*time.Millisecond, func() (int, error) {
		n++
		return n, nil
	})
	gen.SetOutput(out)

	require.NoError(t, gen.Start(context.Background()))
	time.Sleep(240 * time.Millisecond)
	require.NoError(t, gen.Stop(time.Second))

	// Roughly one tick per interval; generous bounds keep slow CI honest.
	produced := out.Len()
	assert.GreaterOrEqual(t, produced, 2, "timed generator produced too few ticks")
	assert.LessOrEqual(t, produced, 8, "timed generator ignored its interval")
}

func TestGenerator_UnwiredOutputDropsAndCounts(t *testing.T) {
	registry := metric.NewMetricsRegistry()

	var ticks int
	gen := NewTimedGenerator1("dropper", time.Millisecond, func() (int, error) {
		ticks++
		return ticks, nil
	}, WithMetrics(registry))

	require.NoError(t, gen.Start(context.Background()))
	require.Eventually(t, func() bool {
		return testutilCounterValue(t, registry, "flowruntime_values_dropped_total") >= 3
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, gen.Stop(time.Second))
	require.NoError(t, gen.Err(), "dropping on an unwired output is not a failure")
}

// testutilCounterValue sums all series of a counter family in the registry.
func testutilCounterValue(t *testing.T, registry *metric.MetricsRegistry, family string) float64 {
	t.Helper()
	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)
	var total float64
	for _, f := range families {
		if f.GetName() != family {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
