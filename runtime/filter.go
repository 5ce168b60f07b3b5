package runtime

import (
	"context"
	"time"

	"github.com/dhaukoos/CodeNodeIO-sub010/flow"
)

// Filter is a one-in one-out runtime over a single type whose block decides
// per value whether to pass it along. Returning false suppresses the send
// for that tick without ending the run.
type Filter[T any] struct {
	*base
	block func(T) (T, bool, error)
	in    *flow.Conduit[T]
	out   *flow.Conduit[T]
}

// NewFilter constructs a continuous filter.
func NewFilter[T any](name string, block func(T) (T, bool, error), opts ...Option) *Filter[T] {
	return newFilter(name, 0, block, opts...)
}

// NewTimedFilter constructs a filter that waits interval before each tick.
func NewTimedFilter[T any](name string, interval time.Duration, block func(T) (T, bool, error), opts ...Option) *Filter[T] {
	return newFilter(name, interval, block, opts...)
}

func newFilter[T any](name string, interval time.Duration, block func(T) (T, bool, error), opts ...Option) *Filter[T] {
	f := &Filter[T]{
		base:  newBase(name, interval, applyOptions(opts...)),
		block: block,
	}
	f.validate = func() error { return requireWired(f.base, f.in, "in1") }
	f.step = f.tick
	f.closeOut = func() { closeConduit(f.out) }
	return f
}

// SetInput wires the input port. Ports may only be reassigned while idle.
func (f *Filter[T]) SetInput(c *flow.Conduit[T]) {
	if f.wireable("in1") {
		f.in = c
	}
}

// SetOutput wires the output port.
func (f *Filter[T]) SetOutput(c *flow.Conduit[T]) {
	if f.wireable("out1") {
		f.out = c
	}
}

func (f *Filter[T]) tick(ctx context.Context) error {
	v, err := gather(ctx, f.base, f.in, "in1")
	if err != nil {
		return err
	}
	var (
		result T
		pass   bool
	)
	if err := f.safeInvoke(func() (blockErr error) {
		result, pass, blockErr = f.block(v)
		return blockErr
	}); err != nil {
		return err
	}
	if !pass {
		return nil
	}
	return emit(ctx, f.base, f.out, "out1", result)
}
