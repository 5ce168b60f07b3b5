package runtime

import (
	"context"

	"github.com/dhaukoos/CodeNodeIO-sub010/flow"
)

// Sink1 is a terminal runtime consuming one value per tick from a single
// input port.
type Sink1[A any] struct {
	*base
	block func(A) error
	in    *flow.Conduit[A]
}

// NewSink1 constructs a continuous sink. Sinks pace themselves on upstream
// arrival, so there is no timed variant.
func NewSink1[A any](name string, block func(A) error, opts ...Option) *Sink1[A] {
	s := &Sink1[A]{
		base:  newBase(name, 0, applyOptions(opts...)),
		block: block,
	}
	s.validate = func() error { return requireWired(s.base, s.in, "in1") }
	s.step = s.tick
	return s
}

// SetInput wires the input port. Ports may only be reassigned while idle.
func (s *Sink1[A]) SetInput(c *flow.Conduit[A]) {
	if s.wireable("in1") {
		s.in = c
	}
}

func (s *Sink1[A]) tick(ctx context.Context) error {
	a, err := gather(ctx, s.base, s.in, "in1")
	if err != nil {
		return err
	}
	return s.safeInvoke(func() error { return s.block(a) })
}

// Sink2 is a terminal runtime consuming one value from each of two input
// ports per tick. Inputs are gathered in port order; closure of either
// input ends the run and discards a partially gathered tick.
type Sink2[A, B any] struct {
	*base
	block func(A, B) error
	in1   *flow.Conduit[A]
	in2   *flow.Conduit[B]
}

// NewSink2 constructs a continuous two-input sink.
func NewSink2[A, B any](name string, block func(A, B) error, opts ...Option) *Sink2[A, B] {
	s := &Sink2[A, B]{
		base:  newBase(name, 0, applyOptions(opts...)),
		block: block,
	}
	s.validate = func() error {
		if err := requireWired(s.base, s.in1, "in1"); err != nil {
			return err
		}
		return requireWired(s.base, s.in2, "in2")
	}
	s.step = s.tick
	return s
}

// SetInput1 wires the first input port.
func (s *Sink2[A, B]) SetInput1(c *flow.Conduit[A]) {
	if s.wireable("in1") {
		s.in1 = c
	}
}

// SetInput2 wires the second input port.
func (s *Sink2[A, B]) SetInput2(c *flow.Conduit[B]) {
	if s.wireable("in2") {
		s.in2 = c
	}
}

func (s *Sink2[A, B]) tick(ctx context.Context) error {
	a, err := gather(ctx, s.base, s.in1, "in1")
	if err != nil {
		return err
	}
	b, err := gather(ctx, s.base, s.in2, "in2")
	if err != nil {
		return err
	}
	return s.safeInvoke(func() error { return s.block(a, b) })
}

// Sink3 is a terminal runtime consuming one value from each of three input
// ports per tick.
type Sink3[A, B, C any] struct {
	*base
	block func(A, B, C) error
	in1   *flow.Conduit[A]
	in2   *flow.Conduit[B]
	in3   *flow.Conduit[C]
}

// NewSink3 constructs a continuous three-input sink.
func NewSink3[A, B, C any](name string, block func(A, B, C) error, opts ...Option) *Sink3[A, B, C] {
	s := &Sink3[A, B, C]{
		base:  newBase(name, 0, applyOptions(opts...)),
		block: block,
	}
	s.validate = func() error {
		if err := requireWired(s.base, s.in1, "in1"); err != nil {
			return err
		}
		if err := requireWired(s.base, s.in2, "in2"); err != nil {
			return err
		}
		return requireWired(s.base, s.in3, "in3")
	}
	s.step = s.tick
	return s
}

// SetInput1 wires the first input port.
func (s *Sink3[A, B, C]) SetInput1(c *flow.Conduit[A]) {
	if s.wireable("in1") {
		s.in1 = c
	}
}

// SetInput2 wires the second input port.
func (s *Sink3[A, B, C]) SetInput2(c *flow.Conduit[B]) {
	if s.wireable("in2") {
		s.in2 = c
	}
}

// SetInput3 wires the third input port.
func (s *Sink3[A, B, C]) SetInput3(c *flow.Conduit[C]) {
	if s.wireable("in3") {
		s.in3 = c
	}
}

func (s *Sink3[A, B, C]) tick(ctx context.Context) error {
	a, err := gather(ctx, s.base, s.in1, "in1")
	if err != nil {
		return err
	}
	b, err := gather(ctx, s.base, s.in2, "in2")
	if err != nil {
		return err
	}
	c, err := gather(ctx, s.base, s.in3, "in3")
	if err != nil {
		return err
	}
	return s.safeInvoke(func() error { return s.block(a, b, c) })
}
