package runtime

import (
	"context"
	"time"

	"github.com/dhaukoos/CodeNodeIO-sub010/flow"
)

// Generator1 is a source runtime producing one value per tick on a single
// output port.
type Generator1[A any] struct {
	*base
	block func() (A, error)
	out   *flow.Conduit[A]
}

// NewGenerator1 constructs a continuous generator. Once started it ticks as
// fast as output backpressure allows.
func NewGenerator1[A any](name string, block func() (A, error), opts ...Option) *Generator1[A] {
	return newGenerator1(name, 0, block, opts...)
}

// NewTimedGenerator1 constructs a generator that waits interval before each
// tick.
func NewTimedGenerator1[A any](name string, interval time.Duration, block func() (A, error), opts ...Option) *Generator1[A] {
	return newGenerator1(name, interval, block, opts...)
}

func newGenerator1[A any](name string, interval time.Duration, block func() (A, error), opts ...Option) *Generator1[A] {
	g := &Generator1[A]{
		base:  newBase(name, interval, applyOptions(opts...)),
		block: block,
	}
	g.step = g.tick
	g.closeOut = func() { closeConduit(g.out) }
	return g
}

// SetOutput wires the output port. Ports may only be reassigned while idle.
func (g *Generator1[A]) SetOutput(c *flow.Conduit[A]) {
	if g.wireable("out1") {
		g.out = c
	}
}

func (g *Generator1[A]) tick(ctx context.Context) error {
	var v A
	if err := g.safeInvoke(func() (blockErr error) {
		v, blockErr = g.block()
		return blockErr
	}); err != nil {
		return err
	}
	return emit(ctx, g.base, g.out, "out1", v)
}

// Generator2 is a source runtime producing a pair of values per tick on two
// output ports.
type Generator2[A, B any] struct {
	*base
	block func() (A, B, error)
	out1  *flow.Conduit[A]
	out2  *flow.Conduit[B]
}

// NewGenerator2 constructs a continuous two-output generator.
func NewGenerator2[A, B any](name string, block func() (A, B, error), opts ...Option) *Generator2[A, B] {
	return newGenerator2(name, 0, block, opts...)
}

// NewTimedGenerator2 constructs a two-output generator that waits interval
// before each tick.
func NewTimedGenerator2[A, B any](name string, interval time.Duration, block func() (A, B, error), opts ...Option) *Generator2[A, B] {
	return newGenerator2(name, interval, block, opts...)
}

func newGenerator2[A, B any](name string, interval time.Duration, block func() (A, B, error), opts ...Option) *Generator2[A, B] {
	g := &Generator2[A, B]{
		base:  newBase(name, interval, applyOptions(opts...)),
		block: block,
	}
	g.step = g.tick
	g.closeOut = func() {
		closeConduit(g.out1)
		closeConduit(g.out2)
	}
	return g
}

// SetOutput1 wires the first output port.
func (g *Generator2[A, B]) SetOutput1(c *flow.Conduit[A]) {
	if g.wireable("out1") {
		g.out1 = c
	}
}

// SetOutput2 wires the second output port.
func (g *Generator2[A, B]) SetOutput2(c *flow.Conduit[B]) {
	if g.wireable("out2") {
		g.out2 = c
	}
}

func (g *Generator2[A, B]) tick(ctx context.Context) error {
	var (
		a A
		b B
	)
	if err := g.safeInvoke(func() (blockErr error) {
		a, b, blockErr = g.block()
		return blockErr
	}); err != nil {
		return err
	}
	if err := emit(ctx, g.base, g.out1, "out1", a); err != nil {
		return err
	}
	return emit(ctx, g.base, g.out2, "out2", b)
}

// Generator3 is a source runtime producing a triple of values per tick on
// three output ports.
type Generator3[A, B, C any] struct {
	*base
	block func() (A, B, C, error)
	out1  *flow.Conduit[A]
	out2  *flow.Conduit[B]
	out3  *flow.Conduit[C]
}

// NewGenerator3 constructs a continuous three-output generator.
func NewGenerator3[A, B, C any](name string, block func() (A, B, C, error), opts ...Option) *Generator3[A, B, C] {
	return newGenerator3(name, 0, block, opts...)
}

// NewTimedGenerator3 constructs a three-output generator that waits interval
// before each tick.
func NewTimedGenerator3[A, B, C any](name string, interval time.Duration, block func() (A, B, C, error), opts ...Option) *Generator3[A, B, C] {
	return newGenerator3(name, interval, block, opts...)
}

func newGenerator3[A, B, C any](name string, interval time.Duration, block func() (A, B, C, error), opts ...Option) *Generator3[A, B, C] {
	g := &Generator3[A, B, C]{
		base:  newBase(name, interval, applyOptions(opts...)),
		block: block,
	}
	g.step = g.tick
	g.closeOut = func() {
		closeConduit(g.out1)
		closeConduit(g.out2)
		closeConduit(g.out3)
	}
	return g
}

// SetOutput1 wires the first output port.
func (g *Generator3[A, B, C]) SetOutput1(c *flow.Conduit[A]) {
	if g.wireable("out1") {
		g.out1 = c
	}
}

// SetOutput2 wires the second output port.
func (g *Generator3[A, B, C]) SetOutput2(c *flow.Conduit[B]) {
	if g.wireable("out2") {
		g.out2 = c
	}
}

// SetOutput3 wires the third output port.
func (g *Generator3[A, B, C]) SetOutput3(c *flow.Conduit[C]) {
	if g.wireable("out3") {
		g.out3 = c
	}
}

func (g *Generator3[A, B, C]) tick(ctx context.Context) error {
	var (
		a A
		b B
		c C
	)
	if err := g.safeInvoke(func() (blockErr error) {
		a, b, c, blockErr = g.block()
		return blockErr
	}); err != nil {
		return err
	}
	if err := emit(ctx, g.base, g.out1, "out1", a); err != nil {
		return err
	}
	if err := emit(ctx, g.base, g.out2, "out2", b); err != nil {
		return err
	}
	return emit(ctx, g.base, g.out3, "out3", c)
}
