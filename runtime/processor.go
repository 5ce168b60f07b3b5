package runtime

import (
	"context"
	"time"

	"github.com/dhaukoos/CodeNodeIO-sub010/flow"
)

// Processor1x1 is a transform runtime with one input and one output port.
// Each tick receives one value, applies the block, and sends the result.
type Processor1x1[A, X any] struct {
	*base
	block func(A) (X, error)
	in    *flow.Conduit[A]
	out   *flow.Conduit[X]
}

// NewProcessor1x1 constructs a continuous one-in one-out processor.
func NewProcessor1x1[A, X any](name string, block func(A) (X, error), opts ...Option) *Processor1x1[A, X] {
	return newProcessor1x1(name, 0, block, opts...)
}

// NewTimedProcessor1x1 constructs a processor that waits interval before
// each tick.
func NewTimedProcessor1x1[A, X any](name string, interval time.Duration, block func(A) (X, error), opts ...Option) *Processor1x1[A, X] {
	return newProcessor1x1(name, interval, block, opts...)
}

func newProcessor1x1[A, X any](name string, interval time.Duration, block func(A) (X, error), opts ...Option) *Processor1x1[A, X] {
	p := &Processor1x1[A, X]{
		base:  newBase(name, interval, applyOptions(opts...)),
		block: block,
	}
	p.validate = func() error { return requireWired(p.base, p.in, "in1") }
	p.step = p.tick
	p.closeOut = func() { closeConduit(p.out) }
	return p
}

// SetInput wires the input port. Ports may only be reassigned while idle.
func (p *Processor1x1[A, X]) SetInput(c *flow.Conduit[A]) {
	if p.wireable("in1") {
		p.in = c
	}
}

// SetOutput wires the output port.
func (p *Processor1x1[A, X]) SetOutput(c *flow.Conduit[X]) {
	if p.wireable("out1") {
		p.out = c
	}
}

func (p *Processor1x1[A, X]) tick(ctx context.Context) error {
	a, err := gather(ctx, p.base, p.in, "in1")
	if err != nil {
		return err
	}
	var x X
	if err := p.safeInvoke(func() (blockErr error) {
		x, blockErr = p.block(a)
		return blockErr
	}); err != nil {
		return err
	}
	return emit(ctx, p.base, p.out, "out1", x)
}

// Processor1x2 is a transform runtime with one input and two output ports.
type Processor1x2[A, X, Y any] struct {
	*base
	block func(A) (X, Y, error)
	in    *flow.Conduit[A]
	out1  *flow.Conduit[X]
	out2  *flow.Conduit[Y]
}

// NewProcessor1x2 constructs a continuous one-in two-out processor.
func NewProcessor1x2[A, X, Y any](name string, block func(A) (X, Y, error), opts ...Option) *Processor1x2[A, X, Y] {
	return newProcessor1x2(name, 0, block, opts...)
}

// NewTimedProcessor1x2 constructs a timed one-in two-out processor.
func NewTimedProcessor1x2[A, X, Y any](name string, interval time.Duration, block func(A) (X, Y, error), opts ...Option) *Processor1x2[A, X, Y] {
	return newProcessor1x2(name, interval, block, opts...)
}

func newProcessor1x2[A, X, Y any](name string, interval time.Duration, block func(A) (X, Y, error), opts ...Option) *Processor1x2[A, X, Y] {
	p := &Processor1x2[A, X, Y]{
		base:  newBase(name, interval, applyOptions(opts...)),
		block: block,
	}
	p.validate = func() error { return requireWired(p.base, p.in, "in1") }
	p.step = p.tick
	p.closeOut = func() {
		closeConduit(p.out1)
		closeConduit(p.out2)
	}
	return p
}

// SetInput wires the input port.
func (p *Processor1x2[A, X, Y]) SetInput(c *flow.Conduit[A]) {
	if p.wireable("in1") {
		p.in = c
	}
}

// SetOutput1 wires the first output port.
func (p *Processor1x2[A, X, Y]) SetOutput1(c *flow.Conduit[X]) {
	if p.wireable("out1") {
		p.out1 = c
	}
}

// SetOutput2 wires the second output port.
func (p *Processor1x2[A, X, Y]) SetOutput2(c *flow.Conduit[Y]) {
	if p.wireable("out2") {
		p.out2 = c
	}
}

func (p *Processor1x2[A, X, Y]) tick(ctx context.Context) error {
	a, err := gather(ctx, p.base, p.in, "in1")
	if err != nil {
		return err
	}
	var (
		x X
		y Y
	)
	if err := p.safeInvoke(func() (blockErr error) {
		x, y, blockErr = p.block(a)
		return blockErr
	}); err != nil {
		return err
	}
	if err := emit(ctx, p.base, p.out1, "out1", x); err != nil {
		return err
	}
	return emit(ctx, p.base, p.out2, "out2", y)
}

// Processor1x3 is a transform runtime with one input and three output ports.
type Processor1x3[A, X, Y, Z any] struct {
	*base
	block func(A) (X, Y, Z, error)
	in    *flow.Conduit[A]
	out1  *flow.Conduit[X]
	out2  *flow.Conduit[Y]
	out3  *flow.Conduit[Z]
}

// NewProcessor1x3 constructs a continuous one-in three-out processor.
func NewProcessor1x3[A, X, Y, Z any](name string, block func(A) (X, Y, Z, error), opts ...Option) *Processor1x3[A, X, Y, Z] {
	return newProcessor1x3(name, 0, block, opts...)
}

// NewTimedProcessor1x3 constructs a timed one-in three-out processor.
func NewTimedProcessor1x3[A, X, Y, Z any](name string, interval time.Duration, block func(A) (X, Y, Z, error), opts ...Option) *Processor1x3[A, X, Y, Z] {
	return newProcessor1x3(name, interval, block, opts...)
}

func newProcessor1x3[A, X, Y, Z any](name string, interval time.Duration, block func(A) (X, Y, Z, error), opts ...Option) *Processor1x3[A, X, Y, Z] {
	p := &Processor1x3[A, X, Y, Z]{
		base:  newBase(name, interval, applyOptions(opts...)),
		block: block,
	}
	p.validate = func() error { return requireWired(p.base, p.in, "in1") }
	p.step = p.tick
	p.closeOut = func() {
		closeConduit(p.out1)
		closeConduit(p.out2)
		closeConduit(p.out3)
	}
	return p
}

// SetInput wires the input port.
func (p *Processor1x3[A, X, Y, Z]) SetInput(c *flow.Conduit[A]) {
	if p.wireable("in1") {
		p.in = c
	}
}

// SetOutput1 wires the first output port.
func (p *Processor1x3[A, X, Y, Z]) SetOutput1(c *flow.Conduit[X]) {
	if p.wireable("out1") {
		p.out1 = c
	}
}

// SetOutput2 wires the second output port.
func (p *Processor1x3[A, X, Y, Z]) SetOutput2(c *flow.Conduit[Y]) {
	if p.wireable("out2") {
		p.out2 = c
	}
}

// SetOutput3 wires the third output port.
func (p *Processor1x3[A, X, Y, Z]) SetOutput3(c *flow.Conduit[Z]) {
	if p.wireable("out3") {
		p.out3 = c
	}
}

func (p *Processor1x3[A, X, Y, Z]) tick(ctx context.Context) error {
	a, err := gather(ctx, p.base, p.in, "in1")
	if err != nil {
		return err
	}
	var (
		x X
		y Y
		z Z
	)
	if err := p.safeInvoke(func() (blockErr error) {
		x, y, z, blockErr = p.block(a)
		return blockErr
	}); err != nil {
		return err
	}
	if err := emit(ctx, p.base, p.out1, "out1", x); err != nil {
		return err
	}
	if err := emit(ctx, p.base, p.out2, "out2", y); err != nil {
		return err
	}
	return emit(ctx, p.base, p.out3, "out3", z)
}

// Processor2x1 is a join runtime combining two inputs into one output.
// Inputs are gathered in port order each tick.
type Processor2x1[A, B, X any] struct {
	*base
	block func(A, B) (X, error)
	in1   *flow.Conduit[A]
	in2   *flow.Conduit[B]
	out   *flow.Conduit[X]
}

// NewProcessor2x1 constructs a continuous two-in one-out processor.
func NewProcessor2x1[A, B, X any](name string, block func(A, B) (X, error), opts ...Option) *Processor2x1[A, B, X] {
	return newProcessor2x1(name, 0, block, opts...)
}

// NewTimedProcessor2x1 constructs a timed two-in one-out processor.
func NewTimedProcessor2x1[A, B, X any](name string, interval time.Duration, block func(A, B) (X, error), opts ...Option) *Processor2x1[A, B, X] {
	return newProcessor2x1(name, interval, block, opts...)
}

func newProcessor2x1[A, B, X any](name string, interval time.Duration, block func(A, B) (X, error), opts ...Option) *Processor2x1[A, B, X] {
	p := &Processor2x1[A, B, X]{
		base:  newBase(name, interval, applyOptions(opts...)),
		block: block,
	}
	p.validate = func() error {
		if err := requireWired(p.base, p.in1, "in1"); err != nil {
			return err
		}
		return requireWired(p.base, p.in2, "in2")
	}
	p.step = p.tick
	p.closeOut = func() { closeConduit(p.out) }
	return p
}

// SetInput1 wires the first input port.
func (p *Processor2x1[A, B, X]) SetInput1(c *flow.Conduit[A]) {
	if p.wireable("in1") {
		p.in1 = c
	}
}

// SetInput2 wires the second input port.
func (p *Processor2x1[A, B, X]) SetInput2(c *flow.Conduit[B]) {
	if p.wireable("in2") {
		p.in2 = c
	}
}

// SetOutput wires the output port.
func (p *Processor2x1[A, B, X]) SetOutput(c *flow.Conduit[X]) {
	if p.wireable("out1") {
		p.out = c
	}
}

func (p *Processor2x1[A, B, X]) tick(ctx context.Context) error {
	a, err := gather(ctx, p.base, p.in1, "in1")
	if err != nil {
		return err
	}
	b, err := gather(ctx, p.base, p.in2, "in2")
	if err != nil {
		return err
	}
	var x X
	if err := p.safeInvoke(func() (blockErr error) {
		x, blockErr = p.block(a, b)
		return blockErr
	}); err != nil {
		return err
	}
	return emit(ctx, p.base, p.out, "out1", x)
}

// Processor2x2 is a transform runtime with two inputs and two outputs.
type Processor2x2[A, B, X, Y any] struct {
	*base
	block func(A, B) (X, Y, error)
	in1   *flow.Conduit[A]
	in2   *flow.Conduit[B]
	out1  *flow.Conduit[X]
	out2  *flow.Conduit[Y]
}

// NewProcessor2x2 constructs a continuous two-in two-out processor.
func NewProcessor2x2[A, B, X, Y any](name string, block func(A, B) (X, Y, error), opts ...Option) *Processor2x2[A, B, X, Y] {
	return newProcessor2x2(name, 0, block, opts...)
}

// NewTimedProcessor2x2 constructs a timed two-in two-out processor.
func NewTimedProcessor2x2[A, B, X, Y any](name string, interval time.Duration, block func(A, B) (X, Y, error), opts ...Option) *Processor2x2[A, B, X, Y] {
	return newProcessor2x2(name, interval, block, opts...)
}

func newProcessor2x2[A, B, X, Y any](name string, interval time.Duration, block func(A, B) (X, Y, error), opts ...Option) *Processor2x2[A, B, X, Y] {
	p := &Processor2x2[A, B, X, Y]{
		base:  newBase(name, interval, applyOptions(opts...)),
		block: block,
	}
	p.validate = func() error {
		if err := requireWired(p.base, p.in1, "in1"); err != nil {
			return err
		}
		return requireWired(p.base, p.in2, "in2")
	}
	p.step = p.tick
	p.closeOut = func() {
		closeConduit(p.out1)
		closeConduit(p.out2)
	}
	return p
}

// SetInput1 wires the first input port.
func (p *Processor2x2[A, B, X, Y]) SetInput1(c *flow.Conduit[A]) {
	if p.wireable("in1") {
		p.in1 = c
	}
}

// SetInput2 wires the second input port.
func (p *Processor2x2[A, B, X, Y]) SetInput2(c *flow.Conduit[B]) {
	if p.wireable("in2") {
		p.in2 = c
	}
}

// SetOutput1 wires the first output port.
func (p *Processor2x2[A, B, X, Y]) SetOutput1(c *flow.Conduit[X]) {
	if p.wireable("out1") {
		p.out1 = c
	}
}

// SetOutput2 wires the second output port.
func (p *Processor2x2[A, B, X, Y]) SetOutput2(c *flow.Conduit[Y]) {
	if p.wireable("out2") {
		p.out2 = c
	}
}

func (p *Processor2x2[A, B, X, Y]) tick(ctx context.Context) error {
	a, err := gather(ctx, p.base, p.in1, "in1")
	if err != nil {
		return err
	}
	b, err := gather(ctx, p.base, p.in2, "in2")
	if err != nil {
		return err
	}
	var (
		x X
		y Y
	)
	if err := p.safeInvoke(func() (blockErr error) {
		x, y, blockErr = p.block(a, b)
		return blockErr
	}); err != nil {
		return err
	}
	if err := emit(ctx, p.base, p.out1, "out1", x); err != nil {
		return err
	}
	return emit(ctx, p.base, p.out2, "out2", y)
}

// Processor2x3 is a transform runtime with two inputs and three outputs.
type Processor2x3[A, B, X, Y, Z any] struct {
	*base
	block func(A, B) (X, Y, Z, error)
	in1   *flow.Conduit[A]
	in2   *flow.Conduit[B]
	out1  *flow.Conduit[X]
	out2  *flow.Conduit[Y]
	out3  *flow.Conduit[Z]
}

// NewProcessor2x3 constructs a continuous two-in three-out processor.
func NewProcessor2x3[A, B, X, Y, Z any](name string, block func(A, B) (X, Y, Z, error), opts ...Option) *Processor2x3[A, B, X, Y, Z] {
	return newProcessor2x3(name, 0, block, opts...)
}

// NewTimedProcessor2x3 constructs a timed two-in three-out processor.
func NewTimedProcessor2x3[A, B, X, Y, Z any](name string, interval time.Duration, block func(A, B) (X, Y, Z, error), opts ...Option) *Processor2x3[A, B, X, Y, Z] {
	return newProcessor2x3(name, interval, block, opts...)
}

func newProcessor2x3[A, B, X, Y, Z any](name string, interval time.Duration, block func(A, B) (X, Y, Z, error), opts ...Option) *Processor2x3[A, B, X, Y, Z] {
	p := &Processor2x3[A, B, X, Y, Z]{
		base:  newBase(name, interval, applyOptions(opts...)),
		block: block,
	}
	p.validate = func() error {
		if err := requireWired(p.base, p.in1, "in1"); err != nil {
			return err
		}
		return requireWired(p.base, p.in2, "in2")
	}
	p.step = p.tick
	p.closeOut = func() {
		closeConduit(p.out1)
		closeConduit(p.out2)
		closeConduit(p.out3)
	}
	return p
}

// SetInput1 wires the first input port.
func (p *Processor2x3[A, B, X, Y, Z]) SetInput1(c *flow.Conduit[A]) {
	if p.wireable("in1") {
		p.in1 = c
	}
}

// SetInput2 wires the second input port.
func (p *Processor2x3[A, B, X, Y, Z]) SetInput2(c *flow.Conduit[B]) {
	if p.wireable("in2") {
		p.in2 = c
	}
}

// SetOutput1 wires the first output port.
func (p *Processor2x3[A, B, X, Y, Z]) SetOutput1(c *flow.Conduit[X]) {
	if p.wireable("out1") {
		p.out1 = c
	}
}

// SetOutput2 wires the second output port.
func (p *Processor2x3[A, B, X, Y, Z]) SetOutput2(c *flow.Conduit[Y]) {
	if p.wireable("out2") {
		p.out2 = c
	}
}

// SetOutput3 wires the third output port.
func (p *Processor2x3[A, B, X, Y, Z]) SetOutput3(c *flow.Conduit[Z]) {
	if p.wireable("out3") {
		p.out3 = c
	}
}

func (p *Processor2x3[A, B, X, Y, Z]) tick(ctx context.Context) error {
	a, err := gather(ctx, p.base, p.in1, "in1")
	if err != nil {
		return err
	}
	b, err := gather(ctx, p.base, p.in2, "in2")
	if err != nil {
		return err
	}
	var (
		x X
		y Y
		z Z
	)
	if err := p.safeInvoke(func() (blockErr error) {
		x, y, z, blockErr = p.block(a, b)
		return blockErr
	}); err != nil {
		return err
	}
	if err := emit(ctx, p.base, p.out1, "out1", x); err != nil {
		return err
	}
	if err := emit(ctx, p.base, p.out2, "out2", y); err != nil {
		return err
	}
	return emit(ctx, p.base, p.out3, "out3", z)
}

// Processor3x1 is a join runtime combining three inputs into one output.
type Processor3x1[A, B, C, X any] struct {
	*base
	block func(A, B, C) (X, error)
	in1   *flow.Conduit[A]
	in2   *flow.Conduit[B]
	in3   *flow.Conduit[C]
	out   *flow.Conduit[X]
}

// NewProcessor3x1 constructs a continuous three-in one-out processor.
func NewProcessor3x1[A, B, C, X any](name string, block func(A, B, C) (X, error), opts ...Option) *Processor3x1[A, B, C, X] {
	return newProcessor3x1(name, 0, block, opts...)
}

// NewTimedProcessor3x1 constructs a timed three-in one-out processor.
func NewTimedProcessor3x1[A, B, C, X any](name string, interval time.Duration, block func(A, B, C) (X, error), opts ...Option) *Processor3x1[A, B, C, X] {
	return newProcessor3x1(name, interval, block, opts...)
}

func newProcessor3x1[A, B, C, X any](name string, interval time.Duration, block func(A, B, C) (X, error), opts ...Option) *Processor3x1[A, B, C, X] {
	p := &Processor3x1[A, B, C, X]{
		base:  newBase(name, interval, applyOptions(opts...)),
		block: block,
	}
	p.validate = func() error {
		if err := requireWired(p.base, p.in1, "in1"); err != nil {
			return err
		}
		if err := requireWired(p.base, p.in2, "in2"); err != nil {
			return err
		}
		return requireWired(p.base, p.in3, "in3")
	}
	p.step = p.tick
	p.closeOut = func() { closeConduit(p.out) }
	return p
}

// SetInput1 wires the first input port.
func (p *Processor3x1[A, B, C, X]) SetInput1(c *flow.Conduit[A]) {
	if p.wireable("in1") {
		p.in1 = c
	}
}

// SetInput2 wires the second input port.
func (p *Processor3x1[A, B, C, X]) SetInput2(c *flow.Conduit[B]) {
	if p.wireable("in2") {
		p.in2 = c
	}
}

// SetInput3 wires the third input port.
func (p *Processor3x1[A, B, C, X]) SetInput3(c *flow.Conduit[C]) {
	if p.wireable("in3") {
		p.in3 = c
	}
}

// SetOutput wires the output port.
func (p *Processor3x1[A, B, C, X]) SetOutput(c *flow.Conduit[X]) {
	if p.wireable("out1") {
		p.out = c
	}
}

func (p *Processor3x1[A, B, C, X]) tick(ctx context.Context) error {
	a, err := gather(ctx, p.base, p.in1, "in1")
	if err != nil {
		return err
	}
	b, err := gather(ctx, p.base, p.in2, "in2")
	if err != nil {
		return err
	}
	c, err := gather(ctx, p.base, p.in3, "in3")
	if err != nil {
		return err
	}
	var x X
	if err := p.safeInvoke(func() (blockErr error) {
		x, blockErr = p.block(a, b, c)
		return blockErr
	}); err != nil {
		return err
	}
	return emit(ctx, p.base, p.out, "out1", x)
}

// Processor3x2 is a transform runtime with three inputs and two outputs.
type Processor3x2[A, B, C, X, Y any] struct {
	*base
	block func(A, B, C) (X, Y, error)
	in1   *flow.Conduit[A]
	in2   *flow.Conduit[B]
	in3   *flow.Conduit[C]
	out1  *flow.Conduit[X]
	out2  *flow.Conduit[Y]
}

// NewProcessor3x2 constructs a continuous three-in two-out processor.
func NewProcessor3x2[A, B, C, X, Y any](name string, block func(A, B, C) (X, Y, error), opts ...Option) *Processor3x2[A, B, C, X, Y] {
	return newProcessor3x2(name, 0, block, opts...)
}

// NewTimedProcessor3x2 constructs a timed three-in two-out processor.
func NewTimedProcessor3x2[A, B, C, X, Y any](name string, interval time.Duration, block func(A, B, C) (X, Y, error), opts ...Option) *Processor3x2[A, B, C, X, Y] {
	return newProcessor3x2(name, interval, block, opts...)
}

func newProcessor3x2[A, B, C, X, Y any](name string, interval time.Duration, block func(A, B, C) (X, Y, error), opts ...Option) *Processor3x2[A, B, C, X, Y] {
	p := &Processor3x2[A, B, C, X, Y]{
		base:  newBase(name, interval, applyOptions(opts...)),
		block: block,
	}
	p.validate = func() error {
		if err := requireWired(p.base, p.in1, "in1"); err != nil {
			return err
		}
		if err := requireWired(p.base, p.in2, "in2"); err != nil {
			return err
		}
		return requireWired(p.base, p.in3, "in3")
	}
	p.step = p.tick
	p.closeOut = func() {
		closeConduit(p.out1)
		closeConduit(p.out2)
	}
	return p
}

// SetInput1 wires the first input port.
func (p *Processor3x2[A, B, C, X, Y]) SetInput1(c *flow.Conduit[A]) {
	if p.wireable("in1") {
		p.in1 = c
	}
}

// SetInput2 wires the second input port.
func (p *Processor3x2[A, B, C, X, Y]) SetInput2(c *flow.Conduit[B]) {
	if p.wireable("in2") {
		p.in2 = c
	}
}

// SetInput3 wires the third input port.
func (p *Processor3x2[A, B, C, X, Y]) SetInput3(c *flow.Conduit[C]) {
	if p.wireable("in3") {
		p.in3 = c
	}
}

// SetOutput1 wires the first output port.
func (p *Processor3x2[A, B, C, X, Y]) SetOutput1(c *flow.Conduit[X]) {
	if p.wireable("out1") {
		p.out1 = c
	}
}

// SetOutput2 wires the second output port.
func (p *Processor3x2[A, B, C, X, Y]) SetOutput2(c *flow.Conduit[Y]) {
	if p.wireable("out2") {
		p.out2 = c
	}
}

func (p *Processor3x2[A, B, C, X, Y]) tick(ctx context.Context) error {
	a, err := gather(ctx, p.base, p.in1, "in1")
	if err != nil {
		return err
	}
	b, err := gather(ctx, p.base, p.in2, "in2")
	if err != nil {
		return err
	}
	c, err := gather(ctx, p.base, p.in3, "in3")
	if err != nil {
		return err
	}
	var (
		x X
		y Y
	)
	if err := p.safeInvoke(func() (blockErr error) {
		x, y, blockErr = p.block(a, b, c)
		return blockErr
	}); err != nil {
		return err
	}
	if err := emit(ctx, p.base, p.out1, "out1", x); err != nil {
		return err
	}
	return emit(ctx, p.base, p.out2, "out2", y)
}

// Processor3x3 is a transform runtime with three inputs and three outputs.
type Processor3x3[A, B, C, X, Y, Z any] struct {
	*base
	block func(A, B, C) (X, Y, Z, error)
	in1   *flow.Conduit[A]
	in2   *flow.Conduit[B]
	in3   *flow.Conduit[C]
	out1  *flow.Conduit[X]
	out2  *flow.Conduit[Y]
	out3  *flow.Conduit[Z]
}

// NewProcessor3x3 constructs a continuous three-in three-out processor.
func NewProcessor3x3[A, B, C, X, Y, Z any](name string, block func(A, B, C) (X, Y, Z, error), opts ...Option) *Processor3x3[A, B, C, X, Y, Z] {
	return newProcessor3x3(name, 0, block, opts...)
}

// NewTimedProcessor3x3 constructs a timed three-in three-out processor.
func NewTimedProcessor3x3[A, B, C, X, Y, Z any](name string, interval time.Duration, block func(A, B, C) (X, Y, Z, error), opts ...Option) *Processor3x3[A, B, C, X, Y, Z] {
	return newProcessor3x3(name, interval, block, opts...)
}

func newProcessor3x3[A, B, C, X, Y, Z any](name string, interval time.Duration, block func(A, B, C) (X, Y, Z, error), opts ...Option) *Processor3x3[A, B, C, X, Y, Z] {
	p := &Processor3x3[A, B, C, X, Y, Z]{
		base:  newBase(name, interval, applyOptions(opts...)),
		block: block,
	}
	p.validate = func() error {
		if err := requireWired(p.base, p.in1, "in1"); err != nil {
			return err
		}
		if err := requireWired(p.base, p.in2, "in2"); err != nil {
			return err
		}
		return requireWired(p.base, p.in3, "in3")
	}
	p.step = p.tick
	p.closeOut = func() {
		closeConduit(p.out1)
		closeConduit(p.out2)
		closeConduit(p.out3)
	}
	return p
}

// SetInput1 wires the first input port.
func (p *Processor3x3[A, B, C, X, Y, Z]) SetInput1(c *flow.Conduit[A]) {
	if p.wireable("in1") {
		p.in1 = c
	}
}

// SetInput2 wires the second input port.
func (p *Processor3x3[A, B, C, X, Y, Z]) SetInput2(c *flow.Conduit[B]) {
	if p.wireable("in2") {
		p.in2 = c
	}
}

// SetInput3 wires the third input port.
func (p *Processor3x3[A, B, C, X, Y, Z]) SetInput3(c *flow.Conduit[C]) {
	if p.wireable("in3") {
		p.in3 = c
	}
}

// SetOutput1 wires the first output port.
func (p *Processor3x3[A, B, C, X, Y, Z]) SetOutput1(c *flow.Conduit[X]) {
	if p.wireable("out1") {
		p.out1 = c
	}
}

// SetOutput2 wires the second output port.
func (p *Processor3x3[A, B, C, X, Y, Z]) SetOutput2(c *flow.Conduit[Y]) {
	if p.wireable("out2") {
		p.out2 = c
	}
}

// SetOutput3 wires the third output port.
func (p *Processor3x3[A, B, C, X, Y, Z]) SetOutput3(c *flow.Conduit[Z]) {
	if p.wireable("out3") {
		p.out3 = c
	}
}

func (p *Processor3x3[A, B, C, X, Y, Z]) tick(ctx context.Context) error {
	a, err := gather(ctx, p.base, p.in1, "in1")
	if err != nil {
		return err
	}
	b, err := gather(ctx, p.base, p.in2, "in2")
	if err != nil {
		return err
	}
	c, err := gather(ctx, p.base, p.in3, "in3")
	if err != nil {
		return err
	}
	var (
		x X
		y Y
		z Z
	)
	if err := p.safeInvoke(func() (blockErr error) {
		x, y, z, blockErr = p.block(a, b, c)
		return blockErr
	}); err != nil {
		return err
	}
	if err := emit(ctx, p.base, p.out1, "out1", x); err != nil {
		return err
	}
	if err := emit(ctx, p.base, p.out2, "out2", y); err != nil {
		return err
	}
	return emit(ctx, p.base, p.out3, "out3", z)
}
