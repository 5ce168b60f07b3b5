// Package runtime executes flow graph nodes as independent control jobs
// connected by typed conduits.
//
// Each node of a flow graph is wrapped in a runtime: a generically typed
// shape (generator, processor, sink, or filter) that owns one goroutine,
// gathers one value per wired input, applies the node's tick block, and
// emits the results. Fifteen shapes cover every arity from zero to three
// inputs and outputs; the type parameters make miswired graphs fail at
// compile time rather than at run time.
//
// # Lifecycle
//
// A runtime is always in one of three states:
//
//	StateIdle    - no control job; the initial and terminal state
//	StateRunning - control job executing ticks
//	StatePaused  - control job parked at an iteration boundary
//
// Start launches the control job, Pause and Resume gate it, and Stop ends
// it. Lifecycle calls from illegal states are no-ops rather than errors, so
// supervisors can broadcast blindly:
//
//	gen := runtime.NewTimedGenerator1("clock", time.Second, tickBlock)
//	gen.SetOutput(out)
//
//	if err := gen.Start(ctx); err != nil {
//	    return err
//	}
//	gen.Pause()  // accumulators preserved, no channel I/O
//	gen.Resume()
//	if err := gen.Stop(5 * time.Second); err != nil {
//	    return err // stop timed out; the job is still winding down
//	}
//
// # Execution modes
//
// Continuous runtimes tick as fast as conduit backpressure allows; the
// conduit rendezvous is the scheduler. Timed runtimes (generators and
// processors) wait a fixed interval before each tick and re-check their
// state on wake, so a pause or stop during the wait takes effect before
// the next tick.
//
// # Shutdown and failure
//
// Stopping a runtime closes its wired output conduits after the in-flight
// tick. Downstream runtimes observe closure as end of stream, finish
// cleanly, and close their own outputs, so shutdown propagates through the
// graph without any central coordination. Cancellation of the Start context
// interrupts suspended channel operations the same way.
//
// A non-nil tick block error is fatal to its runtime: the loop stops, the
// error is retained for Err, and outputs close so downstream runtimes wind
// down. Block panics are recovered into the same path.
//
// # Registry
//
// Registry tracks the runtimes of one graph instance and broadcasts
// lifecycle operations:
//
//	reg := runtime.NewRegistry()
//	reg.Register(gen)
//	reg.Register(sink)
//	if err := reg.StartAll(ctx); err != nil {
//	    return err
//	}
//	defer reg.StopAll(5 * time.Second)
//
// Registries are per graph instance, never global, so independent graphs
// can run side by side in one process.
package runtime
