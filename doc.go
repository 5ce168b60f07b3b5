// Package flowruntime is a flow-based-programming execution runtime: typed
// graphs of independent nodes connected point-to-point by conduits, driven
// by a shared three-state lifecycle.
//
// # Model
//
// A flow graph is a set of runtimes (nodes) wired together by conduits
// (edges). Each runtime owns one goroutine loop that receives from its
// input conduits, invokes a plain Go function (its block), and sends to its
// output conduits. Nodes never share state; every value travels through a
// conduit.
//
//	generator -> processor -> sink
//
// Conduits are typed, single-producer single-consumer, and FIFO. Capacity
// selects the wiring policy:
//   - 0: rendezvous, Send suspends until Receive is ready
//   - N > 0: bounded buffer of N values
//   - flow.Unbounded: elastic buffer, Send never suspends
//
// Closing a conduit is the graceful end-of-stream: buffered values drain
// first, then receivers observe closure (ok == false) and wind down.
// Cancellation is the forced path and is never treated as a fault.
//
// # Lifecycle
//
// Every runtime moves through three states: idle, running, paused. Start
// launches the loop, Pause parks it between ticks, Resume releases it, Stop
// cancels in-flight operations and waits (bounded) for the loop to exit,
// Reset stops and restores initial block state. Illegal transitions are
// no-ops. A block error ends the loop, closes the outputs, and parks the
// runtime back in idle with the fault retained on Err.
//
// # Packages
//
//	flow/        Typed conduits (rendezvous, bounded, elastic).
//	runtime/     State machine, generator/processor/sink/filter families, Registry.
//	blocks/      Stock blocks: clock, counter, arithmetic, filters.
//	errors/      Classified errors (transient / invalid / fatal).
//	metric/      Prometheus registry and exposition server.
//	health/      Health snapshots and aggregation.
//	natsclient/  Managed NATS connection with reconnect and circuit breaker.
//	bridge/      Graph-boundary ingress/egress runtimes over NATS.
//	service/     Live state monitor: HTTP endpoints + WebSocket stream.
//	config/      JSON file configuration for the reference binary.
//	cmd/flowrunner/  Reference orchestrator binary.
//
// # Quickstart
//
// Build a two-node graph, run it, stop it:
//
//	counterBlock, _ := blocks.Counter()
//	counter := runtime.NewTimedGenerator1("counter", time.Second, counterBlock)
//	printer := runtime.NewSink1("printer", func(n int) error {
//		fmt.Println(n)
//		return nil
//	})
//
//	pipe, err := flow.New[int](8)
//	if err != nil {
//		log.Fatal(err)
//	}
//	counter.SetOutput(pipe)
//	printer.SetInput(pipe)
//
//	registry := runtime.NewRegistry()
//	registry.Register(counter)
//	registry.Register(printer)
//
//	ctx := context.Background()
//	if err := registry.StartAll(ctx); err != nil {
//		log.Fatal(err)
//	}
//	time.Sleep(5 * time.Second)
//	_ = registry.StopAll(10 * time.Second)
//
// Stopping a generator closes its output conduit; downstream nodes drain
// what is buffered and exit on closure, so a graph shuts down front to
// back without losing accepted values.
//
// # Boundary
//
// A graph is in-process by construction. Crossing a process boundary is
// explicit: bridge.Egress receives from a conduit and publishes to NATS,
// bridge.Ingress subscribes and feeds a conduit. Both are ordinary
// runtimes under the same registry and lifecycle.
//
// # Observation
//
// Every runtime, conduit, and registry can export Prometheus metrics via
// metric.MetricsRegistry; metric.Server exposes them. service.Monitor
// serves runtime states and aggregated health over HTTP and pushes
// periodic state snapshots to WebSocket clients.
//
// # Binary
//
// cmd/flowrunner runs a reference graph (a clock display branch and a
// counter/threshold alert branch) from a JSON config file with environment
// overrides, and wires the metrics server, the monitor, and an optional
// NATS alert egress. See config for the file format.
package flowruntime
