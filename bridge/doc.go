// Package bridge connects flow graphs to NATS subjects at the graph
// boundary.
//
// A flow graph runs inside one process; bridge runtimes are the explicit
// opt-in points where values cross that boundary. Ingress subscribes a
// subject, decodes each message, and feeds the decoded values into a wired
// output conduit. Egress receives values from a wired input conduit, encodes
// them, and publishes to a subject. Both implement runtime.Runtime, so a
// Registry manages them like any other node:
//
//	ingress, err := bridge.NewIngress[Telemetry]("telemetry-in", "flow.telemetry", client)
//	if err != nil {
//	    return err
//	}
//	ingress.SetOutput(conduit)
//	reg.Register(ingress)
//
//	egress, err := bridge.NewEgress[Alert]("alerts-out", "flow.alerts", client)
//	if err != nil {
//	    return err
//	}
//	egress.SetInput(alertConduit)
//	reg.Register(egress)
//
// The default codec is JSON; WithDecoder and WithEncoder install custom
// codecs for other wire formats.
//
// # Delivery semantics
//
// Ingress buffers raw messages in a fixed-capacity inbox with a drop-oldest
// overflow policy, so a slow graph sheds the oldest data instead of stalling
// the NATS dispatch goroutine. Messages that arrive while the ingress is
// stopped, fail to decode, or find no wired output conduit are dropped and
// counted, never faulted. Stopping an ingress closes its output conduit, so
// downstream runtimes observe a normal end of stream.
//
// Egress publishes one value at a time on a single goroutine, preserving the
// conduit's FIFO order. Transient publish failures are retried with bounded
// exponential backoff; exhausting the retries is a fault that stops the
// egress and surfaces through Err. Closure of the upstream conduit ends the
// egress cleanly with no error.
//
// Neither runtime alters the semantics inside the graph: conduits stay
// single-producer single-consumer, and a bridge is just another node wired
// to one of them.
package bridge
