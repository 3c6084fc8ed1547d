// Package protocol implements event correlation between reporting goroutines
// and the orchestrator.
//
// The protocol package provides a Controller that owns the read side of the
// connection and a Registry that maps outstanding message IDs to the waiter
// of the goroutine that sent them. Any number of goroutines may report events
// concurrently; responses are routed by message ID, not by arrival order.
//
// The Controller handles:
//   - The synchronous initiation handshake (msg_id 0)
//   - Allocating message IDs and registering waiters before sending
//   - Waking the matching waiter on ACK
//   - Releasing every waiter and going inactive on END
//   - Treating protocol violations and connection failures as fatal
//
// Example usage:
//
//	ctrl := protocol.NewController(log, transport, identity, m, onFatal)
//	if err := ctrl.Handshake(); err != nil {
//	    return err
//	}
//	ctrl.Start()
//
//	// Blocks until the orchestrator ACKs or ends inspection
//	ctrl.Report(wire.FuncCallEvent("Write"), pool.Current())
package protocol
