// Package peer implements the orchestrator side of the inspection protocol.
//
// It is deliberately minimal: it accepts runtime connections, completes the
// initiation handshake and lets the caller answer each event with ACK or END.
// Scheduling policy belongs to the caller.
package peer
