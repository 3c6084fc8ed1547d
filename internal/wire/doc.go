// Package wire implements the inspector message model and its framing.
//
// Every message on the connection is a frame: a 4-byte little-endian length
// followed by that many bytes of a protobuf-encoded Request (runtime to
// orchestrator) or Response (orchestrator to runtime).
//
// Request fields:
//
//	1 type        varint  (0 EVENT, 1 INITIATION)
//	2 process_id  bytes
//	3 pid         varint
//	4 tid         varint
//	5 msg_id      varint
//	6 event       message { 1 type, 2 func_call{1 name}, 3 func_return{1 name}, 4 exit{1 exit_code} }
//	7 initiation  message { 1 process_id }
//
// Response fields:
//
//	1 result      varint  (0 ACK, 1 END)
//	2 msg_id      varint
//	3 ga_msg_id   varint  (relay bookkeeping, opaque to the runtime)
//
// Unknown fields are skipped on decode.
package wire
