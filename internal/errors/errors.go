package errors

import (
	"errors"
	"fmt"
)

// InspectorError is the base interface for all runtime errors.
type InspectorError interface {
	error
	IsInspectorError() bool
}

// Compile-time verification that all error types implement InspectorError.
var (
	_ InspectorError = (*ConfigError)(nil)
	_ InspectorError = (*ConnectionError)(nil)
	_ InspectorError = (*ProtocolError)(nil)
	_ InspectorError = (*HandshakeError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrRuntimeInactive indicates inspection has ended or was disabled.
	ErrRuntimeInactive = errors.New("inspection runtime inactive")

	// ErrRuntimeClosed indicates the runtime connection has been closed.
	ErrRuntimeClosed = errors.New("inspection runtime closed")

	// ErrAlreadyRegistered indicates a waiter or message ID is already outstanding.
	ErrAlreadyRegistered = errors.New("waiter already registered")

	// ErrUnknownMsgID indicates the orchestrator acknowledged a message that is not outstanding.
	ErrUnknownMsgID = errors.New("acknowledgment for unknown message ID")

	// ErrUnexpectedResult indicates a response carried a result code the runtime does not handle.
	ErrUnexpectedResult = errors.New("unexpected response result")

	// ErrFrameTooLarge indicates a frame header announced a body above the size limit.
	ErrFrameTooLarge = errors.New("frame too large")

	// ErrMalformedFrame indicates a frame body could not be decoded.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrWaitTimeout indicates a bounded wait for a decision expired.
	ErrWaitTimeout = errors.New("timed out waiting for orchestrator decision")

	// ErrAlreadyInitialized indicates the process-wide runtime was already installed.
	ErrAlreadyInitialized = errors.New("inspection runtime already initialized")

	// ErrHandshakeRejected indicates the orchestrator did not ACK the initiation request.
	ErrHandshakeRejected = errors.New("handshake rejected")
)

// ConfigError indicates the startup configuration is missing or invalid.
type ConfigError struct {
	Var string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %v", e.Var, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsInspectorError implements InspectorError.
func (e *ConfigError) IsInspectorError() bool { return true }

// ConnectionError indicates the channel to the orchestrator failed.
type ConnectionError struct {
	Addr string
	Op   string
	Err  error
}

func (e *ConnectionError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("connection to %s failed: %v", e.Addr, e.Err)
	}

	return fmt.Sprintf("connection to %s failed (%s): %v", e.Addr, e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsInspectorError implements InspectorError.
func (e *ConnectionError) IsInspectorError() bool { return true }

// ProtocolError indicates the orchestrator violated the wire protocol.
type ProtocolError struct {
	MsgID  int32
	Result int32
	Err    error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol violation (msg_id=%d result=%d): %v", e.MsgID, e.Result, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsInspectorError implements InspectorError.
func (e *ProtocolError) IsInspectorError() bool { return true }

// HandshakeError indicates the initiation exchange did not succeed.
type HandshakeError struct {
	ProcessID string
	Result    int32
	Err       error
}

func (e *HandshakeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("initiation of process %q failed: %v", e.ProcessID, e.Err)
	}

	return fmt.Sprintf("initiation of process %q rejected (result=%d)", e.ProcessID, e.Result)
}

func (e *HandshakeError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}

	return ErrHandshakeRejected
}

// IsInspectorError implements InspectorError.
func (e *HandshakeError) IsInspectorError() bool { return true }
