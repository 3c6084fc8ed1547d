package inspector

import "github.com/wagiedev/nmz-inspector-go/internal/errors"

// Re-export error types from internal package

// ConfigError indicates the startup configuration is missing or invalid.
type ConfigError = errors.ConfigError

// ConnectionError indicates the orchestrator could not be reached or the
// connection failed after it was established.
type ConnectionError = errors.ConnectionError

// ProtocolError indicates the orchestrator sent something the runtime cannot
// pair with an outstanding request.
type ProtocolError = errors.ProtocolError

// HandshakeError indicates the initiation request was not acknowledged.
type HandshakeError = errors.HandshakeError

// InspectorError is the base interface for all runtime errors.
type InspectorError = errors.InspectorError

// Re-export sentinel errors from internal package.
var (
	// ErrRuntimeInactive indicates inspection has ended or was disabled.
	ErrRuntimeInactive = errors.ErrRuntimeInactive

	// ErrRuntimeClosed indicates the runtime connection has been closed.
	ErrRuntimeClosed = errors.ErrRuntimeClosed

	// ErrUnknownMsgID indicates the orchestrator acknowledged a message that is not outstanding.
	ErrUnknownMsgID = errors.ErrUnknownMsgID

	// ErrUnexpectedResult indicates a response carried an unknown result code.
	ErrUnexpectedResult = errors.ErrUnexpectedResult

	// ErrFrameTooLarge indicates a frame exceeded the size limit.
	ErrFrameTooLarge = errors.ErrFrameTooLarge

	// ErrMalformedFrame indicates a frame body could not be decoded.
	ErrMalformedFrame = errors.ErrMalformedFrame

	// ErrWaitTimeout indicates the bounded wait on EXIT expired.
	ErrWaitTimeout = errors.ErrWaitTimeout

	// ErrAlreadyInitialized indicates Init was called more than once.
	ErrAlreadyInitialized = errors.ErrAlreadyInitialized

	// ErrHandshakeRejected indicates the orchestrator did not ACK the initiation request.
	ErrHandshakeRejected = errors.ErrHandshakeRejected
)
