package inspector

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestConfigError_Creation tests ConfigError creation and formatting.
func TestConfigError_Creation(t *testing.T) {
	err := &ConfigError{Var: "NMZ_ENV_PROCESS_ID", Err: fmt.Errorf("required but not set")}

	require.Contains(t, err.Error(), "NMZ_ENV_PROCESS_ID")
	require.Contains(t, err.Error(), "required but not set")
}

// TestConnectionError_Unwrap tests that ConnectionError exposes its cause.
func TestConnectionError_Unwrap(t *testing.T) {
	err := &ConnectionError{Addr: "localhost:10000", Op: "read", Err: io.ErrUnexpectedEOF}

	require.Contains(t, err.Error(), "localhost:10000")
	require.Contains(t, err.Error(), "read")
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

// TestProtocolError_Unwrap tests sentinel matching through ProtocolError.
func TestProtocolError_Unwrap(t *testing.T) {
	err := fmt.Errorf("dispatch: %w", &ProtocolError{MsgID: 99, Err: ErrUnknownMsgID})

	require.ErrorIs(t, err, ErrUnknownMsgID)

	protoErr, ok := errors.AsType[*ProtocolError](err)
	require.True(t, ok)
	require.Equal(t, int32(99), protoErr.MsgID)
	require.Contains(t, err.Error(), "msg_id=99")
}

// TestHandshakeError_DefaultsToRejected tests the rejection sentinel.
func TestHandshakeError_DefaultsToRejected(t *testing.T) {
	err := &HandshakeError{ProcessID: "p1", Result: 1}

	require.ErrorIs(t, err, ErrHandshakeRejected)
	require.Contains(t, err.Error(), "p1")
}

// TestErrorTypes_ImplementInspectorError tests the base interface.
func TestErrorTypes_ImplementInspectorError(t *testing.T) {
	errs := []error{
		&ConfigError{},
		&ConnectionError{},
		&ProtocolError{},
		&HandshakeError{},
	}

	for _, err := range errs {
		inspectorErr, ok := err.(InspectorError)
		require.True(t, ok, "%T", err)
		require.True(t, inspectorErr.IsInspectorError())
	}
}
