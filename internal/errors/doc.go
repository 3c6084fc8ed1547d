// Package errors defines error types for the inspection runtime.
//
// This package provides structured error types for the failure classes the
// runtime distinguishes: configuration, connection, protocol violation and
// handshake rejection. All error types support error unwrapping and can be
// checked using errors.Is, errors.As, and errors.AsType.
package errors
