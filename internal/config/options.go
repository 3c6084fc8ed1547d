package config

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// FatalHandler receives errors the runtime cannot recover from. The default
// handler logs the error and terminates the process.
type FatalHandler func(err error)

// Options configures a Runtime.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled unless Config.LogLevel is set.
	Logger *slog.Logger

	// Config overrides the environment. If nil, the configuration is read
	// with FromEnv.
	Config *Config

	// Transport is a pre-connected transport. If nil, the runtime dials
	// Config.Addr().
	Transport Transport

	// FatalHandler overrides process termination on fatal errors.
	FatalHandler FatalHandler

	// MetricsRegisterer receives the runtime collectors. If nil, the
	// collectors are created but not registered.
	MetricsRegisterer prometheus.Registerer
}
