package inspector

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wagiedev/nmz-inspector-go/internal/config"
)

// Config is the startup configuration of the runtime.
type Config = config.Config

// Transport carries framed requests and responses to the orchestrator.
type Transport = config.Transport

// FatalHandler receives errors the runtime cannot recover from.
type FatalHandler = config.FatalHandler

// Options configures a Runtime.
type Options = config.Options

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to an Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled unless NMZ_LOG_LEVEL is set.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithConfig uses cfg instead of reading the environment.
func WithConfig(cfg *Config) Option {
	return func(o *Options) {
		o.Config = cfg
	}
}

// WithTransport uses a pre-connected transport instead of dialing.
// The runtime takes ownership and closes it.
func WithTransport(t Transport) Option {
	return func(o *Options) {
		o.Transport = t
	}
}

// WithFatalHandler replaces process termination on fatal errors.
//
// The handler runs after every blocked goroutine has been released and the
// runtime has gone inactive. It is called at most once and must not call
// Close or Exit.
func WithFatalHandler(fn FatalHandler) Option {
	return func(o *Options) {
		o.FatalHandler = fn
	}
}

// WithMetricsRegisterer registers the runtime's Prometheus collectors with reg.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *Options) {
		o.MetricsRegisterer = reg
	}
}
