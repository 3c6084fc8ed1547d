// Package config provides configuration types for the inspection runtime.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	inserrors "github.com/wagiedev/nmz-inspector-go/internal/errors"
)

// Environment variables read at process start.
const (
	EnvDisable          = "NMZ_DISABLE"
	EnvProcessID        = "NMZ_ENV_PROCESS_ID"
	EnvRelayPort        = "NMZ_GA_TCP_PORT"
	EnvDirectMode       = "NMZ_MODE_DIRECT"
	EnvOrchestratorAddr = "NMZ_ORCHESTRATOR_ADDR"
	EnvExitTimeout      = "NMZ_EXIT_TIMEOUT"
	EnvLogLevel         = "NMZ_LOG_LEVEL"
)

const (
	// DefaultRelayPort is the local port used when NMZ_GA_TCP_PORT is unset.
	DefaultRelayPort = 10000
)

var errRequired = errors.New("required but not set")

// Config is the startup configuration of the runtime.
type Config struct {
	// Disabled makes the runtime never connect; every report is a no-op.
	Disabled bool

	// ProcessID is the logical identifier included in every request.
	ProcessID string

	// RelayPort is the local port to connect to. In relay mode the guest
	// agent listens on it, in direct mode the orchestrator does. Zero means
	// DefaultRelayPort.
	RelayPort int

	// Direct connects straight to the orchestrator instead of the relay.
	Direct bool

	// OrchestratorAddr overrides localhost:RelayPort in direct mode.
	OrchestratorAddr string

	// ExitTimeout bounds the wait for a decision on the EXIT event.
	// Zero waits until ACK, END or disconnect.
	ExitTimeout time.Duration

	// LogLevel enables stderr logging when no logger is injected. Nil keeps
	// the runtime silent.
	LogLevel *slog.Level
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromEnv reads the configuration from the process environment.
func FromEnv() (*Config, error) {
	return Load(os.LookupEnv)
}

// Load reads the configuration through lookup.
//
// When NMZ_DISABLE is set nothing else is validated.
func Load(lookup LookupFunc) (*Config, error) {
	cfg := &Config{
		RelayPort: DefaultRelayPort,
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		level, err := parseLevel(v)
		if err != nil {
			return nil, &inserrors.ConfigError{Var: EnvLogLevel, Err: err}
		}

		cfg.LogLevel = &level
	}

	if _, ok := lookup(EnvDisable); ok {
		cfg.Disabled = true

		return cfg, nil
	}

	processID, ok := lookup(EnvProcessID)
	if !ok || processID == "" {
		return nil, &inserrors.ConfigError{Var: EnvProcessID, Err: errRequired}
	}

	cfg.ProcessID = processID

	if v, ok := lookup(EnvRelayPort); ok && v != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, &inserrors.ConfigError{Var: EnvRelayPort, Err: err}
		}

		if port <= 0 || port > 65535 {
			return nil, &inserrors.ConfigError{Var: EnvRelayPort, Err: fmt.Errorf("port %d out of range", port)}
		}

		cfg.RelayPort = port
	}

	if _, ok := lookup(EnvDirectMode); ok {
		cfg.Direct = true
	}

	if v, ok := lookup(EnvOrchestratorAddr); ok && v != "" {
		if _, _, err := net.SplitHostPort(v); err != nil {
			return nil, &inserrors.ConfigError{Var: EnvOrchestratorAddr, Err: err}
		}

		cfg.OrchestratorAddr = v
	}

	if v, ok := lookup(EnvExitTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, &inserrors.ConfigError{Var: EnvExitTimeout, Err: err}
		}

		cfg.ExitTimeout = d
	}

	return cfg, nil
}

// Validate checks a programmatically built configuration.
func (c *Config) Validate() error {
	if c.Disabled {
		return nil
	}

	if c.ProcessID == "" {
		return &inserrors.ConfigError{Var: EnvProcessID, Err: errRequired}
	}

	if c.RelayPort < 0 || c.RelayPort > 65535 {
		return &inserrors.ConfigError{Var: EnvRelayPort, Err: fmt.Errorf("port %d out of range", c.RelayPort)}
	}

	return nil
}

// Addr returns the TCP destination, localhost:RelayPort in both modes. In
// direct mode an explicit OrchestratorAddr wins over the port.
func (c *Config) Addr() string {
	if c.Direct && c.OrchestratorAddr != "" {
		return c.OrchestratorAddr
	}

	port := c.RelayPort
	if port == 0 {
		port = DefaultRelayPort
	}

	return net.JoinHostPort("localhost", strconv.Itoa(port))
}

// Mode names the connection mode for logging.
func (c *Config) Mode() string {
	if c.Direct {
		return "direct"
	}

	return "relay"
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}

	return level, nil
}
