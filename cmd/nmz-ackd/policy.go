package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Policy decides how each runtime connection is answered.
type Policy struct {
	// Listen is the TCP address to accept runtimes on.
	Listen string `yaml:"listen"`

	// EndAfter sends END once a connection has reported this many
	// FUNC_CALL events. Zero never ends inspection.
	EndAfter int `yaml:"end_after"`

	// AckDelay is slept before each ACK.
	AckDelay time.Duration `yaml:"ack_delay"`
}

const defaultListen = "127.0.0.1:10000"

func defaultPolicy() Policy {
	return Policy{Listen: defaultListen}
}

// loadPolicy overlays the YAML file at path on p.
func loadPolicy(path string, p Policy) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy: %w", err)
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse policy %s: %w", path, err)
	}

	return p, p.validate()
}

func (p Policy) validate() error {
	if p.Listen == "" {
		return errors.New("listen address must not be empty")
	}

	if p.EndAfter < 0 {
		return fmt.Errorf("end_after must not be negative, got %d", p.EndAfter)
	}

	if p.AckDelay < 0 {
		return fmt.Errorf("ack_delay must not be negative, got %s", p.AckDelay)
	}

	return nil
}
