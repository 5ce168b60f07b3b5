package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/dhaukoos/CodeNodeIO-sub010/flow"
	"github.com/dhaukoos/CodeNodeIO-sub010/pkg/security"
)

// Config is the full flowrunner configuration
type Config struct {
	Version  string          `json:"version"`
	Logging  LoggingConfig   `json:"logging"`
	Metrics  MetricsConfig   `json:"metrics"`
	Monitor  MonitorConfig   `json:"monitor"`
	NATS     NATSConfig      `json:"nats"`
	Graph    GraphConfig     `json:"graph"`
	Security security.Config `json:"security,omitempty"`
}

// LoggingConfig controls the slog handler
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // text, json
}

// MetricsConfig controls the Prometheus metrics server
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port"`
	Path    string `json:"path"`
}

// MonitorConfig controls the graph monitor HTTP/WebSocket server
type MonitorConfig struct {
	Enabled  bool          `json:"enabled"`
	Port     int           `json:"port"`
	WSPath   string        `json:"ws_path"`
	Interval time.Duration `json:"interval"` // state broadcast period
}

// NATSConfig holds NATS connection settings for the threshold egress
type NATSConfig struct {
	Enabled       bool          `json:"enabled"`
	URLs          []string      `json:"urls"`
	Subject       string        `json:"subject"`
	MaxReconnects int           `json:"max_reconnects"` // -1 = unlimited
	ReconnectWait time.Duration `json:"reconnect_wait"`
	Username      string        `json:"username,omitempty"`
	Password      string        `json:"password,omitempty"`
	Token         string        `json:"token,omitempty"`
}

// GraphConfig holds tuning for the demo flow graph
type GraphConfig struct {
	ClockInterval   time.Duration `json:"clock_interval"`
	CounterInterval time.Duration `json:"counter_interval"`
	Threshold       int           `json:"threshold"`
	ConduitCapacity int           `json:"conduit_capacity"` // -1 = unbounded, 0 = rendezvous
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if c.Version == "" {
		return errors.New("version is required")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not valid (must be debug, info, warn, or error)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not valid (must be text or json)", c.Logging.Format)
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port %d is out of range", c.Metrics.Port)
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("metrics.path %q must start with /", c.Metrics.Path)
		}
	}

	if c.Monitor.Enabled {
		if c.Monitor.Port < 1 || c.Monitor.Port > 65535 {
			return fmt.Errorf("monitor.port %d is out of range", c.Monitor.Port)
		}
		if !strings.HasPrefix(c.Monitor.WSPath, "/") {
			return fmt.Errorf("monitor.ws_path %q must start with /", c.Monitor.WSPath)
		}
		if c.Monitor.Interval <= 0 {
			return errors.New("monitor.interval must be positive")
		}
	}

	if c.Metrics.Enabled && c.Monitor.Enabled && c.Metrics.Port == c.Monitor.Port {
		return fmt.Errorf("metrics.port and monitor.port must differ (both %d)", c.Metrics.Port)
	}

	if c.NATS.Enabled {
		if len(c.NATS.URLs) == 0 {
			return errors.New("nats.urls is required when NATS is enabled")
		}
		for i, url := range c.NATS.URLs {
			if url == "" {
				return fmt.Errorf("nats.urls[%d] is empty", i)
			}
		}
		if !isValidNATSSubject(c.NATS.Subject) {
			return fmt.Errorf(
				"nats.subject %q is not a valid publish subject (alphanumeric tokens with dashes and underscores, separated by dots)",
				c.NATS.Subject,
			)
		}
		if c.NATS.MaxReconnects < -1 {
			return fmt.Errorf("nats.max_reconnects %d is not valid (-1 = unlimited)", c.NATS.MaxReconnects)
		}
		if c.NATS.ReconnectWait < 0 {
			return errors.New("nats.reconnect_wait must not be negative")
		}
	}

	if c.Graph.ClockInterval <= 0 {
		return errors.New("graph.clock_interval must be positive")
	}
	if c.Graph.CounterInterval <= 0 {
		return errors.New("graph.counter_interval must be positive")
	}
	if c.Graph.Threshold < 1 {
		return fmt.Errorf("graph.threshold %d must be positive", c.Graph.Threshold)
	}
	if c.Graph.ConduitCapacity < flow.Unbounded {
		return fmt.Errorf("graph.conduit_capacity %d is not valid (-1 = unbounded, 0 = rendezvous)", c.Graph.ConduitCapacity)
	}

	if err := c.validateSecurity(); err != nil {
		return fmt.Errorf("security configuration: %w", err)
	}

	return nil
}

// isValidNATSSubject checks a publish subject: dot-separated tokens of
// letters, digits, dashes, and underscores. Wildcards are rejected because
// the egress publishes to this subject.
func isValidNATSSubject(subject string) bool {
	if subject == "" {
		return false
	}
	for _, part := range strings.Split(subject, ".") {
		if len(part) == 0 {
			return false
		}
		for _, r := range part {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
				return false
			}
		}
	}
	return true
}

// validateSecurity validates the security configuration
func (c *Config) validateSecurity() error {
	if c.Security.TLS.Server.Enabled {
		if c.Security.TLS.Server.CertFile == "" {
			return errors.New("tls.server.cert_file is required when TLS is enabled")
		}
		if c.Security.TLS.Server.KeyFile == "" {
			return errors.New("tls.server.key_file is required when TLS is enabled")
		}
		if _, err := os.Stat(c.Security.TLS.Server.CertFile); err != nil {
			return fmt.Errorf("tls.server.cert_file: %w", err)
		}
		if _, err := os.Stat(c.Security.TLS.Server.KeyFile); err != nil {
			return fmt.Errorf("tls.server.key_file: %w", err)
		}
		if c.Security.TLS.Server.MinVersion != "" {
			if err := validateTLSVersion(c.Security.TLS.Server.MinVersion); err != nil {
				return fmt.Errorf("tls.server.min_version: %w", err)
			}
		}
	}

	for i, caFile := range c.Security.TLS.Client.CAFiles {
		if _, err := os.Stat(caFile); err != nil {
			return fmt.Errorf("tls.client.ca_files[%d]: %w", i, err)
		}
	}

	if c.Security.TLS.Client.InsecureSkipVerify {
		_, _ = fmt.Fprintf(
			os.Stderr,
			"WARNING: TLS certificate verification is disabled (insecure_skip_verify=true). This should only be used in development/testing!\n",
		)
	}

	if c.Security.TLS.Client.MinVersion != "" {
		if err := validateTLSVersion(c.Security.TLS.Client.MinVersion); err != nil {
			return fmt.Errorf("tls.client.min_version: %w", err)
		}
	}

	return nil
}

// validateTLSVersion checks if a TLS version string is valid
func validateTLSVersion(version string) error {
	switch version {
	case "1.2", "1.3":
		return nil
	default:
		return fmt.Errorf("invalid TLS version %q (must be \"1.2\" or \"1.3\")", version)
	}
}

// setDuration assigns a JSON duration value that may be a Go duration
// string ("500ms") or a raw nanosecond number. Nil leaves dst untouched.
func setDuration(dst *time.Duration, raw any, field string) error {
	switch v := raw.(type) {
	case nil:
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		*dst = d
	case float64:
		*dst = time.Duration(v)
	default:
		return fmt.Errorf("%s: unsupported duration type %T", field, raw)
	}
	return nil
}

// UnmarshalJSON implements custom JSON unmarshaling for MonitorConfig
func (m *MonitorConfig) UnmarshalJSON(data []byte) error {
	type Alias MonitorConfig
	aux := &struct {
		Interval any `json:"interval"`
		*Alias
	}{
		Alias: (*Alias)(m),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	return setDuration(&m.Interval, aux.Interval, "monitor.interval")
}

// UnmarshalJSON implements custom JSON unmarshaling for NATSConfig
func (n *NATSConfig) UnmarshalJSON(data []byte) error {
	type Alias NATSConfig
	aux := &struct {
		ReconnectWait any `json:"reconnect_wait"`
		*Alias
	}{
		Alias: (*Alias)(n),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	return setDuration(&n.ReconnectWait, aux.ReconnectWait, "nats.reconnect_wait")
}

// UnmarshalJSON implements custom JSON unmarshaling for GraphConfig
func (g *GraphConfig) UnmarshalJSON(data []byte) error {
	type Alias GraphConfig
	aux := &struct {
		ClockInterval   any `json:"clock_interval"`
		CounterInterval any `json:"counter_interval"`
		*Alias
	}{
		Alias: (*Alias)(g),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if err := setDuration(&g.ClockInterval, aux.ClockInterval, "graph.clock_interval"); err != nil {
		return err
	}
	return setDuration(&g.CounterInterval, aux.CounterInterval, "graph.counter_interval")
}

// SaveToFile saves the configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return safeWriteFile(path, data)
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
