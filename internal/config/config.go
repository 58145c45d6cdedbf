// Package config loads kvmctl's YAML configuration files: the tool
// configuration (transport, stop policy, logging), domain definitions for
// `gen conf` and guest definitions for `seed`.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"gopkg.in/yaml.v3"
)

// Transport names.
const (
	TransportLocal = "local"
	TransportSSH   = "ssh"
)

// Defaults applied by Normalize.
const (
	DefaultSSHPort      = 22
	DefaultStopTimeout  = 30 * time.Second
	DefaultStopInterval = time.Second
)

// Config is the kvmctl tool configuration.
type Config struct {
	Transport     string     `yaml:"transport"`
	SSH           SSHConfig  `yaml:"ssh,omitempty"`
	Stop          StopConfig `yaml:"stop,omitempty"`
	IgnoreOptions []string   `yaml:"ignore_options,omitempty"`
	Log           LogConfig  `yaml:"log,omitempty"`
}

// SSHConfig selects the remote host when Transport is "ssh".
type SSHConfig struct {
	Host       string `yaml:"host"`
	User       string `yaml:"user"`
	Port       int    `yaml:"port,omitempty"`
	PrivateKey string `yaml:"private_key,omitempty"` // Path to a private key file
}

// StopConfig holds the default graceful-stop policy.
type StopConfig struct {
	Timeout  time.Duration `yaml:"timeout,omitempty"`
	Interval time.Duration `yaml:"interval,omitempty"`
	Force    bool          `yaml:"force,omitempty"`
}

// LogConfig controls the logger built by the logging package.
type LogConfig struct {
	Development bool `yaml:"development,omitempty"`
	Verbose     bool `yaml:"verbose,omitempty"`
}

// Default returns a normalized configuration for the local host.
func Default() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Normalize sanitizes user input and fills in defaults.
// Called by Load before validation.
func (c *Config) Normalize() {
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	if c.Transport == "" {
		c.Transport = TransportLocal
	}

	c.SSH.Host = strings.TrimSpace(c.SSH.Host)
	c.SSH.User = strings.TrimSpace(c.SSH.User)
	if c.SSH.Port == 0 {
		c.SSH.Port = DefaultSSHPort
	}

	if c.Stop.Timeout == 0 {
		c.Stop.Timeout = DefaultStopTimeout
	}
	if c.Stop.Interval == 0 {
		c.Stop.Interval = DefaultStopInterval
	}

	ignored := c.IgnoreOptions[:0]
	for _, name := range c.IgnoreOptions {
		if name = strings.TrimSpace(name); name != "" {
			ignored = append(ignored, name)
		}
	}
	c.IgnoreOptions = ignored
}

// Validate checks the configuration for errors.
// The private key, when set, must exist and parse.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportLocal:
	case TransportSSH:
		if err := c.SSH.Validate(); err != nil {
			return fmt.Errorf("ssh: %w", err)
		}
	default:
		return fmt.Errorf("transport must be %q or %q, got %q", TransportLocal, TransportSSH, c.Transport)
	}

	if c.Stop.Timeout < 0 {
		return fmt.Errorf("stop: timeout must be >= 0, got %s", c.Stop.Timeout)
	}
	if c.Stop.Interval <= 0 {
		return fmt.Errorf("stop: interval must be > 0, got %s", c.Stop.Interval)
	}

	return nil
}

// Validate checks the remote host settings.
func (s *SSHConfig) Validate() error {
	if s.Host == "" {
		return fmt.Errorf("host is required")
	}
	if s.User == "" {
		return fmt.Errorf("user is required")
	}
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}

	if s.PrivateKey != "" {
		data, err := os.ReadFile(s.PrivateKey)
		if err != nil {
			return fmt.Errorf("failed to read private_key: %w", err)
		}
		if _, err := ssh.ParsePrivateKey(data); err != nil {
			return fmt.Errorf("private_key %q is not a usable SSH private key: %w", s.PrivateKey, err)
		}
	}

	return nil
}

// Address returns the host:port dial address.
func (s *SSHConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ParseSSHTarget parses "user@host[:port]" into an SSHConfig.
func ParseSSHTarget(target string) (SSHConfig, error) {
	user, hostPort, ok := strings.Cut(strings.TrimSpace(target), "@")
	if !ok || user == "" || hostPort == "" {
		return SSHConfig{}, fmt.Errorf("invalid ssh target %q: expected user@host[:port]", target)
	}

	cfg := SSHConfig{User: user, Host: hostPort, Port: DefaultSSHPort}
	if host, port, err := net.SplitHostPort(hostPort); err == nil {
		n, err := strconv.Atoi(port)
		if err != nil {
			return SSHConfig{}, fmt.Errorf("invalid ssh port %q: %w", port, err)
		}
		cfg.Host = host
		cfg.Port = n
	}
	if cfg.Host == "" {
		return SSHConfig{}, fmt.Errorf("invalid ssh target %q: host is empty", target)
	}

	return cfg, nil
}

// Load reads the tool configuration from a YAML file.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := readYAML(path, &cfg); err != nil {
		return nil, err
	}

	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}
