package libvirt

import (
	"context"
	"fmt"
	"time"

	"github.com/digitalocean/go-libvirt"
	"github.com/digitalocean/go-libvirt/socket/dialers"
)

// Connection defaults.
const (
	DefaultSocket  = "/var/run/libvirt/libvirt-sock"
	DefaultTimeout = 5 * time.Second
)

// Client wraps a go-libvirt connection.
type Client struct {
	libvirt *libvirt.Libvirt
}

// Info describes the daemon a Client is connected to.
type Info struct {
	Version  string // e.g. "10.6.0"
	Hostname string
	URI      string
}

// Connect establishes a connection to the local libvirt daemon.
// It returns a Client that must be closed via Close() when done.
//
// If socketPath is empty, defaults to DefaultSocket (qemu:///system).
// If timeout is zero, defaults to DefaultTimeout.
func Connect(socketPath string, timeout time.Duration) (*Client, error) {
	if socketPath == "" {
		socketPath = DefaultSocket
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	dialer := dialers.NewLocal(
		dialers.WithSocket(socketPath),
		dialers.WithLocalTimeout(timeout),
	)

	l := libvirt.NewWithDialer(dialer)
	if err := l.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to libvirt at %s: %w", socketPath, err)
	}

	return &Client{libvirt: l}, nil
}

// ConnectWithContext establishes a connection with context support for cancellation.
func ConnectWithContext(ctx context.Context, socketPath string, timeout time.Duration) (*Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("connection cancelled: %w", err)
	}

	type result struct {
		client *Client
		err    error
	}
	resultCh := make(chan result, 1)

	go func() {
		c, err := Connect(socketPath, timeout)
		resultCh <- result{client: c, err: err}
	}()

	select {
	case <-ctx.Done():
		// Close a connection that completes after cancellation
		go func() {
			if res := <-resultCh; res.client != nil {
				_ = res.client.Close()
			}
		}()
		return nil, fmt.Errorf("connection cancelled: %w", ctx.Err())
	case res := <-resultCh:
		return res.client, res.err
	}
}

// Close closes the libvirt connection. It is safe to call Close multiple times.
func (c *Client) Close() error {
	if c.libvirt == nil {
		return nil
	}

	l := c.libvirt
	c.libvirt = nil
	if err := l.Disconnect(); err != nil {
		return fmt.Errorf("failed to disconnect from libvirt: %w", err)
	}

	return nil
}

// Libvirt returns the underlying go-libvirt client for direct API access.
func (c *Client) Libvirt() *libvirt.Libvirt {
	return c.libvirt
}

// Ping verifies the connection is still alive.
func (c *Client) Ping() error {
	if c.libvirt == nil {
		return fmt.Errorf("client not connected")
	}

	if _, err := c.libvirt.ConnectGetLibVersion(); err != nil {
		return fmt.Errorf("libvirt connection is dead: %w", err)
	}

	return nil
}

// Probe reports the daemon version, hostname and URI.
func (c *Client) Probe() (Info, error) {
	if c.libvirt == nil {
		return Info{}, fmt.Errorf("client not connected")
	}

	version, err := c.libvirt.ConnectGetLibVersion()
	if err != nil {
		return Info{}, fmt.Errorf("failed to get libvirt version: %w", err)
	}

	hostname, err := c.libvirt.ConnectGetHostname()
	if err != nil {
		return Info{}, fmt.Errorf("failed to get hostname: %w", err)
	}

	uri, err := c.libvirt.ConnectGetUri()
	if err != nil {
		return Info{}, fmt.Errorf("failed to get connection URI: %w", err)
	}

	return Info{Version: FormatVersion(version), Hostname: hostname, URI: uri}, nil
}

// FormatVersion renders libvirt's packed version number (8006000 for 8.6.0).
func FormatVersion(v uint64) string {
	return fmt.Sprintf("%d.%d.%d", v/1000000, (v%1000000)/1000, v%1000)
}
