package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/crypto/ssh"
)

// DefaultSSHPort is used when SSH.Port is empty.
const DefaultSSHPort = "22"

// SSH runs commands on a remote host. Each command opens its own
// connection, so an SSH value can be shared between goroutines.
type SSH struct {
	Host       string
	User       string
	Port       string
	PrivateKey []byte
	// Timeout bounds the TCP dial and handshake. Zero means 10 seconds.
	Timeout time.Duration
	// HostKeyCallback verifies the server key. Nil accepts any key.
	HostKeyCallback ssh.HostKeyCallback
	Log             logr.Logger
}

// NewSSH reads the private key at keyPath and returns a remote executor.
func NewSSH(host, user, port, keyPath string) (*SSH, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key %s: %w", keyPath, err)
	}
	if _, err := ssh.ParsePrivateKey(key); err != nil {
		return nil, fmt.Errorf("failed to parse private key %s: %w", keyPath, err)
	}

	return &SSH{
		Host:       host,
		User:       user,
		Port:       port,
		PrivateKey: key,
	}, nil
}

// Addr returns host:port of the remote end.
func (s *SSH) Addr() string {
	port := s.Port
	if port == "" {
		port = DefaultSSHPort
	}
	return net.JoinHostPort(s.Host, port)
}

// Execute implements Executor.
func (s *SSH) Execute(ctx context.Context, cmd Command) (Result, error) {
	client, err := s.dial(ctx)
	if err != nil {
		return Result{}, err
	}
	defer s.closeAndLog(client.Close)

	session, err := client.NewSession()
	if err != nil {
		return Result{}, fmt.Errorf("failed to create SSH session: %w", err)
	}
	defer s.closeAndLog(session.Close)

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr
	if cmd.Stdin != "" {
		session.Stdin = strings.NewReader(cmd.Stdin)
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmd.String())
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		return Result{}, fmt.Errorf("failed to run %s on %s: %w", cmd.Name, s.Addr(), ctx.Err())
	case err = <-done:
	}

	if err == nil {
		return NewResult(true, stdout.String(), stderr.String()), nil
	}

	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return NewResult(false, stdout.String(), stderr.String()), nil
	}

	return Result{}, fmt.Errorf("failed to run %s on %s: %w", cmd.Name, s.Addr(), err)
}

// LookPath implements Executor using the remote shell's command builtin.
func (s *SSH) LookPath(ctx context.Context, name string) error {
	res, err := s.Execute(ctx, Command{Name: "command", Args: []string{"-v", name}})
	if err != nil {
		return err
	}
	if !res.Succeeded {
		return fmt.Errorf("%w: %s on %s", ErrNotFound, name, s.Addr())
	}
	return nil
}

func (s *SSH) dial(ctx context.Context) (*ssh.Client, error) {
	signer, err := ssh.ParsePrivateKey(s.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	timeout := s.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	hostKeyCallback := s.HostKeyCallback
	if hostKeyCallback == nil {
		hostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // lab hosts, keys are not pinned
	}

	config := &ssh.ClientConfig{
		User:            s.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}

	addr := s.Addr()
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open SSH connection to %s: %w", addr, err)
	}

	return ssh.NewClient(c, chans, reqs), nil
}

func (s *SSH) closeAndLog(f func() error) {
	if err := f(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
		s.Log.V(1).Info("error closing ssh session or connection", "err", err.Error())
	}
}
