// Package ssh shuts the backup target down after a successful run.
package ssh

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/rs/zerolog"
	"github.com/veidtlabs/restic-backup/internal/models"
	"golang.org/x/crypto/ssh"
)

// Service defines the interface for the optional shutdown step.
type Service interface {
	Shutdown(ctx context.Context, cfg models.SSHShutdownConfig) error
}

// Conn is one established SSH connection, reduced to what the shutdown
// step needs so tests can fake it.
type Conn interface {
	Output(cmd string) ([]byte, error)
	Close() error
}

// Dialer establishes SSH connections.
type Dialer interface {
	Dial(addr string, config *ssh.ClientConfig) (Conn, error)
}

type defaultDialer struct{}

func (defaultDialer) Dial(addr string, config *ssh.ClientConfig) (Conn, error) {
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, err
	}
	return &clientConn{client: client}, nil
}

type clientConn struct {
	client *ssh.Client
}

func (c *clientConn) Output(cmd string) ([]byte, error) {
	session, err := c.client.NewSession()
	if err != nil {
		return nil, err
	}
	defer func() { _ = session.Close() }()

	return session.CombinedOutput(cmd)
}

func (c *clientConn) Close() error {
	return c.client.Close()
}

// Impl implements the shutdown Service.
type Impl struct {
	dialer Dialer
	logger zerolog.Logger
}

// New creates a new shutdown service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{dialer: defaultDialer{}, logger: logger}
}

// NewWithDialer creates a new shutdown service with a custom dialer
// (for testing).
func NewWithDialer(logger zerolog.Logger, dialer Dialer) *Impl {
	return &Impl{dialer: dialer, logger: logger}
}

// Shutdown connects with key auth and schedules a shutdown on the target.
// An error from the command itself is logged but tolerated: the connection
// regularly drops while shutdown output is still in flight.
func (s *Impl) Shutdown(ctx context.Context, cfg models.SSHShutdownConfig) error {
	key, err := os.ReadFile(cfg.KeyPath)
	if err != nil {
		return fmt.Errorf("reading SSH key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return fmt.Errorf("parsing SSH key: %w", err)
	}

	clientCfg := &ssh.ClientConfig{
		User:            cfg.Username,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // homelab targets have no pinned host keys
	}

	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))

	s.logger.Info().
		Str("addr", addr).
		Int("delay_minutes", cfg.Delay).
		Msg("scheduling remote shutdown")

	conn, err := s.dialer.Dial(addr, clientCfg)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	cmd := fmt.Sprintf("sudo shutdown -h +%d", cfg.Delay)
	output, err := conn.Output(cmd)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("output", string(output)).
			Msg("shutdown command returned an error, likely the connection closing")
	}

	return nil
}
