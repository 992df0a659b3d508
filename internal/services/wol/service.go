// Package wol wakes the backup target before the pipeline starts.
package wol

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/mdlayher/wol"
	"github.com/rs/zerolog"
	"github.com/veidtlabs/restic-backup/internal/models"
)

// Service defines the interface for the optional wake step.
type Service interface {
	Wake(ctx context.Context, cfg models.WOLConfig) error
}

// PacketSender sends one magic packet; it exists so tests can avoid the
// network.
type PacketSender interface {
	Send(addr string, target net.HardwareAddr) error
}

type defaultSender struct{}

func (defaultSender) Send(addr string, target net.HardwareAddr) error {
	client, err := wol.NewClient()
	if err != nil {
		return fmt.Errorf("creating WOL client: %w", err)
	}
	defer func() { _ = client.Close() }()

	return client.Wake(addr, target)
}

// Impl implements the wake Service.
type Impl struct {
	sender PacketSender
	logger zerolog.Logger
}

// New creates a new wake service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{sender: defaultSender{}, logger: logger}
}

// NewWithSender creates a new wake service with a custom packet sender
// (for testing).
func NewWithSender(logger zerolog.Logger, sender PacketSender) *Impl {
	return &Impl{sender: sender, logger: logger}
}

// Wake sends a magic packet to the configured MAC via the broadcast address
// and then waits the configured settle time so the target can finish booting
// before the first stage runs.
func (s *Impl) Wake(ctx context.Context, cfg models.WOLConfig) error {
	mac, err := net.ParseMAC(cfg.MACAddress)
	if err != nil {
		return fmt.Errorf("invalid MAC address %q: %w", cfg.MACAddress, err)
	}

	ip := net.ParseIP(cfg.BroadcastIP)
	if ip == nil {
		return fmt.Errorf("invalid broadcast IP %q", cfg.BroadcastIP)
	}

	s.logger.Info().
		Str("mac", cfg.MACAddress).
		Str("broadcast", cfg.BroadcastIP).
		Msg("waking backup target")

	if err := s.sender.Send(ip.String()+":9", mac); err != nil {
		return fmt.Errorf("sending WOL packet: %w", err)
	}

	if cfg.Wait <= 0 {
		return nil
	}

	s.logger.Debug().Dur("wait", cfg.Wait).Msg("waiting for target to settle")
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(cfg.Wait):
		return nil
	}
}
