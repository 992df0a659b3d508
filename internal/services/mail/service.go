// Package mail delivers notifications over SMTP.
package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/veidtlabs/restic-backup/internal/models"
	gomail "github.com/wneessen/go-mail"
)

// Impl sends one plain-text mail per notification. Policy (whether to send
// at all, to whom) lives in the notify dispatcher; this is transport only.
type Impl struct {
	cfg    models.EmailConfig
	logger zerolog.Logger
}

// New creates a new SMTP sender from the email transport settings.
func New(logger zerolog.Logger, cfg models.EmailConfig) *Impl {
	return &Impl{cfg: cfg, logger: logger}
}

// Send delivers the notification to the configured SMTP host.
func (s *Impl) Send(ctx context.Context, n models.Notification) error {
	msg := gomail.NewMsg()
	if err := msg.From(n.From); err != nil {
		return fmt.Errorf("invalid from address %q: %w", n.From, err)
	}
	if err := msg.To(n.To); err != nil {
		return fmt.Errorf("invalid to address %q: %w", n.To, err)
	}
	msg.Subject(n.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, n.Body)

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.SMTPPort),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}

	client, err := gomail.NewClient(s.cfg.SMTPHost, opts...)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}

	s.logger.Debug().
		Str("host", s.cfg.SMTPHost).
		Int("port", s.cfg.SMTPPort).
		Str("to", n.To).
		Msg("sending mail")

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail via %s: %w", s.cfg.SMTPHost, err)
	}

	return nil
}
