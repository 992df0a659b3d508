// Package notify decides whether and what to report after a run.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/veidtlabs/restic-backup/internal/models"
)

// Sender delivers one rendered notification. Implementations live in the
// mail and telegram packages; a nil Sender means the transport is
// unavailable and is skipped silently, decided at startup rather than
// probed at dispatch time.
type Sender interface {
	Send(ctx context.Context, n models.Notification) error
}

// Service defines the interface for the notification dispatcher.
type Service interface {
	Dispatch(ctx context.Context, cfg models.Config, results []models.CommandResult, runErr error) error
}

// Impl implements the dispatcher Service.
type Impl struct {
	mail     Sender
	telegram Sender
	logger   zerolog.Logger
}

// New creates a new dispatcher with the transports resolved at startup.
// Either sender may be nil.
func New(logger zerolog.Logger, mail, telegram Sender) *Impl {
	return &Impl{
		mail:     mail,
		telegram: telegram,
		logger:   logger,
	}
}

// Dispatch classifies the run and reports it according to the configured
// outcome policy. The run counts as successful only when it finished without
// a fatal error and every result's exit code is <= 0; the exit-code pass
// deliberately double-checks what the runner already enforced with its > 0
// failure escalation, and runErr covers failures that never produced an exit
// code (spawn errors, wake failures).
//
// An unavailable transport is a silent no-op. Once email is enabled and its
// transport is available, both a recipient and a sender address are required
// regardless of whether the policy flags fire; missing either is a
// *models.NotificationConfigError raised here, not at load time.
func (s *Impl) Dispatch(ctx context.Context, cfg models.Config, results []models.CommandResult, runErr error) error {
	success := runErr == nil && allSuccessful(results)

	subject := "Restic Backup was Successful"
	if !success {
		subject = "Restic Backup Failed"
	}

	// Outcome policy; Telegram shares the email flags, defaulting to both
	// outcomes when no email section exists.
	onSuccess, onFailure := true, true
	if cfg.Email != nil {
		onSuccess, onFailure = cfg.Email.OnSuccess, cfg.Email.OnFailure
	}
	fires := policyFires(success, onSuccess, onFailure)

	if cfg.EmailEnabled() {
		switch {
		case s.mail == nil:
			s.logger.Debug().Msg("mail transport unavailable, not sending email")
		case cfg.Email.To == "":
			return &models.NotificationConfigError{Field: "to"}
		case cfg.Email.From == "":
			return &models.NotificationConfigError{Field: "from"}
		case fires:
			n := models.Notification{
				To:      cfg.Email.To,
				From:    cfg.Email.From,
				Subject: subject,
				Body:    formatBody(results, runErr),
			}
			if err := s.mail.Send(ctx, n); err != nil {
				return fmt.Errorf("sending email: %w", err)
			}
			s.logger.Info().Str("to", cfg.Email.To).Msg("email notification sent")
		}
	}

	if cfg.Telegram != nil && s.telegram != nil && fires {
		n := models.Notification{
			Subject: subject,
			Body:    formatBody(results, runErr),
		}
		if err := s.telegram.Send(ctx, n); err != nil {
			// Secondary channel; a delivery failure must not mask the
			// pipeline outcome.
			s.logger.Error().Err(err).Msg("failed to send Telegram notification")
		} else {
			s.logger.Info().Msg("Telegram notification sent")
		}
	}

	return nil
}

// allSuccessful reports whether every stage exited with code <= 0.
func allSuccessful(results []models.CommandResult) bool {
	for _, r := range results {
		if r.ExitCode > 0 {
			return false
		}
	}
	return true
}

func policyFires(success, onSuccess, onFailure bool) bool {
	if success {
		return onSuccess
	}
	return onFailure
}

// formatBody renders, for every result in order, its command line, exit
// code, and decoded stdout and stderr. A fatal run error is appended so a
// failure without any failing exit code still explains itself.
func formatBody(results []models.CommandResult, runErr error) string {
	parts := make([]string, 0, len(results)+1)
	for _, r := range results {
		parts = append(parts, fmt.Sprintf(
			"cmd: %s -> %d\nstdout:\n%s\nstderr:\n%s",
			r.CommandLine, r.ExitCode, string(r.Stdout), string(r.Stderr),
		))
	}
	if runErr != nil {
		parts = append(parts, "error: "+runErr.Error())
	}
	return strings.Join(parts, "\n")
}
