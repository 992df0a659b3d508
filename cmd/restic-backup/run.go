package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/veidtlabs/restic-backup/internal/config"
	"github.com/veidtlabs/restic-backup/internal/services/mail"
	"github.com/veidtlabs/restic-backup/internal/services/notify"
	"github.com/veidtlabs/restic-backup/internal/services/runner"
	"github.com/veidtlabs/restic-backup/internal/services/telegram"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the backup pipeline",
	Long: `Execute the complete backup pipeline:
1. Wake the backup target (if configured)
2. Back up the configured directories
3. Forget old snapshots per the retention policy (if enabled)
4. Check repository integrity
5. Shut the target down over SSH (if configured)
6. Report the outcome by email/Telegram (if configured)

Any stage exiting non-zero aborts all later stages; the notification still
reports everything that ran.`,
	RunE: runBackup,
}

func runBackup(cmd *cobra.Command, args []string) error {
	confPath := config.ResolvePath(configFile)

	parser := config.NewParser()
	cfg, err := parser.LoadFile(confPath)
	if err != nil {
		log.Error().Err(err).Str("file", confPath).Msg("failed to load config")
		return err
	}

	attachLogfile(cfg.Logfile)

	log.Info().
		Str("config", confPath).
		Strs("directories", cfg.Backup.Directories).
		Bool("forget", cfg.ForgetEnabled()).
		Msg("configuration loaded")

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("received signal, shutting down")
		cancel()
	}()

	// Resolve notification transports up front; a missing SMTP host means
	// the mail transport is unavailable and stays nil.
	var mailSender notify.Sender
	if cfg.Email != nil && cfg.Email.SMTPHost != "" {
		mailSender = mail.New(log.Logger, *cfg.Email)
	}
	var telegramSender notify.Sender
	if cfg.Telegram != nil {
		telegramSender = telegram.New(log.Logger, *cfg.Telegram)
	}
	dispatcher := notify.New(log.Logger, mailSender, telegramSender)

	runnerSvc := runner.New(log.Logger)
	results, runErr := runnerSvc.Run(ctx, *cfg)
	if runErr != nil {
		log.Error().Err(runErr).Msg("backup run failed")
	} else {
		log.Info().Msg("backup run completed successfully")
	}

	// The dispatcher sees the collected results on success and on failure
	// alike; the run error makes failures without an exit code (spawn
	// errors, wake failures) classify as failed too.
	if err := dispatcher.Dispatch(ctx, *cfg, results, runErr); err != nil {
		log.Error().Err(err).Msg("notification failed")
		if runErr == nil {
			return err
		}
	}

	return runErr
}
