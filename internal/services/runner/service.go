// Package runner orchestrates the backup pipeline.
//
// Stages run strictly in sequence: backup, then forget when a retention
// policy is enabled, then check. Any stage exiting non-zero aborts all later
// stages; forget must never prune before a fresh snapshot is confirmed taken,
// and check must never declare repository health on a write that did not
// happen. Results collected before the failure are preserved so the
// notification can report them. Nothing is ever retried.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/veidtlabs/restic-backup/internal/models"
	"github.com/veidtlabs/restic-backup/internal/services/executor"
	"github.com/veidtlabs/restic-backup/internal/services/restic"
	"github.com/veidtlabs/restic-backup/internal/services/ssh"
	"github.com/veidtlabs/restic-backup/internal/services/wol"
)

// Service defines the interface for the backup runner.
type Service interface {
	Run(ctx context.Context, cfg models.Config) ([]models.CommandResult, error)
}

// Impl implements the runner Service interface.
type Impl struct {
	executor executor.Service
	wolSvc   wol.Service
	sshSvc   ssh.Service
	logger   zerolog.Logger
}

// New creates a new runner service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		executor: executor.New(logger),
		wolSvc:   wol.New(logger),
		sshSvc:   ssh.New(logger),
		logger:   logger,
	}
}

// NewWithServices creates a new runner service with custom services
// (for testing).
func NewWithServices(logger zerolog.Logger, exec executor.Service, wolSvc wol.Service, sshSvc ssh.Service) *Impl {
	return &Impl{
		executor: exec,
		wolSvc:   wolSvc,
		sshSvc:   sshSvc,
		logger:   logger,
	}
}

// Run executes the pipeline and returns the results of every stage that ran,
// in order. On a stage failure the returned error is a *models.StageFailure
// and the slice still holds everything collected up to and including the
// failing stage. The returned slice has two entries when forget is disabled
// and three when it is enabled.
func (s *Impl) Run(ctx context.Context, cfg models.Config) ([]models.CommandResult, error) {
	start := time.Now()
	var results []models.CommandResult

	s.logger.Info().
		Strs("directories", cfg.Backup.Directories).
		Bool("forget", cfg.ForgetEnabled()).
		Msg("starting backup run")

	// Wake the target first when configured; no pipeline stage may run
	// against a machine that is still down.
	if cfg.WOL != nil {
		if err := s.wolSvc.Wake(ctx, *cfg.WOL); err != nil {
			return results, fmt.Errorf("wake failed: %w", err)
		}
	}

	if err := s.runStage(ctx, models.StageBackup, restic.BackupCommand(cfg), &results); err != nil {
		return results, err
	}

	if forgetCmd, ok := restic.ForgetCommand(cfg); ok {
		if err := s.runStage(ctx, models.StageForget, forgetCmd, &results); err != nil {
			return results, err
		}
	}

	if err := s.runStage(ctx, models.StageCheck, restic.CheckCommand(cfg), &results); err != nil {
		return results, err
	}

	if cfg.SSHShutdown != nil {
		if err := s.sshSvc.Shutdown(ctx, *cfg.SSHShutdown); err != nil {
			return results, fmt.Errorf("shutdown failed: %w", err)
		}
	}

	s.logger.Info().
		Int("stages", len(results)).
		Dur("duration", time.Since(start)).
		Msg("backup run completed")

	return results, nil
}

// runStage executes one stage and appends its result. A non-zero exit code
// becomes a *models.StageFailure; spawn errors pass through untouched and
// leave no result behind, since there is no exit code to record.
func (s *Impl) runStage(ctx context.Context, stage string, cmd models.Command, results *[]models.CommandResult) error {
	s.logger.Info().Str("stage", stage).Str("cmd", cmd.String()).Msg("running stage")

	result, err := s.executor.Run(ctx, cmd)
	if err != nil {
		return err
	}

	*results = append(*results, result)

	if result.ExitCode > 0 {
		return &models.StageFailure{
			Stage:       stage,
			ExitCode:    result.ExitCode,
			CommandLine: result.CommandLine,
		}
	}

	s.logger.Info().Str("stage", stage).Msg("stage completed")
	return nil
}
