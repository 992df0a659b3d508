// Package executor runs external commands and captures their outcome.
package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/rs/zerolog"
	"github.com/veidtlabs/restic-backup/internal/models"
)

// Service defines the interface for running one external command.
type Service interface {
	Run(ctx context.Context, cmd models.Command) (models.CommandResult, error)
}

// Impl implements the executor Service using os/exec.
type Impl struct {
	logger zerolog.Logger
}

// New creates a new executor service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{logger: logger}
}

// Run spawns the command with argv semantics (no shell), captures stdout and
// stderr fully, and blocks until the process exits. A non-zero exit code is
// returned as data in the result, never as an error; only a failure to spawn
// the process at all surfaces as a *models.SpawnError. There is no timeout:
// a hung tool blocks until ctx is cancelled by the caller, if ever.
func (e *Impl) Run(ctx context.Context, cmd models.Command) (models.CommandResult, error) {
	line := cmd.String()
	e.logger.Debug().Str("cmd", line).Msg("executing command")

	proc := exec.CommandContext(ctx, cmd.Program, cmd.Args...)

	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	err := proc.Run()

	result := models.CommandResult{
		Stdout:      stdout.Bytes(),
		Stderr:      stderr.Bytes(),
		CommandLine: line,
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return result, &models.SpawnError{CommandLine: line, Err: err}
		}
		result.ExitCode = exitErr.ExitCode()
	}

	e.logger.Debug().
		Str("cmd", line).
		Int("exit_code", result.ExitCode).
		Int("stdout_bytes", len(result.Stdout)).
		Int("stderr_bytes", len(result.Stderr)).
		Msg("command finished")

	return result, nil
}
