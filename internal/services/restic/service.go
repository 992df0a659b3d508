// Package restic builds restic invocations from configuration.
//
// Every builder is a pure function of the configuration: identical config
// yields an identical command, with a fixed flag order. Commands are
// structured argument vectors; they are stringified for display only.
package restic

import (
	"strconv"

	"github.com/veidtlabs/restic-backup/internal/models"
)

// BackupCommand builds the backup stage invocation: the backup subcommand,
// --one-file-system if enabled, the target directories in order, one
// --exclude flag per pattern in order, then --exclude-file if set.
func BackupCommand(cfg models.Config) models.Command {
	args := []string{"backup"}

	if cfg.Backup.OneFileSystem {
		args = append(args, "--one-file-system")
	}

	args = append(args, cfg.Backup.Directories...)

	for _, pattern := range cfg.Backup.Exclude {
		args = append(args, "--exclude="+pattern)
	}

	if cfg.Backup.ExcludeFile != "" {
		args = append(args, "--exclude-file="+cfg.Backup.ExcludeFile)
	}

	return models.Command{Program: cfg.ResticPath, Args: args}
}

// ForgetCommand builds the prune stage invocation, one --keep-<unit> flag
// per retention rule in policy order. The second return value is false when
// the prune stage is disabled.
func ForgetCommand(cfg models.Config) (models.Command, bool) {
	if !cfg.ForgetEnabled() {
		return models.Command{}, false
	}

	args := []string{"forget"}
	for _, rule := range cfg.Forget.Keep {
		args = append(args, "--keep-"+rule.Unit, strconv.Itoa(rule.Count))
	}

	return models.Command{Program: cfg.ResticPath, Args: args}, true
}

// CheckCommand builds the verify stage invocation, unconditionally.
func CheckCommand(cfg models.Config) models.Command {
	return models.Command{Program: cfg.ResticPath, Args: []string{"check"}}
}
