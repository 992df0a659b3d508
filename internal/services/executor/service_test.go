package executor

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veidtlabs/restic-backup/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestRun_CapturesStdoutAndStderrSeparately(t *testing.T) {
	svc := New(testLogger())

	result, err := svc.Run(context.Background(), models.Command{
		Program: "sh",
		Args:    []string{"-c", "echo out; echo err 1>&2"},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "out\n", string(result.Stdout))
	assert.Equal(t, "err\n", string(result.Stderr))
}

func TestRun_NonZeroExitIsDataNotError(t *testing.T) {
	svc := New(testLogger())

	result, err := svc.Run(context.Background(), models.Command{
		Program: "sh",
		Args:    []string{"-c", "exit 3"},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
}

func TestRun_RecordsCommandLine(t *testing.T) {
	svc := New(testLogger())

	cmd := models.Command{Program: "sh", Args: []string{"-c", "true"}}
	result, err := svc.Run(context.Background(), cmd)

	require.NoError(t, err)
	assert.Equal(t, cmd.String(), result.CommandLine)
}

func TestRun_SpawnFailure(t *testing.T) {
	svc := New(testLogger())

	_, err := svc.Run(context.Background(), models.Command{
		Program: "/nonexistent/backup-tool",
		Args:    []string{"backup"},
	})

	require.Error(t, err)
	var spawnErr *models.SpawnError
	require.True(t, errors.As(err, &spawnErr))
	assert.Contains(t, spawnErr.CommandLine, "/nonexistent/backup-tool")
}

func TestRun_ArgvSemanticsPreserveSpaces(t *testing.T) {
	svc := New(testLogger())

	// A target containing a space must reach the child as a single argument.
	result, err := svc.Run(context.Background(), models.Command{
		Program: "sh",
		Args:    []string{"-c", `printf '%s' "$1"`, "sh", "/home/user/My Documents"},
	})

	require.NoError(t, err)
	assert.Equal(t, "/home/user/My Documents", string(result.Stdout))
}
