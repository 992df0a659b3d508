package models

import "fmt"

// ConfigError reports a missing or malformed required configuration key.
// It is raised at load time, before any external process runs.
type ConfigError struct {
	Key string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing key: %s", e.Key)
}

// StageFailure reports a pipeline stage whose external process returned a
// non-zero exit code. Later stages are skipped; results collected up to and
// including the failing stage are preserved for notification.
type StageFailure struct {
	Stage       string
	ExitCode    int
	CommandLine string
}

func (e *StageFailure) Error() string {
	return fmt.Sprintf("%s stage: non-zero exit code %d for command: %s", e.Stage, e.ExitCode, e.CommandLine)
}

// SpawnError reports that the external tool could not be launched at all
// (not found, permission denied). There is no meaningful exit code.
type SpawnError struct {
	CommandLine string
	Err         error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn command %q: %v", e.CommandLine, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// NotificationConfigError reports that notification was attempted without a
// required address. It is fatal to the notification step only; the pipeline
// outcome is already final when it is raised.
type NotificationConfigError struct {
	Field string
}

func (e *NotificationConfigError) Error() string {
	return fmt.Sprintf("notification enabled but no %q address configured", e.Field)
}
