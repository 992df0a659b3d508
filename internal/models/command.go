package models

import "strings"

// Pipeline stage names, in execution order.
const (
	StageBackup = "backup"
	StageForget = "forget"
	StageCheck  = "check"
)

// Command is one external tool invocation as an argument vector. It is
// executed with argv semantics, never through a shell; String exists for
// logs and notifications only and is never parsed back.
type Command struct {
	Program string
	Args    []string
}

// String renders the command for display. Elements are separated by a single
// space with no trailing separator; arguments containing whitespace are
// quoted so the rendered line reads unambiguously.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	if c.Program != "" {
		parts = append(parts, c.Program)
	}
	for _, arg := range c.Args {
		if strings.ContainsAny(arg, " \t") {
			arg = `"` + arg + `"`
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

// CommandResult holds the outcome of one executed stage. A non-zero exit
// code is ordinary data here, not an error.
type CommandResult struct {
	ExitCode    int
	Stdout      []byte
	Stderr      []byte
	CommandLine string
}
