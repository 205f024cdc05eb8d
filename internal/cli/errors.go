package cli

import "fmt"

// Process exit codes.
const (
	exitFailure = 1
	exitConfig  = 2
	exitNaming  = 3
)

// CommandError provides structured error reporting for CLI commands.
type CommandError struct {
	Message    string
	Cause      error
	Suggestion string
	ExitCode   int
}

// Error implements the error interface.
func (e CommandError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "command failed"
}

// Unwrap exposes the wrapped error.
func (e CommandError) Unwrap() error {
	return e.Cause
}

// ExitStatus returns the process exit code associated with the error.
func (e CommandError) ExitStatus() int {
	if e.ExitCode != 0 {
		return e.ExitCode
	}
	return exitFailure
}

// wrapError builds a CommandError. An empty message falls back to the cause.
func wrapError(message string, cause error, suggestion string, exitCode int) error {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return CommandError{
		Message:    message,
		Cause:      cause,
		Suggestion: suggestion,
		ExitCode:   exitCode,
	}
}

func formatSuggestion(hint string) string {
	if hint == "" {
		return ""
	}
	return fmt.Sprintf("hint: %s", hint)
}
