package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
)

// CLIErrorAdapter handles error presentation and exit code determination
// for the sitegen command line.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger}
}

// ExitCodeFor determines the process exit code for an error. Interrupts
// are a clean exit; every real failure exits 1.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil || IsInterrupt(err) {
		return 0
	}
	return 1
}

// IsInterrupt reports whether err stems from user cancellation rather than
// a compilation failure.
func IsInterrupt(err error) bool {
	return stderrors.Is(err, context.Canceled)
}

// FormatError formats an error for stderr display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	var ce *CompileError
	if stderrors.As(err, &ce) {
		if a.verbose {
			return ce.Error()
		}
		return ce.Message
	}
	return fmt.Sprintf("Error: %v", err)
}

// LogError writes a structured log line for a failure. User-input mistakes
// stay off the log unless verbose; defects and generic failures always log.
func (a *CLIErrorAdapter) LogError(err error) {
	if err == nil || IsInterrupt(err) {
		return
	}
	kind := KindOf(err)
	if !a.verbose && kind != KindDefect && kind != KindGeneric {
		return
	}
	a.logger.LogAttrs(context.Background(), slog.LevelError, "Compilation failed",
		slog.String("kind", string(kind)),
		slog.String("error", err.Error()))
}
