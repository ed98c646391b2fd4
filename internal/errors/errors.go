// Package errors provides the structured error type used across sitegen: a
// closed set of compilation failure kinds plus a generic fallback, with
// cause wrapping and a backtrace captured at construction for the
// diagnostic report.
package errors

import (
	"fmt"
	"runtime"
)

// Kind classifies a compilation failure. The set is closed: the report
// renderer switches exhaustively over it and anything unrecognized is
// carried as KindGeneric with the original message.
type Kind string

const (
	KindUnknownLayout         Kind = "unknown_layout"
	KindUnknownFilter         Kind = "unknown_filter"
	KindCannotDetermineFilter Kind = "cannot_determine_filter"
	KindRecursiveCompilation  Kind = "recursive_compilation"
	KindNoLongerSupported     Kind = "no_longer_supported"
	KindNoRulesFile           Kind = "no_rules_file"
	KindNoMatchingRule        Kind = "no_matching_rule"
	KindGeneric               Kind = "generic"

	// KindDefect marks programmer errors inside the instrumentation layer
	// itself (mismatched lifecycle events, popping an empty timing stack).
	// These fail the run fast instead of corrupting statistics.
	KindDefect Kind = "defect"
)

// CompileError is the structured error surfaced to the CLI when a run
// fails. Backtrace holds source locations captured where the error was
// constructed, innermost first.
type CompileError struct {
	Kind      Kind
	Message   string
	Cause     error
	Backtrace []string
}

func (e *CompileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CompileError) Unwrap() error { return e.Cause }

// New creates a CompileError of the given kind with a captured backtrace.
func New(kind Kind, format string, args ...any) *CompileError {
	return &CompileError{
		Kind:      kind,
		Message:   fmt.Sprintf(format, args...),
		Backtrace: capture(2),
	}
}

// Wrap creates a CompileError that carries an underlying cause.
func Wrap(err error, kind Kind, format string, args ...any) *CompileError {
	return &CompileError{
		Kind:      kind,
		Message:   fmt.Sprintf(format, args...),
		Cause:     err,
		Backtrace: capture(2),
	}
}

// Defect creates a fail-fast error for internal invariant violations.
func Defect(format string, args ...any) *CompileError {
	return &CompileError{
		Kind:      KindDefect,
		Message:   fmt.Sprintf(format, args...),
		Backtrace: capture(2),
	}
}

// Generic wraps an arbitrary error as the fallback kind, preserving its
// message. A nil err yields nil, and an existing CompileError passes
// through untouched.
func Generic(err error) *CompileError {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*CompileError); ok {
		return ce
	}
	return &CompileError{
		Kind:      KindGeneric,
		Message:   err.Error(),
		Cause:     err,
		Backtrace: capture(2),
	}
}

// KindOf extracts the kind from an error, defaulting to KindGeneric for
// anything that is not a CompileError.
func KindOf(err error) Kind {
	if ce, ok := err.(*CompileError); ok {
		return ce.Kind
	}
	return KindGeneric
}

// IsKind reports whether err is a CompileError of the given kind.
func IsKind(err error, kind Kind) bool {
	ce, ok := err.(*CompileError)
	return ok && ce.Kind == kind
}

// BacktraceOf returns the captured backtrace, or nil for foreign errors.
func BacktraceOf(err error) []string {
	if ce, ok := err.(*CompileError); ok {
		return ce.Backtrace
	}
	return nil
}

// capture records up to 32 source locations above the constructor call.
func capture(skip int) []string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	var out []string
	for {
		f, more := frames.Next()
		out = append(out, fmt.Sprintf("%s:%d in %s", f.File, f.Line, f.Function))
		if !more {
			break
		}
	}
	return out
}
