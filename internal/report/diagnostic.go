package report

import (
	"fmt"
	"io"

	"git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/site"
	"github.com/fatih/color"
)

var errHeading = color.New(color.FgRed, color.Bold)

// kindLabel maps the closed failure kind set to one-line message prefixes.
// Unknown kinds fall through to the generic label.
func kindLabel(k errors.Kind) string {
	switch k {
	case errors.KindUnknownLayout:
		return "Unknown layout"
	case errors.KindUnknownFilter:
		return "Unknown filter"
	case errors.KindCannotDetermineFilter:
		return "Cannot determine filter"
	case errors.KindRecursiveCompilation:
		return "Recursive compilation detected"
	case errors.KindNoLongerSupported:
		return "Feature no longer supported"
	case errors.KindNoRulesFile:
		return "No rules file found"
	case errors.KindNoMatchingRule:
		return "No matching compilation rule"
	case errors.KindDefect:
		return "Internal defect"
	default:
		return "Error"
	}
}

// Diagnostic renders a failed run for a human: the categorized message,
// the engine's execution stack innermost-first, and the backtrace captured
// where the error was constructed. The error itself is formatted only,
// never altered or swallowed.
func Diagnostic(w io.Writer, err error, frames []site.Frame) {
	if err == nil {
		return
	}
	ce := errors.Generic(err)

	errHeading.Fprintln(w, "Compilation failed.")

	fmt.Fprintln(w, "Message:")
	fmt.Fprintf(w, "  %s: %s\n", kindLabel(ce.Kind), ce.Message)

	fmt.Fprintln(w, "Compilation stack:")
	if len(frames) == 0 {
		fmt.Fprintln(w, "  (empty)")
	}
	// frames arrive outermost-first; render innermost-first.
	for i := len(frames) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "  - %s\n", describeFrame(frames[i]))
	}

	fmt.Fprintln(w, "Backtrace:")
	for i, line := range ce.Backtrace {
		fmt.Fprintf(w, "  %d. %s\n", i, line)
	}
}

func describeFrame(f site.Frame) string {
	switch f.Kind {
	case site.FrameLayout:
		return fmt.Sprintf("[layout] %s", f.Identifier)
	case site.FrameItemRep:
		return fmt.Sprintf("[%s] %s (rep %s)", f.ItemKind, f.Identifier, f.RepName)
	default:
		return fmt.Sprintf("[unknown] %s", f.Identifier)
	}
}
