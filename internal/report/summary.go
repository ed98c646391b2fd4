// Package report renders human-readable output for a compilation run: the
// outcome count summary, the per-filter profiling table, and the failure
// diagnostic. Rendering is read-only over its inputs.
package report

import (
	"fmt"
	"io"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/outcome"
	"git.home.luguber.info/inful/sitegen/internal/site"
	"github.com/fatih/color"
)

var (
	heading = color.New(color.Bold)
	notice  = color.New(color.FgYellow)
)

// labels maps categories to their summary row labels, in display order.
var summaryRows = []struct {
	category outcome.Category
	label    string
}{
	{outcome.Created, "created"},
	{outcome.Modified, "modified"},
	{outcome.Skipped, "skipped"},
	{outcome.NotWritten, "not written"},
	{outcome.Identical, "identical"},
}

// Summary prints the outcome count table for a finished run, a notice when
// nothing was modified, and the total wall-clock time.
func Summary(w io.Writer, reps []*site.Rep, elapsed time.Duration) {
	buckets := outcome.Partition(reps)

	width := 1
	for _, row := range summaryRows {
		if n := len(fmt.Sprint(len(buckets[row.category]))); n > width {
			width = n
		}
	}

	heading.Fprintln(w, "Compilation summary:")
	for _, row := range summaryRows {
		fmt.Fprintf(w, "  %*d  %s\n", width, len(buckets[row.category]), row.label)
	}

	anyModified := false
	for _, rep := range reps {
		if rep.Modified {
			anyModified = true
			break
		}
	}
	if !anyModified {
		notice.Fprintln(w, "No objects were modified.")
	}

	fmt.Fprintf(w, "Site compiled in %.2fs.\n", elapsed.Seconds())
}
