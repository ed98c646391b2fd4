package report

import (
	"fmt"
	"io"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/site"
	"git.home.luguber.info/inful/sitegen/internal/timing"
)

// Profiling prints the per-filter timing table: count, min, mean, max and
// sum per filter, seconds to two decimals, rows sorted ascending by filter
// name. A warning precedes the table when any representation was never
// compiled, since the numbers are then known to be partial.
func Profiling(w io.Writer, agg *timing.Aggregator, reps []*site.Rep) {
	uncompiled := 0
	for _, rep := range reps {
		if !rep.Compiled {
			uncompiled++
		}
	}
	if uncompiled > 0 {
		notice.Fprintf(w, "Warning: profiling data may be incomplete, %d representation(s) were never compiled.\n", uncompiled)
	}

	names := agg.FilterNames()
	if len(names) == 0 {
		return
	}

	width := len("filter")
	for _, name := range names {
		if len(name) > width {
			width = len(name)
		}
	}

	heading.Fprintln(w, "Filter profiling:")
	fmt.Fprintf(w, "  %-*s | count    min    avg    max    tot\n", width, "filter")
	for _, name := range names {
		samples := agg.SamplesFor(name)

		min, max, sum := samples[0], samples[0], samples[0]
		for _, s := range samples[1:] {
			if s < min {
				min = s
			}
			if s > max {
				max = s
			}
			sum += s
		}
		avg := sum / time.Duration(len(samples))

		fmt.Fprintf(w, "  %-*s | %5d %6.2f %6.2f %6.2f %6.2f\n",
			width, name, len(samples),
			min.Seconds(), avg.Seconds(), max.Seconds(), sum.Seconds())
	}
}
