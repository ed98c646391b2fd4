// Package timing aggregates wall-clock measurements for a single
// compilation run: whole-rep elapsed times keyed by output path, and
// per-filter duration samples attributed through a LIFO stack so nested
// filter invocations are timed correctly.
package timing

import (
	"sort"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/eventbus"
	"git.home.luguber.info/inful/sitegen/internal/site"
)

// Aggregator collects timing data from lifecycle events. It is constructed
// with explicit empty state at run start and discarded at run end; it is
// not safe for concurrent use (the engine is single-threaded).
type Aggregator struct {
	starts  map[string]time.Time
	elapsed map[string]time.Duration

	// Filters recurse: a layout filter can trigger compilation of another
	// rep which itself runs filters. Only a LIFO stack attributes each
	// ended event to the matching started event at any nesting depth.
	stack   []time.Time
	samples map[string][]time.Duration

	now func() time.Time
}

// NewAggregator creates an aggregator with empty maps and the real clock.
func NewAggregator() *Aggregator {
	return &Aggregator{
		starts:  map[string]time.Time{},
		elapsed: map[string]time.Duration{},
		samples: map[string][]time.Duration{},
		now:     time.Now,
	}
}

// WithClock substitutes the time source. Used by tests.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Attach subscribes the aggregator's handlers to the bus.
func (a *Aggregator) Attach(bus *eventbus.Bus) {
	bus.Subscribe(eventbus.EventCompilationStarted, func(e eventbus.Event) error {
		a.OnCompilationStarted(e.(eventbus.CompilationStarted).Rep)
		return nil
	})
	bus.Subscribe(eventbus.EventCompilationEnded, func(e eventbus.Event) error {
		return a.OnCompilationEnded(e.(eventbus.CompilationEnded).Rep)
	})
	bus.Subscribe(eventbus.EventFilteringStarted, func(e eventbus.Event) error {
		a.OnFilteringStarted(e.(eventbus.FilteringStarted).Filter)
		return nil
	})
	bus.Subscribe(eventbus.EventFilteringEnded, func(e eventbus.Event) error {
		return a.OnFilteringEnded(e.(eventbus.FilteringEnded).Filter)
	})
}

// OnCompilationStarted records the start timestamp for the rep. A second
// start for the same key overwrites the first; the later start wins.
func (a *Aggregator) OnCompilationStarted(rep *site.Rep) {
	a.starts[rep.Key()] = a.now()
}

// OnCompilationEnded replaces the recorded start with the elapsed duration.
// An ended event without a prior start is a defect in the event emitter.
func (a *Aggregator) OnCompilationEnded(rep *site.Rep) error {
	key := rep.Key()
	start, ok := a.starts[key]
	if !ok {
		return errors.Defect("compilation_ended without compilation_started for %q", key)
	}
	delete(a.starts, key)
	a.elapsed[key] = a.now().Sub(start)
	return nil
}

// OnFilteringStarted pushes the current timestamp onto the filter stack.
func (a *Aggregator) OnFilteringStarted(string) {
	a.stack = append(a.stack, a.now())
}

// OnFilteringEnded pops the filter stack and records the sample for name.
// Popping an empty stack means the emitter produced mismatched events and
// is a defect, never a silently dropped or garbage sample.
func (a *Aggregator) OnFilteringEnded(name string) error {
	if len(a.stack) == 0 {
		return errors.Defect("filtering_ended %q with empty timing stack", name)
	}
	start := a.stack[len(a.stack)-1]
	a.stack = a.stack[:len(a.stack)-1]
	a.samples[name] = append(a.samples[name], a.now().Sub(start))
	return nil
}

// ElapsedFor returns the recorded elapsed time for an output path, if the
// rep's compilation has ended.
func (a *Aggregator) ElapsedFor(key string) (time.Duration, bool) {
	d, ok := a.elapsed[key]
	return d, ok
}

// SamplesFor returns the recorded duration samples for a filter, one per
// invocation, in completion order.
func (a *Aggregator) SamplesFor(name string) []time.Duration {
	return a.samples[name]
}

// FilterNames returns the names of all filters with recorded samples,
// sorted ascending.
func (a *Aggregator) FilterNames() []string {
	names := make([]string, 0, len(a.samples))
	for name := range a.samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StackDepth reports the current filter stack depth. It must be zero at
// the end of a run; anything else means mismatched start/end events.
func (a *Aggregator) StackDepth() int { return len(a.stack) }
