// Package metrics defines observability hooks for compilation runs.
// Implementations may forward to Prometheus; the NoopRecorder allows
// optional injection without nil checks at call sites.
package metrics

import "time"

// Recorder receives timing and outcome observations from the orchestrator.
type Recorder interface {
	ObserveCompilationDuration(d time.Duration)
	ObserveRepDuration(d time.Duration)
	ObserveFilterDuration(filter string, d time.Duration)
	IncOutcome(category string)
	IncRunResult(result string) // success|failed|canceled
}

// NoopRecorder is a Recorder that does nothing (default when metrics are
// not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveCompilationDuration(time.Duration)    {}
func (NoopRecorder) ObserveRepDuration(time.Duration)            {}
func (NoopRecorder) ObserveFilterDuration(string, time.Duration) {}
func (NoopRecorder) IncOutcome(string)                           {}
func (NoopRecorder) IncRunResult(string)                         {}
