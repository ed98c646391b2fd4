package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	runDuration    prom.Histogram
	repDuration    prom.Histogram
	filterDuration *prom.HistogramVec
	outcomes       *prom.CounterVec
	runResults     *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitegen",
			Name:      "run_duration_seconds",
			Help:      "Total compilation run duration",
			Buckets:   prom.DefBuckets,
		}),
		repDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitegen",
			Name:      "rep_duration_seconds",
			Help:      "Duration of individual representation compilations",
			Buckets:   prom.DefBuckets,
		}),
		filterDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sitegen",
			Name:      "filter_duration_seconds",
			Help:      "Duration of individual filter invocations",
			Buckets:   prom.DefBuckets,
		}, []string{"filter"}),
		outcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitegen",
			Name:      "rep_outcomes_total",
			Help:      "Representation outcomes by category",
		}, []string{"category"}),
		runResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitegen",
			Name:      "run_results_total",
			Help:      "Run results by final status",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.runDuration, pr.repDuration, pr.filterDuration, pr.outcomes, pr.runResults)
	return pr
}

func (p *PrometheusRecorder) ObserveCompilationDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRepDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.repDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveFilterDuration(filter string, d time.Duration) {
	if p == nil {
		return
	}
	p.filterDuration.WithLabelValues(filter).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncOutcome(category string) {
	if p == nil {
		return
	}
	p.outcomes.WithLabelValues(category).Inc()
}

func (p *PrometheusRecorder) IncRunResult(result string) {
	if p == nil {
		return
	}
	p.runResults.WithLabelValues(result).Inc()
}
