// Package metrics exports run and probe metrics to Prometheus. The Notifier
// receives the same events as every other observer and owns its collectors.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"falcon/internal/core/ports"
)

// Notifier updates Prometheus collectors from run events. It is safe for
// concurrent use.
type Notifier struct {
	runsStarted   *prometheus.CounterVec
	runsCompleted *prometheus.CounterVec
	runsRunning   prometheus.Gauge
	runDuration   *prometheus.HistogramVec

	probeOutcomes *prometheus.CounterVec
	probeFailures *prometheus.CounterVec
	probeLatency  *prometheus.HistogramVec
}

// New registers the collectors against reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) (*Notifier, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	n := &Notifier{
		runsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "falcon_runs_started_total",
			Help: "Runs started partitioned by category.",
		}, []string{"category"}),
		runsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "falcon_runs_completed_total",
			Help: "Runs completed partitioned by category.",
		}, []string{"category"}),
		runsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "falcon_runs_running",
			Help: "Runs currently in flight.",
		}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "falcon_run_duration_seconds",
			Help:    "Wall time per completed run.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"category"}),
		probeOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "falcon_probe_outcomes_total",
			Help: "Probe outcomes partitioned by source and label (status or failure kind).",
		}, []string{"source", "outcome"}),
		probeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "falcon_probe_failures_total",
			Help: "Probe failures partitioned by kind.",
		}, []string{"kind"}),
		probeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "falcon_probe_latency_seconds",
			Help:    "Latency of probes that returned a result.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"source"}),
	}
	for _, collector := range []prometheus.Collector{
		n.runsStarted,
		n.runsCompleted,
		n.runsRunning,
		n.runDuration,
		n.probeOutcomes,
		n.probeFailures,
		n.probeLatency,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register metrics collector: %w", err)
		}
	}
	return n, nil
}

// Notify implements ports.Notifier.
func (n *Notifier) Notify(_ context.Context, ev ports.Event) error {
	switch ev.Type {
	case ports.EventTypeRunStarted:
		n.runsStarted.WithLabelValues(string(ev.Category)).Inc()
		n.runsRunning.Inc()

	case ports.EventTypeRunCompleted:
		n.runsCompleted.WithLabelValues(string(ev.Category)).Inc()
		n.runsRunning.Dec()
		if ev.Report != nil {
			n.runDuration.WithLabelValues(string(ev.Category)).Observe(ev.Report.Duration.Seconds())
		}

	case ports.EventTypeProbeCompleted, ports.EventTypeProbeFailed, ports.EventTypeProbeTimeout:
		if ev.Outcome == nil {
			return nil
		}
		n.probeOutcomes.WithLabelValues(ev.Source, ev.Outcome.Label()).Inc()
		if f := ev.Outcome.Failure; f != nil {
			n.probeFailures.WithLabelValues(string(f.Kind)).Inc()
		}
		if r := ev.Outcome.Result; r != nil && r.Latency > 0 {
			n.probeLatency.WithLabelValues(ev.Source).Observe(r.Latency.Seconds())
		}
	}
	return nil
}

// Close implements ports.Notifier; collectors stay registered.
func (n *Notifier) Close() error {
	return nil
}
