// Package metrics exposes Prometheus instrumentation for the
// reconciliation engine. The registry is a process-wide singleton so
// the CLI entry points and the monitor loop share one set of
// collectors.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once     sync.Once
	registry *Registry
)

// Registry holds all reconciliation metrics.
type Registry struct {
	// Reconciliation metrics
	CapturesTotal       *prometheus.CounterVec
	CommitsTotal        *prometheus.CounterVec
	ReplaceChangesTotal *prometheus.CounterVec

	// Gateway health
	GatewayProbeFailures *prometheus.CounterVec

	// Journal
	JournalEntries prometheus.Gauge
}

// Get returns the global metrics registry, creating it if necessary.
func Get() *Registry {
	once.Do(func() {
		registry = newRegistry()
	})
	return registry
}

func newRegistry() *Registry {
	r := &Registry{}

	r.CapturesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "floe_captures_total",
		Help: "Kernel state captures performed per interface",
	}, []string{"interface"})

	r.CommitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "floe_commits_total",
		Help: "Configuration commits per interface and result",
	}, []string{"interface", "result"})

	r.ReplaceChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "floe_replace_changes_total",
		Help: "Config replacements per interface and change class",
	}, []string{"interface", "class"})

	r.GatewayProbeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "floe_gateway_probe_failures_total",
		Help: "Failed gateway reachability probes per interface",
	}, []string{"interface"})

	r.JournalEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "floe_journal_entries",
		Help: "Commit journal entries currently retained",
	})

	return r
}

// RecordCapture records one kernel state capture.
func (r *Registry) RecordCapture(ifname string) {
	r.CapturesTotal.WithLabelValues(ifname).Inc()
}

// RecordCommit records a commit attempt and its outcome.
func (r *Registry) RecordCommit(ifname string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	r.CommitsTotal.WithLabelValues(ifname, result).Inc()
}

// RecordReplace records the outcome class of a config replacement.
// Class is "none", "minor" or "relevant".
func (r *Registry) RecordReplace(ifname, class string) {
	r.ReplaceChangesTotal.WithLabelValues(ifname, class).Inc()
}

// RecordProbeFailure records a failed gateway probe.
func (r *Registry) RecordProbeFailure(ifname string) {
	r.GatewayProbeFailures.WithLabelValues(ifname).Inc()
}

// SetJournalEntries updates the retained journal entry gauge.
func (r *Registry) SetJournalEntries(n int) {
	r.JournalEntries.Set(float64(n))
}
