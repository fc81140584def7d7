package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Filter holds the Prometheus collectors for the filter list. All methods
// are safe on a nil receiver so callers can run without metrics.
type Filter struct {
	checks          *prometheus.CounterVec
	commands        *prometheus.CounterVec
	slots           prometheus.Gauge
	persistFailures prometheus.Counter
}

// NewFilter creates the collectors and registers them with reg.
func NewFilter(reg prometheus.Registerer) *Filter {
	m := &Filter{
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gamefilter_admission_checks_total",
			Help: "Admission and chat checks by kind and result.",
		}, []string{"kind", "result"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gamefilter_commands_total",
			Help: "Filter list commands by name and outcome.",
		}, []string{"command", "outcome"}),
		slots: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gamefilter_slots_used",
			Help: "Occupied filter slots, including expired and tombstoned ones.",
		}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gamefilter_persist_failures_total",
			Help: "Failed attempts to write the filter list.",
		}),
	}
	reg.MustRegister(m.checks, m.commands, m.slots, m.persistFailures)
	return m
}

// ObserveCheck counts one admission or chat check.
func (m *Filter) ObserveCheck(kind string, filtered bool) {
	if m == nil {
		return
	}
	result := "allowed"
	if filtered {
		result = "filtered"
	}
	m.checks.WithLabelValues(kind, result).Inc()
}

// ObserveCommand counts one admin command.
func (m *Filter) ObserveCommand(command string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.commands.WithLabelValues(command, outcome).Inc()
}

// SetSlots records the number of occupied slots.
func (m *Filter) SetSlots(n int) {
	if m == nil {
		return
	}
	m.slots.Set(float64(n))
}

// ObservePersistFailure counts a failed write of the filter list.
func (m *Filter) ObservePersistFailure() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}
