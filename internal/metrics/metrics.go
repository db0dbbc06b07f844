package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	signalsEmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aegis_signals_emitted_total",
		Help: "Total number of behavioral signals emitted, by signal type",
	}, []string{"signal_type"})
	decisionsPersistedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aegis_decisions_persisted_total",
		Help: "Total number of risk decisions persisted, by decision label",
	}, []string{"decision"})
	decisionsSuppressedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aegis_decisions_suppressed_total",
		Help: "Total number of risk decisions suppressed by deduplication",
	})
	pipelineRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aegis_pipeline_runs_total",
		Help: "Total number of pipeline stage invocations, by stage",
	}, []string{"stage"})
	unknownSignalTypesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aegis_unknown_signal_types_total",
		Help: "Total number of signals observed with an unrecognized type",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		signalsEmittedTotal,
		decisionsPersistedTotal,
		decisionsSuppressedTotal,
		pipelineRunsTotal,
		unknownSignalTypesTotal,
	)
}

// IncSignalEmitted increments the emitted-signal counter for a signal type.
func IncSignalEmitted(signalType string) { signalsEmittedTotal.WithLabelValues(signalType).Inc() }

// IncDecisionPersisted increments the persisted-decision counter for a label.
func IncDecisionPersisted(decision string) { decisionsPersistedTotal.WithLabelValues(decision).Inc() }

// IncDecisionSuppressed increments the deduplicated-decision counter.
func IncDecisionSuppressed() { decisionsSuppressedTotal.Inc() }

// IncPipelineRun increments the run counter for a pipeline stage.
func IncPipelineRun(stage string) { pipelineRunsTotal.WithLabelValues(stage).Inc() }

// IncUnknownSignalType increments the unrecognized-signal-type counter.
func IncUnknownSignalType() { unknownSignalTypesTotal.Inc() }
