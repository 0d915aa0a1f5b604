package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// operationsTotal counts workspace operations by action and result.
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chartbind_operations_total",
		Help: "Workspace operations by action and result",
	}, []string{"action", "result"})

	// importRows tracks the size of imported datasets.
	importRows = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chartbind_import_rows",
		Help:    "Data rows per successful import",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 to ~16k
	}, []string{"source"})

	// renderDuration tracks chart export latency.
	renderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chartbind_render_duration_seconds",
		Help:    "Chart export duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	}, []string{"format"})

	workspacesActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chartbind_workspaces_active",
		Help: "Workspaces currently held in memory",
	})

	workspacesExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chartbind_workspaces_expired_total",
		Help: "Workspaces evicted by the idle janitor",
	})

	auditSinkErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chartbind_audit_sink_errors_total",
		Help: "Audit entries the sink failed to persist",
	})
)

// resultLabel maps an operation error to a metric label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsUserError(err):
		return "rejected"
	default:
		return "error"
	}
}
