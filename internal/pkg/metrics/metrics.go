package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome label values.
const (
	OutcomeAccepted    = "accepted"
	OutcomeRejected    = "rejected"
	OutcomeUnavailable = "unavailable"
	OutcomeSynced      = "synced"
	OutcomeUnchanged   = "unchanged"
	OutcomeFailed      = "failed"
)

// Prometheus metrics for custody operations, ledger calls and the status projection
var (
	CustodyOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "custody_operations_total",
			Help: "Custody operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	LedgerCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "custody_ledger_calls_total",
			Help: "Ledger function calls by function and outcome",
		},
		[]string{"function", "outcome"},
	)

	LedgerCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "custody_ledger_call_duration_seconds",
			Help:    "Duration of ledger function calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"function"},
	)

	ProjectionSyncTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "custody_projection_sync_total",
			Help: "Order status projection syncs by outcome",
		},
		[]string{"outcome"},
	)

	ProjectionDriftTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "custody_projection_drift_total",
			Help: "Orders whose projected status disagreed with the ledger and were repaired",
		},
	)

	OrderEventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "custody_order_events_published_total",
			Help: "Order status events handed to the broker by outcome",
		},
		[]string{"outcome"},
	)
)

// Register registers all custody metrics with reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		CustodyOperationsTotal,
		LedgerCallsTotal,
		LedgerCallDuration,
		ProjectionSyncTotal,
		ProjectionDriftTotal,
		OrderEventsPublishedTotal,
	)
}
