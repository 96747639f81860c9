package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

const namespace = "mbeauty_admin"

var (
	// Labels: method, route (mux path template), status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests handled",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// Labels: entity, outcome (success, conflict, not_found, transient, rejected)
	OCCWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "occ_writes_total",
		Help:      "Optimistic-concurrency writes by outcome",
	}, []string{"entity", "outcome"})

	AuditFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_failures_total",
		Help:      "Audit entries that could not be written",
	})

	// Labels: outcome (done, failed, skipped, recovered, run_error)
	ScheduledActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduled_actions_total",
		Help:      "Scheduled merchandising actions processed by the runner",
	}, []string{"outcome"})
)

// OCCOutcome classifies the result of a conditional write.
func OCCOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, utils.ErrRowVersionConflict):
		return "conflict"
	case errors.Is(err, utils.ErrRecordNotFound):
		return "not_found"
	case errors.Is(err, utils.ErrTransientWrite):
		return "transient"
	case errors.Is(err, utils.ErrWriteRejected):
		return "rejected"
	default:
		return "error"
	}
}

func ObserveOCCWrite(entity string, err error) {
	OCCWrites.WithLabelValues(entity, OCCOutcome(err)).Inc()
}
