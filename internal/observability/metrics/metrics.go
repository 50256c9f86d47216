// Package runmetrics defines the metrics surface the run module records and
// the prometheus-backed implementation the application wires in.
package runmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics records the run module's operational signals. A no-op
// implementation exists for tests so services never nil-check metrics.
type RunMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation string)
	RecordOperationSuccess(ctx context.Context, operation string)
	RecordOperationFailure(ctx context.Context, operation string)
	RecordOperationDuration(ctx context.Context, operation string, duration time.Duration)
	RecordDBQueryDuration(ctx context.Context, duration time.Duration)
	RecordHandlerAttempt(handlerName string)
	RecordHandlerSuccess(handlerName string)
	RecordHandlerFailure(handlerName string)
	RecordHandlerDuration(handlerName string, seconds float64)
	RecordCorrectionBatch(ctx context.Context, total, lowConfidence int, autoCorrected bool)
	RecordDecision(ctx context.Context, outcome string)
	RecordTimeoutExpiry(ctx context.Context)
}

type prometheusMetrics struct {
	operationAttempts  *prometheus.CounterVec
	operationSuccesses *prometheus.CounterVec
	operationFailures  *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	dbQueryDuration    prometheus.Histogram
	handlerAttempts    *prometheus.CounterVec
	handlerSuccesses   *prometheus.CounterVec
	handlerFailures    *prometheus.CounterVec
	handlerDuration    *prometheus.HistogramVec
	correctionRecords  *prometheus.CounterVec
	decisions          *prometheus.CounterVec
	timeoutExpiries    prometheus.Counter
}

// NewPrometheusMetrics registers the run module's collectors on the given
// registry and returns the recording facade.
func NewPrometheusMetrics(registry prometheus.Registerer) RunMetrics {
	m := &prometheusMetrics{
		operationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trackmaster",
			Subsystem: "run",
			Name:      "operation_attempts_total",
			Help:      "Service operations attempted, by operation name.",
		}, []string{"operation"}),
		operationSuccesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trackmaster",
			Subsystem: "run",
			Name:      "operation_successes_total",
			Help:      "Service operations completed successfully.",
		}, []string{"operation"}),
		operationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trackmaster",
			Subsystem: "run",
			Name:      "operation_failures_total",
			Help:      "Service operations that failed or panicked.",
		}, []string{"operation"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "trackmaster",
			Subsystem: "run",
			Name:      "operation_duration_seconds",
			Help:      "End-to-end service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		dbQueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trackmaster",
			Subsystem: "run",
			Name:      "db_query_duration_seconds",
			Help:      "Latency of individual repository calls.",
			Buckets:   prometheus.DefBuckets,
		}),
		handlerAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trackmaster",
			Subsystem: "run",
			Name:      "handler_attempts_total",
			Help:      "Message handler invocations.",
		}, []string{"handler"}),
		handlerSuccesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trackmaster",
			Subsystem: "run",
			Name:      "handler_successes_total",
			Help:      "Message handler invocations that succeeded.",
		}, []string{"handler"}),
		handlerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trackmaster",
			Subsystem: "run",
			Name:      "handler_failures_total",
			Help:      "Message handler invocations that failed.",
		}, []string{"handler"}),
		handlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "trackmaster",
			Subsystem: "run",
			Name:      "handler_duration_seconds",
			Help:      "Message handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"handler"}),
		correctionRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trackmaster",
			Subsystem: "run",
			Name:      "correction_records_total",
			Help:      "Corrected records, by confidence outcome.",
		}, []string{"outcome"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trackmaster",
			Subsystem: "run",
			Name:      "decisions_total",
			Help:      "Terminal run decisions, by outcome.",
		}, []string{"outcome"}),
		timeoutExpiries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trackmaster",
			Subsystem: "run",
			Name:      "timeout_expiries_total",
			Help:      "Runs auto-rejected by the decision timeout.",
		}),
	}

	registry.MustRegister(
		m.operationAttempts, m.operationSuccesses, m.operationFailures,
		m.operationDuration, m.dbQueryDuration,
		m.handlerAttempts, m.handlerSuccesses, m.handlerFailures, m.handlerDuration,
		m.correctionRecords, m.decisions, m.timeoutExpiries,
	)

	return m
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation string) {
	m.operationAttempts.WithLabelValues(operation).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation string) {
	m.operationSuccesses.WithLabelValues(operation).Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation string) {
	m.operationFailures.WithLabelValues(operation).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation string, duration time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordDBQueryDuration(_ context.Context, duration time.Duration) {
	m.dbQueryDuration.Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordHandlerAttempt(handlerName string) {
	m.handlerAttempts.WithLabelValues(handlerName).Inc()
}

func (m *prometheusMetrics) RecordHandlerSuccess(handlerName string) {
	m.handlerSuccesses.WithLabelValues(handlerName).Inc()
}

func (m *prometheusMetrics) RecordHandlerFailure(handlerName string) {
	m.handlerFailures.WithLabelValues(handlerName).Inc()
}

func (m *prometheusMetrics) RecordHandlerDuration(handlerName string, seconds float64) {
	m.handlerDuration.WithLabelValues(handlerName).Observe(seconds)
}

func (m *prometheusMetrics) RecordCorrectionBatch(_ context.Context, total, lowConfidence int, autoCorrected bool) {
	m.correctionRecords.WithLabelValues("low_confidence").Add(float64(lowConfidence))
	m.correctionRecords.WithLabelValues("resolved").Add(float64(total - lowConfidence))
	if autoCorrected {
		m.correctionRecords.WithLabelValues("auto_corrected_batch").Inc()
	}
}

func (m *prometheusMetrics) RecordDecision(_ context.Context, outcome string) {
	m.decisions.WithLabelValues(outcome).Inc()
}

func (m *prometheusMetrics) RecordTimeoutExpiry(_ context.Context) {
	m.timeoutExpiries.Inc()
}

// NoOpMetrics is the metrics implementation used in tests.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordOperationAttempt(context.Context, string)                {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string)                {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string)                {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, time.Duration) {}
func (NoOpMetrics) RecordDBQueryDuration(context.Context, time.Duration)          {}
func (NoOpMetrics) RecordHandlerAttempt(string)                                   {}
func (NoOpMetrics) RecordHandlerSuccess(string)                                   {}
func (NoOpMetrics) RecordHandlerFailure(string)                                   {}
func (NoOpMetrics) RecordHandlerDuration(string, float64)                         {}
func (NoOpMetrics) RecordCorrectionBatch(context.Context, int, int, bool)         {}
func (NoOpMetrics) RecordDecision(context.Context, string)                        {}
func (NoOpMetrics) RecordTimeoutExpiry(context.Context)                           {}
