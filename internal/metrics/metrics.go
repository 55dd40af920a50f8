// Package metrics instruments the octave pipeline and its operations with
// Prometheus collectors.
//
// Metrics:
//   - octave_operations_total: operations by name and result
//   - octave_operation_duration_seconds: operation latency by name
//   - octave_stage_duration_seconds: pipeline stage latency by stage
//   - octave_validation_errors_total: validation errors by code
//   - octave_repairs_total: repair log entries by tier and whether applied
//
// A nil *Collector is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "octave"

// Operation results.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Collector owns the registry and every octave metric.
type Collector struct {
	registry *prometheus.Registry

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	stageDuration     *prometheus.HistogramVec
	validationErrors  *prometheus.CounterVec
	repairsTotal      *prometheus.CounterVec
}

// NewCollector creates and registers the metrics. If registry is nil a
// fresh one is created.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	c := &Collector{
		registry: registry,
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "operations_total",
				Help:      "Total number of operations by name and result",
			},
			[]string{"operation", "result"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of operations in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs to ~26s
			},
			[]string{"operation"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 12), // 1µs to ~4s
			},
			[]string{"stage"},
		),
		validationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "validation_errors_total",
				Help:      "Total number of validation errors by code",
			},
			[]string{"code"},
		),
		repairsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "repairs_total",
				Help:      "Total number of repair log entries by tier",
			},
			[]string{"tier", "applied"},
		),
	}
	registry.MustRegister(
		c.operationsTotal,
		c.operationDuration,
		c.stageDuration,
		c.validationErrors,
		c.repairsTotal,
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveOperation records one completed operation.
func (c *Collector) ObserveOperation(op, result string, d time.Duration) {
	if c == nil {
		return
	}
	c.operationsTotal.WithLabelValues(op, result).Inc()
	c.operationDuration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveStage records the duration of one pipeline stage.
func (c *Collector) ObserveStage(stage string, d time.Duration) {
	if c == nil {
		return
	}
	c.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// CountValidationError records one validation error code.
func (c *Collector) CountValidationError(code string) {
	if c == nil {
		return
	}
	c.validationErrors.WithLabelValues(code).Inc()
}

// CountRepair records one repair log entry.
func (c *Collector) CountRepair(tier string, applied bool) {
	if c == nil {
		return
	}
	c.repairsTotal.WithLabelValues(tier, strconv.FormatBool(applied)).Inc()
}

// Handler returns an HTTP handler exposing the registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
