// Package metrics provides Prometheus instrumentation for table builders and
// the text envelope codec.
//
// # Overview
//
// A Collector owns its metrics and registers them on a Registry it is given
// (or a fresh one), so several collectors can coexist in one process and in
// tests without touching the default registry.
//
// # Basic Usage
//
//	collector := metrics.NewCollector("tables", nil)
//	b := tables.NewBuilder[float64](3, tables.WithMetrics(collector))
//
//	// Expose on an HTTP handler
//	http.Handle("/metrics", promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{}))
//
// All Collector methods are safe on a nil receiver, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/tables/pkg/errors"
)

// Result labels
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Codec directions
const (
	DirectionEncode = "encode"
	DirectionDecode = "decode"
)

// Collector groups the builder and codec metrics of one component
type Collector struct {
	namespace string
	registry  *prometheus.Registry

	edits         *prometheus.CounterVec   // builder edits by operation and result
	rejects       *prometheus.CounterVec   // rejected builder edits by operation and error type
	cellsComputed *prometheus.CounterVec   // cells produced by fill/derive/replace
	codecOps      *prometheus.CounterVec   // codec calls by direction and result
	codecRows     *prometheus.CounterVec   // rows written or indexed
	codecBytes    *prometheus.CounterVec   // body bytes written or read
	codecLatency  *prometheus.HistogramVec // codec call duration
}

// NewCollector creates a collector whose metrics are prefixed with
// namespace. If registry is nil a private registry is created.
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	factory := promauto.With(registry)

	return &Collector{
		namespace: namespace,
		registry:  registry,
		edits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "builder",
			Name:      "edits_total",
			Help:      "Structural builder edits by operation and result",
		}, []string{"operation", "result"}),
		rejects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "builder",
			Name:      "rejected_edits_total",
			Help:      "Rejected builder edits by operation and error type",
		}, []string{"operation", "error_type"}),
		cellsComputed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "builder",
			Name:      "cells_computed_total",
			Help:      "Cells materialized by generators and row expressions",
		}, []string{"operation"}),
		codecOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "codec",
			Name:      "operations_total",
			Help:      "Text codec calls by direction and result",
		}, []string{"direction", "result"}),
		codecRows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "codec",
			Name:      "rows_total",
			Help:      "Rows written or indexed by the text codec",
		}, []string{"direction"}),
		codecBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "codec",
			Name:      "body_bytes_total",
			Help:      "Body bytes written or read by the text codec",
		}, []string{"direction"}),
		codecLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "codec",
			Name:      "duration_seconds",
			Help:      "Text codec call duration",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"direction"}),
	}
}

// Registry returns the registry the collector's metrics live on
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordEdit counts a builder edit. A non-nil err is counted as rejected
// under its error type.
func (c *Collector) RecordEdit(operation string, err error) {
	if c == nil {
		return
	}
	if err != nil {
		c.edits.WithLabelValues(operation, ResultError).Inc()
		c.rejects.WithLabelValues(operation, string(errors.TypeOf(err))).Inc()
		return
	}
	c.edits.WithLabelValues(operation, ResultSuccess).Inc()
}

// RecordCells counts cells materialized by an operation
func (c *Collector) RecordCells(operation string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.cellsComputed.WithLabelValues(operation).Add(float64(n))
}

// RecordCodec records one codec call
func (c *Collector) RecordCodec(direction string, rows, bytes int, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	c.codecOps.WithLabelValues(direction, result).Inc()
	c.codecLatency.WithLabelValues(direction).Observe(elapsed.Seconds())
	if err != nil {
		return
	}
	c.codecRows.WithLabelValues(direction).Add(float64(rows))
	c.codecBytes.WithLabelValues(direction).Add(float64(bytes))
}

// Timer measures elapsed time for an operation
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
//
// Example:
//
//	timer := metrics.NewTimer("encode")
//	env, err := textio.ToTextEnvelope(ctx, table)
//	collector.RecordCodec(metrics.DirectionEncode, table.RowsSize(), len(env.Data), timer.Stop(), err)
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the timer's name
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed duration since creation. It may be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
