// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "sat"

// Outcome labels.
const (
	Succeeded = "succeeded"
	Failed    = "failed"
)

// Collector is a prometheus.Collector that collects metrics about the
// migration, repair and sync stages. A nil *Collector is valid and
// records nothing.
type Collector struct {
	reads       *prometheus.CounterVec
	writes      *prometheus.CounterVec
	retries     prometheus.Counter
	uploadBytes prometheus.Counter
	violations  *prometheus.GaugeVec
	readTime    prometheus.Histogram
}

// NewCollector returns a new Collector.
func NewCollector() *Collector {
	return &Collector{
		reads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "iteration_reads_total",
				Help:      "The number of iteration reads attempted, by outcome.",
			}, []string{"outcome"},
		),
		writes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "batch_writes_total",
				Help:      "The number of operation batches written, by outcome.",
			}, []string{"outcome"},
		),
		retries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "batch_write_retries_total",
				Help:      "The number of failed write attempts that were retried or abandoned.",
			},
		),
		uploadBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "archive_upload_bytes_total",
				Help:      "The number of archive bytes uploaded to target servers.",
			},
		),
		violations: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "validation_violations",
				Help:      "The number of violations found by the last validation pass, by rule.",
			}, []string{"rule"},
		),
		readTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "iteration_read_seconds",
				Help:      "The time taken to read one iteration.",
				Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
			},
		),
	}
}

// ReadFinished records an iteration read.
func (c *Collector) ReadFinished(outcome string, seconds float64) {
	if c == nil {
		return
	}
	c.reads.WithLabelValues(outcome).Inc()
	c.readTime.Observe(seconds)
}

// WriteFinished records the final outcome of a batch write.
func (c *Collector) WriteFinished(outcome string) {
	if c == nil {
		return
	}
	c.writes.WithLabelValues(outcome).Inc()
}

// WriteRetried records one failed write attempt.
func (c *Collector) WriteRetried() {
	if c == nil {
		return
	}
	c.retries.Inc()
}

// Uploaded records n uploaded archive bytes.
func (c *Collector) Uploaded(n int64) {
	if c == nil {
		return
	}
	c.uploadBytes.Add(float64(n))
}

// Violations records the per-rule counts of a validation pass.
func (c *Collector) Violations(counts map[string]int) {
	if c == nil {
		return
	}
	c.violations.Reset()
	for rule, n := range counts {
		c.violations.WithLabelValues(rule).Set(float64(n))
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.reads.Describe(ch)
	c.writes.Describe(ch)
	c.retries.Describe(ch)
	c.uploadBytes.Describe(ch)
	c.violations.Describe(ch)
	c.readTime.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.reads.Collect(ch)
	c.writes.Collect(ch)
	c.retries.Collect(ch)
	c.uploadBytes.Collect(ch)
	c.violations.Collect(ch)
	c.readTime.Collect(ch)
}
