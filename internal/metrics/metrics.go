// Package metrics exposes Prometheus collectors for pass execution and center
// estimation.
//
// Collectors live on a private registry so tests and multiple App instances do
// not collide. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the collectors.
type Metrics struct {
	registry *prometheus.Registry

	passesTotal   *prometheus.CounterVec
	passDuration  prometheus.Histogram
	rowsTotal     prometheus.Counter
	runsTotal     *prometheus.CounterVec
	centerValues  prometheus.Histogram
	centerSamples prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		passesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tomoflow_passes_total",
			Help: "Sinogram passes executed, by result",
		}, []string{"result"}),
		passDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tomoflow_pass_duration_seconds",
			Help:    "Wall time of one sinogram pass",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		rowsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tomoflow_rows_total",
			Help: "Detector rows covered by successful passes",
		}),
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tomoflow_runs_total",
			Help: "Command runs by operation and result",
		}, []string{"operation", "result"}),
		centerValues: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tomoflow_center_estimate_pixels",
			Help:    "Per-slice rotation center estimates",
			Buckets: prometheus.LinearBuckets(0, 256, 16),
		}),
		centerSamples: factory.NewCounter(prometheus.CounterOpts{
			Name: "tomoflow_center_samples_total",
			Help: "Center values collected from estimator runs",
		}),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObservePass records one pass.
func (m *Metrics) ObservePass(rows int, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.passesTotal.WithLabelValues(result(err)).Inc()
	m.passDuration.Observe(d.Seconds())
	if err == nil {
		m.rowsTotal.Add(float64(rows))
	}
}

// ObserveRun records one command run.
func (m *Metrics) ObserveRun(operation string, err error) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(operation, result(err)).Inc()
}

// ObserveCenter records the values of one estimation.
func (m *Metrics) ObserveCenter(values []float64) {
	if m == nil {
		return
	}
	for _, v := range values {
		m.centerValues.Observe(v)
	}
	m.centerSamples.Add(float64(len(values)))
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
