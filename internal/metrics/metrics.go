// Package metrics exposes Prometheus instrumentation for report runs
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the report collectors and the registry they are served from
type Metrics struct {
	registry        *prometheus.Registry
	reportsTotal    *prometheus.CounterVec
	failuresTotal   *prometheus.CounterVec
	eventsTotal     *prometheus.CounterVec
	intervalsTotal  prometheus.Counter
	runDuration     *prometheus.HistogramVec
	lastSuccessTime *prometheus.GaugeVec
}

// New creates the collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_reports_total",
			Help: "Reports delivered by period.",
		}, []string{"period"}),
		failuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_report_failures_total",
			Help: "Report failures by stage (fetch, write, send, recipients).",
		}, []string{"stage"}),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_events_total",
			Help: "Pass events seen by the pipeline by outcome.",
		}, []string{"outcome"}),
		intervalsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "attendance_intervals_total",
			Help: "Attendance intervals produced.",
		}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attendance_run_duration_seconds",
			Help:    "Duration of a full report run by period.",
			Buckets: prometheus.DefBuckets,
		}, []string{"period"}),
		lastSuccessTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "attendance_last_success_timestamp_seconds",
			Help: "Unix time of the last run that delivered every report.",
		}, []string{"period"}),
	}

	m.registry.MustRegister(
		m.reportsTotal,
		m.failuresTotal,
		m.eventsTotal,
		m.intervalsTotal,
		m.runDuration,
		m.lastSuccessTime,
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ReportDelivered counts one department report sent for period
func (m *Metrics) ReportDelivered(period string) {
	if m == nil {
		return
	}
	m.reportsTotal.WithLabelValues(period).Inc()
}

// Failure counts a failed stage of a department report
func (m *Metrics) Failure(stage string) {
	if m == nil {
		return
	}
	m.failuresTotal.WithLabelValues(stage).Inc()
}

// Events records pipeline counters for one department batch
func (m *Metrics) Events(raw, rejected, unknown, bounces, intervals int) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues("raw").Add(float64(raw))
	m.eventsTotal.WithLabelValues("rejected_status").Add(float64(rejected))
	m.eventsTotal.WithLabelValues("unknown_direction").Add(float64(unknown))
	m.eventsTotal.WithLabelValues("bounce").Add(float64(bounces))
	m.intervalsTotal.Add(float64(intervals))
}

// RunFinished records run duration and, for clean runs, the completion time
func (m *Metrics) RunFinished(period string, duration time.Duration, ok bool, at time.Time) {
	if m == nil {
		return
	}
	m.runDuration.WithLabelValues(period).Observe(duration.Seconds())
	if ok {
		m.lastSuccessTime.WithLabelValues(period).Set(float64(at.Unix()))
	}
}

// ReportsCounter exposes the delivered-reports counter
func (m *Metrics) ReportsCounter() *prometheus.CounterVec {
	return m.reportsTotal
}
