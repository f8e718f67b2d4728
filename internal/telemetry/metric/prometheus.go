package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "graceserve"

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Shutdown metrics
	ShutdownSignals  *prometheus.CounterVec
	ShutdownOutcomes *prometheus.CounterVec
	ShutdownDuration prometheus.Gauge

	BuildInfo *prometheus.GaugeVec
}

// NewRegistry creates a registry with Go and process collectors and all
// application metrics registered under namespace.
func NewRegistry(namespace string) *Registry {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	r := &Registry{
		reg: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
		ShutdownSignals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "shutdown",
			Name:      "signals_total",
			Help:      "Termination signals received, including ignored repeats.",
		}, []string{"signal"}),
		ShutdownOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "shutdown",
			Name:      "outcomes_total",
			Help:      "Completed shutdown sequences by outcome.",
		}, []string{"outcome"}),
		ShutdownDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "shutdown",
			Name:      "duration_seconds",
			Help:      "Duration of the last shutdown sequence in seconds.",
		}),
		BuildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information; the value is always 1.",
		}, []string{"version", "commit", "go_version"}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.RequestsTotal,
		r.RequestDuration,
		r.RequestsInFlight,
		r.ShutdownSignals,
		r.ShutdownOutcomes,
		r.ShutdownDuration,
		r.BuildInfo,
	)

	return r
}

// Register adds a custom collector.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.reg.Register(c)
}

// Gatherer returns the underlying gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler for the metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// SetBuildInfo publishes the build_info gauge.
func (r *Registry) SetBuildInfo(version, commit, goVersion string) {
	r.BuildInfo.WithLabelValues(version, commit, goVersion).Set(1)
}

// SignalReceived counts a termination signal.
func (r *Registry) SignalReceived(signal string) {
	r.ShutdownSignals.WithLabelValues(signal).Inc()
}

// ShutdownFinished records the outcome and duration of a shutdown sequence.
func (r *Registry) ShutdownFinished(outcome string, elapsed time.Duration) {
	r.ShutdownOutcomes.WithLabelValues(outcome).Inc()
	r.ShutdownDuration.Set(elapsed.Seconds())
}

// ObserveRequest records one completed HTTP request.
func (r *Registry) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	r.RequestsTotal.WithLabelValues(method, route, statusLabel(status)).Inc()
	r.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func statusLabel(status int) string {
	if status < 100 || status > 999 {
		return "unknown"
	}
	return strconv.Itoa(status)
}
