package metric

import "github.com/prometheus/client_golang/prometheus"

// DrainCollector reports whether the process has begun shutting down.
// The value is read at scrape time.
type DrainCollector struct {
	desc     *prometheus.Desc
	draining func() bool
}

// NewDrainCollector creates a collector backed by the draining func.
func NewDrainCollector(namespace string, draining func() bool) *DrainCollector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &DrainCollector{
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "shutdown", "draining"),
			"1 once a termination event has been received, otherwise 0.",
			nil, nil,
		),
		draining: draining,
	}
}

// Describe implements prometheus.Collector.
func (c *DrainCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *DrainCollector) Collect(ch chan<- prometheus.Metric) {
	v := 0.0
	if c.draining != nil && c.draining() {
		v = 1
	}
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, v)
}
