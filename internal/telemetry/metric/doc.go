// Package metric provides Prometheus metrics for graceserve.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: registry, HTTP request and shutdown lifecycle metrics
//   - collector.go: collector exposing whether the process is draining
//
// Metrics are exposed in Prometheus text format by Registry.Handler.
package metric
