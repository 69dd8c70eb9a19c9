// Package metric provides Prometheus metrics for rollcall.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: private registry, line server metrics, HTTP handler
//   - collector.go: scrape-time collector for record store row counts
//
// Metrics are exposed at /metrics by the admin server.
package metric
