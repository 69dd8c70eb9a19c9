package metric

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CountsFunc returns row counts keyed by table name.
type CountsFunc func(ctx context.Context) (map[string]int64, error)

// Collector exports store row counts on every scrape.
type Collector struct {
	counts  CountsFunc
	timeout time.Duration

	rows   *prometheus.Desc
	failed *prometheus.Desc
}

// NewCollector creates a collector that calls counts on each scrape.
func NewCollector(counts CountsFunc) *Collector {
	return &Collector{
		counts:  counts,
		timeout: 2 * time.Second,
		rows: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "rows"),
			"Rows per table in the record store.",
			[]string{"table"}, nil,
		),
		failed: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "scrape_error"),
			"1 if the last store scrape failed.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.rows
	ch <- c.failed
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	counts, err := c.counts(ctx)
	if err != nil {
		ch <- prometheus.MustNewConstMetric(c.failed, prometheus.GaugeValue, 1)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.failed, prometheus.GaugeValue, 0)
	for table, n := range counts {
		ch <- prometheus.MustNewConstMetric(c.rows, prometheus.GaugeValue, float64(n), table)
	}
}
