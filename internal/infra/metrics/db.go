package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(storeQueries, storeQueryDuration, certificateDecodes) }

var storeQueries = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "store_queries_total",
		Help: "Queries issued against the record store by driver, operation and outcome.",
	},
	[]string{"driver", "op", "result"},
)

var storeQueryDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "store_query_duration_seconds",
		Help:    "Record store query latency.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"driver", "op"},
)

var certificateDecodes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "certificate_decode_total",
		Help: "Certificate option rows decoded (ok) or skipped as malformed.",
	},
	[]string{"result"}, // ok | skipped
)

// ObserveStoreQuery records one store round trip.
func ObserveStoreQuery(driver, op string, started time.Time, err error) {
	storeQueries.WithLabelValues(norm(driver), op, outcome(err)).Inc()
	storeQueryDuration.WithLabelValues(norm(driver), op).Observe(time.Since(started).Seconds())
}

func IncCertificateDecode(result string) {
	certificateDecodes.WithLabelValues(norm(result)).Inc()
}

// PoolStats is a point-in-time view of a connection pool.
type PoolStats struct {
	Total int32
	Idle  int32
	InUse int32
}

// poolCollector reads pool statistics at scrape time.
type poolCollector struct {
	desc  *prometheus.Desc
	stats func() PoolStats
}

// NewPoolCollector exposes db_pool_stats{state} backed by the stats func.
func NewPoolCollector(driver string, stats func() PoolStats) prometheus.Collector {
	return &poolCollector{
		desc: prometheus.NewDesc(
			"db_pool_stats",
			"Current state of the database connection pool.",
			[]string{"state"}, // 'total', 'idle', 'in_use'
			prometheus.Labels{"driver": norm(driver)},
		),
		stats: stats,
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) { ch <- c.desc }

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(s.Total), "total")
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(s.Idle), "idle")
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(s.InUse), "in_use")
}
