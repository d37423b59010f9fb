package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(membershipCalls, membershipLatency) }

var membershipCalls = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "membership_calls_total",
		Help: "Calls to the membership service by operation and outcome.",
	},
	[]string{"op", "result"},
)

var membershipLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "membership_call_duration_seconds",
		Help:    "Membership service call latency.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"op"},
)

func ObserveMembershipCall(op string, started time.Time, err error) {
	membershipCalls.WithLabelValues(op, outcome(err)).Inc()
	membershipLatency.WithLabelValues(op).Observe(time.Since(started).Seconds())
}
