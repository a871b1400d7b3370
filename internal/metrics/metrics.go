package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "servicepulse",
		Name:      "cycles_total",
		Help:      "Completed monitoring cycles by outcome.",
	}, []string{"outcome"})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "servicepulse",
		Name:      "cycle_duration_seconds",
		Help:      "Wall-clock duration of a full monitoring cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	ProbesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "servicepulse",
		Name:      "probes_total",
		Help:      "Probe results by classified status.",
	}, []string{"status"})

	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "servicepulse",
		Name:      "notifications_sent_total",
		Help:      "Notification recipients resolved and dispatched.",
	})

	DispatchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "servicepulse",
		Name:      "dispatch_errors_total",
		Help:      "Delivery failures by channel (durable, broadcast, email).",
	}, []string{"channel"})
)
