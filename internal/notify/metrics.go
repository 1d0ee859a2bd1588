package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "opswatch"

var (
	emailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "emails_total",
			Help:      "Total assignment emails by outcome",
		},
		[]string{"status"},
	)

	emailDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "email_duration_seconds",
			Help:      "Time to deliver an assignment email",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)
)

func recordEmail(status string) {
	emailsTotal.WithLabelValues(status).Inc()
}

func recordEmailDuration(d time.Duration) {
	emailDuration.Observe(d.Seconds())
}
