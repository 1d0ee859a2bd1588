package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "opswatch"

var broadcastsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "realtime",
		Name:      "broadcasts_total",
		Help:      "Total events broadcast to WebSocket clients",
	},
	[]string{"event"},
)

var broadcastRecipients = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "realtime",
		Name:      "broadcast_recipients_total",
		Help:      "Total per-client deliveries across all broadcasts",
	},
	[]string{"event"},
)

func recordBroadcast(event string, recipients int) {
	broadcastsTotal.WithLabelValues(event).Inc()
	broadcastRecipients.WithLabelValues(event).Add(float64(recipients))
}
