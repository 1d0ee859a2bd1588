package alerts

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "opswatch"

var alertsIngestedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "alerts",
		Name:      "ingested_total",
		Help:      "Total alerts ingested by source and severity",
	},
	[]string{"via", "severity"},
)

func recordAlertIngested(via, severity string) {
	alertsIngestedTotal.WithLabelValues(via, severity).Inc()
}
