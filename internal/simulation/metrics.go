package simulation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "opswatch"

var simulatedIncidentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "simulation",
		Name:      "incidents_total",
		Help:      "Total demo-mode incidents created by template type",
	},
	[]string{"template"},
)

func recordSimulatedIncident(template string) {
	simulatedIncidentsTotal.WithLabelValues(template).Inc()
}
