package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(persistenceSavesTotal) }

var persistenceSavesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "persistence_saves_total",
		Help: "Snapshot persistence outcomes by namespace (ok/error/dropped).",
	},
	[]string{"namespace", "result"},
)

func IncPersistence(namespace, result string) {
	persistenceSavesTotal.WithLabelValues(norm(namespace), norm(result)).Inc()
}
