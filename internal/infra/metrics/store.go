package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(storeMutationsTotal) }

var storeMutationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "store_mutations_total",
		Help: "Committed store mutations by store and operation.",
	},
	[]string{"store", "op"}, // e.g. store="conversation", op="append_message"
)

func IncStoreMutation(store, op string) {
	storeMutationsTotal.WithLabelValues(norm(store), norm(op)).Inc()
}
