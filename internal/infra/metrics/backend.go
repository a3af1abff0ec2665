package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(backendCallLatencyMs, backendPromptTokens) }

var (
	backendCallLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_call_latency_ms",
			Help:    "Backend call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"op", "success"},
	)

	backendPromptTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_prompt_tokens",
			Help: "Estimated prompt tokens submitted per provider.",
		},
		[]string{"provider"},
	)
)

func ObserveBackendCall(op string, latencyMs int, success bool) {
	backendCallLatencyMs.WithLabelValues(norm(op), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func AddPromptTokens(provider string, n int) {
	backendPromptTokens.WithLabelValues(norm(provider)).Add(float64(n))
}
