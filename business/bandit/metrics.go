package bandit

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ModelLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_model_loads_total",
			Help: "User model lookups by the layer that answered (memory, cache, durable, fresh).",
		},
		[]string{"source"},
	)

	ModelFlushesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_model_flushes_total",
			Help: "Durable user model writes by result.",
		},
		[]string{"result"},
	)

	ResidentModels = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bandit_resident_models",
			Help: "User models currently held in memory.",
		},
	)
)

func init() {
	prometheus.MustRegister(ModelLoadsTotal, ModelFlushesTotal, ResidentModels)
}
