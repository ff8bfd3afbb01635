package recommendation

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FeedbackEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_feedback_events_total",
			Help: "Count of bandit feedback events by event_type.",
		},
		[]string{"event_type"},
	)

	RecommendationsServedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_recommendations_served_total",
			Help: "Recommendations returned, by reason tag (exploit, explore).",
		},
		[]string{"reason"},
	)

	NarrativeFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_narrative_fallbacks_total",
			Help: "Explanations replaced by template text, by cause.",
		},
		[]string{"cause"},
	)
)

func init() {
	prometheus.MustRegister(FeedbackEventsTotal, RecommendationsServedTotal, NarrativeFallbacksTotal)
}
