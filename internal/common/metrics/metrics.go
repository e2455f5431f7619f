// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_turns_completed_total",
			Help: "Total number of conversation turns completed",
		},
		[]string{"intent"},
	)

	TurnsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_turns_failed_total",
			Help: "Total number of conversation turns failed",
		},
		[]string{"intent", "error_code"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_turn_duration_seconds",
			Help: "Duration of turn processing in seconds",
		},
		[]string{"intent"},
	)

	SearchTierHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_search_tier_hits_total",
			Help: "Search resolutions by winning tier",
		},
		[]string{"tier"},
	)

	SpellCorrections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_spell_corrections_total",
			Help: "Spelling corrections applied by token kind",
		},
		[]string{"kind"},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assistant_sessions_active",
			Help: "Number of live authenticated sessions",
		},
	)
)
