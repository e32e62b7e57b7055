package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	PhaseTransitions   *prometheus.CounterVec
	StaleTriggers      prometheus.Counter
	RoundsScored       prometheus.Counter
	GamesCompleted     prometheus.Counter
	RatingUpdates      prometheus.Counter
	LobbiesSwept       prometheus.Counter
	NotifSent          prometheus.Counter
	NotifFailed        prometheus.Counter
	HandlerDuration    prometheus.Histogram
	StartupTimeSeconds prometheus.Gauge
}
