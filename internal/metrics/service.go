package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		PhaseTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cardclash_phase_transitions_total",
			Help: "The total number of committed phase transitions, by target phase.",
		}, []string{"to"}),
		StaleTriggers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cardclash_stale_triggers_total",
			Help: "The total number of handler invocations that lost the phase or scoring guard.",
		}),
		RoundsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cardclash_rounds_scored_total",
			Help: "The total number of rounds committed by the results scorer.",
		}),
		GamesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cardclash_games_completed_total",
			Help: "The total number of matches that reached game over.",
		}),
		RatingUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cardclash_rating_updates_total",
			Help: "The total number of skill rating changes persisted.",
		}),
		LobbiesSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cardclash_lobbies_swept_total",
			Help: "The total number of abandoned or empty lobbies deleted by the sweeper.",
		}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cardclash_notifications_sent_total",
			Help: "The total number of notifications successfully sent.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cardclash_notifications_failed_total",
			Help: "The total number of notifications that failed to send.",
		}),
		HandlerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cardclash_handler_duration_seconds",
			Help:    "The duration of individual round-progression handler invocations.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cardclash_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.PhaseTransitions,
		s.StaleTriggers,
		s.RoundsScored,
		s.GamesCompleted,
		s.RatingUpdates,
		s.LobbiesSwept,
		s.NotifSent,
		s.NotifFailed,
		s.HandlerDuration,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncPhaseTransitions(to string) {
	s.PhaseTransitions.WithLabelValues(to).Inc()
}

func (s *Service) IncStaleTriggers() {
	s.StaleTriggers.Inc()
}

func (s *Service) IncRoundsScored() {
	s.RoundsScored.Inc()
}

func (s *Service) IncGamesCompleted() {
	s.GamesCompleted.Inc()
}

func (s *Service) IncRatingUpdates() {
	s.RatingUpdates.Inc()
}

func (s *Service) IncLobbiesSwept() {
	s.LobbiesSwept.Inc()
}

func (s *Service) IncNotifSent() {
	s.NotifSent.Inc()
}

func (s *Service) IncNotifFailed() {
	s.NotifFailed.Inc()
}

func (s *Service) ObserveHandlerDuration(duration float64) {
	s.HandlerDuration.Observe(duration)
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
