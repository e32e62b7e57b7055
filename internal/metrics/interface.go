package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncPhaseTransitions(to string)
	IncStaleTriggers()
	IncRoundsScored()
	IncGamesCompleted()
	IncRatingUpdates()
	IncLobbiesSwept()
	IncNotifSent()
	IncNotifFailed()
	ObserveHandlerDuration(duration float64)
	SetStartupTime(duration float64)
}
