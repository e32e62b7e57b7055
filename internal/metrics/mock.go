package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It counts calls instead of exporting them.
type Mock struct {
	mu sync.Mutex

	PhaseTransitionCalls map[string]int
	StaleTriggerCount    int
	RoundsScoredCount    int
	GamesCompletedCount  int
	RatingUpdateCount    int
	LobbiesSweptCount    int
	NotifSentCount       int
	NotifFailedCount     int
	HandlerDurations     []float64
	StartupTimes         []float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{PhaseTransitionCalls: make(map[string]int)}
}

func (m *Mock) IncPhaseTransitions(to string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PhaseTransitionCalls[to]++
}

func (m *Mock) IncStaleTriggers() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StaleTriggerCount++
}

func (m *Mock) IncRoundsScored() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RoundsScoredCount++
}

func (m *Mock) IncGamesCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GamesCompletedCount++
}

func (m *Mock) IncRatingUpdates() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RatingUpdateCount++
}

func (m *Mock) IncLobbiesSwept() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LobbiesSweptCount++
}

func (m *Mock) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifSentCount++
}

func (m *Mock) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifFailedCount++
}

func (m *Mock) ObserveHandlerDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HandlerDurations = append(m.HandlerDurations, duration)
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartupTimes = append(m.StartupTimes, duration)
}
