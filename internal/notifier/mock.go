package notifier

import (
	"sync"

	"github.com/cardclash/cardclash/internal/game"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	SendGameSummaryFunc       func(summary *GameSummary, dryRun bool) error
	SendRatingLeaderboardFunc func(players []game.PlayerInfo, dryRun bool) error

	// Call records
	SendGameSummaryCalls       []*GameSummary
	SendRatingLeaderboardCalls [][]game.PlayerInfo
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendGameSummaryCalls = nil
	m.SendRatingLeaderboardCalls = nil
}

func (m *Mock) SendGameSummary(summary *GameSummary, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendGameSummaryCalls = append(m.SendGameSummaryCalls, summary)
	if m.SendGameSummaryFunc != nil {
		return m.SendGameSummaryFunc(summary, dryRun)
	}
	return nil
}

func (m *Mock) SendRatingLeaderboard(players []game.PlayerInfo, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRatingLeaderboardCalls = append(m.SendRatingLeaderboardCalls, players)
	if m.SendRatingLeaderboardFunc != nil {
		return m.SendRatingLeaderboardFunc(players, dryRun)
	}
	return nil
}
