package ai

import "sync"

// MockDecider is a mock implementation of the Decider interface for
// testing. It is safe for concurrent use.
type MockDecider struct {
	mu sync.Mutex

	// Spies for method calls
	ChooseCardFunc       func(playerID, promptCardID string) (*CardChoice, error)
	ChooseVoteTargetFunc func(playerID string, candidateIDs []string) (*VoteChoice, error)

	// Call records
	ChooseCardCalls       []string
	ChooseVoteTargetCalls []string
}

// NewMock creates a new mock Decider.
func NewMock() *MockDecider {
	return &MockDecider{}
}

func (m *MockDecider) ChooseCard(playerID, promptCardID string) (*CardChoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChooseCardCalls = append(m.ChooseCardCalls, playerID)
	if m.ChooseCardFunc != nil {
		return m.ChooseCardFunc(playerID, promptCardID)
	}
	return &CardChoice{CardID: "mock-card", CardName: "Mock Card", Confidence: 1}, nil
}

func (m *MockDecider) ChooseVoteTarget(playerID string, candidateIDs []string) (*VoteChoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChooseVoteTargetCalls = append(m.ChooseVoteTargetCalls, playerID)
	if m.ChooseVoteTargetFunc != nil {
		return m.ChooseVoteTargetFunc(playerID, candidateIDs)
	}
	for _, id := range candidateIDs {
		if id != playerID {
			return &VoteChoice{TargetID: id, Confidence: 1}, nil
		}
	}
	return nil, nil
}
