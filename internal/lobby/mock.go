package lobby

import (
	"errors"
	"sync"

	"github.com/cardclash/cardclash/internal/game"
)

// MockStore is a mock implementation of the LobbyStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreateLobbyFunc          func(lobby *game.Lobby) error
	GetLobbyFunc             func(lobbyID string) (*game.Lobby, error)
	DeleteLobbyFunc          func(lobbyID string) error
	GetAllLobbiesFunc        func() ([]*game.Lobby, error)
	TouchActivityFunc        func(lobbyID string) error
	UpsertPlayerFunc         func(player game.PlayerInfo) error
	AddPlayerToLobbyFunc     func(lobbyID, playerID string) error
	GetRosterFunc            func(lobbyID string) ([]game.PlayerInfo, error)
	IsKnownPlayerFunc        func(playerID string) bool
	RecordSubmissionFunc     func(sub game.Submission) error
	RecordVoteFunc           func(vote game.Vote) error
	RecordAbstentionFunc     func(ab game.Abstention) error
	GetSubmissionsFunc       func(lobbyID string, round int) ([]game.Submission, error)
	GetVotesFunc             func(lobbyID string, round int) ([]game.Vote, error)
	HasActedFunc             func(lobbyID string, round int, playerID string) (bool, error)
	CountRoundActorsFunc     func(lobbyID string, round int) (int, error)
	AdvancePhaseFunc         func(lobbyID string, from, to game.Phase, timeLeft int) (bool, error)
	CommitRoundResultsFunc   func(lobbyID string, round int, winner string, results *game.RoundResults, deltas map[string]int) (bool, error)
	ResetForNextRoundFunc    func(lobbyID string, promptCardID string, timeLeft int) (bool, error)
	GetScoresFunc            func(lobbyID string) (map[string]int, error)
	UpdateRatingFunc         func(playerID string, newRating int) error
	GetAllRatingsFunc        func() ([]int, error)
	GetRatingLeaderboardFunc func() ([]game.PlayerInfo, error)
	ClearFunc                func()
	ClearLobbyFunc           func(lobbyID string)

	// Call records
	CreateLobbyCalls        []*game.Lobby
	DeleteLobbyCalls        []string
	RecordSubmissionCalls   []game.Submission
	RecordVoteCalls         []game.Vote
	RecordAbstentionCalls   []game.Abstention
	AdvancePhaseCalls       []AdvancePhaseCall
	CommitRoundResultsCalls []CommitRoundResultsCall
	ResetForNextRoundCalls  []string
	UpdateRatingCalls       []UpdateRatingCall
	TouchActivityCalls      []string
}

// AdvancePhaseCall holds the arguments for a call to AdvancePhase.
type AdvancePhaseCall struct {
	LobbyID  string
	From     game.Phase
	To       game.Phase
	TimeLeft int
}

// CommitRoundResultsCall holds the arguments for a call to CommitRoundResults.
type CommitRoundResultsCall struct {
	LobbyID string
	Round   int
	Winner  string
	Results *game.RoundResults
	Deltas  map[string]int
}

// UpdateRatingCall holds the arguments for a call to UpdateRating.
type UpdateRatingCall struct {
	PlayerID  string
	NewRating int
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateLobbyCalls = nil
	m.DeleteLobbyCalls = nil
	m.RecordSubmissionCalls = nil
	m.RecordVoteCalls = nil
	m.RecordAbstentionCalls = nil
	m.AdvancePhaseCalls = nil
	m.CommitRoundResultsCalls = nil
	m.ResetForNextRoundCalls = nil
	m.UpdateRatingCalls = nil
	m.TouchActivityCalls = nil
}

func (m *MockStore) CreateLobby(lobby *game.Lobby) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateLobbyCalls = append(m.CreateLobbyCalls, lobby)
	if m.CreateLobbyFunc != nil {
		return m.CreateLobbyFunc(lobby)
	}
	return nil
}

func (m *MockStore) GetLobby(lobbyID string) (*game.Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetLobbyFunc != nil {
		return m.GetLobbyFunc(lobbyID)
	}
	return nil, errors.New("lobby not found")
}

func (m *MockStore) DeleteLobby(lobbyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteLobbyCalls = append(m.DeleteLobbyCalls, lobbyID)
	if m.DeleteLobbyFunc != nil {
		return m.DeleteLobbyFunc(lobbyID)
	}
	return nil
}

func (m *MockStore) GetAllLobbies() ([]*game.Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllLobbiesFunc != nil {
		return m.GetAllLobbiesFunc()
	}
	return nil, nil
}

func (m *MockStore) TouchActivity(lobbyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TouchActivityCalls = append(m.TouchActivityCalls, lobbyID)
	if m.TouchActivityFunc != nil {
		return m.TouchActivityFunc(lobbyID)
	}
	return nil
}

func (m *MockStore) UpsertPlayer(player game.PlayerInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertPlayerFunc != nil {
		return m.UpsertPlayerFunc(player)
	}
	return nil
}

func (m *MockStore) AddPlayerToLobby(lobbyID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddPlayerToLobbyFunc != nil {
		return m.AddPlayerToLobbyFunc(lobbyID, playerID)
	}
	return nil
}

func (m *MockStore) GetRoster(lobbyID string) ([]game.PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetRosterFunc != nil {
		return m.GetRosterFunc(lobbyID)
	}
	return nil, nil
}

func (m *MockStore) IsKnownPlayer(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsKnownPlayerFunc != nil {
		return m.IsKnownPlayerFunc(playerID)
	}
	return false
}

func (m *MockStore) RecordSubmission(sub game.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordSubmissionCalls = append(m.RecordSubmissionCalls, sub)
	if m.RecordSubmissionFunc != nil {
		return m.RecordSubmissionFunc(sub)
	}
	return nil
}

func (m *MockStore) RecordVote(vote game.Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordVoteCalls = append(m.RecordVoteCalls, vote)
	if m.RecordVoteFunc != nil {
		return m.RecordVoteFunc(vote)
	}
	return nil
}

func (m *MockStore) RecordAbstention(ab game.Abstention) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordAbstentionCalls = append(m.RecordAbstentionCalls, ab)
	if m.RecordAbstentionFunc != nil {
		return m.RecordAbstentionFunc(ab)
	}
	return nil
}

func (m *MockStore) GetSubmissions(lobbyID string, round int) ([]game.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetSubmissionsFunc != nil {
		return m.GetSubmissionsFunc(lobbyID, round)
	}
	return nil, nil
}

func (m *MockStore) GetVotes(lobbyID string, round int) ([]game.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetVotesFunc != nil {
		return m.GetVotesFunc(lobbyID, round)
	}
	return nil, nil
}

func (m *MockStore) HasActed(lobbyID string, round int, playerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.HasActedFunc != nil {
		return m.HasActedFunc(lobbyID, round, playerID)
	}
	return false, nil
}

func (m *MockStore) CountRoundActors(lobbyID string, round int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CountRoundActorsFunc != nil {
		return m.CountRoundActorsFunc(lobbyID, round)
	}
	return 0, nil
}

func (m *MockStore) AdvancePhase(lobbyID string, from, to game.Phase, timeLeft int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AdvancePhaseCalls = append(m.AdvancePhaseCalls, AdvancePhaseCall{LobbyID: lobbyID, From: from, To: to, TimeLeft: timeLeft})
	if m.AdvancePhaseFunc != nil {
		return m.AdvancePhaseFunc(lobbyID, from, to, timeLeft)
	}
	return true, nil
}

func (m *MockStore) CommitRoundResults(lobbyID string, round int, winner string, results *game.RoundResults, deltas map[string]int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommitRoundResultsCalls = append(m.CommitRoundResultsCalls, CommitRoundResultsCall{LobbyID: lobbyID, Round: round, Winner: winner, Results: results, Deltas: deltas})
	if m.CommitRoundResultsFunc != nil {
		return m.CommitRoundResultsFunc(lobbyID, round, winner, results, deltas)
	}
	return true, nil
}

func (m *MockStore) ResetForNextRound(lobbyID string, promptCardID string, timeLeft int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResetForNextRoundCalls = append(m.ResetForNextRoundCalls, lobbyID)
	if m.ResetForNextRoundFunc != nil {
		return m.ResetForNextRoundFunc(lobbyID, promptCardID, timeLeft)
	}
	return true, nil
}

func (m *MockStore) GetScores(lobbyID string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetScoresFunc != nil {
		return m.GetScoresFunc(lobbyID)
	}
	return nil, nil
}

func (m *MockStore) UpdateRating(playerID string, newRating int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateRatingCalls = append(m.UpdateRatingCalls, UpdateRatingCall{PlayerID: playerID, NewRating: newRating})
	if m.UpdateRatingFunc != nil {
		return m.UpdateRatingFunc(playerID, newRating)
	}
	return nil
}

func (m *MockStore) GetAllRatings() ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllRatingsFunc != nil {
		return m.GetAllRatingsFunc()
	}
	return nil, nil
}

func (m *MockStore) GetRatingLeaderboard() ([]game.PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetRatingLeaderboardFunc != nil {
		return m.GetRatingLeaderboardFunc()
	}
	return nil, nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}

func (m *MockStore) ClearLobby(lobbyID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearLobbyFunc != nil {
		m.ClearLobbyFunc(lobbyID)
	}
}
