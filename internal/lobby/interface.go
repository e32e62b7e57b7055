package lobby

import "github.com/cardclash/cardclash/internal/game"

// LobbyStore defines the interface for interacting with lobby and player
// data. It is the single I/O boundary of the round engine; every mutation
// of shared game state goes through one of these guarded operations.
type LobbyStore interface {
	// Lobby lifecycle.
	CreateLobby(lobby *game.Lobby) error
	GetLobby(lobbyID string) (*game.Lobby, error)
	DeleteLobby(lobbyID string) error
	GetAllLobbies() ([]*game.Lobby, error)
	TouchActivity(lobbyID string) error

	// Roster. The engine treats the roster as a read-only snapshot per
	// invocation; membership changes happen on the client-facing paths.
	UpsertPlayer(player game.PlayerInfo) error
	AddPlayerToLobby(lobbyID, playerID string) error
	GetRoster(lobbyID string) ([]game.PlayerInfo, error)
	IsKnownPlayer(playerID string) bool

	// Per-round writes. Primary keys enforce at-most-once per player per
	// round; duplicates surface as errors on the write path.
	RecordSubmission(sub game.Submission) error
	RecordVote(vote game.Vote) error
	RecordAbstention(ab game.Abstention) error
	GetSubmissions(lobbyID string, round int) ([]game.Submission, error)
	GetVotes(lobbyID string, round int) ([]game.Vote, error)

	// HasActed reports whether the player has already voted or abstained
	// in the given round. A player gets exactly one voting action per
	// round, across both tables.
	HasActed(lobbyID string, round int, playerID string) (bool, error)

	// CountRoundActors counts the distinct players who have voted or
	// abstained in the given round. A player present in both tables
	// counts once toward the voting-completion threshold.
	CountRoundActors(lobbyID string, round int) (int, error)

	// AdvancePhase performs a single-statement compare-and-swap on the
	// lobby phase. It reports false when another writer already advanced
	// the phase, which callers treat as a benign stale trigger.
	AdvancePhase(lobbyID string, from, to game.Phase, timeLeft int) (bool, error)

	// CommitRoundResults applies a round's scoring in one transaction,
	// guarded by a compare-and-swap on scored_round so scoring for a
	// given round is applied at most once.
	CommitRoundResults(lobbyID string, round int, winner string, results *game.RoundResults, deltas map[string]int) (bool, error)

	// ResetForNextRound bumps the round number and returns the lobby to
	// the submission phase, guarded on the current phase.
	ResetForNextRound(lobbyID string, promptCardID string, timeLeft int) (bool, error)

	// Scores and ratings.
	GetScores(lobbyID string) (map[string]int, error)
	UpdateRating(playerID string, newRating int) error
	GetAllRatings() ([]int, error)
	GetRatingLeaderboard() ([]game.PlayerInfo, error)

	// Maintenance.
	Clear()
	ClearLobby(lobbyID string)
}
