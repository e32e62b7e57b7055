package notifier

import "github.com/cardclash/cardclash/internal/game"

// RatingChange summarizes one player's rating movement for a finished
// competitive match.
type RatingChange struct {
	PlayerID  string
	OldRating int
	NewRating int
	Tier      string
}

// GameSummary is everything the post-match announcement needs.
type GameSummary struct {
	LobbyID       string
	TotalRounds   int
	Standings     []game.PlayerInfo
	RatingChanges []RatingChange
}

// Notifier defines a high-level interface for announcing business events.
// This decouples the rest of the application from the specific
// notification provider (e.g., Slack).
type Notifier interface {
	// For finished matches
	SendGameSummary(summary *GameSummary, dryRun bool) error
	// For the global rating leaderboard
	SendRatingLeaderboard(players []game.PlayerInfo, dryRun bool) error
}
