package game

// CompetitionType defines whether a lobby affects skill ratings.
type CompetitionType string

const (
	Casual      CompetitionType = "CASUAL"
	Competitive CompetitionType = "COMPETITIVE"
)

// Lobby represents the shared round record for a single match. It is the
// only contended resource in the system: clients append submissions and
// votes, and the engine advances it through phases via guarded updates.
type Lobby struct {
	ID              string          `json:"id"`
	HostID          string          `json:"host_id"`
	Phase           Phase           `json:"phase"`
	RoundNumber     int             `json:"round_number"`
	ScoredRound     int             `json:"scored_round"`
	TotalRounds     int             `json:"total_rounds"`
	CompetitionType CompetitionType `json:"competition_type"`
	PromptCardID    string          `json:"prompt_card_id"`
	Winner          string          `json:"winner,omitempty"`
	RoundResults    *RoundResults   `json:"round_results,omitempty"`
	PhaseStartedAt  int64           `json:"phase_started_at"`
	TimeLeft        int             `json:"time_left"`
	CreatedAt       int64           `json:"created_at"`
	LastActivity    int64           `json:"last_activity"`
}

// Submission is a player's card played against the current prompt.
// A player submits at most once per round.
type Submission struct {
	LobbyID     string `json:"lobby_id"`
	RoundNumber int    `json:"round_number"`
	PlayerID    string `json:"player_id"`
	CardID      string `json:"card_id"`
	CardName    string `json:"card_name"`
	SubmittedAt int64  `json:"submitted_at"`
}

// Vote is a player's vote for another player's submission. Self-votes are
// rejected on the write path, never stored.
type Vote struct {
	LobbyID     string `json:"lobby_id"`
	RoundNumber int    `json:"round_number"`
	VoterID     string `json:"voter_id"`
	TargetID    string `json:"target_id"`
	CastAt      int64  `json:"cast_at"`
}

// Abstention records a player explicitly declining to vote. It counts
// toward the voting-completion threshold but not toward any tally.
type Abstention struct {
	LobbyID     string `json:"lobby_id"`
	RoundNumber int    `json:"round_number"`
	PlayerID    string `json:"player_id"`
}

// PlayerStanding is one row of a round's ranking.
type PlayerStanding struct {
	PlayerID      string `json:"player_id"`
	PlayerName    string `json:"player_name"`
	VotesReceived int    `json:"votes_received"`
	ScoreDelta    int    `json:"score_delta"`
}

// RoundResults is the committed outcome of a single scored round.
type RoundResults struct {
	RoundNumber int              `json:"round_number"`
	Ranking     []PlayerStanding `json:"ranking"`
}

// GameResult is the per-player outcome of a finished match, handed to the
// rating engine for competitive lobbies. It is never stored as-is.
type GameResult struct {
	LobbyID      string
	PlayerID     string
	Position     int
	TotalPlayers int
	Duration     int64
}

// PlayerInfo represents a player in the store.
type PlayerInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsAI        bool   `json:"is_ai"`
	Score       int    `json:"score"`
	SkillRating int    `json:"skill_rating"`
	GamesPlayed int    `json:"games_played"`
}
