package lobby_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardclash/cardclash/internal/database"
	"github.com/cardclash/cardclash/internal/game"
	"github.com/cardclash/cardclash/internal/lobby"
)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (lobby.LobbyStore, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := lobby.New(db)
	return store, dbTeardown
}

func seedLobby(t *testing.T, store lobby.LobbyStore, lobbyID string, playerIDs ...string) {
	t.Helper()

	require.NoError(t, store.CreateLobby(&game.Lobby{
		ID:          lobbyID,
		HostID:      playerIDs[0],
		Phase:       game.PhaseSubmission,
		TotalRounds: 3,
	}))
	for _, id := range playerIDs {
		require.NoError(t, store.UpsertPlayer(game.PlayerInfo{ID: id, Name: "Player " + id}))
		require.NoError(t, store.AddPlayerToLobby(lobbyID, id))
	}
}

func TestCreateAndGetLobby(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	seedLobby(t, store, "l1", "p1", "p2")

	got, err := store.GetLobby("l1")
	require.NoError(t, err)
	assert.Equal(t, "l1", got.ID)
	assert.Equal(t, game.PhaseSubmission, got.Phase)
	assert.Equal(t, 1, got.RoundNumber)
	assert.Equal(t, 0, got.ScoredRound)

	roster, err := store.GetRoster("l1")
	require.NoError(t, err)
	assert.Len(t, roster, 2)
	assert.True(t, store.IsKnownPlayer("p1"))
	assert.False(t, store.IsKnownPlayer("p9"))
}

func TestRecordSubmission_AtMostOncePerRound(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	seedLobby(t, store, "l1", "p1", "p2")

	sub := game.Submission{LobbyID: "l1", RoundNumber: 1, PlayerID: "p1", CardID: "c1"}
	require.NoError(t, store.RecordSubmission(sub))

	// Second submission for the same player and round violates the PK.
	sub.CardID = "c2"
	assert.Error(t, store.RecordSubmission(sub))

	// A new round opens a fresh slot.
	sub.RoundNumber = 2
	assert.NoError(t, store.RecordSubmission(sub))

	subs, err := store.GetSubmissions("l1", 1)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "c1", subs[0].CardID)
}

func TestRecordVote_AtMostOncePerVoter(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	seedLobby(t, store, "l1", "p1", "p2", "p3")

	require.NoError(t, store.RecordVote(game.Vote{LobbyID: "l1", RoundNumber: 1, VoterID: "p1", TargetID: "p2"}))
	assert.Error(t, store.RecordVote(game.Vote{LobbyID: "l1", RoundNumber: 1, VoterID: "p1", TargetID: "p3"}))

	require.NoError(t, store.RecordAbstention(game.Abstention{LobbyID: "l1", RoundNumber: 1, PlayerID: "p3"}))

	count, err := store.CountRoundActors("l1", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestHasActedAndCountRoundActors(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	seedLobby(t, store, "l1", "p1", "p2", "p3")

	acted, err := store.HasActed("l1", 1, "p1")
	require.NoError(t, err)
	assert.False(t, acted)

	require.NoError(t, store.RecordVote(game.Vote{LobbyID: "l1", RoundNumber: 1, VoterID: "p1", TargetID: "p2"}))
	require.NoError(t, store.RecordAbstention(game.Abstention{LobbyID: "l1", RoundNumber: 1, PlayerID: "p2"}))

	for _, id := range []string{"p1", "p2"} {
		acted, err := store.HasActed("l1", 1, id)
		require.NoError(t, err)
		assert.True(t, acted, "player %s has acted", id)
	}
	acted, err = store.HasActed("l1", 1, "p3")
	require.NoError(t, err)
	assert.False(t, acted)

	// A player present in both tables is still one actor.
	require.NoError(t, store.RecordAbstention(game.Abstention{LobbyID: "l1", RoundNumber: 1, PlayerID: "p1"}))
	count, err := store.CountRoundActors("l1", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// A new round opens with a clean slate.
	acted, err = store.HasActed("l1", 2, "p1")
	require.NoError(t, err)
	assert.False(t, acted)
	count, err = store.CountRoundActors("l1", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestAdvancePhase_CompareAndSwap(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	seedLobby(t, store, "l1", "p1", "p2")

	ok, err := store.AdvancePhase("l1", game.PhaseSubmission, game.PhaseVoting, 30)
	require.NoError(t, err)
	assert.True(t, ok, "first transition should win")

	// A racing duplicate observes the already-updated phase and abstains.
	ok, err = store.AdvancePhase("l1", game.PhaseSubmission, game.PhaseVoting, 30)
	require.NoError(t, err)
	assert.False(t, ok, "stale transition should lose the CAS")

	got, err := store.GetLobby("l1")
	require.NoError(t, err)
	assert.Equal(t, game.PhaseVoting, got.Phase)
	assert.Equal(t, 30, got.TimeLeft)
}

func TestAdvancePhase_RejectsIllegalTransition(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	seedLobby(t, store, "l1", "p1", "p2")

	_, err := store.AdvancePhase("l1", game.PhaseSubmission, game.PhaseGameOver, 0)
	assert.Error(t, err)
}

func TestCommitRoundResults_Idempotent(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	seedLobby(t, store, "l1", "p1", "p2", "p3")

	results := &game.RoundResults{
		RoundNumber: 1,
		Ranking: []game.PlayerStanding{
			{PlayerID: "p1", VotesReceived: 2, ScoreDelta: 6},
			{PlayerID: "p2", VotesReceived: 0, ScoreDelta: 1},
			{PlayerID: "p3", VotesReceived: 0, ScoreDelta: 1},
		},
	}
	deltas := map[string]int{"p1": 6, "p2": 1, "p3": 1}

	ok, err := store.CommitRoundResults("l1", 1, "p1", results, deltas)
	require.NoError(t, err)
	assert.True(t, ok)

	// Re-invocation for the same round is a guarded no-op.
	ok, err = store.CommitRoundResults("l1", 1, "p1", results, map[string]int{"p1": 100})
	require.NoError(t, err)
	assert.False(t, ok)

	scores, err := store.GetScores("l1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"p1": 6, "p2": 1, "p3": 1}, scores)

	got, err := store.GetLobby("l1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.Winner)
	assert.Equal(t, 1, got.ScoredRound)
	require.NotNil(t, got.RoundResults)
	assert.Len(t, got.RoundResults.Ranking, 3)
}

func TestResetForNextRound(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	seedLobby(t, store, "l1", "p1", "p2")
	_, err := store.AdvancePhase("l1", game.PhaseSubmission, game.PhaseVoting, 30)
	require.NoError(t, err)
	_, err = store.AdvancePhase("l1", game.PhaseVoting, game.PhaseResults, 10)
	require.NoError(t, err)

	ok, err := store.ResetForNextRound("l1", "prompt-2", 60)
	require.NoError(t, err)
	assert.True(t, ok)

	// Only valid out of the results phase.
	ok, err = store.ResetForNextRound("l1", "prompt-3", 60)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := store.GetLobby("l1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.RoundNumber)
	assert.Equal(t, game.PhaseSubmission, got.Phase)
	assert.Empty(t, got.Winner)
	assert.Equal(t, "prompt-2", got.PromptCardID)
}

func TestRatings(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.UpsertPlayer(game.PlayerInfo{ID: "p1", Name: "One", SkillRating: 1000}))
	require.NoError(t, store.UpsertPlayer(game.PlayerInfo{ID: "p2", Name: "Two", SkillRating: 1000}))

	require.NoError(t, store.UpdateRating("p1", 1040))
	require.NoError(t, store.UpdateRating("p2", 960))

	ratings, err := store.GetAllRatings()
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1040, 960}, ratings)

	board, err := store.GetRatingLeaderboard()
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "p1", board[0].ID)
	assert.Equal(t, 1040, board[0].SkillRating)
	assert.Equal(t, 1, board[0].GamesPlayed)
}

func TestDeleteLobby_CascadesRoundData(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	seedLobby(t, store, "l1", "p1", "p2")
	require.NoError(t, store.RecordSubmission(game.Submission{LobbyID: "l1", RoundNumber: 1, PlayerID: "p1", CardID: "c1"}))

	require.NoError(t, store.DeleteLobby("l1"))

	_, err := store.GetLobby("l1")
	assert.Error(t, err)

	subs, err := store.GetSubmissions("l1", 1)
	require.NoError(t, err)
	assert.Empty(t, subs)
}
