package lobby

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cardclash/cardclash/internal/game"
)

// New creates a new LobbyStore.
func New(db *sql.DB) LobbyStore {
	return &store{
		db: db,
	}
}

func (s *store) CreateLobby(lobby *game.Lobby) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	if lobby.CreatedAt == 0 {
		lobby.CreatedAt = now
	}
	if lobby.LastActivity == 0 {
		lobby.LastActivity = now
	}
	if lobby.Phase == "" {
		lobby.Phase = game.PhaseWaiting
	}
	if lobby.RoundNumber == 0 {
		lobby.RoundNumber = 1
	}

	_, err := s.db.Exec(`
		INSERT INTO lobbies (id, host_id, phase, round_number, scored_round, total_rounds, competition_type, prompt_card_id, phase_started_at, time_left, created_at, last_activity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, lobby.ID, lobby.HostID, lobby.Phase, lobby.RoundNumber, lobby.ScoredRound, lobby.TotalRounds, lobby.CompetitionType, lobby.PromptCardID, lobby.PhaseStartedAt, lobby.TimeLeft, lobby.CreatedAt, lobby.LastActivity)
	return err
}

func (s *store) GetLobby(lobbyID string) (*game.Lobby, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, host_id, phase, round_number, scored_round, total_rounds, competition_type, prompt_card_id, winner, round_results_json, phase_started_at, time_left, created_at, last_activity
		FROM lobbies WHERE id = ?
	`, lobbyID)
	return s.scanLobby(row)
}

// scanLobby is a helper to scan a single lobby row.
func (s *store) scanLobby(scanner interface{ Scan(...any) error }) (*game.Lobby, error) {
	var lobby game.Lobby
	var promptCardID, winner, resultsJSON sql.NullString

	err := scanner.Scan(
		&lobby.ID, &lobby.HostID, &lobby.Phase, &lobby.RoundNumber, &lobby.ScoredRound,
		&lobby.TotalRounds, &lobby.CompetitionType, &promptCardID, &winner, &resultsJSON,
		&lobby.PhaseStartedAt, &lobby.TimeLeft, &lobby.CreatedAt, &lobby.LastActivity,
	)
	if err != nil {
		return nil, err
	}

	lobby.PromptCardID = promptCardID.String
	lobby.Winner = winner.String

	if resultsJSON.Valid && resultsJSON.String != "" {
		var results game.RoundResults
		if err := json.Unmarshal([]byte(resultsJSON.String), &results); err != nil {
			log.Error("Failed to unmarshal round_results_json", "error", err, "lobbyID", lobby.ID)
		} else {
			lobby.RoundResults = &results
		}
	}

	return &lobby, nil
}

func (s *store) DeleteLobby(lobbyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM lobbies WHERE id = ?", lobbyID)
	return err
}

func (s *store) GetAllLobbies() ([]*game.Lobby, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, host_id, phase, round_number, scored_round, total_rounds, competition_type, prompt_card_id, winner, round_results_json, phase_started_at, time_left, created_at, last_activity
		FROM lobbies ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lobbies []*game.Lobby
	for rows.Next() {
		lobby, err := s.scanLobby(rows)
		if err != nil {
			log.Error("Failed to scan lobby row", "error", err)
			continue
		}
		lobbies = append(lobbies, lobby)
	}
	return lobbies, nil
}

func (s *store) TouchActivity(lobbyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE lobbies SET last_activity = ? WHERE id = ?", time.Now().Unix(), lobbyID)
	return err
}

func (s *store) UpsertPlayer(player game.PlayerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO players (id, name, is_ai, skill_rating, games_played)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			is_ai = excluded.is_ai
	`, player.ID, player.Name, player.IsAI, player.SkillRating, player.GamesPlayed)
	return err
}

func (s *store) AddPlayerToLobby(lobbyID, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO lobby_players (lobby_id, player_id, score, joined_at)
		VALUES (?, ?, 0, ?)
		ON CONFLICT(lobby_id, player_id) DO NOTHING
	`, lobbyID, playerID, time.Now().Unix())
	return err
}

func (s *store) GetRoster(lobbyID string) ([]game.PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT p.id, p.name, p.is_ai, lp.score, p.skill_rating, p.games_played
		FROM lobby_players lp
		JOIN players p ON p.id = lp.player_id
		WHERE lp.lobby_id = ?
		ORDER BY p.id
	`, lobbyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []game.PlayerInfo
	for rows.Next() {
		var p game.PlayerInfo
		var name sql.NullString
		if err := rows.Scan(&p.ID, &name, &p.IsAI, &p.Score, &p.SkillRating, &p.GamesPlayed); err != nil {
			log.Error("Failed to scan roster row", "error", err)
			continue
		}
		p.Name = name.String
		roster = append(roster, p)
	}
	return roster, nil
}

func (s *store) IsKnownPlayer(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if player exists", "error", err, "playerID", playerID)
		return false
	}
	return exists
}

func (s *store) RecordSubmission(sub game.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.SubmittedAt == 0 {
		sub.SubmittedAt = time.Now().Unix()
	}
	_, err := s.db.Exec(`
		INSERT INTO submissions (lobby_id, round_number, player_id, card_id, card_name, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sub.LobbyID, sub.RoundNumber, sub.PlayerID, sub.CardID, sub.CardName, sub.SubmittedAt)
	if err != nil {
		return fmt.Errorf("failed to record submission for player %s: %w", sub.PlayerID, err)
	}
	return nil
}

func (s *store) RecordVote(vote game.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if vote.CastAt == 0 {
		vote.CastAt = time.Now().Unix()
	}
	_, err := s.db.Exec(`
		INSERT INTO votes (lobby_id, round_number, voter_id, target_id, cast_at)
		VALUES (?, ?, ?, ?, ?)
	`, vote.LobbyID, vote.RoundNumber, vote.VoterID, vote.TargetID, vote.CastAt)
	if err != nil {
		return fmt.Errorf("failed to record vote from %s: %w", vote.VoterID, err)
	}
	return nil
}

func (s *store) RecordAbstention(ab game.Abstention) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO abstentions (lobby_id, round_number, player_id)
		VALUES (?, ?, ?)
	`, ab.LobbyID, ab.RoundNumber, ab.PlayerID)
	if err != nil {
		return fmt.Errorf("failed to record abstention from %s: %w", ab.PlayerID, err)
	}
	return nil
}

func (s *store) GetSubmissions(lobbyID string, round int) ([]game.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT lobby_id, round_number, player_id, card_id, card_name, submitted_at
		FROM submissions WHERE lobby_id = ? AND round_number = ?
		ORDER BY submitted_at
	`, lobbyID, round)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []game.Submission
	for rows.Next() {
		var sub game.Submission
		if err := rows.Scan(&sub.LobbyID, &sub.RoundNumber, &sub.PlayerID, &sub.CardID, &sub.CardName, &sub.SubmittedAt); err != nil {
			log.Error("Failed to scan submission row", "error", err)
			continue
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func (s *store) GetVotes(lobbyID string, round int) ([]game.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT lobby_id, round_number, voter_id, target_id, cast_at
		FROM votes WHERE lobby_id = ? AND round_number = ?
	`, lobbyID, round)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []game.Vote
	for rows.Next() {
		var v game.Vote
		if err := rows.Scan(&v.LobbyID, &v.RoundNumber, &v.VoterID, &v.TargetID, &v.CastAt); err != nil {
			log.Error("Failed to scan vote row", "error", err)
			continue
		}
		votes = append(votes, v)
	}
	return votes, nil
}

func (s *store) HasActed(lobbyID string, round int, playerID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM votes WHERE lobby_id = ? AND round_number = ? AND voter_id = ?
			UNION
			SELECT 1 FROM abstentions WHERE lobby_id = ? AND round_number = ? AND player_id = ?
		)
	`, lobbyID, round, playerID, lobbyID, round, playerID).Scan(&exists)
	return exists, err
}

// CountRoundActors counts over the union of both tables, so a player who
// somehow lands in votes and abstentions still counts once.
func (s *store) CountRoundActors(lobbyID string, round int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM (
			SELECT voter_id AS player_id FROM votes WHERE lobby_id = ? AND round_number = ?
			UNION
			SELECT player_id FROM abstentions WHERE lobby_id = ? AND round_number = ?
		)
	`, lobbyID, round, lobbyID, round).Scan(&count)
	return count, err
}

// AdvancePhase is the guarded conditional update at the heart of round
// progression. The WHERE clause makes the check-then-act a single atomic
// statement: of any number of racing callers, exactly one observes
// RowsAffected == 1.
func (s *store) AdvancePhase(lobbyID string, from, to game.Phase, timeLeft int) (bool, error) {
	if !from.CanAdvanceTo(to) {
		return false, fmt.Errorf("illegal phase transition %s -> %s", from, to)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	res, err := s.db.Exec(`
		UPDATE lobbies
		SET phase = ?, phase_started_at = ?, time_left = ?, last_activity = ?
		WHERE id = ? AND phase = ?
	`, to, now, timeLeft, now, lobbyID, from)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// CommitRoundResults applies all effects of scoring one round in a single
// transaction. The scored_round compare-and-swap doubles as the
// idempotency guard: once any writer commits round N, every later attempt
// for round N reports false and changes nothing.
func (s *store) CommitRoundResults(lobbyID string, round int, winner string, results *game.RoundResults, deltas map[string]int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}

	res, err := tx.Exec(`
		UPDATE lobbies SET scored_round = ? WHERE id = ? AND scored_round < ?
	`, round, lobbyID, round)
	if err != nil {
		tx.Rollback()
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return false, err
	}
	if affected == 0 {
		// Another writer already scored this round.
		tx.Rollback()
		return false, nil
	}

	resultsJSON, err := json.Marshal(results)
	if err != nil {
		tx.Rollback()
		return false, err
	}

	_, err = tx.Exec(`
		UPDATE lobbies SET winner = ?, round_results_json = ?, last_activity = ? WHERE id = ?
	`, winner, string(resultsJSON), time.Now().Unix(), lobbyID)
	if err != nil {
		tx.Rollback()
		return false, err
	}

	for playerID, delta := range deltas {
		_, err = tx.Exec(`
			UPDATE lobby_players SET score = score + ? WHERE lobby_id = ? AND player_id = ?
		`, delta, lobbyID, playerID)
		if err != nil {
			tx.Rollback()
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *store) ResetForNextRound(lobbyID string, promptCardID string, timeLeft int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	res, err := s.db.Exec(`
		UPDATE lobbies
		SET round_number = round_number + 1,
		    phase = ?,
		    winner = NULL,
		    prompt_card_id = ?,
		    phase_started_at = ?,
		    time_left = ?,
		    last_activity = ?
		WHERE id = ? AND phase = ?
	`, game.PhaseSubmission, promptCardID, now, timeLeft, now, lobbyID, game.PhaseResults)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (s *store) GetScores(lobbyID string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT player_id, score FROM lobby_players WHERE lobby_id = ?", lobbyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make(map[string]int)
	for rows.Next() {
		var playerID string
		var score int
		if err := rows.Scan(&playerID, &score); err != nil {
			log.Error("Failed to scan score row", "error", err)
			continue
		}
		scores[playerID] = score
	}
	return scores, nil
}

// UpdateRating commits a player's post-match rating and bumps their
// competitive game count.
func (s *store) UpdateRating(playerID string, newRating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		UPDATE players SET skill_rating = ?, games_played = games_played + 1 WHERE id = ?
	`, newRating, playerID)
	return err
}

func (s *store) GetAllRatings() ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT skill_rating FROM players WHERE games_played > 0")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var r int
		if err := rows.Scan(&r); err != nil {
			log.Error("Failed to scan rating row", "error", err)
			continue
		}
		ratings = append(ratings, r)
	}
	return ratings, nil
}

func (s *store) GetRatingLeaderboard() ([]game.PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, is_ai, skill_rating, games_played
		FROM players
		ORDER BY skill_rating DESC, games_played DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []game.PlayerInfo
	for rows.Next() {
		var p game.PlayerInfo
		var name sql.NullString
		if err := rows.Scan(&p.ID, &name, &p.IsAI, &p.SkillRating, &p.GamesPlayed); err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		p.Name = name.String
		players = append(players, p)
	}
	return players, nil
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}

	for _, table := range []string{"abstentions", "votes", "submissions", "lobby_players", "lobbies", "players"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}

func (s *store) ClearLobby(lobbyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM lobbies WHERE id = ?", lobbyID)
	if err != nil {
		log.Error("Failed to clear lobby", "error", err, "lobbyID", lobbyID)
	}
}
