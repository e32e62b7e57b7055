package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cardclash/cardclash/internal/events"
	"github.com/cardclash/cardclash/internal/game"
	"github.com/cardclash/cardclash/internal/notifier"
	"github.com/cardclash/cardclash/internal/rating"
)

// SubmitCard is the validated write path for a player's submission. The
// at-most-once-per-round property comes from the store's primary key, not
// from the validation here.
func (e *Engine) SubmitCard(lobbyID, playerID, cardID, cardName string) error {
	lob, err := e.store.GetLobby(lobbyID)
	if err != nil {
		return fmt.Errorf("lobby %s not found: %w", lobbyID, err)
	}
	if lob.Phase != game.PhaseSubmission {
		return fmt.Errorf("lobby %s is not accepting submissions (phase %s)", lobbyID, lob.Phase)
	}
	if !e.inRoster(lobbyID, playerID) {
		return fmt.Errorf("player %s is not in lobby %s", playerID, lobbyID)
	}

	err = e.store.RecordSubmission(game.Submission{
		LobbyID:     lobbyID,
		RoundNumber: lob.RoundNumber,
		PlayerID:    playerID,
		CardID:      cardID,
		CardName:    cardName,
		SubmittedAt: time.Now().Unix(),
	})
	if err != nil {
		return err
	}

	e.publish(events.EventSubmissionRecorded, lob, playerID)
	return nil
}

// CastVote is the validated write path for a vote. Self-votes are
// rejected here so downstream handlers never have to consider them, and
// a player who already voted or abstained this round is turned away so
// the two tables stay disjoint.
func (e *Engine) CastVote(lobbyID, voterID, targetID string) error {
	if voterID == targetID {
		return fmt.Errorf("player %s may not vote for themself", voterID)
	}

	lob, err := e.store.GetLobby(lobbyID)
	if err != nil {
		return fmt.Errorf("lobby %s not found: %w", lobbyID, err)
	}
	if lob.Phase != game.PhaseVoting {
		return fmt.Errorf("lobby %s is not accepting votes (phase %s)", lobbyID, lob.Phase)
	}
	if !e.inRoster(lobbyID, voterID) || !e.inRoster(lobbyID, targetID) {
		return fmt.Errorf("voter %s or target %s is not in lobby %s", voterID, targetID, lobbyID)
	}
	acted, err := e.store.HasActed(lobbyID, lob.RoundNumber, voterID)
	if err != nil {
		return err
	}
	if acted {
		return fmt.Errorf("player %s already voted or abstained in round %d", voterID, lob.RoundNumber)
	}

	err = e.store.RecordVote(game.Vote{
		LobbyID:     lobbyID,
		RoundNumber: lob.RoundNumber,
		VoterID:     voterID,
		TargetID:    targetID,
		CastAt:      time.Now().Unix(),
	})
	if err != nil {
		return err
	}

	e.publish(events.EventVoteRecorded, lob, voterID)
	return nil
}

// Abstain records an explicit declined-to-vote. Abstentions count toward
// the voting-completion threshold but never toward any tally. Voting and
// abstaining are mutually exclusive within a round.
func (e *Engine) Abstain(lobbyID, playerID string) error {
	lob, err := e.store.GetLobby(lobbyID)
	if err != nil {
		return fmt.Errorf("lobby %s not found: %w", lobbyID, err)
	}
	if lob.Phase != game.PhaseVoting {
		return fmt.Errorf("lobby %s is not accepting abstentions (phase %s)", lobbyID, lob.Phase)
	}
	if !e.inRoster(lobbyID, playerID) {
		return fmt.Errorf("player %s is not in lobby %s", playerID, lobbyID)
	}
	acted, err := e.store.HasActed(lobbyID, lob.RoundNumber, playerID)
	if err != nil {
		return err
	}
	if acted {
		return fmt.Errorf("player %s already voted or abstained in round %d", playerID, lob.RoundNumber)
	}

	err = e.store.RecordAbstention(game.Abstention{
		LobbyID:     lobbyID,
		RoundNumber: lob.RoundNumber,
		PlayerID:    playerID,
	})
	if err != nil {
		return err
	}

	e.publish(events.EventVoteRecorded, lob, playerID)
	return nil
}

// HandleSubmissionRecorded reacts to a submission write. When every
// rostered player has submitted, it advances the lobby to voting via the
// store's compare-and-swap; losing that CAS means another invocation
// already advanced the phase, which is expected under at-least-once
// delivery and not an error.
func (e *Engine) HandleSubmissionRecorded(lobbyID string) error {
	defer e.observeDuration(time.Now())

	lob, err := e.store.GetLobby(lobbyID)
	if err != nil {
		// Not ready or already swept; a later trigger will complete the work.
		log.Debug("Submission trigger for unknown lobby", "lobbyID", lobbyID, "error", err)
		return nil
	}
	if lob.Phase != game.PhaseSubmission {
		log.Debug("Stale submission trigger", "lobbyID", lobbyID, "phase", lob.Phase)
		e.metrics.IncStaleTriggers()
		return nil
	}

	roster, err := e.store.GetRoster(lobbyID)
	if err != nil || len(roster) == 0 {
		log.Debug("Roster not ready", "lobbyID", lobbyID, "error", err)
		return nil
	}

	subs, err := e.store.GetSubmissions(lobbyID, lob.RoundNumber)
	if err != nil {
		return err
	}
	if len(subs) < len(roster) {
		log.Debug("Waiting for more submissions", "lobbyID", lobbyID, "submitted", len(subs), "expected", len(roster))
		return nil
	}

	ok, err := e.store.AdvancePhase(lobbyID, game.PhaseSubmission, game.PhaseVoting, votingTimeLimit)
	if err != nil {
		return err
	}
	if !ok {
		log.Debug("Lost submission->voting transition to a concurrent handler", "lobbyID", lobbyID)
		e.metrics.IncStaleTriggers()
		return nil
	}

	log.Info("All players submitted, advancing to voting", "lobbyID", lobbyID, "round", lob.RoundNumber, "players", len(roster))
	e.metrics.IncPhaseTransitions(string(game.PhaseVoting))
	e.publish(events.EventPhaseChanged, lob, "")
	return nil
}

// HandleVoteRecorded reacts to a vote or abstention write, advancing the
// lobby to results once every rostered player has voted or abstained.
func (e *Engine) HandleVoteRecorded(lobbyID string) error {
	defer e.observeDuration(time.Now())

	lob, err := e.store.GetLobby(lobbyID)
	if err != nil {
		log.Debug("Vote trigger for unknown lobby", "lobbyID", lobbyID, "error", err)
		return nil
	}
	if lob.Phase != game.PhaseVoting {
		log.Debug("Stale vote trigger", "lobbyID", lobbyID, "phase", lob.Phase)
		e.metrics.IncStaleTriggers()
		return nil
	}

	roster, err := e.store.GetRoster(lobbyID)
	if err != nil || len(roster) == 0 {
		log.Debug("Roster not ready", "lobbyID", lobbyID, "error", err)
		return nil
	}

	// Distinct actors, not votes plus abstentions: the union collapses a
	// player who managed to land in both tables to a single action.
	acted, err := e.store.CountRoundActors(lobbyID, lob.RoundNumber)
	if err != nil {
		return err
	}
	if acted < len(roster) {
		log.Debug("Waiting for more votes", "lobbyID", lobbyID, "acted", acted, "expected", len(roster))
		return nil
	}

	ok, err := e.store.AdvancePhase(lobbyID, game.PhaseVoting, game.PhaseResults, resultsTimeLimit)
	if err != nil {
		return err
	}
	if !ok {
		log.Debug("Lost voting->results transition to a concurrent handler", "lobbyID", lobbyID)
		e.metrics.IncStaleTriggers()
		return nil
	}

	log.Info("All players voted or abstained, advancing to results", "lobbyID", lobbyID, "round", lob.RoundNumber)
	e.metrics.IncPhaseTransitions(string(game.PhaseResults))
	e.publish(events.EventPhaseChanged, lob, "")
	e.publish(events.EventScoreRound, lob, "")
	return nil
}

// ScoreRound tallies the current round and commits scores, winner and
// ranking. Scoring for a given round is applied at most once regardless
// of how many times this handler fires: the store's scored_round
// compare-and-swap is the idempotency guard.
func (e *Engine) ScoreRound(lobbyID string, dryRun bool) error {
	defer e.observeDuration(time.Now())

	lob, err := e.store.GetLobby(lobbyID)
	if err != nil {
		log.Debug("Score trigger for unknown lobby", "lobbyID", lobbyID, "error", err)
		return nil
	}
	if lob.Phase != game.PhaseResults {
		// Either delivered out of order (voting still open) or the round
		// has already moved on; both are benign.
		log.Debug("Score trigger outside results phase", "lobbyID", lobbyID, "phase", lob.Phase)
		e.metrics.IncStaleTriggers()
		return nil
	}
	if lob.ScoredRound >= lob.RoundNumber {
		// Already scored, but the phase is still results: a previous
		// invocation committed and then died before progressing. Retry
		// the progression; its guards make this idempotent.
		log.Debug("Round already scored, retrying progression", "lobbyID", lobbyID, "round", lob.RoundNumber)
		e.metrics.IncStaleTriggers()
		if dryRun {
			return nil
		}
		if lob.RoundNumber >= lob.TotalRounds {
			return e.finishGame(lob, dryRun)
		}
		return e.startNextRound(lob)
	}

	roster, err := e.store.GetRoster(lobbyID)
	if err != nil || len(roster) == 0 {
		log.Debug("Roster not ready for scoring", "lobbyID", lobbyID, "error", err)
		return nil
	}

	votes, err := e.store.GetVotes(lobbyID, lob.RoundNumber)
	if err != nil {
		return err
	}
	subs, err := e.store.GetSubmissions(lobbyID, lob.RoundNumber)
	if err != nil {
		return err
	}

	voteCount := make(map[string]int, len(roster))
	for _, v := range votes {
		voteCount[v.TargetID]++
	}
	submitted := make(map[string]bool, len(subs))
	for _, s := range subs {
		submitted[s.PlayerID] = true
	}

	winner := selectWinner(roster, voteCount)

	deltas := make(map[string]int, len(roster))
	ranking := make([]game.PlayerStanding, 0, len(roster))
	for _, p := range roster {
		delta := voteCount[p.ID]
		if submitted[p.ID] {
			delta += participationBonus
		}
		if p.ID == winner {
			delta += winnerBonus
		}
		deltas[p.ID] = delta
		ranking = append(ranking, game.PlayerStanding{
			PlayerID:      p.ID,
			PlayerName:    p.Name,
			VotesReceived: voteCount[p.ID],
			ScoreDelta:    delta,
		})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].VotesReceived != ranking[j].VotesReceived {
			return ranking[i].VotesReceived > ranking[j].VotesReceived
		}
		return ranking[i].PlayerID < ranking[j].PlayerID
	})

	results := &game.RoundResults{RoundNumber: lob.RoundNumber, Ranking: ranking}

	if dryRun {
		log.Info("[Dry Run] Would commit round results", "lobbyID", lobbyID, "round", lob.RoundNumber, "winner", winner, "deltas", deltas)
		return nil
	}

	ok, err := e.store.CommitRoundResults(lobbyID, lob.RoundNumber, winner, results, deltas)
	if err != nil {
		return err
	}
	if !ok {
		log.Debug("Lost scoring commit to a concurrent handler", "lobbyID", lobbyID, "round", lob.RoundNumber)
		e.metrics.IncStaleTriggers()
		return nil
	}

	log.Info("Round scored", "lobbyID", lobbyID, "round", lob.RoundNumber, "winner", winner)
	e.metrics.IncRoundsScored()

	if lob.RoundNumber >= lob.TotalRounds {
		return e.finishGame(lob, dryRun)
	}
	return e.startNextRound(lob)
}

func (e *Engine) startNextRound(lob *game.Lobby) error {
	next := fmt.Sprintf("prompt-%d", lob.RoundNumber+1)
	ok, err := e.store.ResetForNextRound(lob.ID, next, submissionTimeLimit)
	if err != nil {
		return err
	}
	if !ok {
		log.Debug("Lost next-round reset to a concurrent handler", "lobbyID", lob.ID)
		e.metrics.IncStaleTriggers()
		return nil
	}

	log.Info("Starting next round", "lobbyID", lob.ID, "round", lob.RoundNumber+1)
	e.metrics.IncPhaseTransitions(string(game.PhaseSubmission))
	e.publish(events.EventPhaseChanged, lob, "")
	return nil
}

func (e *Engine) finishGame(lob *game.Lobby, dryRun bool) error {
	ok, err := e.store.AdvancePhase(lob.ID, game.PhaseResults, game.PhaseGameOver, 0)
	if err != nil {
		return err
	}
	if !ok {
		log.Debug("Lost game-over transition to a concurrent handler", "lobbyID", lob.ID)
		e.metrics.IncStaleTriggers()
		return nil
	}
	e.metrics.IncPhaseTransitions(string(game.PhaseGameOver))
	e.metrics.IncGamesCompleted()

	return e.completeGame(lob, dryRun)
}

// completeGame turns cumulative scores into final positions and, for
// competitive lobbies, feeds each player's result through the rating
// engine. Score and rating fields are only ever written here and in the
// scorer, never by client-facing paths.
func (e *Engine) completeGame(lob *game.Lobby, dryRun bool) error {
	roster, err := e.store.GetRoster(lob.ID)
	if err != nil || len(roster) == 0 {
		log.Debug("Roster not ready for game completion", "lobbyID", lob.ID, "error", err)
		return nil
	}

	standings := make([]game.PlayerInfo, len(roster))
	copy(standings, roster)
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Score != standings[j].Score {
			return standings[i].Score > standings[j].Score
		}
		return standings[i].ID < standings[j].ID
	})

	summary := &notifier.GameSummary{
		LobbyID:     lob.ID,
		TotalRounds: lob.TotalRounds,
		Standings:   standings,
	}

	if lob.CompetitionType == game.Competitive {
		duration := time.Now().Unix() - lob.CreatedAt
		for pos, p := range standings {
			result := game.GameResult{
				LobbyID:      lob.ID,
				PlayerID:     p.ID,
				Position:     pos + 1,
				TotalPlayers: len(standings),
				Duration:     duration,
			}

			var opponents []int
			for _, o := range standings {
				if o.ID != p.ID {
					opponents = append(opponents, o.SkillRating)
				}
			}

			calc, err := rating.CalculateRatingChange(p.SkillRating, p.GamesPlayed, result.Position, result.TotalPlayers, opponents)
			if err != nil {
				// Invalid input must never produce a persisted rating change.
				log.Error("Skipping rating update for invalid input", "lobbyID", lob.ID, "playerID", p.ID, "error", err)
				continue
			}

			if dryRun {
				log.Info("[Dry Run] Would update rating", "playerID", p.ID, "from", calc.BaseRating, "to", calc.NewRating)
			} else if err := e.store.UpdateRating(p.ID, calc.NewRating); err != nil {
				log.Error("Failed to persist rating update", "playerID", p.ID, "error", err)
				continue
			}

			e.metrics.IncRatingUpdates()
			summary.RatingChanges = append(summary.RatingChanges, notifier.RatingChange{
				PlayerID:  p.ID,
				OldRating: calc.BaseRating,
				NewRating: calc.NewRating,
				Tier:      rating.TierFor(calc.NewRating).Name,
			})
		}
	}

	if err := e.notifier.SendGameSummary(summary, dryRun); err != nil {
		log.Error("Failed to send game summary", "lobbyID", lob.ID, "error", err)
	}

	log.Info("Game completed", "lobbyID", lob.ID, "winner", standings[0].ID, "competitive", lob.CompetitionType == game.Competitive)
	return nil
}

// ForceAdvance is the time-based fallback: when players stall out a
// phase, an external scheduler calls this to push the lobby forward. It
// runs through the same guarded transitions as the completion-driven
// path, so a late completion trigger racing with it stays harmless.
func (e *Engine) ForceAdvance(lobbyID string, dryRun bool) error {
	lob, err := e.store.GetLobby(lobbyID)
	if err != nil {
		return fmt.Errorf("lobby %s not found: %w", lobbyID, err)
	}

	if dryRun {
		log.Info("[Dry Run] Would force-advance lobby", "lobbyID", lobbyID, "phase", lob.Phase)
		return nil
	}

	switch lob.Phase {
	case game.PhaseWaiting:
		ok, err := e.store.AdvancePhase(lobbyID, game.PhaseWaiting, game.PhaseSubmission, submissionTimeLimit)
		if err != nil {
			return err
		}
		if ok {
			e.metrics.IncPhaseTransitions(string(game.PhaseSubmission))
			e.publish(events.EventPhaseChanged, lob, "")
		}
	case game.PhaseSubmission:
		ok, err := e.store.AdvancePhase(lobbyID, game.PhaseSubmission, game.PhaseVoting, votingTimeLimit)
		if err != nil {
			return err
		}
		if ok {
			e.metrics.IncPhaseTransitions(string(game.PhaseVoting))
			e.publish(events.EventPhaseChanged, lob, "")
		}
	case game.PhaseVoting:
		ok, err := e.store.AdvancePhase(lobbyID, game.PhaseVoting, game.PhaseResults, resultsTimeLimit)
		if err != nil {
			return err
		}
		if ok {
			e.metrics.IncPhaseTransitions(string(game.PhaseResults))
			e.publish(events.EventPhaseChanged, lob, "")
			e.publish(events.EventScoreRound, lob, "")
		}
	case game.PhaseResults:
		// Scoring may have been lost; re-trigger it. The scored_round
		// guard makes this safe.
		e.publish(events.EventScoreRound, lob, "")
	default:
		log.Debug("Nothing to force-advance", "lobbyID", lobbyID, "phase", lob.Phase)
	}
	return nil
}

// PlayAITurns makes every AI-controlled player act in the current phase
// through the same validated write paths a human client uses.
func (e *Engine) PlayAITurns(lobbyID string, dryRun bool) error {
	lob, err := e.store.GetLobby(lobbyID)
	if err != nil {
		return fmt.Errorf("lobby %s not found: %w", lobbyID, err)
	}
	roster, err := e.store.GetRoster(lobbyID)
	if err != nil {
		return err
	}

	switch lob.Phase {
	case game.PhaseSubmission:
		subs, err := e.store.GetSubmissions(lobbyID, lob.RoundNumber)
		if err != nil {
			return err
		}
		submitted := make(map[string]bool, len(subs))
		for _, s := range subs {
			submitted[s.PlayerID] = true
		}
		for _, p := range roster {
			if !p.IsAI || submitted[p.ID] {
				continue
			}
			choice, err := e.decider.ChooseCard(p.ID, lob.PromptCardID)
			if err != nil {
				log.Error("AI card choice failed", "playerID", p.ID, "error", err)
				continue
			}
			if dryRun {
				log.Info("[Dry Run] AI would submit", "playerID", p.ID, "cardID", choice.CardID)
				continue
			}
			if err := e.SubmitCard(lobbyID, p.ID, choice.CardID, choice.CardName); err != nil {
				log.Error("AI submission failed", "playerID", p.ID, "error", err)
			}
		}
	case game.PhaseVoting:
		subs, err := e.store.GetSubmissions(lobbyID, lob.RoundNumber)
		if err != nil {
			return err
		}
		var candidates []string
		for _, s := range subs {
			candidates = append(candidates, s.PlayerID)
		}
		for _, p := range roster {
			if !p.IsAI {
				continue
			}
			acted, err := e.store.HasActed(lobbyID, lob.RoundNumber, p.ID)
			if err != nil {
				return err
			}
			if acted {
				continue
			}
			choice, err := e.decider.ChooseVoteTarget(p.ID, candidates)
			if err != nil || choice == nil {
				log.Warn("AI has no vote target, abstaining", "playerID", p.ID, "error", err)
				if !dryRun {
					if err := e.Abstain(lobbyID, p.ID); err != nil {
						log.Error("AI abstention failed", "playerID", p.ID, "error", err)
					}
				}
				continue
			}
			if dryRun {
				log.Info("[Dry Run] AI would vote", "playerID", p.ID, "targetID", choice.TargetID)
				continue
			}
			if err := e.CastVote(lobbyID, p.ID, choice.TargetID); err != nil {
				log.Error("AI vote failed", "playerID", p.ID, "error", err)
			}
		}
	default:
		log.Debug("No AI action for phase", "lobbyID", lobbyID, "phase", lob.Phase)
	}
	return nil
}

// selectWinner picks the player with the most votes; ties break toward
// the lexicographically smallest playerID so scoring stays deterministic
// under replays.
func selectWinner(roster []game.PlayerInfo, voteCount map[string]int) string {
	winner := ""
	best := -1
	for _, p := range roster {
		count := voteCount[p.ID]
		if count > best || (count == best && p.ID < winner) {
			winner = p.ID
			best = count
		}
	}
	return winner
}

func (e *Engine) inRoster(lobbyID, playerID string) bool {
	roster, err := e.store.GetRoster(lobbyID)
	if err != nil {
		return false
	}
	for _, p := range roster {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

func (e *Engine) publish(topic events.EventType, lob *game.Lobby, playerID string) {
	err := e.events.SendMessage(topic, &events.RoundEvent{
		LobbyID:     lob.ID,
		RoundNumber: lob.RoundNumber,
		PlayerID:    playerID,
		Phase:       string(lob.Phase),
	})
	if err != nil {
		// Delivery is at-least-once via other triggers; a lost event only
		// delays progression until the scheduler fallback fires.
		log.Error("Failed to publish event", "topic", topic, "lobbyID", lob.ID, "error", err)
	}
}

func (e *Engine) observeDuration(start time.Time) {
	e.metrics.ObserveHandlerDuration(time.Since(start).Seconds())
}
