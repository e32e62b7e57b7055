package game

// Phase defines the lifecycle stage of a lobby's current round.
type Phase string

const (
	PhaseWaiting     Phase = "waiting"
	PhaseSubmission  Phase = "submission"
	PhaseVoting      Phase = "voting"
	PhaseResults     Phase = "results"
	PhaseLeaderboard Phase = "leaderboard"
	PhaseGameOver    Phase = "game_over"
)

// phaseTransitions is the legal transition table. Results may loop back to
// submission for the next round or end the match.
var phaseTransitions = map[Phase][]Phase{
	PhaseWaiting:     {PhaseSubmission},
	PhaseSubmission:  {PhaseVoting},
	PhaseVoting:      {PhaseResults},
	PhaseResults:     {PhaseLeaderboard, PhaseSubmission, PhaseGameOver},
	PhaseLeaderboard: {PhaseSubmission, PhaseGameOver},
	PhaseGameOver:    {},
}

// CanAdvanceTo reports whether a transition from p to target is legal.
func (p Phase) CanAdvanceTo(target Phase) bool {
	for _, next := range phaseTransitions[p] {
		if next == target {
			return true
		}
	}
	return false
}

func (p Phase) String() string {
	return string(p)
}
