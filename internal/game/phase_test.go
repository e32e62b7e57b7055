package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAdvanceTo(t *testing.T) {
	testCases := []struct {
		name  string
		from  Phase
		to    Phase
		legal bool
	}{
		{"waiting starts the first round", PhaseWaiting, PhaseSubmission, true},
		{"submission closes into voting", PhaseSubmission, PhaseVoting, true},
		{"voting closes into results", PhaseVoting, PhaseResults, true},
		{"results loops back for the next round", PhaseResults, PhaseSubmission, true},
		{"results can end the match", PhaseResults, PhaseGameOver, true},
		{"results can detour through the leaderboard", PhaseResults, PhaseLeaderboard, true},
		{"leaderboard resumes play", PhaseLeaderboard, PhaseSubmission, true},
		{"no skipping voting", PhaseSubmission, PhaseResults, false},
		{"no reopening submissions mid-round", PhaseVoting, PhaseSubmission, false},
		{"game over is terminal", PhaseGameOver, PhaseSubmission, false},
		{"no backwards transition", PhaseVoting, PhaseWaiting, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.legal, tc.from.CanAdvanceTo(tc.to))
		})
	}
}
